// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errreport_test

import (
	"errors"
	"fmt"

	"github.com/worldcoin/telemetry-batteries/errreport"
)

// ExampleJSON shows the single-line report used by log pipelines.
func ExampleJSON() {
	err := fmt.Errorf("starting server: %w", errors.New("address already in use"))

	fmt.Println(errreport.NewJSON().Format(err))
	// Output: {"error_chain":[[0,"starting server"],[1,"address already in use"]]}
}

// ExampleColor shows the numbered report for terminals.
func ExampleColor() {
	err := fmt.Errorf("starting server: %w", errors.New("address already in use"))

	f := &errreport.Color{NoColor: true}
	fmt.Println(f.Format(err))
	// Output:
	// Error:
	//    0: starting server
	//    1: address already in use
}
