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

package errreport

// Test helpers shared by the formatter tests.

type testError struct {
	message string
}

func (e *testError) Error() string {
	return e.message
}

// causeError exposes its cause only through Cause.
type causeError struct {
	message string
	cause   error
}

func (e *causeError) Error() string {
	return e.message
}

func (e *causeError) Cause() error {
	return e.cause
}
