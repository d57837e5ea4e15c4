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

import (
	"encoding/json"
	"fmt"
)

// JSON renders an error chain as a single-line JSON object:
//
//	{"error_chain":[[0,"loading config"],[1,"no such file or directory"]]}
//
// Each entry is an [index, message] pair; the last entry is the root cause.
type JSON struct{}

// NewJSON returns a JSON formatter.
func NewJSON() *JSON {
	return &JSON{}
}

type jsonReport struct {
	ErrorChain [][2]any `json:"error_chain"`
}

// Format renders err as JSON. If encoding fails, a plain-text description
// of the failure and the original error is returned instead.
func (f *JSON) Format(err error) string {
	if err == nil {
		return ""
	}

	links := Chain(err)
	report := jsonReport{ErrorChain: make([][2]any, len(links))}
	for i, l := range links {
		report.ErrorChain[i] = [2]any{l.Index, l.Message}
	}

	out, merr := json.Marshal(report)
	if merr != nil {
		return fmt.Sprintf("JSON formatting failed with error %q, when trying to format error %q", merr, err)
	}
	return string(out)
}
