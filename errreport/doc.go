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

// Package errreport renders error chains for humans or for log pipelines.
//
// An error chain is the sequence obtained by unwrapping an error down to its
// root cause. Two renderings are provided:
//
//   - Color: a numbered, multi-line report for terminals
//   - JSON: {"error_chain":[[0,"outer"],...,[n,"root"]]} on a single line
//
// The process-wide mode is chosen once at startup, typically by
// telemetry.InitWithConfig from TelemetryConfig.ErrorMode:
//
//	errreport.Install(config.ErrorModeJSON)
//
//	if err := run(); err != nil {
//		errreport.Fprint(os.Stderr, err)
//		os.Exit(1)
//	}
//
// Wrapped messages created with fmt.Errorf and %w repeat the inner message;
// the report trims the repetition so every line holds one layer of context.
package errreport
