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

// Package telemetry installs logging, tracing, metrics and error reporting
// for a service from one resolved configuration.
//
// # Quick Start
//
//	func main() {
//	    guard, err := telemetry.Init(context.Background())
//	    if err != nil {
//	        errreport.Fprint(os.Stderr, err)
//	        os.Exit(1)
//	    }
//	    defer guard.Release()
//
//	    slog.Info("service started")
//	}
//
// Init reads TELEMETRY_* variables (see package config). InitWithConfig
// accepts a config built with config.Resolve or by hand.
//
// # Presets
//
//   - local: pretty console logs, no span export
//   - remote: Datadog JSON logs with dd.trace_id and dd.span_id, spans sent
//     to the agent at http://localhost:8126 with 64-bit compatible trace IDs
//   - none: no log handler is installed; tracing follows the config
//
// # Process-wide state
//
// The log and trace pipeline and the metrics recorder are each installed at
// most once per process. Later attempts fail with [ErrAlreadyInstalled] and
// leave the first installation untouched.
//
// # Shutdown
//
// [Guard.Release] flushes buffered spans, shuts the tracer provider down and
// drains the metrics recorder, bounded by TelemetryConfig.ShutdownTimeout.
// Release is idempotent. Logging keeps working after release.
package telemetry
