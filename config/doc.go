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

// Package config resolves the telemetry configuration from layered tiers.
//
// Every field is resolved independently. The highest tier that sets a field
// wins:
//
//  1. explicit options passed to [Resolve]
//  2. environment variables (TELEMETRY_*, plus LOG_LEVEL)
//  3. an optional YAML, TOML or JSON file ([WithFile] or TELEMETRY_CONFIG_FILE)
//  4. the defaults of the selected [Preset]
//  5. hard-coded fallbacks
//
// The preset itself is resolved first, since it picks tier 4.
//
// # Quick Start
//
//	cfg, err := config.FromEnv(config.WithServiceName("billing"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Resolution is pure over an [Environment] snapshot, which makes it easy to
// test:
//
//	cfg, err := config.Resolve(config.Environment{
//	    "TELEMETRY_PRESET":       "remote",
//	    "TELEMETRY_SERVICE_NAME": "billing",
//	})
//
// # Presets
//
//   - local: pretty logs, no trace export
//   - remote (alias "datadog"): Datadog JSON logs, traces exported to
//     http://localhost:8126; requires a service name
//   - none: no log pipeline
//
// # Errors
//
// All errors are [*Error] values wrapping one of the sentinel errors, so both
// errors.Is and errors.As work:
//
//	var cfgErr *config.Error
//	if errors.As(err, &cfgErr) && errors.Is(err, config.ErrInvalidEnumValue) {
//	    fmt.Println(cfgErr.Field, cfgErr.Value) // TELEMETRY_LOG_FORMAT xml
//	}
package config
