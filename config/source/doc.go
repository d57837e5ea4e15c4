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

// Package source loads the optional tiers that sit beside the process
// environment: configuration files and dotenv files.
//
// # Available Sources
//
//   - File: decode a YAML, TOML or JSON file into a nested map
//   - DotEnv: read KEY=VALUE pairs without touching the process environment
//
// # Example
//
//	file, err := source.NewFileFromPath("telemetry.yaml")
//	tree, err := file.Load(context.Background())
//
//	vars, err := source.NewDotEnv(".env").Load(context.Background())
package source
