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

// Package codec decodes configuration files into generic maps.
//
// Decoders are registered per [Type] and looked up either by type or by the
// extension of a file path:
//
//	decoder, err := codec.ForPath("telemetry.yaml")
//	var tree map[string]any
//	err = decoder.Decode(data, &tree)
//
// YAML (.yaml, .yml), TOML (.toml) and JSON (.json) are registered at init.
package codec
