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

package config

import "errors"

// Sentinel errors for configuration resolution.
var (
	// ErrMissingServiceName is returned when the remote preset is selected
	// without a service name.
	ErrMissingServiceName = errors.New("service name is required for the remote preset")

	// ErrInvalidEnumValue is returned when a value names no known variant.
	ErrInvalidEnumValue = errors.New("invalid enum value")

	// ErrInvalidValue is returned for unparsable ports, durations, booleans and addresses.
	ErrInvalidValue = errors.New("invalid value")

	// ErrConflictingMetricsBackend is returned when an explicitly supplied
	// metrics sub-config does not match the resolved backend.
	ErrConflictingMetricsBackend = errors.New("metrics sub-config conflicts with backend")

	// ErrUnsupportedFileFormat is returned for config files with an unknown extension.
	ErrUnsupportedFileFormat = errors.New("unsupported config file format")
)
