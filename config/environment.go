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

import (
	"os"
	"strings"
)

// Environment is a snapshot of environment variables. Resolution reads only
// from the snapshot, so the same snapshot always yields the same result.
type Environment map[string]string

// OSEnvironment snapshots the process environment.
func OSEnvironment() Environment {
	env := make(Environment)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	return env
}

// Lookup returns the value of key. Blank values count as unset.
func (e Environment) Lookup(key string) (string, bool) {
	v, ok := e[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// withFallback returns a copy of e where keys missing from e are taken from fallback.
func (e Environment) withFallback(fallback map[string]string) Environment {
	merged := make(Environment, len(e)+len(fallback))
	for k, v := range fallback {
		merged[k] = v
	}
	for k, v := range e {
		merged[k] = v
	}
	return merged
}
