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

package source

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
)

// DotEnv reads variables from dotenv files. Unlike godotenv.Load it never
// writes to the process environment.
type DotEnv struct {
	paths []string
}

// NewDotEnv creates a DotEnv source. With no paths it reads ".env".
// Later files take precedence over earlier ones.
func NewDotEnv(paths ...string) *DotEnv {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return &DotEnv{paths: paths}
}

// Load reads every file and returns the merged variables.
func (d *DotEnv) Load(context.Context) (map[string]string, error) {
	vars := make(map[string]string)
	for _, p := range d.paths {
		read, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read dotenv file %s: %w", p, err)
		}
		for k, v := range read {
			vars[k] = v
		}
	}
	return vars, nil
}
