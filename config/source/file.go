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
	"os"

	"github.com/worldcoin/telemetry-batteries/config/codec"
)

// File represents a configuration source that loads data from a file or byte content.
type File struct {
	path    string
	data    []byte
	decoder codec.Decoder
}

// NewFile creates a new File source that loads configuration from the specified file path.
// The decoder parameter determines how the file content is parsed.
func NewFile(path string, decoder codec.Decoder) *File {
	return &File{
		path:    path,
		decoder: decoder,
	}
}

// NewFileFromPath creates a File source whose decoder is chosen by the
// extension of path.
func NewFileFromPath(path string) (*File, error) {
	decoder, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}
	return NewFile(path, decoder), nil
}

// NewFileContent creates a new File source that decodes the provided byte slice.
func NewFileContent(data []byte, decoder codec.Decoder) *File {
	return &File{
		data:    data,
		decoder: decoder,
	}
}

// Path returns the file path, or "" for in-memory content.
func (f *File) Path() string {
	return f.path
}

// Load reads the configuration file and decodes its contents into a map[string]any.
// An empty file yields an empty map.
//
// Errors:
//   - Returns error if the file cannot be read (NewFile only)
//   - Returns error if decoding fails
func (f *File) Load(context.Context) (map[string]any, error) {
	data := f.data
	if f.path != "" {
		var err error
		data, err = os.ReadFile(f.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
	}

	config := make(map[string]any)
	if len(data) == 0 {
		return config, nil
	}
	if err := f.decoder.Decode(data, &config); err != nil {
		return nil, fmt.Errorf("failed to decode file: %w", err)
	}

	return config, nil
}
