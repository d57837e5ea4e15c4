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

package codec

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Registry holds the registered decoders and the file extensions mapped to them.
type Registry struct {
	mu         sync.RWMutex
	decoders   map[Type]Decoder
	extensions map[string]Type
}

var registry = &Registry{
	decoders:   make(map[Type]Decoder),
	extensions: make(map[string]Type),
}

// RegisterDecoder registers a decoder for the given type and, optionally,
// the file extensions (without the dot) that select it.
func RegisterDecoder(name Type, decoder Decoder, extensions ...string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	registry.decoders[name] = decoder
	for _, ext := range extensions {
		registry.extensions[strings.ToLower(ext)] = name
	}
}

// GetDecoder retrieves the registered decoder for the given type. If no decoder
// is registered for the given type, an error is returned.
func GetDecoder(name Type) (Decoder, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	decoder, exists := registry.decoders[name]
	if !exists {
		return nil, fmt.Errorf("decoder not found for type: %s", name)
	}

	return decoder, nil
}

// TypeForPath returns the codec type registered for the extension of path.
func TypeForPath(path string) (Type, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	registry.mu.RLock()
	defer registry.mu.RUnlock()

	t, ok := registry.extensions[ext]
	return t, ok
}

// ForPath retrieves the decoder registered for the extension of path.
func ForPath(path string) (Decoder, error) {
	t, ok := TypeForPath(path)
	if !ok {
		return nil, fmt.Errorf("no decoder registered for file extension of %q", path)
	}
	return GetDecoder(t)
}
