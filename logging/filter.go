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

package logging

import (
	"context"
	"log/slog"
)

// LevelFilter is the first stage of the log pipeline. It drops records below
// its minimum level before any formatting work happens.
//
// Thread-safe: Safe for concurrent use by multiple goroutines.
type LevelFilter struct {
	min  slog.Leveler
	next slog.Handler
}

var _ slog.Handler = (*LevelFilter)(nil)

// NewLevelFilter returns a filter that forwards records at or above min to next.
// A [*slog.LevelVar] may be passed to change the level at runtime.
func NewLevelFilter(min slog.Leveler, next slog.Handler) *LevelFilter {
	if min == nil {
		min = slog.LevelInfo
	}
	return &LevelFilter{min: min, next: next}
}

// Level returns the current minimum level.
func (f *LevelFilter) Level() slog.Level {
	return f.min.Level()
}

// Enabled implements [slog.Handler.Enabled].
func (f *LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	if level < f.min.Level() {
		return false
	}
	return f.next.Enabled(ctx, level)
}

// Handle implements [slog.Handler.Handle].
func (f *LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < f.min.Level() {
		return nil
	}
	return f.next.Handle(ctx, r)
}

// WithAttrs implements [slog.Handler.WithAttrs].
func (f *LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LevelFilter{min: f.min, next: f.next.WithAttrs(attrs)}
}

// WithGroup implements [slog.Handler.WithGroup].
func (f *LevelFilter) WithGroup(name string) slog.Handler {
	return &LevelFilter{min: f.min, next: f.next.WithGroup(name)}
}
