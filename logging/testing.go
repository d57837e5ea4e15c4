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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/worldcoin/telemetry-batteries/config"
)

// LogEntry represents a parsed log entry for testing.
type LogEntry struct {
	Time    time.Time
	Level   string
	Message string
	Attrs   map[string]any
}

// NewTestLogger creates a logger over the given format writing to an
// in-memory buffer, with every level enabled. The returned buffer can be
// passed to [ParseJSONLogEntries] for the JSON formats.
func NewTestLogger(t testing.TB, format config.LogFormat, opts ...Option) (*slog.Logger, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	h, err := NewFormatHandler(buf, format, append([]Option{WithColor(false)}, opts...)...)
	if err != nil {
		t.Fatalf("NewTestLogger: %v", err)
	}
	return slog.New(NewLevelFilter(config.LevelTrace, h)), buf
}

// ParseJSONLogEntries parses the lines of buf as json or datadog-json
// records. The buffer is not consumed.
func ParseJSONLogEntries(buf *bytes.Buffer) ([]LogEntry, error) {
	var entries []LogEntry
	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for scanner.Scan() {
		var raw map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
			return nil, err
		}

		le := LogEntry{Attrs: make(map[string]any)}
		for k, v := range raw {
			switch k {
			case slog.TimeKey, "timestamp":
				if s, ok := v.(string); ok {
					le.Time, _ = time.Parse(time.RFC3339Nano, s)
				}
			case slog.LevelKey:
				le.Level, _ = v.(string)
			case slog.MessageKey, "message":
				le.Message, _ = v.(string)
			default:
				le.Attrs[k] = v
			}
		}
		entries = append(entries, le)
	}

	return entries, scanner.Err()
}

// HandlerSpy is a [slog.Handler] that captures records for inspection.
//
// Example:
//
//	spy := &logging.HandlerSpy{}
//	logger := slog.New(logging.NewLevelFilter(slog.LevelWarn, spy))
//	logger.Info("dropped")
//	logger.Warn("kept")
//	// spy.RecordCount() == 1
type HandlerSpy struct {
	records []slog.Record
	mu      sync.Mutex
}

// Enabled implements [slog.Handler.Enabled].
func (hs *HandlerSpy) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements [slog.Handler.Handle].
func (hs *HandlerSpy) Handle(_ context.Context, r slog.Record) error {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.records = append(hs.records, r.Clone())

	return nil
}

// WithAttrs implements [slog.Handler.WithAttrs].
func (hs *HandlerSpy) WithAttrs([]slog.Attr) slog.Handler {
	return hs
}

// WithGroup implements [slog.Handler.WithGroup].
func (hs *HandlerSpy) WithGroup(string) slog.Handler {
	return hs
}

// Records returns all captured records.
func (hs *HandlerSpy) Records() []slog.Record {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	return append([]slog.Record(nil), hs.records...)
}

// RecordCount returns the number of captured records.
func (hs *HandlerSpy) RecordCount() int {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	return len(hs.records)
}

// Reset clears all captured records.
func (hs *HandlerSpy) Reset() {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.records = nil
}
