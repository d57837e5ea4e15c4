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

package tracing

import (
	"context"
	"sync"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/worldcoin/telemetry-batteries/config"
)

// RecordingExporter is an in-memory span exporter for tests. Unlike
// tracetest.InMemoryExporter it keeps the recorded spans after Shutdown and
// counts the export and shutdown calls it receives.
type RecordingExporter struct {
	mu        sync.Mutex
	spans     []sdktrace.ReadOnlySpan
	exports   int
	shutdowns int
	delay     time.Duration
	err       error
}

var _ sdktrace.SpanExporter = (*RecordingExporter)(nil)

// NewRecordingExporter returns an empty RecordingExporter.
func NewRecordingExporter() *RecordingExporter {
	return &RecordingExporter{}
}

// SetDelay makes every export block for d or until its context is done.
func (e *RecordingExporter) SetDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay = d
}

// SetError makes every later export fail with err.
func (e *RecordingExporter) SetError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// ExportSpans implements [sdktrace.SpanExporter].
func (e *RecordingExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	delay, err := e.delay, e.err
	e.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.exports++
	e.spans = append(e.spans, spans...)
	return nil
}

// Shutdown implements [sdktrace.SpanExporter].
func (e *RecordingExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdowns++
	return nil
}

// Spans returns a copy of every span exported so far.
func (e *RecordingExporter) Spans() []sdktrace.ReadOnlySpan {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sdktrace.ReadOnlySpan(nil), e.spans...)
}

// Exports returns the number of successful export calls.
func (e *RecordingExporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}

// Shutdowns returns the number of Shutdown calls.
func (e *RecordingExporter) Shutdowns() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shutdowns
}

// TestingProvider creates a remote-backend [Provider] whose spans go to a
// [RecordingExporter]. The provider is shut down on test cleanup.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    provider, exporter := tracing.TestingProvider(t)
//	    _, span := provider.Tracer("test").Start(context.Background(), "op")
//	    span.End()
//	    require.NoError(t, provider.ForceFlush(context.Background()))
//	    assert.Len(t, exporter.Spans(), 1)
//	}
func TestingProvider(t testing.TB, opts ...Option) (*Provider, *RecordingExporter) {
	t.Helper()

	exporter := NewRecordingExporter()
	defaultOpts := []Option{
		WithServiceName("test-service"),
		WithServiceVersion("v1.0.0"),
		WithSpanExporter(exporter),
	}

	provider, err := NewProvider(context.Background(), config.TracingConfig{
		Backend:  config.TracingRemote,
		Endpoint: config.DefaultRemoteEndpoint,
	}, append(defaultOpts, opts...)...)
	if err != nil {
		t.Fatalf("TestingProvider: failed to create provider: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			t.Logf("TestingProvider: shutdown warning: %v", err)
		}
	})

	return provider, exporter
}
