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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sampleTraceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	sampleTracestate  = "rojo=00f067aa0ba902b7,congo=t61rcWkgMzE"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("traceparent", sampleTraceparent)
	h.Set("tracestate", sampleTracestate)

	tc, ok := Extract(h)
	require.True(t, ok)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", tc.TraceID.String())
	assert.Equal(t, "00f067aa0ba902b7", tc.SpanID.String())
	assert.True(t, tc.Sampled)
	assert.Equal(t, sampleTracestate, tc.TraceState)
}

func TestExtract_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header http.Header
	}{
		{"nil header", nil},
		{"absent", http.Header{}},
		{"garbage", http.Header{"Traceparent": {"not-a-traceparent"}}},
		{"zero trace id", http.Header{"Traceparent": {"00-00000000000000000000000000000000-00f067aa0ba902b7-01"}}},
		{"zero span id", http.Header{"Traceparent": {"00-4bf92f3577b34da6a3ce929d0e0e4736-0000000000000000-01"}}},
		{"invalid version", http.Header{"Traceparent": {"ff-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"}}},
		{"short trace id", http.Header{"Traceparent": {"00-4bf92f35-00f067aa0ba902b7-01"}}},
		{"non hex", http.Header{"Traceparent": {"00-4bf92f3577b34da6a3ce929d0e0e47zz-00f067aa0ba902b7-01"}}},
		{"empty value", http.Header{"Traceparent": {""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.NotPanics(t, func() {
				_, ok := Extract(tt.header)
				assert.False(t, ok)
			})
		})
	}
}

func TestInjectExtractRoundTrip(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator()
	for _, sampled := range []bool{true, false} {
		tc := TraceContext{
			TraceID:    gen.TraceID(),
			SpanID:     gen.SpanID(),
			Sampled:    sampled,
			TraceState: "vendor=value",
		}

		h := http.Header{}
		Inject(tc, h)

		got, ok := Extract(h)
		require.True(t, ok)
		assert.Equal(t, tc, got)
	}
}

func TestInject_InvalidWritesNothing(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	Inject(TraceContext{}, h)
	assert.Empty(t, h)
}

func TestExtractOrNew(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("traceparent", sampleTraceparent)
	tc := ExtractOrNew(h, nil)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", tc.TraceID.String())

	fresh := ExtractOrNew(http.Header{"Traceparent": {"junk"}}, NewIDGenerator())
	assert.True(t, fresh.IsValid())
	assert.True(t, fresh.Sampled)
	assert.Empty(t, fresh.TraceState)
}

func TestContextWithTraceContext(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator()
	tc := TraceContext{TraceID: gen.TraceID(), SpanID: gen.SpanID(), Sampled: true}

	ctx := ContextWithTraceContext(context.Background(), tc)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, tc, got)
	assert.Equal(t, tc.TraceID.String(), TraceID(ctx))
	assert.Equal(t, tc.SpanID.String(), SpanID(ctx))

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
	assert.Empty(t, TraceID(context.Background()))
}

func FuzzExtract(f *testing.F) {
	f.Add(sampleTraceparent, sampleTracestate)
	f.Add("00-0-0-0", "")
	f.Add("", "=,=")

	f.Fuzz(func(t *testing.T, traceparent, tracestate string) {
		h := http.Header{}
		h.Set("traceparent", traceparent)
		h.Set("tracestate", tracestate)

		tc, ok := Extract(h)
		if !ok {
			return
		}

		out := http.Header{}
		Inject(tc, out)
		again, ok := Extract(out)
		if !ok || again.TraceID != tc.TraceID || again.SpanID != tc.SpanID || again.Sampled != tc.Sampled {
			t.Fatalf("round trip lost data: %+v -> %+v", tc, again)
		}
	})
}
