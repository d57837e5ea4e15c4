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

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceContext is the portion of a span context that crosses process
// boundaries.
type TraceContext struct {
	TraceID    trace.TraceID
	SpanID     trace.SpanID
	Sampled    bool
	TraceState string
}

// IsValid reports whether both IDs are non-zero.
func (tc TraceContext) IsValid() bool {
	return tc.TraceID.IsValid() && tc.SpanID.IsValid()
}

// SpanContext converts tc to a remote [trace.SpanContext]. An unparsable
// TraceState is dropped.
func (tc TraceContext) SpanContext() trace.SpanContext {
	var flags trace.TraceFlags
	if tc.Sampled {
		flags = trace.FlagsSampled
	}
	state, err := trace.ParseTraceState(tc.TraceState)
	if err != nil {
		state = trace.TraceState{}
	}
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    tc.TraceID,
		SpanID:     tc.SpanID,
		TraceFlags: flags,
		TraceState: state,
		Remote:     true,
	})
}

// FromSpanContext converts sc to a TraceContext.
func FromSpanContext(sc trace.SpanContext) TraceContext {
	return TraceContext{
		TraceID:    sc.TraceID(),
		SpanID:     sc.SpanID(),
		Sampled:    sc.IsSampled(),
		TraceState: sc.TraceState().String(),
	}
}

// w3c reads and writes the traceparent and tracestate headers.
var w3c propagation.TraceContext

// Extract reads a trace context from the traceparent and tracestate
// headers. It returns false when the headers are absent or malformed; it
// never panics, whatever the input.
func Extract(h http.Header) (TraceContext, bool) {
	ctx := w3c.Extract(context.Background(), propagation.HeaderCarrier(h))
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return TraceContext{}, false
	}
	return FromSpanContext(sc), true
}

// ExtractOrNew is Extract with a fallback to a fresh, sampled root context
// drawn from gen. A nil gen uses a new IDGenerator.
func ExtractOrNew(h http.Header, gen *IDGenerator) TraceContext {
	if tc, ok := Extract(h); ok {
		return tc
	}
	return TraceContext{
		TraceID: gen.TraceID(),
		SpanID:  gen.SpanID(),
		Sampled: true,
	}
}

// Inject writes tc to the traceparent and tracestate headers. An invalid
// tc writes nothing.
func Inject(tc TraceContext, h http.Header) {
	if !tc.IsValid() {
		return
	}
	w3c.Inject(trace.ContextWithRemoteSpanContext(context.Background(), tc.SpanContext()), propagation.HeaderCarrier(h))
}

// ContextWithTraceContext returns a copy of ctx whose remote parent is tc.
// Spans started from the returned context continue tc's trace.
func ContextWithTraceContext(ctx context.Context, tc TraceContext) context.Context {
	return trace.ContextWithRemoteSpanContext(ctx, tc.SpanContext())
}

// FromContext returns the trace context of the span active in ctx.
func FromContext(ctx context.Context) (TraceContext, bool) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return TraceContext{}, false
	}
	return FromSpanContext(sc), true
}

// TraceID returns the hex trace ID of the span active in ctx, or "".
func TraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// SpanID returns the hex span ID of the span active in ctx, or "".
func SpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}
