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
	"strconv"

	"github.com/worldcoin/telemetry-batteries/telemetry/semconv"
	"github.com/worldcoin/telemetry-batteries/tracing"
)

// fieldsFunc derives attributes from a record's context.
type fieldsFunc func(ctx context.Context) []slog.Attr

// hexTraceFields returns the W3C hex trace and span IDs of the active span.
func hexTraceFields(ctx context.Context) []slog.Attr {
	tc, ok := tracing.FromContext(ctx)
	if !ok {
		return nil
	}
	return []slog.Attr{
		slog.String(semconv.TraceID, tc.TraceID.String()),
		slog.String(semconv.SpanID, tc.SpanID.String()),
	}
}

// datadogTraceFields returns the IDs of the active span in the form the
// Datadog log pipeline joins on: the low 64 bits as decimal strings.
func datadogTraceFields(ctx context.Context) []slog.Attr {
	tc, ok := tracing.FromContext(ctx)
	if !ok {
		return nil
	}
	return []slog.Attr{
		slog.String(semconv.DatadogTraceID, strconv.FormatUint(tracing.DatadogTraceID(tc.TraceID), 10)),
		slog.String(semconv.DatadogSpanID, strconv.FormatUint(tracing.DatadogSpanID(tc.SpanID), 10)),
	}
}

// groupOrAttrs is one WithGroup or WithAttrs call, in call order.
type groupOrAttrs struct {
	group string
	attrs []slog.Attr
}

// correlationHandler appends context-derived attributes at the top level of
// every record, whatever groups were opened on the logger. It keeps the
// WithGroup/WithAttrs history itself and rebuilds the nesting on each record,
// so the wrapped handler never sees an open group.
type correlationHandler struct {
	inner  slog.Handler
	fields fieldsFunc
	goas   []groupOrAttrs
}

var _ slog.Handler = (*correlationHandler)(nil)

func newCorrelationHandler(inner slog.Handler, fields fieldsFunc) *correlationHandler {
	return &correlationHandler{inner: inner, fields: fields}
}

func (h *correlationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *correlationHandler) Handle(ctx context.Context, r slog.Record) error {
	extra := h.fields(ctx)
	if len(extra) == 0 && len(h.goas) == 0 {
		return h.inner.Handle(ctx, r)
	}

	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	out.AddAttrs(h.nest(attrs)...)
	out.AddAttrs(extra...)
	return h.inner.Handle(ctx, out)
}

// nest wraps the record attributes in the groups opened so far, innermost last.
func (h *correlationHandler) nest(attrs []slog.Attr) []slog.Attr {
	for i := len(h.goas) - 1; i >= 0; i-- {
		goa := h.goas[i]
		if goa.group == "" {
			attrs = append(append([]slog.Attr(nil), goa.attrs...), attrs...)
			continue
		}
		if len(attrs) == 0 {
			continue
		}
		attrs = []slog.Attr{{Key: goa.group, Value: slog.GroupValue(attrs...)}}
	}
	return attrs
}

func (h *correlationHandler) withGroupOrAttrs(goa groupOrAttrs) *correlationHandler {
	goas := make([]groupOrAttrs, len(h.goas)+1)
	copy(goas, h.goas)
	goas[len(h.goas)] = goa
	return &correlationHandler{inner: h.inner, fields: h.fields, goas: goas}
}

func (h *correlationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.withGroupOrAttrs(groupOrAttrs{attrs: attrs})
}

func (h *correlationHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.withGroupOrAttrs(groupOrAttrs{group: name})
}
