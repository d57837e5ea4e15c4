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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/worldcoin/telemetry-batteries/internal/otelutil"
)

const (
	// agentTracesPath is the agent's v0.4 trace intake.
	agentTracesPath = "/v0.4/traces"

	agentTimeout = 10 * time.Second

	// tracerVersion is reported to the agent in Datadog-Meta-Tracer-Version.
	tracerVersion = "telemetry-batteries"
)

// agentSpan is one span in the agent's v0.4 payload.
type agentSpan struct {
	Service  string             `msgpack:"service"`
	Name     string             `msgpack:"name"`
	Resource string             `msgpack:"resource"`
	TraceID  uint64             `msgpack:"trace_id"`
	SpanID   uint64             `msgpack:"span_id"`
	ParentID uint64             `msgpack:"parent_id"`
	Start    int64              `msgpack:"start"`
	Duration int64              `msgpack:"duration"`
	Error    int32              `msgpack:"error"`
	Type     string             `msgpack:"type,omitempty"`
	Meta     map[string]string  `msgpack:"meta,omitempty"`
	Metrics  map[string]float64 `msgpack:"metrics,omitempty"`
}

// agentExporter submits spans to a Datadog agent over its native intake.
// Only the low 64 bits of trace IDs reach the agent, which is why the remote
// backend pairs it with [IDGenerator].
type agentExporter struct {
	url     string
	service string
	client  *http.Client
	stopped atomic.Bool
}

var _ sdktrace.SpanExporter = (*agentExporter)(nil)

// newAgentExporter creates an exporter for the agent at endpoint. A bare
// host:port is reached over plain HTTP.
func newAgentExporter(endpoint, service string) (*agentExporter, error) {
	host, insecure, _, err := otelutil.SplitEndpoint(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create datadog agent exporter: %w", err)
	}
	scheme := "https"
	if insecure {
		scheme = "http"
	}
	return &agentExporter{
		url:     scheme + "://" + host + agentTracesPath,
		service: service,
		client:  &http.Client{Timeout: agentTimeout},
	}, nil
}

// ExportSpans implements [sdktrace.SpanExporter]. A non-2xx answer from the
// agent is returned as an error so that flushing reports the lost batch.
func (e *agentExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if e.stopped.Load() || len(spans) == 0 {
		return nil
	}

	traces := e.groupTraces(spans)
	body, err := msgpack.Marshal(traces)
	if err != nil {
		return fmt.Errorf("failed to encode spans: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/msgpack")
	req.Header.Set("Datadog-Meta-Lang", "go")
	req.Header.Set("Datadog-Meta-Tracer-Version", tracerVersion)
	req.Header.Set("X-Datadog-Trace-Count", strconv.Itoa(len(traces)))

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send spans to datadog agent: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("datadog agent rejected %d spans: %s", len(spans), resp.Status)
	}
	return nil
}

// Shutdown implements [sdktrace.SpanExporter]. Later exports are dropped.
func (e *agentExporter) Shutdown(ctx context.Context) error {
	e.stopped.Store(true)
	e.client.CloseIdleConnections()
	return ctx.Err()
}

// groupTraces splits spans into per-trace chunks, keeping arrival order.
func (e *agentExporter) groupTraces(spans []sdktrace.ReadOnlySpan) [][]agentSpan {
	index := make(map[uint64]int)
	var traces [][]agentSpan
	for _, s := range spans {
		as := e.convert(s)
		i, ok := index[as.TraceID]
		if !ok {
			i = len(traces)
			index[as.TraceID] = i
			traces = append(traces, nil)
		}
		traces[i] = append(traces[i], as)
	}
	return traces
}

func (e *agentExporter) convert(s sdktrace.ReadOnlySpan) agentSpan {
	sc := s.SpanContext()
	as := agentSpan{
		Service:  e.service,
		Name:     operationName(s),
		Resource: s.Name(),
		TraceID:  DatadogTraceID(sc.TraceID()),
		SpanID:   DatadogSpanID(sc.SpanID()),
		Start:    s.StartTime().UnixNano(),
		Duration: s.EndTime().Sub(s.StartTime()).Nanoseconds(),
		Type:     spanType(s.SpanKind()),
		Meta:     make(map[string]string),
		Metrics:  make(map[string]float64),
	}
	if s.Parent().IsValid() {
		as.ParentID = DatadogSpanID(s.Parent().SpanID())
	}

	if res := s.Resource(); res != nil {
		for _, kv := range res.Attributes() {
			if kv.Key == "service.name" && kv.Value.AsString() != "" {
				as.Service = kv.Value.AsString()
				continue
			}
			addTag(&as, kv)
		}
	}
	for _, kv := range s.Attributes() {
		addTag(&as, kv)
	}

	as.Meta["span.kind"] = s.SpanKind().String()
	as.Meta["otel.trace_id"] = sc.TraceID().String()
	if scope := s.InstrumentationScope().Name; scope != "" {
		as.Meta["otel.library.name"] = scope
	}
	if method, route := as.Meta["http.method"], as.Meta["http.route"]; method != "" && route != "" {
		as.Resource = method + " " + route
	}

	if st := s.Status(); st.Code == codes.Error {
		as.Error = 1
		if st.Description != "" {
			as.Meta["error.message"] = st.Description
		}
	}
	if !s.Parent().IsValid() || s.Parent().IsRemote() {
		as.Metrics["_sampling_priority_v1"] = 1
		as.Metrics["_dd.top_level"] = 1
	}
	return as
}

// addTag stores numeric attributes as metrics and everything else as meta.
func addTag(as *agentSpan, kv attribute.KeyValue) {
	key := string(kv.Key)
	switch kv.Value.Type() {
	case attribute.INT64:
		as.Metrics[key] = float64(kv.Value.AsInt64())
	case attribute.FLOAT64:
		as.Metrics[key] = kv.Value.AsFloat64()
	default:
		as.Meta[key] = kv.Value.Emit()
	}
}

// operationName follows the agent's "<library>.<kind>" convention for
// operations, leaving the span name to the resource.
func operationName(s sdktrace.ReadOnlySpan) string {
	switch s.SpanKind() {
	case trace.SpanKindServer:
		return "http.server.request"
	case trace.SpanKindClient:
		return "http.client.request"
	}
	if scope := s.InstrumentationScope().Name; scope != "" {
		return scope + "." + s.SpanKind().String()
	}
	return s.SpanKind().String()
}

func spanType(kind trace.SpanKind) string {
	switch kind {
	case trace.SpanKindServer:
		return "web"
	case trace.SpanKindClient:
		return "http"
	}
	return "custom"
}
