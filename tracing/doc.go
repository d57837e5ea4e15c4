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

// Package tracing builds the span-export stage and the W3C trace-context
// codec.
//
// # Span export
//
// [NewProvider] wires a batching span processor to the exporter selected by
// [config.TracingConfig]:
//
//   - remote: the Datadog agent's msgpack intake (protocol agent, the
//     default), or OTLP over HTTP or gRPC for a collector
//   - stdout: pretty-printed JSON, for development
//   - zipkin: Zipkin v2 JSON over HTTP
//   - none: no provider; the tracer is a no-op
//
//	provider, err := tracing.NewProvider(ctx, cfg.Tracing,
//	    tracing.WithServiceName(cfg.ServiceName),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Shutdown(context.Background())
//
// # Trace IDs
//
// The remote backend uses [IDGenerator], whose trace IDs have their upper
// 64 bits zeroed. [DatadogTraceID] recovers the 64-bit ID that Datadog
// stores, so logs can carry the same value as the exported spans.
//
// # Context Propagation
//
// [Extract] and [Inject] read and write the traceparent and tracestate
// headers:
//
//	tc, ok := tracing.Extract(req.Header)
//	if !ok {
//	    tc = tracing.ExtractOrNew(req.Header, nil)
//	}
//	tracing.Inject(tc, outgoing.Header)
//
// [Middleware] does both for an http.Handler and runs the handler inside a
// server span.
package tracing
