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
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/worldcoin/telemetry-batteries/telemetry/semconv"
)

// MiddlewareOption configures [Middleware].
type MiddlewareOption func(*middleware)

type middleware struct {
	provider trace.TracerProvider
	skip     skipRules
	// headers maps canonical request header names to span attribute keys.
	headers map[string]string
	errs    []error
}

// WithTracerProvider makes the middleware use tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) MiddlewareOption {
	return func(m *middleware) { m.provider = tp }
}

// WithExcludePaths serves the given exact paths (e.g. "/health") without a span.
func WithExcludePaths(paths ...string) MiddlewareOption {
	return func(m *middleware) {
		if m.skip.exact == nil {
			m.skip.exact = make(map[string]struct{}, len(paths))
		}
		for _, p := range paths {
			m.skip.exact[p] = struct{}{}
		}
	}
}

// WithExcludePrefixes serves paths starting with any of prefixes without a span.
func WithExcludePrefixes(prefixes ...string) MiddlewareOption {
	return func(m *middleware) { m.skip.prefixes = append(m.skip.prefixes, prefixes...) }
}

// WithExcludePatterns serves paths matching any of the regular expressions
// without a span. An invalid expression makes [Middleware] panic.
func WithExcludePatterns(patterns ...string) MiddlewareOption {
	return func(m *middleware) {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				m.errs = append(m.errs, fmt.Errorf("exclude pattern %q: %w", p, err))
				continue
			}
			m.skip.patterns = append(m.skip.patterns, re)
		}
	}
}

// WithHeaders records the named request headers on the server span as
// http.request.header.<lowercase name>. Credential headers are never recorded.
func WithHeaders(headers ...string) MiddlewareOption {
	return func(m *middleware) {
		if m.headers == nil {
			m.headers = make(map[string]string, len(headers))
		}
		for _, h := range headers {
			if isCredentialHeader(h) {
				continue
			}
			m.headers[http.CanonicalHeaderKey(h)] = semconv.HTTPRequestHeaderPrefix + strings.ToLower(h)
		}
	}
}

func isCredentialHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "proxy-authorization", "cookie", "set-cookie", "x-api-key", "x-auth-token":
		return true
	}
	return false
}

// Middleware continues the caller's trace for every request. It extracts
// the incoming traceparent, runs the handler inside a server span and writes
// the span's context back as the response's traceparent header.
//
// Requests without a valid traceparent start a new root span. Responses
// with a 5xx status mark the span as failed.
//
//	handler := tracing.Middleware(
//	    tracing.WithExcludePaths("/health"),
//	    tracing.WithHeaders("X-Request-ID"),
//	)(mux)
func Middleware(opts ...MiddlewareOption) func(http.Handler) http.Handler {
	m := &middleware{}
	for _, opt := range opts {
		opt(m)
	}
	if len(m.errs) > 0 {
		panic("tracing.Middleware: " + errors.Join(m.errs...).Error())
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.skip.empty() && m.skip.matches(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			m.serve(next, w, r)
		})
	}
}

func (m *middleware) serve(next http.Handler, w http.ResponseWriter, r *http.Request) {
	ctx, span := m.start(r)
	defer span.End()

	if tc, ok := FromContext(ctx); ok {
		Inject(tc, w.Header())
	}

	sw := &statusWriter{ResponseWriter: w}
	next.ServeHTTP(sw, r.WithContext(ctx))

	status := sw.status()
	span.SetAttributes(attribute.Int(semconv.HTTPStatusCode, status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(status))
	}
}

// start opens the server span, as a child of the incoming context when the
// request carries one.
func (m *middleware) start(r *http.Request) (context.Context, trace.Span) {
	ctx := r.Context()
	if tc, ok := Extract(r.Header); ok {
		ctx = ContextWithTraceContext(ctx, tc)
	}

	tp := m.provider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	attrs := []attribute.KeyValue{
		attribute.String(semconv.HTTPMethod, r.Method),
		attribute.String(semconv.HTTPTarget, r.URL.Path),
		attribute.String(semconv.HTTPScheme, scheme),
		attribute.String(semconv.HTTPHost, r.Host),
		attribute.String(semconv.HTTPUserAgent, r.UserAgent()),
	}
	for name, key := range m.headers {
		if v := r.Header.Get(name); v != "" {
			attrs = append(attrs, attribute.String(key, v))
		}
	}

	return tp.Tracer(InstrumentationName).Start(ctx, r.Method+" "+r.URL.Path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
}

// statusWriter remembers the first status code written. Unwrap lets
// http.ResponseController reach Flush and Hijack on the wrapped writer.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.code == 0 {
		w.code = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.code == 0 {
		w.code = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *statusWriter) status() int {
	if w.code == 0 {
		return http.StatusOK
	}
	return w.code
}
