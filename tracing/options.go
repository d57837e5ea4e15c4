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
	"io"
	"log/slog"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DefaultServiceName is used on the trace resource when none is provided.
const DefaultServiceName = "unknown_service"

// Option configures [NewProvider].
type Option func(*settings)

type settings struct {
	serviceName    string
	serviceVersion string
	environment    string
	exporter       sdktrace.SpanExporter
	idGenerator    sdktrace.IDGenerator
	sampler        sdktrace.Sampler
	batchTimeout   time.Duration
	stdout         io.Writer
	eventHandler   EventHandler
}

func newSettings(opts []Option) *settings {
	s := &settings{serviceName: DefaultServiceName}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithServiceName sets service.name on the trace resource.
func WithServiceName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.serviceName = name
		}
	}
}

// WithServiceVersion sets service.version on the trace resource.
func WithServiceVersion(version string) Option {
	return func(s *settings) { s.serviceVersion = version }
}

// WithEnvironment sets deployment.environment on the trace resource.
func WithEnvironment(env string) Option {
	return func(s *settings) { s.environment = env }
}

// WithSpanExporter replaces the backend's exporter, typically with a test
// double such as [RecordingExporter]. It has no effect for the none backend.
func WithSpanExporter(exporter sdktrace.SpanExporter) Option {
	return func(s *settings) { s.exporter = exporter }
}

// WithIDGenerator overrides the ID generator. The remote backend defaults to
// [IDGenerator]; the others use the SDK's random generator.
func WithIDGenerator(gen sdktrace.IDGenerator) Option {
	return func(s *settings) { s.idGenerator = gen }
}

// WithSampler overrides the SDK's parent-based always-on sampler.
func WithSampler(sampler sdktrace.Sampler) Option {
	return func(s *settings) { s.sampler = sampler }
}

// WithBatchTimeout sets how long the batch processor waits before exporting
// a partial batch.
func WithBatchTimeout(d time.Duration) Option {
	return func(s *settings) { s.batchTimeout = d }
}

// WithStdoutWriter redirects the stdout backend.
func WithStdoutWriter(w io.Writer) Option {
	return func(s *settings) { s.stdout = w }
}

// WithEventHandler sets a custom event handler for internal operational events.
func WithEventHandler(handler EventHandler) Option {
	return func(s *settings) { s.eventHandler = handler }
}

// WithLogger sets the logger for internal operational events.
// It is a shorthand for WithEventHandler(DefaultEventHandler(logger)).
func WithLogger(logger *slog.Logger) Option {
	return WithEventHandler(DefaultEventHandler(logger))
}
