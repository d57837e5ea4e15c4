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

package metrics

import (
	"io"
	"log/slog"
	"net/http"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	// DefaultServiceName is used for the metrics resource when no name is set.
	DefaultServiceName = "unknown_service"

	// DefaultMaxCustomMetrics bounds how many distinct instruments a recorder
	// creates.
	DefaultMaxCustomMetrics = 1000
)

// Option defines functional options for [New] and [Install].
type Option func(*settings)

type settings struct {
	eventHandler   EventHandler
	serviceName    string
	serviceVersion string
	environment    string
	maxMetrics     int
	exporter       sdkmetric.Exporter
	stdoutWriter   io.Writer
	httpClient     *http.Client
}

func newSettings(opts []Option) *settings {
	s := &settings{
		serviceName: DefaultServiceName,
		maxMetrics:  DefaultMaxCustomMetrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithServiceName sets service.name on the metrics resource.
func WithServiceName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.serviceName = name
		}
	}
}

// WithServiceVersion sets service.version on the metrics resource.
func WithServiceVersion(version string) Option {
	return func(s *settings) { s.serviceVersion = version }
}

// WithEnvironment sets deployment.environment on the metrics resource.
func WithEnvironment(env string) Option {
	return func(s *settings) { s.environment = env }
}

// WithMaxCustomMetrics sets the maximum number of distinct instruments.
func WithMaxCustomMetrics(maxLimit int) Option {
	return func(s *settings) {
		if maxLimit > 0 {
			s.maxMetrics = maxLimit
		}
	}
}

// WithMetricExporter replaces the exporter of the otlp and stdout backends.
// Tests use it with an in-memory exporter.
func WithMetricExporter(exporter sdkmetric.Exporter) Option {
	return func(s *settings) { s.exporter = exporter }
}

// WithStdoutWriter redirects the stdout backend to w.
func WithStdoutWriter(w io.Writer) Option {
	return func(s *settings) { s.stdoutWriter = w }
}

// WithHTTPClient sets the client used for Pushgateway requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithEventHandler sets a custom [EventHandler] for internal operational events.
//
// Example:
//
//	metrics.Install(ctx, cfg, metrics.WithEventHandler(func(e metrics.Event) {
//	    if e.Type == metrics.EventWarning {
//	        pushFailures.Add(1)
//	    }
//	}))
func WithEventHandler(handler EventHandler) Option {
	return func(s *settings) { s.eventHandler = handler }
}

// WithLogger sets the logger for internal operational events using the default event handler.
func WithLogger(logger *slog.Logger) Option {
	return WithEventHandler(DefaultEventHandler(logger))
}
