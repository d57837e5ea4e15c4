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

package telemetry

import (
	"io"
	"os"

	"github.com/worldcoin/telemetry-batteries/config"
	"github.com/worldcoin/telemetry-batteries/logging"
	"github.com/worldcoin/telemetry-batteries/metrics"
	"github.com/worldcoin/telemetry-batteries/tracing"
)

// Option configures [InstallPipeline], [Init] and [InitWithConfig].
type Option func(*settings)

type settings struct {
	writer         io.Writer
	configOptions  []config.Option
	loggingOptions []logging.Option
	tracingOptions []tracing.Option
	metricsOptions []metrics.Option
}

func newSettings(opts []Option) *settings {
	s := &settings{writer: os.Stdout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithWriter sets where log records are written. Default: os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.writer = w
		}
	}
}

// WithConfigOptions passes options to [config.FromEnv]. Only [Init] resolves
// the configuration; InitWithConfig ignores them.
func WithConfigOptions(opts ...config.Option) Option {
	return func(s *settings) {
		s.configOptions = append(s.configOptions, opts...)
	}
}

// WithLoggingOptions passes options to the log pipeline.
func WithLoggingOptions(opts ...logging.Option) Option {
	return func(s *settings) {
		s.loggingOptions = append(s.loggingOptions, opts...)
	}
}

// WithTracingOptions passes options to the span-export stage, e.g.
// tracing.WithSpanExporter to substitute a test double.
func WithTracingOptions(opts ...tracing.Option) Option {
	return func(s *settings) {
		s.tracingOptions = append(s.tracingOptions, opts...)
	}
}

// WithMetricsOptions passes options to the metrics recorder.
func WithMetricsOptions(opts ...metrics.Option) Option {
	return func(s *settings) {
		s.metricsOptions = append(s.metricsOptions, opts...)
	}
}
