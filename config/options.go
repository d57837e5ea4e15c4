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

package config

import (
	"log/slog"
	"time"

	"github.com/spf13/cast"
)

// Option sets a value in the explicit tier, which overrides every other tier.
type Option func(*options)

type options struct {
	explicit map[string]any
	// supplied records which metrics sub-configs were passed explicitly.
	supplied   []MetricsBackend
	file       string
	dotenv     []string
	withDotEnv bool
}

func newOptions(opts []Option) *options {
	o := &options{explicit: make(map[string]any)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) set(key, value string) {
	if value == "" {
		return
	}
	setKey(o.explicit, key, value)
}

// WithPreset selects the preset.
func WithPreset(p Preset) Option {
	return func(o *options) { o.set(keyPreset, string(p)) }
}

// WithServiceName sets the service name.
func WithServiceName(name string) Option {
	return func(o *options) { o.set(keyServiceName, name) }
}

// WithServiceVersion sets the service version reported on traces and logs.
func WithServiceVersion(version string) Option {
	return func(o *options) { o.set(keyServiceVersion, version) }
}

// WithEnvironment sets the deployment environment (e.g. "staging").
func WithEnvironment(env string) Option {
	return func(o *options) { o.set(keyEnvironment, env) }
}

// WithLogLevel sets the minimum log level.
func WithLogLevel(l slog.Level) Option {
	return func(o *options) { o.set(keyLogLevel, LevelName(l)) }
}

// WithLogFormat sets the log format.
func WithLogFormat(f LogFormat) Option {
	return func(o *options) { o.set(keyLogFormat, string(f)) }
}

// WithErrorMode sets the error report mode.
func WithErrorMode(m ErrorMode) Option {
	return func(o *options) { o.set(keyErrorMode, string(m)) }
}

// WithShutdownTimeout bounds how long releasing the guard may block.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.set(keyShutdownTimeout, d.String())
		}
	}
}

// WithTracingBackend sets the tracing backend.
func WithTracingBackend(b TracingBackend) Option {
	return func(o *options) { o.set(keyTracingBackend, string(b)) }
}

// WithTracingEndpoint sets the trace export endpoint.
func WithTracingEndpoint(endpoint string) Option {
	return func(o *options) { o.set(keyTracingEndpoint, endpoint) }
}

// WithTracingProtocol sets the protocol of the remote trace exporter:
// the agent intake (default) or OTLP over HTTP or gRPC.
func WithTracingProtocol(p Protocol) Option {
	return func(o *options) { o.set(keyTracingProtocol, string(p)) }
}

// WithLocation toggles source file and line in log records.
func WithLocation(enabled bool) Option {
	return func(o *options) { o.set(keyTracingLocation, cast.ToString(enabled)) }
}

// WithMetricsBackend sets the metrics backend.
func WithMetricsBackend(b MetricsBackend) Option {
	return func(o *options) { o.set(keyMetricsBackend, string(b)) }
}

// WithPrometheus supplies the Prometheus sub-config. Zero fields fall
// through to lower tiers. Supplying it without WithMetricsBackend selects
// the prometheus backend.
func WithPrometheus(c PrometheusConfig) Option {
	return func(o *options) {
		o.supplied = append(o.supplied, MetricsPrometheus)
		o.set(keyPromMode, string(c.Mode))
		o.set(keyPromListen, c.Listen)
		o.set(keyPromEndpoint, c.Endpoint)
		o.set(keyPromJob, c.Job)
		if c.Interval > 0 {
			o.set(keyPromInterval, c.Interval.String())
		}
	}
}

// WithStatsd supplies the StatsD sub-config.
func WithStatsd(c StatsdConfig) Option {
	return func(o *options) {
		o.supplied = append(o.supplied, MetricsStatsd)
		o.set(keyStatsdHost, c.Host)
		o.set(keyStatsdPrefix, c.Prefix)
		if c.Port > 0 {
			o.set(keyStatsdPort, cast.ToString(c.Port))
		}
		if c.QueueSize > 0 {
			o.set(keyStatsdQueueSize, cast.ToString(c.QueueSize))
		}
		if c.BufferSize > 0 {
			o.set(keyStatsdBufferSize, cast.ToString(c.BufferSize))
		}
	}
}

// WithOTLPMetrics supplies the OTLP metrics sub-config.
func WithOTLPMetrics(c OTLPConfig) Option {
	return func(o *options) {
		o.supplied = append(o.supplied, MetricsOTLP)
		o.set(keyOTLPEndpoint, c.Endpoint)
		o.set(keyOTLPProtocol, string(c.Protocol))
		if c.Interval > 0 {
			o.set(keyOTLPInterval, c.Interval.String())
		}
	}
}

// WithFile adds a YAML, TOML or JSON file tier. It takes precedence over
// TELEMETRY_CONFIG_FILE.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithDotEnv reads dotenv files (".env" when none are given) beneath the
// environment snapshot. Variables already in the snapshot win.
func WithDotEnv(paths ...string) Option {
	return func(o *options) {
		o.withDotEnv = true
		o.dotenv = append(o.dotenv, paths...)
	}
}
