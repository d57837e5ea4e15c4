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
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Dotted keys of every tier. They mirror the `config` struct tags.
const (
	keyPreset          = "preset"
	keyServiceName     = "service_name"
	keyServiceVersion  = "service_version"
	keyEnvironment     = "environment"
	keyLogLevel        = "log_level"
	keyLogFormat       = "log_format"
	keyErrorMode       = "error_mode"
	keyShutdownTimeout = "shutdown_timeout"

	keyTracingBackend  = "tracing.backend"
	keyTracingEndpoint = "tracing.endpoint"
	keyTracingProtocol = "tracing.protocol"
	keyTracingLocation = "tracing.location"

	keyMetricsBackend = "metrics.backend"

	keyPromMode     = "metrics.prometheus.mode"
	keyPromListen   = "metrics.prometheus.listen"
	keyPromEndpoint = "metrics.prometheus.endpoint"
	keyPromInterval = "metrics.prometheus.interval"
	keyPromJob      = "metrics.prometheus.job"

	keyStatsdHost       = "metrics.statsd.host"
	keyStatsdPort       = "metrics.statsd.port"
	keyStatsdPrefix     = "metrics.statsd.prefix"
	keyStatsdQueueSize  = "metrics.statsd.queue_size"
	keyStatsdBufferSize = "metrics.statsd.buffer_size"

	keyOTLPEndpoint = "metrics.otlp.endpoint"
	keyOTLPProtocol = "metrics.otlp.protocol"
	keyOTLPInterval = "metrics.otlp.interval"
)

// Environment variable names.
const (
	EnvPreset          = "TELEMETRY_PRESET"
	EnvServiceName     = "TELEMETRY_SERVICE_NAME"
	EnvServiceVersion  = "TELEMETRY_SERVICE_VERSION"
	EnvEnvironment     = "TELEMETRY_ENVIRONMENT"
	EnvGenericLogLevel = "LOG_LEVEL"
	EnvLogLevel        = "TELEMETRY_LOG_LEVEL"
	EnvLogFormat       = "TELEMETRY_LOG_FORMAT"
	EnvErrorMode       = "TELEMETRY_ERROR_MODE"
	EnvEyreMode        = "TELEMETRY_EYRE_MODE"
	EnvShutdownTimeout = "TELEMETRY_SHUTDOWN_TIMEOUT"
	EnvConfigFile      = "TELEMETRY_CONFIG_FILE"

	EnvTracingBackend  = "TELEMETRY_TRACING_BACKEND"
	EnvTracingEndpoint = "TELEMETRY_TRACING_ENDPOINT"
	EnvTracingProtocol = "TELEMETRY_TRACING_PROTOCOL"
	EnvTracingLocation = "TELEMETRY_TRACING_LOCATION"

	EnvMetricsBackend = "TELEMETRY_METRICS_BACKEND"

	EnvPrometheusMode     = "TELEMETRY_PROMETHEUS_MODE"
	EnvPrometheusListen   = "TELEMETRY_PROMETHEUS_LISTEN"
	EnvPrometheusEndpoint = "TELEMETRY_PROMETHEUS_ENDPOINT"
	EnvPrometheusInterval = "TELEMETRY_PROMETHEUS_INTERVAL"
	EnvPrometheusJob      = "TELEMETRY_PROMETHEUS_JOB"

	EnvStatsdHost   = "TELEMETRY_STATSD_HOST"
	EnvStatsdPort   = "TELEMETRY_STATSD_PORT"
	EnvStatsdPrefix = "TELEMETRY_STATSD_PREFIX"

	EnvOTLPMetricsEndpoint = "TELEMETRY_OTLP_METRICS_ENDPOINT"
	EnvOTLPMetricsProtocol = "TELEMETRY_OTLP_METRICS_PROTOCOL"
	EnvOTLPMetricsInterval = "TELEMETRY_OTLP_METRICS_INTERVAL"
)

// field binds a dotted key to the environment variables that can set it
// (first match wins) and to the parser that canonicalizes its text.
type field struct {
	key   string
	env   []string
	parse func(string) (string, error)
}

var fields = []field{
	{keyPreset, []string{EnvPreset}, enum(ParsePreset)},
	{keyServiceName, []string{EnvServiceName}, text},
	{keyServiceVersion, []string{EnvServiceVersion}, text},
	{keyEnvironment, []string{EnvEnvironment}, text},
	{keyLogLevel, []string{EnvGenericLogLevel, EnvLogLevel}, level},
	{keyLogFormat, []string{EnvLogFormat}, enum(ParseLogFormat)},
	{keyErrorMode, []string{EnvErrorMode, EnvEyreMode}, enum(ParseErrorMode)},
	{keyShutdownTimeout, []string{EnvShutdownTimeout}, duration},

	{keyTracingBackend, []string{EnvTracingBackend}, enum(ParseTracingBackend)},
	{keyTracingEndpoint, []string{EnvTracingEndpoint}, text},
	{keyTracingProtocol, []string{EnvTracingProtocol}, enum(ParseProtocol)},
	{keyTracingLocation, []string{EnvTracingLocation}, boolean},

	{keyMetricsBackend, []string{EnvMetricsBackend}, enum(ParseMetricsBackend)},

	{keyPromMode, []string{EnvPrometheusMode}, enum(ParsePrometheusMode)},
	{keyPromListen, []string{EnvPrometheusListen}, address},
	{keyPromEndpoint, []string{EnvPrometheusEndpoint}, text},
	{keyPromInterval, []string{EnvPrometheusInterval}, duration},
	{keyPromJob, []string{EnvPrometheusJob}, text},

	{keyStatsdHost, []string{EnvStatsdHost}, text},
	{keyStatsdPort, []string{EnvStatsdPort}, port},
	{keyStatsdPrefix, []string{EnvStatsdPrefix}, text},
	{keyStatsdQueueSize, nil, positive},
	{keyStatsdBufferSize, nil, positive},

	{keyOTLPEndpoint, []string{EnvOTLPMetricsEndpoint}, text},
	{keyOTLPProtocol, []string{EnvOTLPMetricsProtocol}, enum(ParseProtocol)},
	{keyOTLPInterval, []string{EnvOTLPMetricsInterval}, duration},
}

var fieldsByKey = func() map[string]field {
	m := make(map[string]field, len(fields))
	for _, f := range fields {
		m[f.key] = f
	}
	return m
}()

func enum[T fmt.Stringer](parse func(string) (T, error)) func(string) (string, error) {
	return func(s string) (string, error) {
		v, err := parse(s)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	}
}

func text(s string) (string, error) {
	return strings.TrimSpace(s), nil
}

func level(s string) (string, error) {
	l, err := ParseLevel(s)
	if err != nil {
		return "", err
	}
	return LevelName(l), nil
}

func boolean(s string) (string, error) {
	b, err := cast.ToBoolE(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, s)
	}
	return cast.ToString(b), nil
}

// duration accepts a bare integer as seconds or a Go duration string.
func duration(s string) (string, error) {
	s = strings.TrimSpace(s)
	if n, err := cast.ToInt64E(s); err == nil {
		if n <= 0 {
			return "", fmt.Errorf("%w: duration %q must be positive", ErrInvalidValue, s)
		}
		return (time.Duration(n) * time.Second).String(), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return "", fmt.Errorf("%w: %q is not a positive duration", ErrInvalidValue, s)
	}
	return d.String(), nil
}

func port(s string) (string, error) {
	n, err := cast.ToIntE(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return "", fmt.Errorf("%w: %q is not a port", ErrInvalidValue, s)
	}
	return cast.ToString(n), nil
}

func positive(s string) (string, error) {
	n, err := cast.ToIntE(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return "", fmt.Errorf("%w: %q is not a positive integer", ErrInvalidValue, s)
	}
	return cast.ToString(n), nil
}

func address(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, _, err := net.SplitHostPort(s); err != nil {
		return "", fmt.Errorf("%w: %q is not a host:port address", ErrInvalidValue, s)
	}
	return s, nil
}
