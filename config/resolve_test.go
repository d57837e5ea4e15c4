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
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Resolve(Environment{})
	require.NoError(t, err)

	assert.Equal(t, PresetLocal, cfg.Preset)
	assert.Equal(t, LogFormatPretty, cfg.LogFormat)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, ErrorModeColor, cfg.ErrorMode)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, TracingNone, cfg.Tracing.Backend)
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.False(t, cfg.Tracing.Location)
	assert.Equal(t, MetricsNone, cfg.Metrics.Backend)
	assert.Nil(t, cfg.Metrics.Prometheus)
	assert.Nil(t, cfg.Metrics.Statsd)
	assert.Nil(t, cfg.Metrics.OTLP)
}

func TestResolve_RemotePreset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		preset string
	}{
		{"remote", "remote"},
		{"datadog alias", "datadog"},
		{"mixed case", " Remote "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Resolve(Environment{
				EnvPreset:      tt.preset,
				EnvServiceName: "billing",
			})
			require.NoError(t, err)

			assert.Equal(t, PresetRemote, cfg.Preset)
			assert.Equal(t, "billing", cfg.ServiceName)
			assert.Equal(t, LogFormatDatadogJSON, cfg.LogFormat)
			assert.Equal(t, TracingRemote, cfg.Tracing.Backend)
			assert.Equal(t, DefaultRemoteEndpoint, cfg.Tracing.Endpoint)
		})
	}
}

func TestResolve_RemoteRequiresServiceName(t *testing.T) {
	t.Parallel()

	_, err := Resolve(Environment{EnvPreset: "remote"})
	require.ErrorIs(t, err, ErrMissingServiceName)

	_, err = Resolve(Environment{}, WithPreset(PresetRemote), WithServiceName("   "))
	require.ErrorIs(t, err, ErrMissingServiceName)
}

func TestResolve_NonePreset(t *testing.T) {
	t.Parallel()

	cfg, err := Resolve(Environment{EnvPreset: "none"})
	require.NoError(t, err)
	assert.Equal(t, PresetNone, cfg.Preset)
	assert.Equal(t, TracingNone, cfg.Tracing.Backend)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat, "none has no format default, the fallback applies")
}

func TestResolve_InvalidEnumValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env   string
		value string
	}{
		{EnvPreset, "otel"},
		{EnvLogFormat, "xml"},
		{EnvGenericLogLevel, "verbose"},
		{EnvErrorMode, "plain"},
		{EnvTracingBackend, "jaeger"},
		{EnvMetricsBackend, "graphite"},
		{EnvPrometheusMode, "pull"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()

			_, err := Resolve(Environment{tt.env: tt.value})
			require.ErrorIs(t, err, ErrInvalidEnumValue)

			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "env", cfgErr.Source)
			assert.Equal(t, tt.env, cfgErr.Field)
			assert.Equal(t, tt.value, cfgErr.Value)
		})
	}
}

func TestResolve_InvalidValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env   string
		value string
	}{
		{EnvStatsdPort, "eighty"},
		{EnvStatsdPort, "70000"},
		{EnvPrometheusInterval, "-3"},
		{EnvPrometheusInterval, "soon"},
		{EnvPrometheusListen, "9090"},
		{EnvTracingLocation, "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.env+"="+tt.value, func(t *testing.T) {
			t.Parallel()

			_, err := Resolve(Environment{tt.env: tt.value})
			require.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestResolve_InvalidExplicitOption(t *testing.T) {
	t.Parallel()

	_, err := Resolve(Environment{}, WithPreset(Preset("otel")))
	require.ErrorIs(t, err, ErrInvalidEnumValue)

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "option", cfgErr.Source)
}

func TestResolve_TierPrecedence(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "telemetry.yaml")
	require.NoError(t, os.WriteFile(file, []byte("log_format: compact\nservice_name: from-file\n"), 0o600))

	tests := []struct {
		name string
		env  Environment
		opts []Option
		want LogFormat
	}{
		{"fallback", Environment{EnvPreset: "none"}, nil, LogFormatJSON},
		{"preset beats fallback", Environment{}, nil, LogFormatPretty},
		{"file beats preset", Environment{}, []Option{WithFile(file)}, LogFormatCompact},
		{"env beats file", Environment{EnvLogFormat: "json"}, []Option{WithFile(file)}, LogFormatJSON},
		{
			"explicit beats env",
			Environment{EnvLogFormat: "json"},
			[]Option{WithFile(file), WithLogFormat(LogFormatDatadogJSON)},
			LogFormatDatadogJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Resolve(tt.env, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.LogFormat)
		})
	}
}

func TestResolve_FieldsResolveIndependently(t *testing.T) {
	t.Parallel()

	cfg, err := Resolve(
		Environment{EnvServiceName: "from-env", EnvLogFormat: "compact"},
		WithPreset(PresetRemote),
	)
	require.NoError(t, err)

	assert.Equal(t, PresetRemote, cfg.Preset)
	assert.Equal(t, "from-env", cfg.ServiceName)
	assert.Equal(t, LogFormatCompact, cfg.LogFormat)
	assert.Equal(t, TracingRemote, cfg.Tracing.Backend, "untouched fields keep the preset default")
}

func TestResolve_ExplicitZeroValuesOverride(t *testing.T) {
	t.Parallel()

	cfg, err := Resolve(
		Environment{EnvTracingLocation: "true", EnvLogLevel: "debug"},
		WithLocation(false),
		WithLogLevel(slog.LevelInfo),
	)
	require.NoError(t, err)
	assert.False(t, cfg.Tracing.Location)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestResolve_LogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  Environment
		want slog.Level
	}{
		{"telemetry var", Environment{EnvLogLevel: "warn"}, slog.LevelWarn},
		{"generic var wins", Environment{EnvGenericLogLevel: "error", EnvLogLevel: "debug"}, slog.LevelError},
		{"trace", Environment{EnvLogLevel: "TRACE"}, LevelTrace},
		{"off", Environment{EnvLogLevel: "off"}, LevelOff},
		{"blank generic falls through", Environment{EnvGenericLogLevel: " ", EnvLogLevel: "debug"}, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Resolve(tt.env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.LogLevel)
		})
	}
}

func TestResolve_ErrorMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  Environment
		want ErrorMode
	}{
		{"default", Environment{}, ErrorModeColor},
		{"error mode var", Environment{EnvErrorMode: "json"}, ErrorModeJSON},
		{"eyre mode var", Environment{EnvEyreMode: "json"}, ErrorModeJSON},
		{"error mode var wins", Environment{EnvErrorMode: "color", EnvEyreMode: "json"}, ErrorModeColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Resolve(tt.env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.ErrorMode)
		})
	}
}

func TestResolve_Prometheus(t *testing.T) {
	t.Parallel()

	t.Run("env defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := Resolve(Environment{EnvMetricsBackend: "prometheus", EnvServiceName: "api"})
		require.NoError(t, err)
		require.NotNil(t, cfg.Metrics.Prometheus)
		assert.Equal(t, PrometheusHTTP, cfg.Metrics.Prometheus.Mode)
		assert.Equal(t, DefaultPrometheusListen, cfg.Metrics.Prometheus.Listen)
		assert.Equal(t, 10*time.Second, cfg.Metrics.Prometheus.Interval)
		assert.Equal(t, "api", cfg.Metrics.Prometheus.Job)
		assert.Nil(t, cfg.Metrics.Statsd)
	})

	t.Run("push interval in seconds", func(t *testing.T) {
		t.Parallel()

		cfg, err := Resolve(Environment{
			EnvMetricsBackend:     "prometheus",
			EnvPrometheusMode:     "push",
			EnvPrometheusEndpoint: "http://gateway:9091",
			EnvPrometheusInterval: "15",
		})
		require.NoError(t, err)
		require.NotNil(t, cfg.Metrics.Prometheus)
		assert.Equal(t, PrometheusPush, cfg.Metrics.Prometheus.Mode)
		assert.Equal(t, "http://gateway:9091", cfg.Metrics.Prometheus.Endpoint)
		assert.Equal(t, 15*time.Second, cfg.Metrics.Prometheus.Interval)
		assert.Equal(t, "telemetry", cfg.Metrics.Prometheus.Job)
	})

	t.Run("serve alias and duration", func(t *testing.T) {
		t.Parallel()

		cfg, err := Resolve(Environment{
			EnvMetricsBackend:     "prometheus",
			EnvPrometheusMode:     "serve",
			EnvPrometheusInterval: "2m",
		})
		require.NoError(t, err)
		assert.Equal(t, PrometheusHTTP, cfg.Metrics.Prometheus.Mode)
		assert.Equal(t, 2*time.Minute, cfg.Metrics.Prometheus.Interval)
	})

	t.Run("explicit sub-config selects backend", func(t *testing.T) {
		t.Parallel()

		cfg, err := Resolve(Environment{EnvMetricsBackend: "statsd"}, WithPrometheus(PrometheusConfig{Listen: "127.0.0.1:0"}))
		require.NoError(t, err)
		assert.Equal(t, MetricsPrometheus, cfg.Metrics.Backend)
		require.NotNil(t, cfg.Metrics.Prometheus)
		assert.Equal(t, "127.0.0.1:0", cfg.Metrics.Prometheus.Listen)
		assert.Equal(t, PrometheusHTTP, cfg.Metrics.Prometheus.Mode)
		assert.Nil(t, cfg.Metrics.Statsd)
	})
}

func TestResolve_Statsd(t *testing.T) {
	t.Parallel()

	cfg, err := Resolve(Environment{
		EnvMetricsBackend: "statsd",
		EnvStatsdHost:     "dogstatsd",
		EnvStatsdPort:     "9125",
		EnvStatsdPrefix:   "billing",
	})
	require.NoError(t, err)
	require.NotNil(t, cfg.Metrics.Statsd)
	assert.Equal(t, StatsdConfig{
		Host:       "dogstatsd",
		Port:       9125,
		Prefix:     "billing",
		QueueSize:  DefaultStatsdQueueSize,
		BufferSize: DefaultStatsdBufferSize,
	}, *cfg.Metrics.Statsd)
	assert.Equal(t, "dogstatsd:9125", cfg.Metrics.Statsd.Addr())
	assert.Nil(t, cfg.Metrics.Prometheus)
}

func TestResolve_TracingProtocol(t *testing.T) {
	t.Parallel()

	cfg, err := Resolve(Environment{}, WithPreset(PresetRemote), WithServiceName("api"))
	require.NoError(t, err)
	assert.Equal(t, ProtocolAgent, cfg.Tracing.Protocol)
	assert.Equal(t, DefaultRemoteEndpoint, cfg.Tracing.Endpoint)

	cfg, err = Resolve(Environment{EnvTracingProtocol: "grpc"}, WithPreset(PresetRemote), WithServiceName("api"))
	require.NoError(t, err)
	assert.Equal(t, ProtocolGRPC, cfg.Tracing.Protocol)
	assert.Equal(t, DefaultOTLPGRPCEndpoint, cfg.Tracing.Endpoint)

	cfg, err = Resolve(Environment{EnvTracingProtocol: "http"}, WithPreset(PresetRemote), WithServiceName("api"))
	require.NoError(t, err)
	assert.Equal(t, DefaultOTLPHTTPEndpoint, cfg.Tracing.Endpoint)

	cfg, err = Resolve(Environment{EnvTracingProtocol: "http", EnvTracingEndpoint: "http://collector:4318"},
		WithPreset(PresetRemote), WithServiceName("api"))
	require.NoError(t, err)
	assert.Equal(t, "http://collector:4318", cfg.Tracing.Endpoint)
}

func TestResolve_AgentProtocolRejectedForMetrics(t *testing.T) {
	t.Parallel()

	_, err := Resolve(Environment{EnvMetricsBackend: "otlp", EnvOTLPMetricsProtocol: "agent"})
	require.ErrorIs(t, err, ErrInvalidValue)

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, keyOTLPProtocol, cfgErr.Field)
}

func TestResolve_OTLPMetrics(t *testing.T) {
	t.Parallel()

	cfg, err := Resolve(Environment{EnvMetricsBackend: "otlp", EnvOTLPMetricsProtocol: "grpc"})
	require.NoError(t, err)
	require.NotNil(t, cfg.Metrics.OTLP)
	assert.Equal(t, DefaultOTLPGRPCEndpoint, cfg.Metrics.OTLP.Endpoint)
	assert.Equal(t, ProtocolGRPC, cfg.Metrics.OTLP.Protocol)

	cfg, err = Resolve(Environment{}, WithMetricsBackend(MetricsStdout), WithOTLPMetrics(OTLPConfig{Interval: time.Second}))
	require.NoError(t, err)
	require.NotNil(t, cfg.Metrics.OTLP)
	assert.Equal(t, time.Second, cfg.Metrics.OTLP.Interval)
}

func TestResolve_ConflictingMetricsBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
	}{
		{"backend does not match", []Option{WithMetricsBackend(MetricsStatsd), WithPrometheus(PrometheusConfig{})}},
		{"backend none", []Option{WithMetricsBackend(MetricsNone), WithStatsd(StatsdConfig{Prefix: "x"})}},
		{"two sub-configs", []Option{WithPrometheus(PrometheusConfig{}), WithStatsd(StatsdConfig{})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Resolve(Environment{}, tt.opts...)
			require.ErrorIs(t, err, ErrConflictingMetricsBackend)
		})
	}
}

func TestResolve_TracingEndpointDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Resolve(Environment{EnvTracingBackend: "zipkin"})
	require.NoError(t, err)
	assert.Equal(t, DefaultZipkinEndpoint, cfg.Tracing.Endpoint)

	cfg, err = Resolve(Environment{EnvTracingBackend: "remote", EnvTracingEndpoint: "http://agent:4318"})
	require.NoError(t, err)
	assert.Equal(t, "http://agent:4318", cfg.Tracing.Endpoint)
}

func TestResolve_FileTier(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "telemetry.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
preset = "remote"
service_name = "ledger"
unknown_key = "ignored"

[tracing]
endpoint = "http://agent:8126"
location = true

[metrics]
backend = "statsd"

[metrics.statsd]
port = 8200
`), 0o600))

	cfg, err := Resolve(Environment{EnvConfigFile: file})
	require.NoError(t, err)

	assert.Equal(t, PresetRemote, cfg.Preset)
	assert.Equal(t, "ledger", cfg.ServiceName)
	assert.Equal(t, "http://agent:8126", cfg.Tracing.Endpoint)
	assert.True(t, cfg.Tracing.Location)
	require.NotNil(t, cfg.Metrics.Statsd)
	assert.Equal(t, 8200, cfg.Metrics.Statsd.Port)
	assert.Equal(t, DefaultStatsdHost, cfg.Metrics.Statsd.Host)
}

func TestResolve_FileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Resolve(Environment{}, WithFile(filepath.Join(dir, "telemetry.ini")))
	require.ErrorIs(t, err, ErrUnsupportedFileFormat)

	_, err = Resolve(Environment{}, WithFile(filepath.Join(dir, "missing.yaml")))
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "file", cfgErr.Source)
	assert.Equal(t, "load", cfgErr.Operation)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"log_format":"xml"}`), 0o600))
	_, err = Resolve(Environment{}, WithFile(bad))
	require.ErrorIs(t, err, ErrInvalidEnumValue)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "log_format", cfgErr.Field)
}

func TestResolve_DotEnv(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "app.env")
	require.NoError(t, os.WriteFile(file, []byte("TELEMETRY_PRESET=remote\nTELEMETRY_SERVICE_NAME=dotenv\n"), 0o600))

	cfg, err := Resolve(Environment{EnvServiceName: "snapshot"}, WithDotEnv(file))
	require.NoError(t, err)
	assert.Equal(t, PresetRemote, cfg.Preset)
	assert.Equal(t, "snapshot", cfg.ServiceName, "the snapshot wins over dotenv values")

	_, err = Resolve(Environment{}, WithDotEnv(filepath.Join(t.TempDir(), "missing.env")))
	require.Error(t, err)
}

func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()

	env := Environment{EnvPreset: "remote", EnvServiceName: "svc", EnvMetricsBackend: "prometheus"}
	first, err := Resolve(env)
	require.NoError(t, err)
	second, err := Resolve(env)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	err := &Error{Source: "env", Field: EnvLogFormat, Operation: "parse", Value: "xml", Err: ErrInvalidEnumValue}
	assert.Equal(t, `config error in env.TELEMETRY_LOG_FORMAT during parse: invalid enum value (got "xml")`, err.Error())
	assert.True(t, errors.Is(err, ErrInvalidEnumValue))

	err = NewError("dotenv", "load", errors.New("boom"))
	assert.Equal(t, "config error in dotenv during load: boom", err.Error())

	err = &Error{Source: "env", Field: EnvPreset, Operation: "parse", Value: "otel", Err: invalidEnum("otel")}
	assert.Equal(t, `config error in env.TELEMETRY_PRESET during parse: invalid enum value "otel"`, err.Error())

	err = NewValueError("file", "statsd.port", "decode", "abc", ErrInvalidValue)
	assert.Equal(t, `config error in file.statsd.port during decode: invalid value (got "abc")`, err.Error())
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestTelemetryConfig_Validate(t *testing.T) {
	t.Parallel()

	resolved, err := Resolve(Environment{EnvMetricsBackend: "statsd"})
	require.NoError(t, err)
	require.NoError(t, resolved.Validate())

	err = TelemetryConfig{Preset: PresetRemote}.Validate()
	require.ErrorIs(t, err, ErrMissingServiceName)

	err = TelemetryConfig{
		Preset:  PresetLocal,
		Metrics: MetricsConfig{Backend: MetricsPrometheus, Statsd: &StatsdConfig{Host: "localhost"}},
	}.Validate()
	require.ErrorIs(t, err, ErrConflictingMetricsBackend)

	err = TelemetryConfig{
		Preset:  PresetLocal,
		Metrics: MetricsConfig{Backend: MetricsStdout, OTLP: &OTLPConfig{Interval: time.Second}},
	}.Validate()
	require.NoError(t, err)
}
