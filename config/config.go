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
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"
)

// Preset is a named bundle of defaults for the log format and tracing backend.
type Preset string

const (
	// PresetLocal renders human-readable logs and exports no traces.
	PresetLocal Preset = "local"
	// PresetRemote emits Datadog-correlated JSON logs and exports traces to an agent.
	PresetRemote Preset = "remote"
	// PresetNone installs no log pipeline at all.
	PresetNone Preset = "none"
)

// ParsePreset parses a preset name. "datadog" is accepted as an alias of remote.
func ParsePreset(s string) (Preset, error) {
	switch normalize(s) {
	case "local":
		return PresetLocal, nil
	case "remote", "datadog":
		return PresetRemote, nil
	case "none":
		return PresetNone, nil
	}
	return "", invalidEnum(s)
}

func (p Preset) String() string { return string(p) }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (p *Preset) UnmarshalText(b []byte) error {
	v, err := ParsePreset(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// LogFormat selects the log formatting stage.
type LogFormat string

const (
	LogFormatPretty      LogFormat = "pretty"
	LogFormatJSON        LogFormat = "json"
	LogFormatCompact     LogFormat = "compact"
	LogFormatDatadogJSON LogFormat = "datadog-json"
)

// ParseLogFormat parses a log format name.
func ParseLogFormat(s string) (LogFormat, error) {
	switch normalize(s) {
	case "pretty":
		return LogFormatPretty, nil
	case "json":
		return LogFormatJSON, nil
	case "compact":
		return LogFormatCompact, nil
	case "datadog-json", "datadog_json", "datadog":
		return LogFormatDatadogJSON, nil
	}
	return "", invalidEnum(s)
}

func (f LogFormat) String() string { return string(f) }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (f *LogFormat) UnmarshalText(b []byte) error {
	v, err := ParseLogFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ErrorMode selects how error reports are rendered.
type ErrorMode string

const (
	ErrorModeColor ErrorMode = "color"
	ErrorModeJSON  ErrorMode = "json"
)

// ParseErrorMode parses an error report mode.
func ParseErrorMode(s string) (ErrorMode, error) {
	switch normalize(s) {
	case "color", "colour":
		return ErrorModeColor, nil
	case "json":
		return ErrorModeJSON, nil
	}
	return "", invalidEnum(s)
}

func (m ErrorMode) String() string { return string(m) }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (m *ErrorMode) UnmarshalText(b []byte) error {
	v, err := ParseErrorMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// TracingBackend selects where finished spans are exported.
type TracingBackend string

const (
	TracingNone TracingBackend = "none"
	// TracingRemote exports over OTLP to a collector or Datadog agent.
	TracingRemote TracingBackend = "remote"
	TracingStdout TracingBackend = "stdout"
	TracingZipkin TracingBackend = "zipkin"
)

// ParseTracingBackend parses a tracing backend name.
func ParseTracingBackend(s string) (TracingBackend, error) {
	switch normalize(s) {
	case "none":
		return TracingNone, nil
	case "remote", "datadog", "otlp":
		return TracingRemote, nil
	case "stdout":
		return TracingStdout, nil
	case "zipkin":
		return TracingZipkin, nil
	}
	return "", invalidEnum(s)
}

func (b TracingBackend) String() string { return string(b) }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (b *TracingBackend) UnmarshalText(text []byte) error {
	v, err := ParseTracingBackend(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Protocol is the wire protocol of an exporter. ProtocolAgent is the
// Datadog agent's native trace intake and is valid for tracing only.
type Protocol string

const (
	ProtocolAgent Protocol = "agent"
	ProtocolHTTP  Protocol = "http"
	ProtocolGRPC  Protocol = "grpc"
)

// ParseProtocol parses an exporter protocol name.
func ParseProtocol(s string) (Protocol, error) {
	switch normalize(s) {
	case "agent", "datadog":
		return ProtocolAgent, nil
	case "http", "http/protobuf":
		return ProtocolHTTP, nil
	case "grpc":
		return ProtocolGRPC, nil
	}
	return "", invalidEnum(s)
}

func (p Protocol) String() string { return string(p) }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (p *Protocol) UnmarshalText(b []byte) error {
	v, err := ParseProtocol(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MetricsBackend selects the metrics recorder.
type MetricsBackend string

const (
	MetricsPrometheus MetricsBackend = "prometheus"
	MetricsStatsd     MetricsBackend = "statsd"
	MetricsOTLP       MetricsBackend = "otlp"
	MetricsStdout     MetricsBackend = "stdout"
	MetricsNone       MetricsBackend = "none"
)

// ParseMetricsBackend parses a metrics backend name.
func ParseMetricsBackend(s string) (MetricsBackend, error) {
	switch normalize(s) {
	case "prometheus":
		return MetricsPrometheus, nil
	case "statsd", "dogstatsd":
		return MetricsStatsd, nil
	case "otlp":
		return MetricsOTLP, nil
	case "stdout":
		return MetricsStdout, nil
	case "none":
		return MetricsNone, nil
	}
	return "", invalidEnum(s)
}

func (b MetricsBackend) String() string { return string(b) }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (b *MetricsBackend) UnmarshalText(text []byte) error {
	v, err := ParseMetricsBackend(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// PrometheusMode selects between serving a scrape endpoint and pushing to a gateway.
type PrometheusMode string

const (
	PrometheusHTTP PrometheusMode = "http"
	PrometheusPush PrometheusMode = "push"
)

// ParsePrometheusMode parses a Prometheus exposition mode. "serve" is an alias of http.
func ParsePrometheusMode(s string) (PrometheusMode, error) {
	switch normalize(s) {
	case "http", "serve":
		return PrometheusHTTP, nil
	case "push":
		return PrometheusPush, nil
	}
	return "", invalidEnum(s)
}

func (m PrometheusMode) String() string { return string(m) }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (m *PrometheusMode) UnmarshalText(b []byte) error {
	v, err := ParsePrometheusMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Levels beyond the four slog defines.
const (
	LevelTrace = slog.LevelDebug - 4
	// LevelOff is above every level a record can carry.
	LevelOff = slog.Level(1 << 20)
)

// ParseLevel parses a log level name.
func ParseLevel(s string) (slog.Level, error) {
	switch normalize(s) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "off":
		return LevelOff, nil
	}
	return 0, invalidEnum(s)
}

// LevelName returns the name ParseLevel accepts for l.
func LevelName(l slog.Level) string {
	switch {
	case l >= LevelOff:
		return "off"
	case l <= LevelTrace:
		return "trace"
	case l <= slog.LevelDebug:
		return "debug"
	case l <= slog.LevelInfo:
		return "info"
	case l <= slog.LevelWarn:
		return "warn"
	}
	return "error"
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func invalidEnum(s string) error {
	return fmt.Errorf("%w %q", ErrInvalidEnumValue, s)
}

// TelemetryConfig is the resolved configuration. It is a plain value and is
// never modified after [Resolve] returns it.
type TelemetryConfig struct {
	Preset          Preset        `config:"preset"`
	ServiceName     string        `config:"service_name"`
	ServiceVersion  string        `config:"service_version"`
	Environment     string        `config:"environment"`
	LogLevel        slog.Level    `config:"log_level"`
	LogFormat       LogFormat     `config:"log_format"`
	ErrorMode       ErrorMode     `config:"error_mode"`
	ShutdownTimeout time.Duration `config:"shutdown_timeout"`
	Tracing         TracingConfig `config:"tracing"`
	Metrics         MetricsConfig `config:"metrics"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	Backend  TracingBackend `config:"backend"`
	Endpoint string         `config:"endpoint"`
	Protocol Protocol       `config:"protocol"`
	// Location adds the source file and line to every log record.
	Location bool `config:"location"`
}

// MetricsConfig configures the metrics recorder. Only the sub-config that
// matches Backend is non-nil.
type MetricsConfig struct {
	Backend    MetricsBackend    `config:"backend"`
	Prometheus *PrometheusConfig `config:"prometheus"`
	Statsd     *StatsdConfig     `config:"statsd"`
	OTLP       *OTLPConfig       `config:"otlp"`
}

// PrometheusConfig configures the scrape endpoint or the push loop.
type PrometheusConfig struct {
	Mode     PrometheusMode `config:"mode"`
	Listen   string         `config:"listen"`
	Endpoint string         `config:"endpoint"`
	Interval time.Duration  `config:"interval"`
	Job      string         `config:"job"`
}

// StatsdConfig configures the UDP line-protocol client.
type StatsdConfig struct {
	Host       string `config:"host"`
	Port       int    `config:"port"`
	Prefix     string `config:"prefix"`
	QueueSize  int    `config:"queue_size"`
	BufferSize int    `config:"buffer_size"`
}

// Addr returns host:port.
func (c StatsdConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// OTLPConfig configures the OTLP (and stdout) periodic metrics reader.
type OTLPConfig struct {
	Endpoint string        `config:"endpoint"`
	Protocol Protocol      `config:"protocol"`
	Interval time.Duration `config:"interval"`
}
