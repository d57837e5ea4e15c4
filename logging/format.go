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

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/fatih/color"

	"github.com/worldcoin/telemetry-batteries/config"
	"github.com/worldcoin/telemetry-batteries/telemetry/semconv"
)

// Option configures a formatting stage.
type Option func(*handlerConfig)

type handlerConfig struct {
	addSource      bool
	colorize       *bool
	serviceName    string
	serviceVersion string
	environment    string
	loggerName     string
}

func newHandlerConfig(opts []Option) *handlerConfig {
	c := &handlerConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithSource includes the source file and line of the log call.
func WithSource(enabled bool) Option {
	return func(c *handlerConfig) { c.addSource = enabled }
}

// WithColor forces colored output on or off for the pretty and compact
// formats. By default pretty output is colored when stdout is a terminal and
// compact output is plain.
func WithColor(enabled bool) Option {
	return func(c *handlerConfig) { c.colorize = &enabled }
}

// WithServiceName adds the service name to JSON formats.
func WithServiceName(name string) Option {
	return func(c *handlerConfig) { c.serviceName = name }
}

// WithServiceVersion adds the service version to JSON formats.
func WithServiceVersion(version string) Option {
	return func(c *handlerConfig) { c.serviceVersion = version }
}

// WithEnvironment adds the deployment environment to JSON formats.
func WithEnvironment(env string) Option {
	return func(c *handlerConfig) { c.environment = env }
}

// WithLoggerName sets the "logger" field of datadog-json records.
// It defaults to the service name.
func WithLoggerName(name string) Option {
	return func(c *handlerConfig) { c.loggerName = name }
}

// acceptAll lets every record through to the formatter; level decisions
// belong to the [LevelFilter].
const acceptAll = slog.Level(math.MinInt)

// NewFormatHandler returns the formatting stage for format, writing to w.
//
// Errors:
//   - [ErrNilWriter]: w is nil
//   - [ErrUnknownFormat]: format has no formatting stage
func NewFormatHandler(w io.Writer, format config.LogFormat, opts ...Option) (slog.Handler, error) {
	if w == nil {
		return nil, ErrNilWriter
	}
	c := newHandlerConfig(opts)

	switch format {
	case config.LogFormatPretty:
		colorize := !color.NoColor
		if c.colorize != nil {
			colorize = *c.colorize
		}
		return newTextHandler(w, stylePretty, c.addSource, colorize), nil

	case config.LogFormatCompact:
		colorize := false
		if c.colorize != nil {
			colorize = *c.colorize
		}
		return newTextHandler(w, styleCompact, c.addSource, colorize), nil

	case config.LogFormatJSON:
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   c.addSource,
			Level:       acceptAll,
			ReplaceAttr: replaceLevel,
		})
		return newCorrelationHandler(h.WithAttrs(c.serviceAttrs()), hexTraceFields), nil

	case config.LogFormatDatadogJSON:
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   c.addSource,
			Level:       acceptAll,
			ReplaceAttr: replaceDatadog,
		})
		return newCorrelationHandler(h.WithAttrs(c.datadogAttrs()), datadogTraceFields), nil
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
}

// NewHandler builds the complete log pipeline for cfg: a [LevelFilter] at
// cfg.LogLevel in front of the formatting stage for cfg.LogFormat.
// Source locations follow cfg.Tracing.Location.
func NewHandler(w io.Writer, cfg config.TelemetryConfig, opts ...Option) (*LevelFilter, error) {
	base := []Option{
		WithSource(cfg.Tracing.Location),
		WithServiceName(cfg.ServiceName),
		WithServiceVersion(cfg.ServiceVersion),
		WithEnvironment(cfg.Environment),
	}
	format, err := NewFormatHandler(w, cfg.LogFormat, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return NewLevelFilter(cfg.LogLevel, format), nil
}

func (c *handlerConfig) serviceAttrs() []slog.Attr {
	var attrs []slog.Attr
	if c.serviceName != "" {
		attrs = append(attrs, slog.String(semconv.ServiceName, c.serviceName))
	}
	if c.serviceVersion != "" {
		attrs = append(attrs, slog.String(semconv.ServiceVersion, c.serviceVersion))
	}
	if c.environment != "" {
		attrs = append(attrs, slog.String(semconv.DeploymentEnviron, c.environment))
	}
	return attrs
}

func (c *handlerConfig) datadogAttrs() []slog.Attr {
	var attrs []slog.Attr
	name := c.loggerName
	if name == "" {
		name = c.serviceName
	}
	if name != "" {
		attrs = append(attrs, slog.String(semconv.Logger, name))
	}
	if c.serviceName != "" {
		attrs = append(attrs, slog.String(semconv.DatadogService, c.serviceName))
	}
	if c.environment != "" {
		attrs = append(attrs, slog.String(semconv.DatadogEnv, c.environment))
	}
	if c.serviceVersion != "" {
		attrs = append(attrs, slog.String(semconv.DatadogVersion, c.serviceVersion))
	}
	return attrs
}

// replaceLevel renders the built-in level with the names used across the
// module, including TRACE.
func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelLabel(l))
		}
	}
	return a
}

// replaceDatadog renames the built-in fields to the Datadog reserved
// attributes: timestamp, level and message.
func replaceDatadog(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		if a.Value.Kind() == slog.KindTime {
			return slog.String(semconv.Timestamp, a.Value.Time().UTC().Format(time.RFC3339Nano))
		}
	case slog.LevelKey:
		return replaceLevel(groups, a)
	case slog.MessageKey:
		a.Key = semconv.Message
	}
	return a
}
