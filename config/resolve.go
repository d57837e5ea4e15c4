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
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"github.com/worldcoin/telemetry-batteries/config/source"
)

// Defaults applied when no tier sets a value.
const (
	DefaultPreset            = PresetLocal
	DefaultRemoteEndpoint    = "http://localhost:8126"
	DefaultZipkinEndpoint    = "http://localhost:9411/api/v2/spans"
	DefaultPrometheusListen  = "0.0.0.0:9090"
	DefaultStatsdHost        = "localhost"
	DefaultStatsdPort        = 8125
	DefaultStatsdQueueSize   = 5000
	DefaultStatsdBufferSize  = 1024
	DefaultOTLPHTTPEndpoint  = "http://localhost:4318"
	DefaultOTLPGRPCEndpoint  = "http://localhost:4317"
	defaultPrometheusJob     = "telemetry"
	defaultIntervalText      = "10s"
	defaultShutdownTimeout   = "5s"
	defaultLevelText         = "info"
	defaultFallbackLogFormat = LogFormatJSON
)

// FromEnv resolves configuration from the process environment.
func FromEnv(opts ...Option) (TelemetryConfig, error) {
	return Resolve(OSEnvironment(), opts...)
}

// Resolve merges the configuration tiers into a TelemetryConfig. For every
// field the highest tier that sets it wins:
//
//	explicit options > environment > config file > preset defaults > fallback
//
// Resolve reads nothing but env, the options and any files they name.
func Resolve(env Environment, opts ...Option) (TelemetryConfig, error) {
	o := newOptions(opts)

	if o.withDotEnv {
		vars, err := source.NewDotEnv(o.dotenv...).Load(context.Background())
		if err != nil {
			return TelemetryConfig{}, NewError("dotenv", "load", err)
		}
		env = env.withFallback(vars)
	}

	explicit, err := validateLayer("option", o.explicit)
	if err != nil {
		return TelemetryConfig{}, err
	}
	if err = inferMetricsBackend(explicit, o.supplied); err != nil {
		return TelemetryConfig{}, err
	}

	envLayer, err := envTier(env)
	if err != nil {
		return TelemetryConfig{}, err
	}

	path := o.file
	if path == "" {
		path, _ = env.Lookup(EnvConfigFile)
	}
	fileLayer, err := fileTier(path)
	if err != nil {
		return TelemetryConfig{}, err
	}

	// The preset decides which defaults tier applies, so it is resolved first.
	head, err := merge(fallbackTier(), fileLayer, envLayer, explicit)
	if err != nil {
		return TelemetryConfig{}, err
	}
	preset, err := ParsePreset(cast.ToString(lookupKey(head, keyPreset)))
	if err != nil {
		return TelemetryConfig{}, NewFieldError("resolve", keyPreset, "parse", err)
	}

	merged, err := merge(fallbackTier(), presetTier(preset), fileLayer, envLayer, explicit)
	if err != nil {
		return TelemetryConfig{}, err
	}

	cfg, err := decode(merged)
	if err != nil {
		return TelemetryConfig{}, err
	}

	finalize(&cfg)

	if err = check(cfg, o.supplied); err != nil {
		return TelemetryConfig{}, err
	}

	return cfg, nil
}

// fallbackTier returns the hard-coded defaults. A fresh map is built on every
// call because merging shares nested maps with the destination.
func fallbackTier() map[string]any {
	t := make(map[string]any)
	setKey(t, keyPreset, string(DefaultPreset))
	setKey(t, keyLogLevel, defaultLevelText)
	setKey(t, keyLogFormat, string(defaultFallbackLogFormat))
	setKey(t, keyErrorMode, string(ErrorModeColor))
	setKey(t, keyShutdownTimeout, defaultShutdownTimeout)
	setKey(t, keyTracingBackend, string(TracingNone))
	setKey(t, keyTracingProtocol, string(ProtocolAgent))
	setKey(t, keyTracingLocation, "false")
	setKey(t, keyMetricsBackend, string(MetricsNone))
	setKey(t, keyPromMode, string(PrometheusHTTP))
	setKey(t, keyPromListen, DefaultPrometheusListen)
	setKey(t, keyPromInterval, defaultIntervalText)
	setKey(t, keyStatsdHost, DefaultStatsdHost)
	setKey(t, keyStatsdPort, cast.ToString(DefaultStatsdPort))
	setKey(t, keyStatsdQueueSize, cast.ToString(DefaultStatsdQueueSize))
	setKey(t, keyStatsdBufferSize, cast.ToString(DefaultStatsdBufferSize))
	setKey(t, keyOTLPProtocol, string(ProtocolHTTP))
	setKey(t, keyOTLPInterval, defaultIntervalText)
	return t
}

func presetTier(p Preset) map[string]any {
	t := make(map[string]any)
	switch p {
	case PresetLocal:
		setKey(t, keyLogFormat, string(LogFormatPretty))
		setKey(t, keyTracingBackend, string(TracingNone))
	case PresetRemote:
		setKey(t, keyLogFormat, string(LogFormatDatadogJSON))
		setKey(t, keyTracingBackend, string(TracingRemote))
	case PresetNone:
		setKey(t, keyTracingBackend, string(TracingNone))
	}
	return t
}

func envTier(env Environment) (map[string]any, error) {
	t := make(map[string]any)
	for _, f := range fields {
		for _, name := range f.env {
			raw, ok := env.Lookup(name)
			if !ok {
				continue
			}
			v, err := f.parse(raw)
			if err != nil {
				return nil, NewValueError("env", name, "parse", raw, err)
			}
			setKey(t, f.key, v)
			break
		}
	}
	return t, nil
}

func fileTier(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	file, err := source.NewFileFromPath(path)
	if err != nil {
		return nil, &Error{Source: "file", Field: path, Operation: "load", Err: fmt.Errorf("%w: %w", ErrUnsupportedFileFormat, err)}
	}
	tree, err := file.Load(context.Background())
	if err != nil {
		return nil, &Error{Source: "file", Field: path, Operation: "load", Err: err}
	}
	return validateLayer("file", normalizeMapKeys(tree))
}

// validateLayer canonicalizes every known key of layer through its parser
// and drops keys that name no field.
func validateLayer(src string, layer map[string]any) (map[string]any, error) {
	out := make(map[string]any)
	for key, value := range flatten("", layer) {
		f, ok := fieldsByKey[key]
		if !ok {
			continue
		}
		raw, err := cast.ToStringE(value)
		if err != nil {
			return nil, &Error{Source: src, Field: key, Operation: "parse", Err: fmt.Errorf("%w: %w", ErrInvalidValue, err)}
		}
		v, err := f.parse(raw)
		if err != nil {
			return nil, NewValueError(src, key, "parse", raw, err)
		}
		setKey(out, key, v)
	}
	return out, nil
}

func inferMetricsBackend(explicit map[string]any, supplied []MetricsBackend) error {
	switch {
	case len(supplied) > 1:
		return &Error{
			Source:    "option",
			Field:     keyMetricsBackend,
			Operation: "validate",
			Err:       fmt.Errorf("%w: %d sub-configs supplied", ErrConflictingMetricsBackend, len(supplied)),
		}
	case len(supplied) == 1 && lookupKey(explicit, keyMetricsBackend) == nil:
		setKey(explicit, keyMetricsBackend, string(supplied[0]))
	}
	return nil
}

func merge(layers ...map[string]any) (map[string]any, error) {
	merged := make(map[string]any)
	for i, layer := range layers {
		if err := mergo.Map(&merged, layer, mergo.WithOverride); err != nil {
			return nil, NewError(fmt.Sprintf("tier[%d]", i), "merge", err)
		}
	}
	return merged, nil
}

var levelType = reflect.TypeOf(slog.Level(0))

// levelHook decodes level names, including trace and off, which
// slog.Level's own text unmarshaler does not know.
func levelHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != levelType {
		return data, nil
	}
	return ParseLevel(data.(string))
}

func decode(values map[string]any) (TelemetryConfig, error) {
	var cfg TelemetryConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		WeaklyTypedInput: true,
		Result:           &cfg,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.DecodeHookFuncType(levelHook),
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return TelemetryConfig{}, NewError("resolve", "decode", fmt.Errorf("failed to create decoder: %w", err))
	}
	if err = decoder.Decode(values); err != nil {
		return TelemetryConfig{}, NewError("resolve", "decode", fmt.Errorf("failed to decode configuration: %w", err))
	}
	return cfg, nil
}

// finalize fills defaults that depend on other resolved fields and drops
// the metrics sub-configs that do not match the backend.
func finalize(cfg *TelemetryConfig) {
	if cfg.Tracing.Endpoint == "" {
		switch cfg.Tracing.Backend {
		case TracingRemote:
			switch cfg.Tracing.Protocol {
			case ProtocolHTTP:
				cfg.Tracing.Endpoint = DefaultOTLPHTTPEndpoint
			case ProtocolGRPC:
				cfg.Tracing.Endpoint = DefaultOTLPGRPCEndpoint
			default:
				cfg.Tracing.Endpoint = DefaultRemoteEndpoint
			}
		case TracingZipkin:
			cfg.Tracing.Endpoint = DefaultZipkinEndpoint
		}
	}

	m := &cfg.Metrics
	if m.Prometheus != nil && m.Prometheus.Job == "" {
		m.Prometheus.Job = cfg.ServiceName
		if m.Prometheus.Job == "" {
			m.Prometheus.Job = defaultPrometheusJob
		}
	}
	if m.OTLP != nil && m.OTLP.Endpoint == "" {
		m.OTLP.Endpoint = DefaultOTLPHTTPEndpoint
		if m.OTLP.Protocol == ProtocolGRPC {
			m.OTLP.Endpoint = DefaultOTLPGRPCEndpoint
		}
	}

	if m.Backend != MetricsPrometheus {
		m.Prometheus = nil
	}
	if m.Backend != MetricsStatsd {
		m.Statsd = nil
	}
	// The stdout exporter shares the periodic reader settings.
	if m.Backend != MetricsOTLP && m.Backend != MetricsStdout {
		m.OTLP = nil
	}
}

// Validate checks the invariants Resolve guarantees. It is meant for
// configs built by hand rather than resolved.
func (c TelemetryConfig) Validate() error {
	if err := check(c, nil); err != nil {
		return err
	}
	m := c.Metrics
	mismatched := (m.Prometheus != nil && m.Backend != MetricsPrometheus) ||
		(m.Statsd != nil && m.Backend != MetricsStatsd) ||
		(m.OTLP != nil && m.Backend != MetricsOTLP && m.Backend != MetricsStdout)
	if mismatched {
		return &Error{
			Source:    "config",
			Field:     keyMetricsBackend,
			Operation: "validate",
			Value:     string(m.Backend),
			Err:       ErrConflictingMetricsBackend,
		}
	}
	return nil
}

func check(cfg TelemetryConfig, supplied []MetricsBackend) error {
	if cfg.Preset == PresetRemote && strings.TrimSpace(cfg.ServiceName) == "" {
		return NewFieldError("resolve", keyServiceName, "validate", ErrMissingServiceName)
	}
	if len(supplied) == 1 && !slices.Contains(compatibleBackends(supplied[0]), cfg.Metrics.Backend) {
		return &Error{
			Source:    "option",
			Field:     keyMetricsBackend,
			Operation: "validate",
			Value:     string(cfg.Metrics.Backend),
			Err:       fmt.Errorf("%w: %s sub-config supplied", ErrConflictingMetricsBackend, supplied[0]),
		}
	}
	if cfg.Metrics.OTLP != nil && cfg.Metrics.OTLP.Protocol == ProtocolAgent {
		return NewValueError("resolve", keyOTLPProtocol, "validate", string(ProtocolAgent),
			fmt.Errorf("%w: the agent protocol carries traces only", ErrInvalidValue))
	}
	return nil
}

func compatibleBackends(sub MetricsBackend) []MetricsBackend {
	if sub == MetricsOTLP {
		return []MetricsBackend{MetricsOTLP, MetricsStdout}
	}
	return []MetricsBackend{sub}
}

func setKey(m map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

func lookupKey(m map[string]any, key string) any {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			return nil
		}
		m = next
	}
	return m[parts[len(parts)-1]]
}

// flatten turns a nested tree into dotted keys.
func flatten(prefix string, tree map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = v
	}
	return out
}

// normalizeMapKeys recursively converts all map keys to lowercase and
// dashes to underscores.
func normalizeMapKeys(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	normalized := make(map[string]any, len(m))
	for k, v := range m {
		key := strings.ReplaceAll(strings.ToLower(k), "-", "_")
		if nested, ok := v.(map[string]any); ok {
			normalized[key] = normalizeMapKeys(nested)
		} else {
			normalized[key] = v
		}
	}
	return normalized
}
