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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
		name string
	}{
		{"trace", LevelTrace, "trace"},
		{"DEBUG", slog.LevelDebug, "debug"},
		{"info", slog.LevelInfo, "info"},
		{"warning", slog.LevelWarn, "warn"},
		{"warn", slog.LevelWarn, "warn"},
		{" error ", slog.LevelError, "error"},
		{"off", LevelOff, "off"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, LevelName(got))
		})
	}

	_, err := ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidEnumValue)
}

func TestParseEnums(t *testing.T) {
	t.Parallel()

	p, err := ParsePreset("datadog")
	require.NoError(t, err)
	assert.Equal(t, PresetRemote, p)

	_, err = ParsePreset("otel")
	assert.ErrorIs(t, err, ErrInvalidEnumValue)

	f, err := ParseLogFormat("Datadog-JSON")
	require.NoError(t, err)
	assert.Equal(t, LogFormatDatadogJSON, f)

	m, err := ParsePrometheusMode("serve")
	require.NoError(t, err)
	assert.Equal(t, PrometheusHTTP, m)

	b, err := ParseMetricsBackend("dogstatsd")
	require.NoError(t, err)
	assert.Equal(t, MetricsStatsd, b)

	proto, err := ParseProtocol("http/protobuf")
	require.NoError(t, err)
	assert.Equal(t, ProtocolHTTP, proto)

	proto, err = ParseProtocol("Datadog")
	require.NoError(t, err)
	assert.Equal(t, ProtocolAgent, proto)

	var mode ErrorMode
	require.NoError(t, mode.UnmarshalText([]byte("JSON")))
	assert.Equal(t, ErrorModeJSON, mode)
	assert.Error(t, mode.UnmarshalText([]byte("html")))
	assert.Equal(t, ErrorModeJSON, mode, "a failed unmarshal leaves the value untouched")
}
