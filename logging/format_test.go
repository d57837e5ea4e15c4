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

//go:build !integration

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/worldcoin/telemetry-batteries/config"
)

// spanContext returns a context whose active span has trace ID 42 and
// span ID 255 in their integer forms.
func spanContext(t *testing.T) context.Context {
	t.Helper()

	tid, err := trace.TraceIDFromHex("0000000000000000000000000000002a")
	require.NoError(t, err)
	sid, err := trace.SpanIDFromHex("00000000000000ff")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    tid,
		SpanID:     sid,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &m))
	return m
}

func TestNewFormatHandler_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewFormatHandler(nil, config.LogFormatJSON)
	require.ErrorIs(t, err, ErrNilWriter)

	_, err = NewFormatHandler(&bytes.Buffer{}, config.LogFormat("xml"))
	require.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), `"xml"`)
}

func TestJSONFormat(t *testing.T) {
	t.Parallel()

	logger, buf := NewTestLogger(t, config.LogFormatJSON,
		WithServiceName("orders"),
		WithServiceVersion("1.2.3"),
		WithEnvironment("staging"),
	)
	logger.InfoContext(spanContext(t), "order placed", "order_id", "42")

	m := decodeLine(t, buf)
	assert.Equal(t, "INFO", m["level"])
	assert.Equal(t, "order placed", m["msg"])
	assert.Equal(t, "42", m["order_id"])
	assert.Equal(t, "orders", m["service.name"])
	assert.Equal(t, "1.2.3", m["service.version"])
	assert.Equal(t, "staging", m["deployment.environment"])
	assert.Equal(t, "0000000000000000000000000000002a", m["trace_id"])
	assert.Equal(t, "00000000000000ff", m["span_id"])
}

func TestJSONFormat_NoSpan(t *testing.T) {
	t.Parallel()

	logger, buf := NewTestLogger(t, config.LogFormatJSON)
	logger.Debug("quiet")

	m := decodeLine(t, buf)
	assert.Equal(t, "DEBUG", m["level"])
	assert.NotContains(t, m, "trace_id")
	assert.NotContains(t, m, "span_id")
	assert.NotContains(t, m, "service.name")
}

func TestJSONFormat_TraceLevelName(t *testing.T) {
	t.Parallel()

	logger, buf := NewTestLogger(t, config.LogFormatJSON)
	logger.Log(context.Background(), config.LevelTrace, "very detailed")

	entries, err := ParseJSONLogEntries(buf)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "TRACE", entries[0].Level)
	assert.Equal(t, "very detailed", entries[0].Message)
}

func TestJSONFormat_TraceIDsStayTopLevelInsideGroups(t *testing.T) {
	t.Parallel()

	logger, buf := NewTestLogger(t, config.LogFormatJSON)
	logger.With("a", 1).WithGroup("req").With("b", 2).InfoContext(spanContext(t), "grouped", "c", 3)

	m := decodeLine(t, buf)
	assert.EqualValues(t, 1, m["a"])
	req, ok := m["req"].(map[string]any)
	require.True(t, ok, "req group present")
	assert.EqualValues(t, 2, req["b"])
	assert.EqualValues(t, 3, req["c"])
	assert.NotContains(t, req, "trace_id")
	assert.Equal(t, "0000000000000000000000000000002a", m["trace_id"])
}

func TestJSONFormat_EmptyGroupOmitted(t *testing.T) {
	t.Parallel()

	logger, buf := NewTestLogger(t, config.LogFormatJSON)
	logger.WithGroup("empty").InfoContext(spanContext(t), "no attrs")

	m := decodeLine(t, buf)
	assert.NotContains(t, m, "empty")
	assert.Contains(t, m, "trace_id")
}

func TestDatadogJSONFormat(t *testing.T) {
	t.Parallel()

	logger, buf := NewTestLogger(t, config.LogFormatDatadogJSON,
		WithServiceName("orders"),
		WithServiceVersion("1.2.3"),
		WithEnvironment("prod"),
	)
	logger.WarnContext(spanContext(t), "retrying", "attempt", 2)

	m := decodeLine(t, buf)
	assert.Equal(t, "WARN", m["level"])
	assert.Equal(t, "retrying", m["message"])
	assert.NotContains(t, m, "msg")
	assert.NotContains(t, m, "time")
	assert.Contains(t, m, "timestamp")
	assert.Equal(t, "orders", m["logger"])
	assert.Equal(t, "orders", m["dd.service"])
	assert.Equal(t, "prod", m["dd.env"])
	assert.Equal(t, "1.2.3", m["dd.version"])
	assert.EqualValues(t, 2, m["attempt"])
	assert.Equal(t, "42", m["dd.trace_id"])
	assert.Equal(t, "255", m["dd.span_id"])

	entries, err := ParseJSONLogEntries(buf)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Time.IsZero())
}

func TestDatadogJSONFormat_LoggerName(t *testing.T) {
	t.Parallel()

	logger, buf := NewTestLogger(t, config.LogFormatDatadogJSON,
		WithServiceName("orders"),
		WithLoggerName("orders.worker"),
	)
	logger.Info("tick")

	m := decodeLine(t, buf)
	assert.Equal(t, "orders.worker", m["logger"])
	assert.NotContains(t, m, "dd.trace_id")
}

func TestNewHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := NewHandler(&buf, config.TelemetryConfig{
		ServiceName: "svc",
		LogLevel:    slog.LevelWarn,
		LogFormat:   config.LogFormatJSON,
		Tracing:     config.TracingConfig{Location: true},
	})
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, h.Level())

	logger := slog.New(h)
	logger.Info("filtered")
	logger.Error("kept")

	m := decodeLine(t, &buf)
	assert.Equal(t, "kept", m["msg"])
	assert.Equal(t, "svc", m["service.name"])
	assert.Contains(t, m, "source")
}
