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
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldcoin/telemetry-batteries/config"
)

func TestLevelFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		min    slog.Level
		level  slog.Level
		passes bool
	}{
		{"info passes at info", slog.LevelInfo, slog.LevelInfo, true},
		{"error passes at info", slog.LevelInfo, slog.LevelError, true},
		{"debug dropped at info", slog.LevelInfo, slog.LevelDebug, false},
		{"trace passes at trace", config.LevelTrace, config.LevelTrace, true},
		{"error dropped when off", config.LevelOff, slog.LevelError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			spy := &HandlerSpy{}
			f := NewLevelFilter(tt.min, spy)
			assert.Equal(t, tt.passes, f.Enabled(context.Background(), tt.level))

			slog.New(f).Log(context.Background(), tt.level, "msg")
			if tt.passes {
				assert.Equal(t, 1, spy.RecordCount())
			} else {
				assert.Equal(t, 0, spy.RecordCount())
			}
		})
	}
}

func TestLevelFilter_HandleDropsBelowMinimum(t *testing.T) {
	t.Parallel()

	spy := &HandlerSpy{}
	f := NewLevelFilter(slog.LevelWarn, spy)

	require.NoError(t, f.Handle(context.Background(), slog.NewRecord(testTime, slog.LevelInfo, "dropped", 0)))
	require.NoError(t, f.Handle(context.Background(), slog.NewRecord(testTime, slog.LevelWarn, "kept", 0)))

	records := spy.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "kept", records[0].Message)
}

func TestLevelFilter_DynamicLevel(t *testing.T) {
	t.Parallel()

	var lv slog.LevelVar
	lv.Set(slog.LevelError)
	spy := &HandlerSpy{}
	logger := slog.New(NewLevelFilter(&lv, spy))

	logger.Info("before")
	lv.Set(slog.LevelInfo)
	logger.Info("after")

	records := spy.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "after", records[0].Message)
}

func TestLevelFilter_KeepsLevelAcrossDerivedHandlers(t *testing.T) {
	t.Parallel()

	spy := &HandlerSpy{}
	logger := slog.New(NewLevelFilter(slog.LevelWarn, spy)).With("k", "v").WithGroup("g")

	logger.Info("dropped")
	logger.Warn("kept")
	assert.Equal(t, 1, spy.RecordCount())
}

func TestLevelFilter_NilLevelDefaultsToInfo(t *testing.T) {
	t.Parallel()

	f := NewLevelFilter(nil, &HandlerSpy{})
	assert.Equal(t, slog.LevelInfo, f.Level())
}
