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

package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldcoin/telemetry-batteries/config"
	"github.com/worldcoin/telemetry-batteries/internal/state"
)

// Install tests touch process-wide state and must not run in parallel.

func resetInstall(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		if r := global.Swap(nil); r != nil {
			_ = r.Close(context.Background())
		}
		state.Reset()
	})
}

func TestInstall_NoneLeavesSlotFree(t *testing.T) {
	resetInstall(t)

	r, err := Install(context.Background(), config.MetricsConfig{Backend: config.MetricsNone})
	require.NoError(t, err)
	assert.Equal(t, config.MetricsNone, r.Backend())
	assert.False(t, state.Recorder.Taken())
	assert.Nil(t, Installed())
}

func TestInstall_SecondInstallFails(t *testing.T) {
	resetInstall(t)

	ctx := context.Background()
	cfg := config.MetricsConfig{
		Backend:    config.MetricsPrometheus,
		Prometheus: &config.PrometheusConfig{Listen: "127.0.0.1:0"},
	}

	first, err := Install(ctx, cfg)
	require.NoError(t, err)
	assert.Same(t, first, Installed())

	_, err = Install(ctx, cfg)
	require.ErrorIs(t, err, ErrAlreadyInstalled)
	assert.Same(t, first, Installed(), "the first recorder stays installed")
}

func TestInstall_FailureReleasesSlot(t *testing.T) {
	resetInstall(t)

	_, err := Install(context.Background(), config.MetricsConfig{Backend: "graphite"})
	require.Error(t, err)
	assert.False(t, state.Recorder.Taken())
	assert.Nil(t, Installed())
}

func TestFacade_DispatchesToInstalled(t *testing.T) {
	resetInstall(t)

	ctx := context.Background()

	// No recorder yet: the calls are no-ops.
	IncrementCounter(ctx, "early")

	exporter := NewRecordingExporter()
	r, err := Install(ctx, config.MetricsConfig{Backend: config.MetricsStdout},
		WithMetricExporter(exporter))
	require.NoError(t, err)

	IncrementCounter(ctx, "facade_counter")
	AddCounter(ctx, "facade_counter", 2)
	SetGauge(ctx, "facade_gauge", 9)
	RecordHistogram(ctx, "facade_hist", 1)
	RecordHistogram(ctx, "bad name", 1)
	require.NoError(t, r.Flush(ctx))

	c, ok := exporter.Point("facade_counter")
	require.True(t, ok)
	assert.InDelta(t, 3.0, c.Value, 0)
	g, ok := exporter.Point("facade_gauge")
	require.True(t, ok)
	assert.InDelta(t, 9.0, g.Value, 0)
	_, ok = exporter.Point("early")
	assert.False(t, ok)
}
