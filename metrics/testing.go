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
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/worldcoin/telemetry-batteries/config"
)

// Point is one exported data point. For histograms Value is the sum of the
// recorded values and Count the number of recordings.
type Point struct {
	Name       string
	Value      float64
	Count      uint64
	Attributes attribute.Set
}

// RecordingExporter is an in-memory metric exporter for tests. It keeps the
// points of the most recent export.
type RecordingExporter struct {
	mu        sync.Mutex
	points    []Point
	exports   int
	shutdowns int
}

var _ sdkmetric.Exporter = (*RecordingExporter)(nil)

// NewRecordingExporter returns an empty RecordingExporter.
func NewRecordingExporter() *RecordingExporter {
	return &RecordingExporter{}
}

// Temporality implements [sdkmetric.Exporter].
func (e *RecordingExporter) Temporality(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(kind)
}

// Aggregation implements [sdkmetric.Exporter].
func (e *RecordingExporter) Aggregation(kind sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(kind)
}

// Export implements [sdkmetric.Exporter]. The points are copied out because
// the SDK reuses rm after Export returns.
func (e *RecordingExporter) Export(_ context.Context, rm *metricdata.ResourceMetrics) error {
	var points []Point
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					points = append(points, Point{Name: m.Name, Value: float64(dp.Value), Attributes: dp.Attributes})
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					points = append(points, Point{Name: m.Name, Value: dp.Value, Attributes: dp.Attributes})
				}
			case metricdata.Gauge[float64]:
				for _, dp := range data.DataPoints {
					points = append(points, Point{Name: m.Name, Value: dp.Value, Attributes: dp.Attributes})
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					points = append(points, Point{Name: m.Name, Value: dp.Sum, Count: dp.Count, Attributes: dp.Attributes})
				}
			}
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.exports++
	e.points = points
	return nil
}

// ForceFlush implements [sdkmetric.Exporter].
func (e *RecordingExporter) ForceFlush(context.Context) error {
	return nil
}

// Shutdown implements [sdkmetric.Exporter].
func (e *RecordingExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdowns++
	return nil
}

// Points returns the points of the most recent export.
func (e *RecordingExporter) Points() []Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Point(nil), e.points...)
}

// Point returns the first point named name from the most recent export.
func (e *RecordingExporter) Point(name string) (Point, bool) {
	for _, p := range e.Points() {
		if p.Name == name {
			return p, true
		}
	}
	return Point{}, false
}

// Exports returns the number of Export calls.
func (e *RecordingExporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}

// Shutdowns returns the number of Shutdown calls.
func (e *RecordingExporter) Shutdowns() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shutdowns
}

// TestingRecorder creates a [Recorder] whose updates go to a
// [RecordingExporter]. The periodic reader is effectively idle; call
// [Recorder.Flush] to export. The recorder is closed on test cleanup.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    recorder, exporter := metrics.TestingRecorder(t)
//	    _ = recorder.IncrementCounter(ctx, "jobs")
//	    require.NoError(t, recorder.Flush(ctx))
//	    p, _ := exporter.Point("jobs")
//	    assert.Equal(t, 1.0, p.Value)
//	}
func TestingRecorder(t testing.TB, opts ...Option) (*Recorder, *RecordingExporter) {
	t.Helper()

	exporter := NewRecordingExporter()
	defaultOpts := []Option{
		WithServiceName("test-service"),
		WithMetricExporter(exporter),
	}

	recorder, err := New(context.Background(), config.MetricsConfig{
		Backend: config.MetricsStdout,
		OTLP:    &config.OTLPConfig{Interval: time.Hour},
	}, append(defaultOpts, opts...)...)
	if err != nil {
		t.Fatalf("TestingRecorder: failed to create recorder: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := recorder.Close(ctx); err != nil {
			t.Logf("TestingRecorder: shutdown warning: %v", err)
		}
	})

	return recorder, exporter
}
