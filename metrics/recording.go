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
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// metricNameRegex accepts names that are valid for every backend: a letter
// followed by letters, digits, underscores, dots and hyphens.
var metricNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)

const maxMetricNameLength = 255

// ErrInvalidMetricName is returned for names the backends cannot represent.
var ErrInvalidMetricName = errors.New("invalid metric name")

// limitError is returned when the instrument limit is reached.
type limitError struct {
	metricName string
	limit      int
}

func (e *limitError) Error() string {
	return fmt.Sprintf("metrics limit reached: cannot create %q (limit: %d)", e.metricName, e.limit)
}

func validateMetricName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidMetricName)
	case len(name) > maxMetricNameLength:
		return fmt.Errorf("%w: %d characters (max %d)", ErrInvalidMetricName, len(name), maxMetricNameLength)
	case strings.HasPrefix(name, "__"):
		return fmt.Errorf("%w: %q uses the reserved prefix \"__\"", ErrInvalidMetricName, name)
	case !metricNameRegex.MatchString(name):
		return fmt.Errorf("%w: %q", ErrInvalidMetricName, name)
	}
	return nil
}

// sink is one backend behind a [Recorder].
type sink interface {
	addCounter(ctx context.Context, name string, value int64, attrs []attribute.KeyValue) error
	setGauge(ctx context.Context, name string, value float64, attrs []attribute.KeyValue) error
	recordHistogram(ctx context.Context, name string, value float64, attrs []attribute.KeyValue) error
	flush(ctx context.Context) error
	drain(ctx context.Context) error
}

// IncrementCounter increments the counter name by 1.
//
// Example:
//
//	err := recorder.IncrementCounter(ctx, "orders_placed",
//	    attribute.String("region", "eu"))
func (r *Recorder) IncrementCounter(ctx context.Context, name string, attributes ...attribute.KeyValue) error {
	return r.AddCounter(ctx, name, 1, attributes...)
}

// AddCounter adds value to the counter name. Negative values are rejected.
func (r *Recorder) AddCounter(ctx context.Context, name string, value int64, attributes ...attribute.KeyValue) error {
	if value < 0 {
		return fmt.Errorf("add counter %q: negative increment %d", name, value)
	}
	if err := r.sink.addCounter(ctx, name, value, attributes); err != nil {
		return fmt.Errorf("add counter %q: %w", name, err)
	}
	return nil
}

// SetGauge sets the gauge name to value.
func (r *Recorder) SetGauge(ctx context.Context, name string, value float64, attributes ...attribute.KeyValue) error {
	if err := r.sink.setGauge(ctx, name, value, attributes); err != nil {
		return fmt.Errorf("set gauge %q: %w", name, err)
	}
	return nil
}

// RecordHistogram records value in the histogram name.
func (r *Recorder) RecordHistogram(ctx context.Context, name string, value float64, attributes ...attribute.KeyValue) error {
	if err := r.sink.recordHistogram(ctx, name, value, attributes); err != nil {
		return fmt.Errorf("record histogram %q: %w", name, err)
	}
	return nil
}

// Flush exports buffered updates now. The backend keeps running.
func (r *Recorder) Flush(ctx context.Context) error {
	if r.pusher != nil {
		return r.pusher.push(ctx)
	}
	return r.sink.flush(ctx)
}

// noopSink discards every update.
type noopSink struct{}

func (noopSink) addCounter(context.Context, string, int64, []attribute.KeyValue) error { return nil }
func (noopSink) setGauge(context.Context, string, float64, []attribute.KeyValue) error { return nil }
func (noopSink) recordHistogram(context.Context, string, float64, []attribute.KeyValue) error { return nil }
func (noopSink) flush(context.Context) error { return nil }
func (noopSink) drain(context.Context) error { return nil }

// otelSink records through an OpenTelemetry meter. Instruments are created on
// first use and cached by name.
type otelSink struct {
	provider *sdkmetric.MeterProvider
	meter    metric.Meter
	// pushReader is false for pull readers, which have nothing to push on drain.
	pushReader bool

	mu         sync.RWMutex
	counters   map[string]metric.Int64Counter
	gauges     map[string]metric.Float64Gauge
	histograms map[string]metric.Float64Histogram
	count      int
	maxMetrics int
}

func newOTelSink(provider *sdkmetric.MeterProvider, pushReader bool, maxMetrics int) *otelSink {
	return &otelSink{
		provider:   provider,
		meter:      provider.Meter(InstrumentationName),
		pushReader: pushReader,
		counters:   make(map[string]metric.Int64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
		histograms: make(map[string]metric.Float64Histogram),
		maxMetrics: maxMetrics,
	}
}

func (s *otelSink) addCounter(ctx context.Context, name string, value int64, attrs []attribute.KeyValue) error {
	c, err := getOrCreate(s, s.counters, name, func() (metric.Int64Counter, error) {
		return s.meter.Int64Counter(name)
	})
	if err != nil {
		return err
	}
	c.Add(ctx, value, metric.WithAttributes(attrs...))
	return nil
}

func (s *otelSink) setGauge(ctx context.Context, name string, value float64, attrs []attribute.KeyValue) error {
	g, err := getOrCreate(s, s.gauges, name, func() (metric.Float64Gauge, error) {
		return s.meter.Float64Gauge(name)
	})
	if err != nil {
		return err
	}
	g.Record(ctx, value, metric.WithAttributes(attrs...))
	return nil
}

func (s *otelSink) recordHistogram(ctx context.Context, name string, value float64, attrs []attribute.KeyValue) error {
	h, err := getOrCreate(s, s.histograms, name, func() (metric.Float64Histogram, error) {
		return s.meter.Float64Histogram(name)
	})
	if err != nil {
		return err
	}
	h.Record(ctx, value, metric.WithAttributes(attrs...))
	return nil
}

func (s *otelSink) flush(ctx context.Context) error {
	return s.provider.ForceFlush(ctx)
}

// drain shuts the provider down, which collects and exports once more for
// push readers. Pull readers keep serving.
func (s *otelSink) drain(ctx context.Context) error {
	if !s.pushReader {
		return nil
	}
	if err := s.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("meter provider shutdown: %w", err)
	}
	return nil
}

// getOrCreate returns the cached instrument for name or creates it.
// Safe for concurrent use.
func getOrCreate[T any](s *otelSink, cache map[string]T, name string, create func() (T, error)) (T, error) {
	// Fast path: read lock
	s.mu.RLock()
	inst, ok := cache[name]
	s.mu.RUnlock()
	if ok {
		return inst, nil
	}

	var zero T
	if err := validateMetricName(name); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if inst, ok := cache[name]; ok {
		return inst, nil
	}
	if s.count >= s.maxMetrics {
		return zero, &limitError{metricName: name, limit: s.maxMetrics}
	}

	inst, err := create()
	if err != nil {
		return zero, err
	}
	cache[name] = inst
	s.count++
	return inst, nil
}
