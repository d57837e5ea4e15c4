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
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"
	"go.opentelemetry.io/otel/attribute"

	"github.com/worldcoin/telemetry-batteries/config"
)

// statsdSink writes one DogStatsD line per update over UDP.
type statsdSink struct {
	client *statsd.Client
}

// initStatsd creates the DogStatsD client. UDP is connectionless, so an
// unreachable server is not an error.
func (r *Recorder) initStatsd(cfg *config.StatsdConfig, _ *settings) error {
	c := statsdDefaults(cfg)

	opts := []statsd.Option{
		statsd.WithoutTelemetry(),
		statsd.WithoutClientSideAggregation(),
		statsd.WithoutOriginDetection(),
		statsd.WithSenderQueueSize(c.QueueSize),
		statsd.WithMaxBytesPerPayload(c.BufferSize),
	}
	if c.Prefix != "" {
		opts = append(opts, statsd.WithNamespace(c.Prefix))
	}

	client, err := statsd.New(c.Addr(), opts...)
	if err != nil {
		return fmt.Errorf("failed to create statsd client for %s: %w", c.Addr(), err)
	}

	r.sink = &statsdSink{client: client}
	r.emitInfo("StatsD client created", "address", c.Addr(), "prefix", c.Prefix)
	return nil
}

func statsdDefaults(cfg *config.StatsdConfig) config.StatsdConfig {
	var c config.StatsdConfig
	if cfg != nil {
		c = *cfg
	}
	if c.Host == "" {
		c.Host = config.DefaultStatsdHost
	}
	if c.Port == 0 {
		c.Port = config.DefaultStatsdPort
	}
	if c.QueueSize <= 0 {
		c.QueueSize = config.DefaultStatsdQueueSize
	}
	if c.BufferSize <= 0 {
		c.BufferSize = config.DefaultStatsdBufferSize
	}
	return c
}

func (s *statsdSink) addCounter(_ context.Context, name string, value int64, attrs []attribute.KeyValue) error {
	if err := validateMetricName(name); err != nil {
		return err
	}
	return s.client.Count(name, value, tags(attrs), 1)
}

func (s *statsdSink) setGauge(_ context.Context, name string, value float64, attrs []attribute.KeyValue) error {
	if err := validateMetricName(name); err != nil {
		return err
	}
	return s.client.Gauge(name, value, tags(attrs), 1)
}

func (s *statsdSink) recordHistogram(_ context.Context, name string, value float64, attrs []attribute.KeyValue) error {
	if err := validateMetricName(name); err != nil {
		return err
	}
	return s.client.Histogram(name, value, tags(attrs), 1)
}

func (s *statsdSink) flush(context.Context) error {
	return s.client.Flush()
}

// drain flushes the client buffer and closes the client.
func (s *statsdSink) drain(context.Context) error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("statsd close: %w", err)
	}
	return nil
}

// tags renders attributes as DogStatsD "key:value" tags.
func tags(attrs []attribute.KeyValue) []string {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]string, len(attrs))
	for i, kv := range attrs {
		out[i] = string(kv.Key) + ":" + kv.Value.Emit()
	}
	return out
}
