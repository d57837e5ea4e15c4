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
	"net"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/worldcoin/telemetry-batteries/config"
	"github.com/worldcoin/telemetry-batteries/internal/otelutil"
)

// InstrumentationName is the name of the meter this module records with.
const InstrumentationName = "github.com/worldcoin/telemetry-batteries"

const (
	// DefaultInterval is the push and export interval when none is configured.
	DefaultInterval = 10 * time.Second

	// DefaultPushJob is the Pushgateway job label when none is configured.
	DefaultPushJob = "telemetry"
)

// initPrometheus sets up the OTel Prometheus exporter on a private registry
// and then either binds the scrape endpoint or starts the push loop.
func (r *Recorder) initPrometheus(cfg *config.PrometheusConfig, s *settings) error {
	c := config.PrometheusConfig{Mode: config.PrometheusHTTP, Listen: config.DefaultPrometheusListen}
	if cfg != nil {
		c = *cfg
	}
	if c.Mode == "" {
		c.Mode = config.PrometheusHTTP
	}
	if c.Listen == "" {
		c.Listen = config.DefaultPrometheusListen
	}

	// Create a custom Prometheus registry to avoid conflicts with global registry
	r.registry = promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(r.registry))
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(otelutil.Resource(s.serviceName, s.serviceVersion, s.environment)),
	)
	r.sink = newOTelSink(provider, false, s.maxMetrics)

	if c.Mode == config.PrometheusPush && c.Endpoint == "" {
		r.emitWarning("Prometheus push mode has no endpoint, serving scrape endpoint instead", "listen", c.Listen)
		c.Mode = config.PrometheusHTTP
	}

	if c.Mode == config.PrometheusPush {
		r.pusher = newPushLoop(r.registry, c, s.httpClient, r.emitWarning)
		r.pusher.start()
		r.emitInfo("Prometheus push started", "endpoint", c.Endpoint, "interval", r.pusher.interval)
		return nil
	}

	return r.serve(c.Listen)
}

// serve binds listen and serves the scrape handler on every path.
func (r *Recorder) serve(listen string) error {
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBindFailure, listen, err)
	}

	r.listener = ln
	r.server = &http.Server{
		Handler:           newScrapeHandler(r.registry),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		if err := r.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.emitError("Metrics server error", "error", err)
		}
	}()

	r.emitInfo("Metrics server listening", "address", ln.Addr().String())
	return nil
}

func newScrapeHandler(registry *promclient.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// initOTLP sets up a periodic reader over the OTLP exporter.
func (r *Recorder) initOTLP(ctx context.Context, cfg *config.OTLPConfig, s *settings) error {
	c := otlpDefaults(cfg)

	exporter := s.exporter
	if exporter == nil {
		var err error
		exporter, err = newOTLPExporter(ctx, c)
		if err != nil {
			return err
		}
	}

	r.sink = newOTelSink(newPeriodicProvider(exporter, c.Interval, s), true, s.maxMetrics)
	return nil
}

// initStdout sets up a periodic reader over the stdout exporter. It shares
// the OTLP interval setting.
func (r *Recorder) initStdout(cfg *config.OTLPConfig, s *settings) error {
	c := otlpDefaults(cfg)

	exporter := s.exporter
	if exporter == nil {
		opts := []stdoutmetric.Option{stdoutmetric.WithPrettyPrint()}
		if s.stdoutWriter != nil {
			opts = append(opts, stdoutmetric.WithWriter(s.stdoutWriter))
		}
		var err error
		exporter, err = stdoutmetric.New(opts...)
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
	}

	r.sink = newOTelSink(newPeriodicProvider(exporter, c.Interval, s), true, s.maxMetrics)
	return nil
}

func newPeriodicProvider(exporter sdkmetric.Exporter, interval time.Duration, s *settings) *sdkmetric.MeterProvider {
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(otelutil.Resource(s.serviceName, s.serviceVersion, s.environment)),
	)
}

func otlpDefaults(cfg *config.OTLPConfig) config.OTLPConfig {
	var c config.OTLPConfig
	if cfg != nil {
		c = *cfg
	}
	if c.Protocol == "" {
		c.Protocol = config.ProtocolHTTP
	}
	if c.Endpoint == "" {
		c.Endpoint = config.DefaultOTLPHTTPEndpoint
		if c.Protocol == config.ProtocolGRPC {
			c.Endpoint = config.DefaultOTLPGRPCEndpoint
		}
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	return c
}

// newOTLPExporter creates the OTLP metrics exporter for c. Connections are
// established lazily, so an unreachable collector is not an error here.
func newOTLPExporter(ctx context.Context, c config.OTLPConfig) (sdkmetric.Exporter, error) {
	host, insecure, path, err := otelutil.SplitEndpoint(c.Endpoint)
	if err != nil {
		return nil, err
	}

	if c.Protocol == config.ProtocolGRPC {
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(host)}
		if insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
		}
		return exporter, nil
	}

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(host)}
	if insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if path != "" && path != "/" {
		opts = append(opts, otlpmetrichttp.WithURLPath(path))
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
	}
	return exporter, nil
}

// registerGlobal makes an OTel-backed recorder the global meter provider so
// instrumented libraries report through it.
func (r *Recorder) registerGlobal() {
	if s, ok := r.sink.(*otelSink); ok {
		otel.SetMeterProvider(s.provider)
		r.emitDebug("Setting global OpenTelemetry meter provider", "backend", r.backend)
	}
}
