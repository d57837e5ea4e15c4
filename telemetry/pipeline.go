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

package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/worldcoin/telemetry-batteries/config"
	"github.com/worldcoin/telemetry-batteries/internal/state"
	"github.com/worldcoin/telemetry-batteries/logging"
	"github.com/worldcoin/telemetry-batteries/tracing"
)

// Pipeline is the installed log and trace pipeline: the level filter and
// formatting stages behind slog.Default, and the span-export stage behind
// the global OpenTelemetry tracer provider.
type Pipeline struct {
	handler  slog.Handler
	logger   *slog.Logger
	provider *tracing.Provider
}

// InstallPipeline builds the pipeline for cfg and installs it process-wide.
// ids supplies trace and span IDs for the remote backend; nil selects
// [tracing.NewIDGenerator].
//
// The none preset installs no log handler; slog.Default is left as is.
//
// Errors:
//   - [ErrAlreadyInstalled]: a pipeline was installed before
//   - the log format is unknown or the span exporter could not be created;
//     nothing global has been changed and the slot is free again
func InstallPipeline(ctx context.Context, cfg config.TelemetryConfig, ids sdktrace.IDGenerator, opts ...Option) (*Pipeline, error) {
	if err := state.Subscriber.Acquire(); err != nil {
		return nil, err
	}

	p, err := buildPipeline(ctx, cfg, ids, newSettings(opts))
	if err != nil {
		state.Subscriber.Release()
		return nil, err
	}

	p.install()
	return p, nil
}

// buildPipeline constructs every stage without touching global state.
func buildPipeline(ctx context.Context, cfg config.TelemetryConfig, ids sdktrace.IDGenerator, s *settings) (*Pipeline, error) {
	p := &Pipeline{logger: slog.Default()}

	if cfg.Preset != config.PresetNone {
		h, err := logging.NewHandler(s.writer, cfg, s.loggingOptions...)
		if err != nil {
			return nil, fmt.Errorf("log pipeline: %w", err)
		}
		p.handler = h
		p.logger = slog.New(h)
	}

	tracingOpts := []tracing.Option{
		tracing.WithServiceName(cfg.ServiceName),
		tracing.WithServiceVersion(cfg.ServiceVersion),
		tracing.WithEnvironment(cfg.Environment),
		tracing.WithLogger(p.logger),
	}
	if ids != nil && cfg.Tracing.Backend == config.TracingRemote {
		tracingOpts = append(tracingOpts, tracing.WithIDGenerator(ids))
	}

	provider, err := tracing.NewProvider(ctx, cfg.Tracing, append(tracingOpts, s.tracingOptions...)...)
	if err != nil {
		return nil, fmt.Errorf("span exporter: %w", err)
	}
	p.provider = provider

	return p, nil
}

func (p *Pipeline) install() {
	if p.handler != nil {
		slog.SetDefault(p.logger)
	}
	if p.provider.Enabled() {
		otel.SetTracerProvider(p.provider.TracerProvider())
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetErrorHandler(&errorHandler{logger: p.logger})
}

// Logger returns the logger writing through the pipeline.
func (p *Pipeline) Logger() *slog.Logger {
	return p.logger
}

// Handler returns the pipeline's slog handler, or nil for the none preset.
func (p *Pipeline) Handler() slog.Handler {
	return p.handler
}

// Provider returns the span-export stage.
func (p *Pipeline) Provider() *tracing.Provider {
	return p.provider
}

// Tracer returns a tracer from the pipeline's provider.
func (p *Pipeline) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return p.provider.Tracer(name, opts...)
}

// errorHandler logs OpenTelemetry errors at warn level. It logs one error
// at a time: an error raised while another is being logged, whether by the
// log pipeline itself or by a concurrent exporter, is counted instead of
// logged, so a failing log export cannot recurse. The count is reported
// after the error being logged, or with the next one when it arrives after
// that report.
type errorHandler struct {
	logger     *slog.Logger
	active     atomic.Bool
	suppressed atomic.Int64
}

func (h *errorHandler) Handle(err error) {
	if err == nil {
		return
	}
	if !h.active.CompareAndSwap(false, true) {
		h.suppressed.Add(1)
		return
	}
	defer h.active.Store(false)

	h.logger.Warn("OpenTelemetry error", "error", err)
	if n := h.suppressed.Swap(0); n > 0 {
		h.logger.Warn("OpenTelemetry errors suppressed while logging", "count", n)
	}
}
