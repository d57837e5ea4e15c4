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

package tracing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/worldcoin/telemetry-batteries/config"
	"github.com/worldcoin/telemetry-batteries/internal/otelutil"
)

// EventType represents the severity of an internal operational event.
type EventType int

const (
	// EventError indicates an error event (e.g., failed to export spans).
	EventError EventType = iota
	// EventWarning indicates a warning event.
	EventWarning
	// EventInfo indicates an informational event (e.g., tracing initialized).
	EventInfo
	// EventDebug indicates a debug event.
	EventDebug
)

// Event represents an internal operational event from the tracing package.
type Event struct {
	Type    EventType
	Message string
	Args    []any // slog-style key-value pairs
}

// EventHandler processes internal operational events from the tracing package.
type EventHandler func(Event)

// DefaultEventHandler returns an EventHandler that logs events to the provided slog.Logger.
// If logger is nil, returns a no-op handler that discards all events.
func DefaultEventHandler(logger *slog.Logger) EventHandler {
	if logger == nil {
		return func(Event) {}
	}
	return func(e Event) {
		switch e.Type {
		case EventError:
			logger.Error(e.Message, e.Args...)
		case EventWarning:
			logger.Warn(e.Message, e.Args...)
		case EventInfo:
			logger.Info(e.Message, e.Args...)
		case EventDebug:
			logger.Debug(e.Message, e.Args...)
		}
	}
}

// InstrumentationName is the name of the tracer this module creates spans with.
const InstrumentationName = "github.com/worldcoin/telemetry-batteries"

// Provider owns the span-export stage: a batching span processor in front of
// the exporter selected by the tracing backend.
//
// A Provider for [config.TracingNone] has no SDK provider; its tracer is a
// no-op and flushing does nothing.
type Provider struct {
	tp           *sdktrace.TracerProvider
	backend      config.TracingBackend
	serviceName  string
	eventHandler EventHandler

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewProvider builds the span-export stage for cfg. The context is used for
// exporter connection setup only.
//
// Errors:
//   - the exporter for the backend could not be created
//   - the backend is unknown
func NewProvider(ctx context.Context, cfg config.TracingConfig, opts ...Option) (*Provider, error) {
	s := newSettings(opts)
	p := &Provider{
		backend:      cfg.Backend,
		serviceName:  s.serviceName,
		eventHandler: s.eventHandler,
	}

	if cfg.Backend == config.TracingNone || cfg.Backend == "" {
		p.emitDebug("Tracing disabled", "backend", config.TracingNone)
		return p, nil
	}

	exporter := s.exporter
	if exporter == nil {
		var err error
		exporter, err = p.newExporter(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
	}

	gen := s.idGenerator
	if gen == nil && cfg.Backend == config.TracingRemote {
		gen = NewIDGenerator()
	}

	batchOpts := []sdktrace.BatchSpanProcessorOption{}
	if s.batchTimeout > 0 {
		batchOpts = append(batchOpts, sdktrace.WithBatchTimeout(s.batchTimeout))
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithBatcher(exporter, batchOpts...),
		sdktrace.WithResource(otelutil.Resource(s.serviceName, s.serviceVersion, s.environment)),
	}
	if gen != nil {
		tpOpts = append(tpOpts, sdktrace.WithIDGenerator(gen))
	}
	if s.sampler != nil {
		tpOpts = append(tpOpts, sdktrace.WithSampler(s.sampler))
	}

	p.tp = sdktrace.NewTracerProvider(tpOpts...)
	p.emitInfo("Tracing initialized", "backend", cfg.Backend, "endpoint", cfg.Endpoint, "service", s.serviceName)

	return p, nil
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p.tp != nil
}

// ServiceName returns service.name as set on the trace resource.
func (p *Provider) ServiceName() string {
	return p.serviceName
}

// Backend returns the configured backend.
func (p *Provider) Backend() config.TracingBackend {
	return p.backend
}

// TracerProvider returns the provider to install globally.
func (p *Provider) TracerProvider() trace.TracerProvider {
	if p.tp == nil {
		return noop.NewTracerProvider()
	}
	return p.tp
}

// Tracer returns a tracer from this provider.
func (p *Provider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return p.TracerProvider().Tracer(name, opts...)
}

// ForceFlush exports every finished span still buffered.
func (p *Provider) ForceFlush(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	if err := p.tp.ForceFlush(ctx); err != nil {
		p.emitError("Error flushing spans", "error", err)
		return fmt.Errorf("tracer provider flush: %w", err)
	}
	return nil
}

// Shutdown flushes buffered spans and stops the exporter. It runs once;
// later calls return the first result.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}

	p.shutdownOnce.Do(func() {
		p.emitDebug("Shutting down tracer provider")
		if err := p.tp.Shutdown(ctx); err != nil {
			p.emitError("Error shutting down tracer provider", "error", err)
			p.shutdownErr = fmt.Errorf("tracer provider shutdown: %w", err)
			return
		}
		p.emitDebug("Tracer provider shut down successfully")
	})

	return p.shutdownErr
}

func (p *Provider) emitError(msg string, args ...any) {
	if p.eventHandler != nil {
		p.eventHandler(Event{Type: EventError, Message: msg, Args: args})
	}
}

func (p *Provider) emitWarning(msg string, args ...any) {
	if p.eventHandler != nil {
		p.eventHandler(Event{Type: EventWarning, Message: msg, Args: args})
	}
}

func (p *Provider) emitInfo(msg string, args ...any) {
	if p.eventHandler != nil {
		p.eventHandler(Event{Type: EventInfo, Message: msg, Args: args})
	}
}

func (p *Provider) emitDebug(msg string, args ...any) {
	if p.eventHandler != nil {
		p.eventHandler(Event{Type: EventDebug, Message: msg, Args: args})
	}
}
