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
	"log/slog"
	"net"
	"net/http"
	"sync"

	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/worldcoin/telemetry-batteries/config"
	"github.com/worldcoin/telemetry-batteries/internal/state"
)

// EventType represents the severity of an internal operational event.
type EventType int

const (
	// EventError indicates an error event (e.g., failed to shut down the exporter).
	EventError EventType = iota
	// EventWarning indicates a warning event (e.g., a failed push that will be retried).
	EventWarning
	// EventInfo indicates an informational event (e.g., scrape endpoint listening).
	EventInfo
	// EventDebug indicates a debug event.
	EventDebug
)

// Event represents an internal operational event from the metrics package.
type Event struct {
	Type    EventType
	Message string
	Args    []any // slog-style key-value pairs
}

// EventHandler processes internal operational events from the metrics package.
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

var (
	// ErrAlreadyInstalled is returned by [Install] when a recorder is
	// already installed in this process.
	ErrAlreadyInstalled = state.ErrAlreadyInstalled

	// ErrBindFailure is returned when the scrape endpoint cannot listen on
	// its configured address.
	ErrBindFailure = errors.New("metrics endpoint bind failure")
)

// Recorder routes metric updates to one backend. All methods are safe for
// concurrent use.
type Recorder struct {
	backend      config.MetricsBackend
	sink         sink
	eventHandler EventHandler

	registry *promclient.Registry
	listener net.Listener
	server   *http.Server
	pusher   *pushLoop

	drainOnce sync.Once
	drainErr  error
	closeOnce sync.Once
	closeErr  error
}

// New builds a recorder for cfg without installing it process-wide.
// The context is used for exporter connection setup only.
//
// Errors:
//   - [ErrBindFailure]: the scrape address could not be bound
//   - the exporter or client for the backend could not be created
//   - the backend is unknown
func New(ctx context.Context, cfg config.MetricsConfig, opts ...Option) (*Recorder, error) {
	s := newSettings(opts)
	r := &Recorder{
		backend:      cfg.Backend,
		eventHandler: s.eventHandler,
	}

	var err error
	switch cfg.Backend {
	case config.MetricsNone, "":
		r.backend = config.MetricsNone
		r.sink = noopSink{}
	case config.MetricsPrometheus:
		err = r.initPrometheus(cfg.Prometheus, s)
	case config.MetricsStatsd:
		err = r.initStatsd(cfg.Statsd, s)
	case config.MetricsOTLP:
		err = r.initOTLP(ctx, cfg.OTLP, s)
	case config.MetricsStdout:
		err = r.initStdout(cfg.OTLP, s)
	default:
		err = fmt.Errorf("unsupported metrics backend: %s", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	r.emitDebug("Metrics recorder initialized", "backend", r.backend)
	return r, nil
}

// Install builds a recorder for cfg and makes it the target of the
// package-level functions. The none backend returns a no-op recorder and
// leaves the slot free.
//
// Errors:
//   - [ErrAlreadyInstalled]: a recorder is already installed
//   - any error from [New]; the slot is released again
func Install(ctx context.Context, cfg config.MetricsConfig, opts ...Option) (*Recorder, error) {
	if cfg.Backend == config.MetricsNone || cfg.Backend == "" {
		return New(ctx, cfg, opts...)
	}

	if err := state.Recorder.Acquire(); err != nil {
		return nil, err
	}

	r, err := New(ctx, cfg, opts...)
	if err != nil {
		state.Recorder.Release()
		return nil, err
	}

	r.registerGlobal()
	global.Store(r)
	return r, nil
}

// Backend returns the backend the recorder writes to.
func (r *Recorder) Backend() config.MetricsBackend {
	return r.backend
}

// Addr returns the bound scrape address, or "" when the recorder does not
// serve a scrape endpoint.
func (r *Recorder) Addr() string {
	if r.listener == nil {
		return ""
	}
	return r.listener.Addr().String()
}

// Handler returns the scrape handler for the prometheus backend, for
// mounting on an existing server. It is nil for other backends.
func (r *Recorder) Handler() http.Handler {
	if r.registry == nil {
		return nil
	}
	return newScrapeHandler(r.registry)
}

// Drain flushes everything the backend buffers: the final push for push
// mode, the StatsD client buffer, and the OTLP or stdout reader. A scrape
// endpoint keeps serving. Drain runs once; later calls return the first
// result.
func (r *Recorder) Drain(ctx context.Context) error {
	r.drainOnce.Do(func() {
		var errs []error
		if r.pusher != nil {
			if err := r.pusher.stop(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if err := r.sink.drain(ctx); err != nil {
			errs = append(errs, err)
		}
		r.drainErr = errors.Join(errs...)
		if r.drainErr != nil {
			r.emitError("Error draining metrics", "backend", r.backend, "error", r.drainErr)
		}
	})
	return r.drainErr
}

// Close drains the recorder and then stops the scrape endpoint.
func (r *Recorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		errs := []error{r.Drain(ctx)}
		if s, ok := r.sink.(*otelSink); ok && !s.pushReader {
			if err := s.provider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
			}
		}
		if r.server != nil {
			r.emitDebug("Shutting down metrics server")
			if err := r.server.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}
		r.closeErr = errors.Join(errs...)
	})
	return r.closeErr
}

func (r *Recorder) emitError(msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: EventError, Message: msg, Args: args})
	}
}

func (r *Recorder) emitWarning(msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: EventWarning, Message: msg, Args: args})
	}
}

func (r *Recorder) emitInfo(msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: EventInfo, Message: msg, Args: args})
	}
}

func (r *Recorder) emitDebug(msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: EventDebug, Message: msg, Args: args})
	}
}
