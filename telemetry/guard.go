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
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/worldcoin/telemetry-batteries/metrics"
)

// DefaultShutdownTimeout bounds Release when the config sets no timeout.
const DefaultShutdownTimeout = 5 * time.Second

// Guard flushes and stops every started backend when released.
//
// Release runs once; later calls return immediately. Failures are logged and
// kept in [Guard.Err], never returned, and Release never panics. The usual
// pattern ties release to the scope of main:
//
//	guard, err := telemetry.Init(ctx)
//	if err != nil {
//	    return err
//	}
//	defer guard.Release()
//
// Releasing stops exporting; log records keep flowing to the writer.
type Guard struct {
	timeout  time.Duration
	logger   *slog.Logger
	stages   []stage
	pipeline *Pipeline
	recorder *metrics.Recorder

	once     sync.Once
	released atomic.Bool
	mu       sync.Mutex
	err      error
}

// stage is one drain step. Stages run in the order they were added.
type stage struct {
	name  string
	drain func(context.Context) error
}

func newGuard(timeout time.Duration, logger *slog.Logger) *Guard {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{timeout: timeout, logger: logger}
}

func (g *Guard) add(name string, drain func(context.Context) error) {
	g.stages = append(g.stages, stage{name: name, drain: drain})
}

// Pipeline returns the installed log and trace pipeline.
func (g *Guard) Pipeline() *Pipeline {
	return g.pipeline
}

// Recorder returns the metrics recorder. It is a no-op recorder for the
// none backend.
func (g *Guard) Recorder() *metrics.Recorder {
	return g.recorder
}

// Release drains every backend within the configured shutdown timeout.
func (g *Guard) Release() {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()
	g.ReleaseContext(ctx)
}

// ReleaseContext drains every backend, waiting at most until ctx is done.
// Spans are flushed and the tracer provider shut down first, then the
// metrics recorder is drained. A scrape listener stays bound.
func (g *Guard) ReleaseContext(ctx context.Context) {
	g.once.Do(func() {
		defer g.released.Store(true)

		done := make(chan error, 1)
		go func() { done <- g.drain(ctx) }()

		select {
		case err := <-done:
			g.record(err)
		case <-ctx.Done():
			g.logger.Warn("Telemetry shutdown timed out; buffered telemetry may be lost",
				"timeout", g.timeout, "error", ctx.Err())
			g.record(fmt.Errorf("telemetry shutdown: %w", ctx.Err()))
		}
	})
}

func (g *Guard) drain(ctx context.Context) error {
	var errs []error
	for _, s := range g.stages {
		if err := runStage(ctx, s); err != nil {
			g.logger.Warn("Telemetry shutdown step failed", "step", s.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

func runStage(ctx context.Context, s stage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.drain(ctx)
}

func (g *Guard) record(err error) {
	if err == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = errors.Join(g.err, err)
}

// Err returns the failures recorded during release, or nil.
func (g *Guard) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Released reports whether release has completed or timed out.
func (g *Guard) Released() bool {
	return g.released.Load()
}
