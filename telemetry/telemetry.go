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

	"github.com/worldcoin/telemetry-batteries/config"
	"github.com/worldcoin/telemetry-batteries/errreport"
	"github.com/worldcoin/telemetry-batteries/internal/state"
	"github.com/worldcoin/telemetry-batteries/metrics"
	"github.com/worldcoin/telemetry-batteries/tracing"
)

// Init resolves the configuration from the process environment and
// installs every component. See [InitWithConfig].
func Init(ctx context.Context, opts ...Option) (*Guard, error) {
	s := newSettings(opts)
	cfg, err := config.FromEnv(s.configOptions...)
	if err != nil {
		return nil, err
	}
	return InitWithConfig(ctx, cfg, opts...)
}

// InitWithConfig installs the log and trace pipeline, the metrics recorder
// and error reporting for cfg, in that order, and returns the guard that
// drains them.
//
// Either everything is installed or, on error, no pipeline, recorder or
// error report mode is observable and both slots are free. A failed call
// leaves an earlier installation untouched.
//
// Errors:
//   - a *config.Error when cfg breaks an invariant (see
//     [config.TelemetryConfig.Validate])
//   - [ErrAlreadyInstalled]
//   - a log format, exporter or metrics backend that could not be built,
//     including [metrics.ErrBindFailure]
func InitWithConfig(ctx context.Context, cfg config.TelemetryConfig, opts ...Option) (*Guard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := newSettings(opts)

	if err := state.Subscriber.Acquire(); err != nil {
		return nil, err
	}

	p, err := buildPipeline(ctx, cfg, tracing.NewIDGenerator(), s)
	if err != nil {
		state.Subscriber.Release()
		return nil, err
	}

	metricsOpts := []metrics.Option{
		metrics.WithServiceName(cfg.ServiceName),
		metrics.WithServiceVersion(cfg.ServiceVersion),
		metrics.WithEnvironment(cfg.Environment),
		metrics.WithLogger(p.Logger()),
	}
	recorder, err := metrics.Install(ctx, cfg.Metrics, append(metricsOpts, s.metricsOptions...)...)
	if err != nil {
		_ = p.provider.Shutdown(ctx)
		state.Subscriber.Release()
		return nil, fmt.Errorf("metrics: %w", err)
	}

	p.install()
	errreport.Install(cfg.ErrorMode)

	g := newGuard(cfg.ShutdownTimeout, p.Logger())
	g.pipeline = p
	g.recorder = recorder
	g.add("tracing", func(ctx context.Context) error {
		if err := p.provider.ForceFlush(ctx); err != nil {
			return err
		}
		return p.provider.Shutdown(ctx)
	})
	g.add("metrics", recorder.Drain)

	p.Logger().Debug("Telemetry initialized",
		"preset", cfg.Preset,
		"log_format", cfg.LogFormat,
		"tracing", cfg.Tracing.Backend,
		"metrics", recorder.Backend(),
	)
	return g, nil
}
