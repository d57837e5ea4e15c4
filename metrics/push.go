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
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/worldcoin/telemetry-batteries/config"
)

// pushLoop pushes the registry to a Pushgateway on a fixed interval. A failed
// push is reported as a warning and retried on the next tick.
type pushLoop struct {
	pusher   *push.Pusher
	endpoint string
	interval time.Duration
	warn     func(msg string, args ...any)

	pushes   atomic.Int64
	failures atomic.Int64

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func newPushLoop(registry *promclient.Registry, c config.PrometheusConfig, client *http.Client, warn func(string, ...any)) *pushLoop {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Job == "" {
		c.Job = DefaultPushJob
	}

	pusher := push.New(c.Endpoint, c.Job).Gatherer(registry)
	if client != nil {
		pusher = pusher.Client(client)
	}

	return &pushLoop{
		pusher:   pusher,
		endpoint: c.Endpoint,
		interval: c.Interval,
		warn:     warn,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (p *pushLoop) start() {
	go p.run()
}

func (p *pushLoop) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), p.interval)
			_ = p.push(ctx)
			cancel()
		}
	}
}

func (p *pushLoop) push(ctx context.Context) error {
	p.pushes.Add(1)
	if err := p.pusher.PushContext(ctx); err != nil {
		p.failures.Add(1)
		p.warn("Prometheus push failed", "endpoint", p.endpoint, "failures", p.failures.Load(), "error", err)
		return err
	}
	return nil
}

// stop ends the loop and performs the final push.
func (p *pushLoop) stop(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.stopCh) })

	select {
	case <-p.done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for push loop: %w", ctx.Err())
	}

	if err := p.push(ctx); err != nil {
		return fmt.Errorf("final push: %w", err)
	}
	return nil
}
