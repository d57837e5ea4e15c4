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

// Package metrics installs the process-wide metrics recorder and provides
// the functions application code records with.
//
// # Basic Usage
//
//	cfg := config.MetricsConfig{
//	    Backend:    config.MetricsPrometheus,
//	    Prometheus: &config.PrometheusConfig{Mode: config.PrometheusHTTP, Listen: "0.0.0.0:9090"},
//	}
//	recorder, err := metrics.Install(ctx, cfg, metrics.WithServiceName("orders"))
//	if err != nil {
//	    return err
//	}
//	defer recorder.Close(context.Background())
//
//	metrics.IncrementCounter(ctx, "orders_placed", attribute.String("region", "eu"))
//
// The package-level functions never fail; they do nothing until a recorder
// is installed. The same methods on [Recorder] return errors.
//
// # Backends
//
//   - prometheus, http mode: text exposition on every path of the listen address
//   - prometheus, push mode: periodic PUT to a Pushgateway
//   - statsd: one DogStatsD line per update over UDP
//   - otlp: periodic export over OTLP/HTTP or OTLP/gRPC
//   - stdout: periodic export as JSON, for development
//   - none: a recorder that discards everything
//
// # Shutdown
//
// [Recorder.Drain] flushes what the backend buffers and leaves a scrape
// endpoint serving; [Recorder.Close] also stops the endpoint.
package metrics
