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

package metrics_test

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/worldcoin/telemetry-batteries/config"
	"github.com/worldcoin/telemetry-batteries/metrics"
)

func ExampleNew() {
	ctx := context.Background()
	recorder, err := metrics.New(ctx, config.MetricsConfig{
		Backend:    config.MetricsPrometheus,
		Prometheus: &config.PrometheusConfig{Mode: config.PrometheusHTTP, Listen: "127.0.0.1:0"},
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer recorder.Close(ctx) //nolint:errcheck // example

	err = recorder.IncrementCounter(ctx, "orders_placed", attribute.String("region", "eu"))
	fmt.Println(recorder.Backend(), err)
	// Output: prometheus <nil>
}
