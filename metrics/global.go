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
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
)

// global is the recorder the package-level functions dispatch to. It stays
// nil until [Install] succeeds, and the functions are no-ops until then.
var global atomic.Pointer[Recorder]

// Installed returns the process-wide recorder, or nil.
func Installed() *Recorder {
	return global.Load()
}

// IncrementCounter increments the counter name on the installed recorder.
// Errors are dropped; use [Recorder.IncrementCounter] to observe them.
func IncrementCounter(ctx context.Context, name string, attributes ...attribute.KeyValue) {
	if r := global.Load(); r != nil {
		_ = r.IncrementCounter(ctx, name, attributes...)
	}
}

// AddCounter adds value to the counter name on the installed recorder.
func AddCounter(ctx context.Context, name string, value int64, attributes ...attribute.KeyValue) {
	if r := global.Load(); r != nil {
		_ = r.AddCounter(ctx, name, value, attributes...)
	}
}

// SetGauge sets the gauge name on the installed recorder.
func SetGauge(ctx context.Context, name string, value float64, attributes ...attribute.KeyValue) {
	if r := global.Load(); r != nil {
		_ = r.SetGauge(ctx, name, value, attributes...)
	}
}

// RecordHistogram records value in the histogram name on the installed recorder.
func RecordHistogram(ctx context.Context, name string, value float64, attributes ...attribute.KeyValue) {
	if r := global.Load(); r != nil {
		_ = r.RecordHistogram(ctx, name, value, attributes...)
	}
}
