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
	"encoding/binary"
	"math/rand/v2"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// IDGenerator produces W3C trace IDs whose upper 64 bits are zero, so that
// the low 64 bits alone identify the trace. Agents speaking the Datadog
// protocol only carry 64-bit trace IDs; with this generator nothing is lost
// when an ID is truncated.
//
// IDGenerator is stateless and safe for concurrent use. Uniqueness holds to
// the birthday bound of a 64-bit random value.
type IDGenerator struct{}

var _ sdktrace.IDGenerator = (*IDGenerator)(nil)

// NewIDGenerator returns an IDGenerator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// NewIDs implements [sdktrace.IDGenerator].
func (g *IDGenerator) NewIDs(context.Context) (trace.TraceID, trace.SpanID) {
	return g.TraceID(), g.SpanID()
}

// NewSpanID implements [sdktrace.IDGenerator].
func (g *IDGenerator) NewSpanID(context.Context, trace.TraceID) trace.SpanID {
	return g.SpanID()
}

// TraceID returns a new non-zero trace ID with the upper 64 bits zero.
func (*IDGenerator) TraceID() trace.TraceID {
	var id trace.TraceID
	binary.BigEndian.PutUint64(id[8:], nonZeroUint64())
	return id
}

// SpanID returns a new non-zero span ID.
func (*IDGenerator) SpanID() trace.SpanID {
	var id trace.SpanID
	binary.BigEndian.PutUint64(id[:], nonZeroUint64())
	return id
}

func nonZeroUint64() uint64 {
	for {
		if v := rand.Uint64(); v != 0 {
			return v
		}
	}
}

// DatadogTraceID returns the low 64 bits of id, the trace ID as Datadog
// sees it.
func DatadogTraceID(id trace.TraceID) uint64 {
	return binary.BigEndian.Uint64(id[8:])
}

// DatadogSpanID returns id as an unsigned integer.
func DatadogSpanID(id trace.SpanID) uint64 {
	return binary.BigEndian.Uint64(id[:])
}
