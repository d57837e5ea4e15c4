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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestIDGenerator_TraceIDUpperBitsZero(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator()
	for range 1000 {
		id := gen.TraceID()
		require.True(t, id.IsValid())
		assert.Equal(t, uint64(0), binary.BigEndian.Uint64(id[:8]))
		assert.NotZero(t, DatadogTraceID(id))
	}
}

func TestIDGenerator_NoZeroNoDuplicatesConcurrently(t *testing.T) {
	t.Parallel()

	const (
		workers   = 8
		perWorker = 125_000
	)

	gen := NewIDGenerator()
	results := make([][]uint64, workers)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]uint64, perWorker)
			for i := range ids {
				tid, _ := gen.NewIDs(context.Background())
				ids[i] = DatadogTraceID(tid)
			}
			results[w] = ids
		}()
	}
	wg.Wait()

	seen := make(map[uint64]struct{}, workers*perWorker)
	for _, ids := range results {
		for _, id := range ids {
			require.NotZero(t, id)
			_, dup := seen[id]
			require.False(t, dup, "duplicate trace id %d", id)
			seen[id] = struct{}{}
		}
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestIDGenerator_SpanIDs(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator()
	tid := gen.TraceID()
	for range 1000 {
		sid := gen.NewSpanID(context.Background(), tid)
		require.True(t, sid.IsValid())
	}
}

func TestDatadogIDs(t *testing.T) {
	t.Parallel()

	tid, err := trace.TraceIDFromHex("0000000000000000000000000000002a")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), DatadogTraceID(tid))

	// Only the low 64 bits survive for IDs minted elsewhere.
	tid, err = trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	assert.Equal(t, uint64(0xa3ce929d0e0e4736), DatadogTraceID(tid))

	sid, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x00f067aa0ba902b7), DatadogSpanID(sid))
}

func BenchmarkIDGenerator_NewIDs(b *testing.B) {
	gen := NewIDGenerator()
	ctx := context.Background()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			gen.NewIDs(ctx)
		}
	})
}
