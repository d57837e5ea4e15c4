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

// Package logging provides the log stages of the telemetry pipeline: a level
// filter and one formatting stage per log format.
//
// The filter runs first so that records below the configured level cost no
// formatting work:
//
//	h, err := logging.NewHandler(os.Stdout, cfg)
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(slog.New(h))
//
// # Formats
//
//   - pretty: colored, multi-field console lines for development
//   - compact: one key=value line per record
//   - json: [slog.JSONHandler] output
//   - datadog-json: JSON with the Datadog reserved attributes
//
// # Trace Correlation
//
// When a record is logged with a context that carries an active span, the
// JSON formats add its IDs at the top level of the record. The json format
// writes trace_id and span_id in W3C hex; datadog-json writes dd.trace_id and
// dd.span_id as decimal strings of the low 64 bits:
//
//	slog.InfoContext(ctx, "order placed", "order_id", id)
//	// {"timestamp":"...","level":"INFO","message":"order placed",
//	//  "logger":"orders","dd.service":"orders","order_id":"42",
//	//  "dd.trace_id":"1234","dd.span_id":"5678"}
package logging
