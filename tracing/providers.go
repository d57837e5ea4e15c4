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
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/worldcoin/telemetry-batteries/config"
	"github.com/worldcoin/telemetry-batteries/internal/otelutil"
)

// newExporter creates the span exporter for the configured backend.
func (p *Provider) newExporter(ctx context.Context, cfg config.TracingConfig, s *settings) (sdktrace.SpanExporter, error) {
	switch cfg.Backend {
	case config.TracingRemote:
		switch cfg.Protocol {
		case config.ProtocolGRPC:
			return newOTLPGRPCExporter(ctx, cfg.Endpoint)
		case config.ProtocolHTTP:
			return newOTLPHTTPExporter(ctx, cfg.Endpoint)
		}
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = config.DefaultRemoteEndpoint
		}
		return newAgentExporter(endpoint, p.serviceName)

	case config.TracingStdout:
		opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if s.stdout != nil {
			opts = append(opts, stdouttrace.WithWriter(s.stdout))
		}
		exporter, err := stdouttrace.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		return exporter, nil

	case config.TracingZipkin:
		if cfg.Protocol == config.ProtocolGRPC {
			p.emitWarning("Zipkin exporter only speaks HTTP, ignoring protocol", "protocol", cfg.Protocol)
		}
		exporter, err := zipkin.New(cfg.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create zipkin exporter: %w", err)
		}
		return exporter, nil
	}

	return nil, fmt.Errorf("unsupported tracing backend: %s", cfg.Backend)
}

// newOTLPHTTPExporter creates an OTLP/HTTP exporter. A plain http:// endpoint
// disables TLS and a non-root path replaces the default /v1/traces.
func newOTLPHTTPExporter(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{}

	if endpoint != "" {
		host, insecure, path, err := otelutil.SplitEndpoint(endpoint)
		if err != nil {
			return nil, err
		}
		opts = append(opts, otlptracehttp.WithEndpoint(host))
		if insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if path != "" && path != "/" {
			opts = append(opts, otlptracehttp.WithURLPath(path))
		}
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
	}
	return exporter, nil
}

// newOTLPGRPCExporter creates an OTLP/gRPC exporter. The connection is
// established lazily, so an unreachable agent is not an error here.
func newOTLPGRPCExporter(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{}

	if endpoint != "" {
		host, insecure, _, err := otelutil.SplitEndpoint(endpoint)
		if err != nil {
			return nil, err
		}
		opts = append(opts, otlptracegrpc.WithEndpoint(host))
		if insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
	}
	return exporter, nil
}
