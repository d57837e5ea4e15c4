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

package semconv

// Service metadata constants, set once per process.
const (
	// ServiceName identifies the service that generated the telemetry data.
	ServiceName = "service.name"

	// ServiceVersion identifies the version of the service.
	ServiceVersion = "service.version"

	// DeploymentEnviron identifies the environment where the service is deployed.
	// Common values include "production", "staging", "development".
	DeploymentEnviron = "deployment.environment"
)

// HTTP attribute constants recorded on server spans.
const (
	HTTPMethod     = "http.method"
	HTTPTarget     = "http.target"
	HTTPStatusCode = "http.status_code"
	HTTPScheme     = "http.scheme"
	HTTPHost       = "http.host"
	HTTPUserAgent  = "http.user_agent"

	// HTTPRequestHeaderPrefix prefixes recorded request headers
	// (e.g. "http.request.header.x-request-id").
	HTTPRequestHeaderPrefix = "http.request.header."
)

// Trace correlation constants.
//
// TraceID and SpanID carry the W3C hex form. The Datadog variants carry the
// low 64 bits as a decimal string, which is what the Datadog log pipeline
// joins on.
const (
	TraceID = "trace_id"
	SpanID  = "span_id"

	DatadogTraceID = "dd.trace_id"
	DatadogSpanID  = "dd.span_id"
)

// Datadog unified service tagging keys.
const (
	DatadogService = "dd.service"
	DatadogEnv     = "dd.env"
	DatadogVersion = "dd.version"
)

// Log record field names used by the JSON formats.
const (
	Timestamp = "timestamp"
	Level     = "level"
	Logger    = "logger"
	Message   = "message"
	Source    = "source"
)
