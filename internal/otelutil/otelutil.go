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

// Package otelutil holds the OpenTelemetry helpers shared by the tracing and
// metrics exporters.
package otelutil

import (
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// SplitEndpoint turns "http://host:port/path" into its parts. A bare
// host:port is treated as insecure.
func SplitEndpoint(endpoint string) (host string, insecure bool, path string, err error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		// url.Parse reads "localhost:8126" as scheme "localhost".
		u, err = url.Parse("http://" + endpoint)
		if err != nil || u.Host == "" {
			return "", false, "", fmt.Errorf("invalid endpoint %q", endpoint)
		}
	}
	return u.Host, u.Scheme != "https", u.Path, nil
}

// Resource creates an OpenTelemetry resource with service information.
func Resource(serviceName, serviceVersion, environment string) *resource.Resource {
	attrs := []attribute.KeyValue{semconv.ServiceName(serviceName)}
	if serviceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(serviceVersion))
	}
	if environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironmentKey.String(environment))
	}
	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}
