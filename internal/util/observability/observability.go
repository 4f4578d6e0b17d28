// Copyright 2021 FerretDB Inc.
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

// Package observability provides abstractions for tracing.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelsdkresource "go.opentelemetry.io/otel/sdk/resource"
	otelsdktrace "go.opentelemetry.io/otel/sdk/trace"
	otelsemconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// ShutdownFunc is a function that shuts down the OpenTelemetry observability system.
type ShutdownFunc func(context.Context) error

// SetupOtel sets up OTLP exporter and tracer provider.
// If endpoint is empty, no exporter is set up and the returned function does nothing.
func SetupOtel(service, version, endpoint string) (ShutdownFunc, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(
		context.TODO(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := NewTracerProvider(service, version, otelsdktrace.WithBatcher(exporter, otelsdktrace.WithBatchTimeout(time.Second)))

	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// NewTracerProvider returns a new SDK tracer provider that samples all spans.
// Span processors are passed as options.
func NewTracerProvider(service, version string, opts ...otelsdktrace.TracerProviderOption) *otelsdktrace.TracerProvider {
	opts = append([]otelsdktrace.TracerProviderOption{
		otelsdktrace.WithSampler(otelsdktrace.AlwaysSample()),
		otelsdktrace.WithResource(otelsdkresource.NewSchemaless(
			otelsemconv.ServiceNameKey.String(service),
			otelsemconv.ServiceVersionKey.String(version),
		)),
	}, opts...)

	return otelsdktrace.NewTracerProvider(opts...)
}
