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

package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otelsdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	otelsemconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func TestSetupOtelDisabled(t *testing.T) {
	t.Parallel()

	shutdown, err := SetupOtel("docmatch", "v0.0.1", "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewTracerProvider(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := NewTracerProvider("docmatch", "v0.0.1", otelsdktrace.WithSyncer(exporter))

	ctx := context.Background()

	func() {
		defer FuncCall(ctx)()

		_, span := tp.Tracer("test").Start(ctx, "op")
		span.End()
	}()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "op", spans[0].Name)
	assert.Contains(t, spans[0].Resource.Attributes(), otelsemconv.ServiceNameKey.String("docmatch"))

	require.NoError(t, tp.Shutdown(ctx))
}
