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

// Package handler provides an embedded document store on top of backends and the query engine.
//
// Backends only store documents; all filtering, sorting, projection and updates
// are done by the handler with the internal/query and internal/cursor packages.
package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FerretDB/docmatch/internal/backends"
	"github.com/FerretDB/docmatch/internal/cursor"
	"github.com/FerretDB/docmatch/internal/handler/handlererrors"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
	"github.com/FerretDB/docmatch/internal/util/must"
	"github.com/FerretDB/docmatch/internal/util/observability"
)

// Parts of Prometheus metric names.
const (
	namespace = "docmatch"
	subsystem = "handler"
)

// tracerName is the name of the OpenTelemetry tracer used for handler spans.
const tracerName = "docmatch/handler"

// Handler provides a set of methods to work with documents stored in backend.
//
// Handler methods can be called concurrently.
// Returned cursors are not goroutine-safe.
type Handler struct {
	*NewOpts

	cursors *cursor.Registry
	metrics *Metrics
	tracer  trace.Tracer
}

// NewOpts represents handler configuration.
type NewOpts struct {
	Backend backends.Backend
	L       *zap.Logger
}

// New returns a new handler.
func New(opts *NewOpts) (*Handler, error) {
	if opts.Backend == nil {
		return nil, lazyerrors.New("backend is not set")
	}

	if opts.L == nil {
		opts.L = zap.NewNop()
	}

	return &Handler{
		NewOpts: opts,
		cursors: cursor.NewRegistry(opts.L.Named("cursors")),
		metrics: NewMetrics(),
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// Close closes all cursors.
//
// The backend is not closed; it is owned by the caller.
func (h *Handler) Close() {
	h.cursors.Close()
}

// Cursors returns the cursor registry.
func (h *Handler) Cursors() *cursor.Registry {
	return h.cursors
}

// Describe implements prometheus.Collector.
func (h *Handler) Describe(ch chan<- *prometheus.Desc) {
	h.cursors.Describe(ch)
	h.metrics.Describe(ch)
}

// Collect implements prometheus.Collector.
func (h *Handler) Collect(ch chan<- prometheus.Metric) {
	h.cursors.Collect(ch)
	h.metrics.Collect(ch)
}

// startOp starts an OpenTelemetry span for the given command and counts the request.
//
// The returned function should be deferred with a pointer to the named error result.
func (h *Handler) startOp(ctx context.Context, command, db, collection string) (context.Context, func(*error)) {
	ctx, span := h.tracer.Start(ctx, command, trace.WithAttributes(
		attribute.String("db.name", db),
		attribute.String("db.collection", collection),
	))

	h.metrics.requests.WithLabelValues(command).Inc()

	done := observability.FuncCall(ctx)

	return ctx, func(errp *error) {
		defer span.End()
		defer done()

		if err := *errp; err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			h.metrics.failures.WithLabelValues(command, handlererrors.Code(err).String()).Inc()
		}
	}
}

// logUnknown logs ignored unknown operators at debug level.
func (h *Handler) logUnknown(command, kind string, unknown []string) {
	if len(unknown) == 0 {
		return
	}

	h.L.Debug("Ignoring unknown operators", zap.String("command", command), zap.String("kind", kind), zap.Strings("operators", unknown))
}

// collection returns a backend collection for the given namespace.
func (h *Handler) collection(command, dbName, collName string) (backends.Collection, error) {
	db, err := h.Backend.Database(dbName)
	if err != nil {
		if backends.ErrorCodeIs(err, backends.ErrorCodeDatabaseNameIsInvalid) {
			msg := fmt.Sprintf("Invalid namespace specified '%s.%s'", dbName, collName)
			return nil, handlererrors.NewCommandErrorMsgWithArgument(handlererrors.ErrInvalidNamespace, msg, command)
		}

		return nil, lazyerrors.Error(err)
	}

	c, err := db.Collection(collName)
	if err != nil {
		if backends.ErrorCodeIs(err, backends.ErrorCodeCollectionNameIsInvalid) {
			msg := fmt.Sprintf("Invalid collection name: %s", collName)
			return nil, handlererrors.NewCommandErrorMsgWithArgument(handlererrors.ErrInvalidNamespace, msg, command)
		}

		return nil, lazyerrors.Error(err)
	}

	return c, nil
}

// source returns a cursor source that fetches all documents of the given collection.
func source(c backends.Collection) cursor.Source {
	return func(ctx context.Context) ([]*types.Document, error) {
		res, err := c.Query(ctx)
		if err != nil {
			return nil, lazyerrors.Error(err)
		}

		return res.Docs, nil
	}
}

// withID returns a copy of doc with _id field first, generating ObjectID if it is absent.
func withID(doc *types.Document) *types.Document {
	id, ok := doc.Lookup("_id")
	if !ok {
		id = types.NewObjectID()
	}

	res := types.MakeDocument(doc.Len() + 1)
	must.NoError(res.Set("_id", id))

	for _, k := range doc.Keys() {
		if k == "_id" {
			continue
		}

		v, _ := doc.Lookup(k)
		must.NoError(res.Set(k, v))
	}

	return res.DeepCopy()
}

// duplicateKeyError converts backend's duplicate _id error to the handler error.
func duplicateKeyError(err error, dbName, collName string) error {
	if !backends.ErrorCodeIs(err, backends.ErrorCodeInsertDuplicateID) {
		return nil
	}

	msg := fmt.Sprintf(
		"E11000 duplicate key error collection: %s.%s index: _id_ dup key: { _id: %v }",
		dbName, collName, backends.ErrorArgument(err),
	)

	return handlererrors.NewCommandErrorMsgWithArgument(handlererrors.ErrDuplicateKey, msg, "_id")
}

// idOf returns _id value of the document.
func idOf(doc *types.Document) any {
	return must.NotFail(doc.Get("_id"))
}

// toInt64 converts whole number of any numeric type to int64.
func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != float64(int64(v)) {
			return 0, errors.New("number is not whole")
		}

		return int64(v), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

// check interfaces
var (
	_ prometheus.Collector = (*Handler)(nil)
)
