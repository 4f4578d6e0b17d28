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

package handler

import (
	"context"

	"golang.org/x/exp/slices"

	"github.com/FerretDB/docmatch/internal/cursor"
	"github.com/FerretDB/docmatch/internal/query"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
	"github.com/FerretDB/docmatch/internal/util/must"
)

// CountParams represents parameters of Count method.
type CountParams struct {
	DB         string
	Collection string
	Filter     *types.Document
	Skip       int64
	Limit      int64
}

// Count returns the number of documents matching the filter, after skip and limit.
func (h *Handler) Count(ctx context.Context, params *CountParams) (res int64, err error) {
	ctx, end := h.startOp(ctx, "count", params.DB, params.Collection)
	defer end(&err)

	c, err := h.collection("count", params.DB, params.Collection)
	if err != nil {
		return 0, err
	}

	qr, err := c.Query(ctx)
	if err != nil {
		return 0, lazyerrors.Error(err)
	}

	filter := query.ParseFilter(params.Filter)
	h.logUnknown("count", "filter", filter.Unknown())

	docs := cursor.Execute(qr.Docs, filter, nil, params.Skip, params.Limit, nil)

	return int64(len(docs)), nil
}

// EstimatedCount returns the number of all documents in the collection without filtering them.
func (h *Handler) EstimatedCount(ctx context.Context, dbName, collName string) (res int64, err error) {
	ctx, end := h.startOp(ctx, "estimatedCount", dbName, collName)
	defer end(&err)

	c, err := h.collection("count", dbName, collName)
	if err != nil {
		return 0, err
	}

	if res, err = c.Count(ctx); err != nil {
		return 0, lazyerrors.Error(err)
	}

	return res, nil
}

// DistinctParams represents parameters of Distinct method.
type DistinctParams struct {
	DB         string
	Collection string
	Key        string
	Filter     *types.Document
}

// Distinct returns distinct values of the given top-level field in documents matching the filter.
//
// Array values contribute their elements.
// Numerically equal values of different types are considered the same; the first one wins.
// Values are returned sorted in the canonical order.
func (h *Handler) Distinct(ctx context.Context, params *DistinctParams) (res *types.Array, err error) {
	ctx, end := h.startOp(ctx, "distinct", params.DB, params.Collection)
	defer end(&err)

	c, err := h.collection("distinct", params.DB, params.Collection)
	if err != nil {
		return nil, err
	}

	qr, err := c.Query(ctx)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	filter := query.ParseFilter(params.Filter)
	h.logUnknown("distinct", "filter", filter.Unknown())

	var values []any

	add := func(v any) {
		for _, seen := range values {
			if types.EqualValues(seen, v) {
				return
			}
		}

		values = append(values, v)
	}

	for _, doc := range qr.Docs {
		if !filter.Matches(doc) {
			continue
		}

		v, ok := doc.Lookup(params.Key)
		if !ok {
			continue
		}

		arr, ok := v.(*types.Array)
		if !ok {
			add(v)
			continue
		}

		for i := 0; i < arr.Len(); i++ {
			add(must.NotFail(arr.Get(i)))
		}
	}

	slices.SortStableFunc(values, func(a, b any) int {
		return int(types.Compare(a, b))
	})

	return must.NotFail(types.NewArray(values...)), nil
}
