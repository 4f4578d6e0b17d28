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

	"github.com/FerretDB/docmatch/internal/backends"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
)

// InsertParams represents parameters of Insert method.
type InsertParams struct {
	DB         string
	Collection string
	Docs       []*types.Document
}

// InsertResult represents the result of Insert method.
type InsertResult struct {
	InsertedIDs []any
}

// Insert inserts documents into the collection, creating it if needed.
//
// Documents without _id field get generated ObjectID values.
// Given documents are not modified.
//
// Documents are inserted in order.
// When some document has a duplicate _id value, documents before it stay inserted;
// in that case both the result with their _id values and the duplicate key error are returned.
func (h *Handler) Insert(ctx context.Context, params *InsertParams) (res *InsertResult, err error) {
	ctx, end := h.startOp(ctx, "insert", params.DB, params.Collection)
	defer end(&err)

	c, err := h.collection("insert", params.DB, params.Collection)
	if err != nil {
		return nil, err
	}

	docs := make([]*types.Document, len(params.Docs))
	ids := make([]any, len(params.Docs))

	for i, doc := range params.Docs {
		docs[i] = withID(doc)
		ids[i] = idOf(docs[i])
	}

	_, err = c.Insert(ctx, &backends.InsertParams{Docs: docs})

	switch {
	case err == nil:
		h.metrics.modified.WithLabelValues("insert").Add(float64(len(docs)))
		return &InsertResult{InsertedIDs: ids}, nil

	case len(docs) > 1 && backends.ErrorCodeIs(err, backends.ErrorCodeInsertDuplicateID):
		return h.insertByOne(ctx, c, params, docs, ids)

	default:
		if dke := duplicateKeyError(err, params.DB, params.Collection); dke != nil {
			return nil, dke
		}

		return nil, lazyerrors.Error(err)
	}
}

// insertByOne inserts documents one by one, stopping at the first failure.
func (h *Handler) insertByOne(ctx context.Context, c backends.Collection, params *InsertParams, docs []*types.Document, ids []any) (*InsertResult, error) {
	res := &InsertResult{
		InsertedIDs: make([]any, 0, len(docs)),
	}

	for i, doc := range docs {
		if _, err := c.Insert(ctx, &backends.InsertParams{Docs: []*types.Document{doc}}); err != nil {
			h.metrics.modified.WithLabelValues("insert").Add(float64(i))

			if dke := duplicateKeyError(err, params.DB, params.Collection); dke != nil {
				return res, dke
			}

			return res, lazyerrors.Error(err)
		}

		res.InsertedIDs = append(res.InsertedIDs, ids[i])
	}

	h.metrics.modified.WithLabelValues("insert").Add(float64(len(docs)))

	return res, nil
}
