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
	"github.com/FerretDB/docmatch/internal/query"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
)

// DeleteParams represents parameters of Delete method.
type DeleteParams struct {
	DB         string
	Collection string
	Filter     *types.Document
	Multi      bool
}

// DeleteResult represents the result of Delete method.
type DeleteResult struct {
	Deleted int64
}

// Delete deletes the first (or all, if Multi is set) documents matching the filter.
func (h *Handler) Delete(ctx context.Context, params *DeleteParams) (res *DeleteResult, err error) {
	ctx, end := h.startOp(ctx, "delete", params.DB, params.Collection)
	defer end(&err)

	c, err := h.collection("delete", params.DB, params.Collection)
	if err != nil {
		return nil, err
	}

	qr, err := c.Query(ctx)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	filter := query.ParseFilter(params.Filter)
	h.logUnknown("delete", "filter", filter.Unknown())

	var ids []any

	for _, doc := range qr.Docs {
		if !filter.Matches(doc) {
			continue
		}

		ids = append(ids, idOf(doc))

		if !params.Multi {
			break
		}
	}

	res = new(DeleteResult)

	if len(ids) == 0 {
		return res, nil
	}

	dr, err := c.Delete(ctx, &backends.DeleteParams{IDs: ids})
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	res.Deleted = dr.Deleted

	h.metrics.matched.WithLabelValues("delete").Add(float64(len(ids)))
	h.metrics.modified.WithLabelValues("delete").Add(float64(res.Deleted))

	return res, nil
}
