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
	"github.com/FerretDB/docmatch/internal/cursor"
	"github.com/FerretDB/docmatch/internal/handler/handlererrors"
	"github.com/FerretDB/docmatch/internal/query"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
)

// FindAndModifyParams represents parameters of FindAndModify method.
type FindAndModifyParams struct {
	DB         string
	Collection string
	Filter     *types.Document
	Sort       *types.Document
	Projection any
	Update     *types.Document // update expression or replacement document
	Remove     bool
	Upsert     bool
	ReturnNew  bool
}

// FindAndModifyResult represents the result of FindAndModify method.
type FindAndModifyResult struct {
	// Value is the document before modification, or after it if ReturnNew is set.
	// It is nil if nothing matched (and, for ReturnNew, nothing was upserted).
	Value *types.Document

	Matched    bool
	Modified   bool
	UpsertedID any
}

// FindAndModify finds the first document in the sort order that matches the filter,
// and updates or removes it.
func (h *Handler) FindAndModify(ctx context.Context, params *FindAndModifyParams) (res *FindAndModifyResult, err error) {
	ctx, end := h.startOp(ctx, "findAndModify", params.DB, params.Collection)
	defer end(&err)

	if params.Remove == (params.Update != nil) {
		return nil, handlererrors.NewCommandErrorMsgWithArgument(
			handlererrors.ErrBadValue,
			"Either an update or remove=true must be specified",
			"findAndModify",
		)
	}

	if params.Remove && params.Upsert {
		return nil, handlererrors.NewCommandErrorMsgWithArgument(
			handlererrors.ErrBadValue,
			"Cannot specify both upsert=true and remove=true",
			"findAndModify",
		)
	}

	var m *modifier

	if !params.Remove {
		if m, err = h.newModifier("findAndModify", params.Update); err != nil {
			return nil, err
		}
	}

	c, err := h.collection("findAndModify", params.DB, params.Collection)
	if err != nil {
		return nil, err
	}

	qr, err := c.Query(ctx)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	filter := query.ParseFilter(params.Filter)
	h.logUnknown("findAndModify", "filter", filter.Unknown())

	var sort *query.Sort
	if params.Sort != nil {
		sort = query.ParseSort(params.Sort)
	}

	projection := query.ParseProjection(params.Projection)
	res = new(FindAndModifyResult)

	found := cursor.Execute(qr.Docs, filter, sort, 0, 1, nil)

	if len(found) == 0 {
		if !params.Upsert {
			return res, nil
		}

		doc, err := m.upsert(params.Filter)
		if err != nil {
			return nil, err
		}

		if _, err = c.Insert(ctx, &backends.InsertParams{Docs: []*types.Document{doc}}); err != nil {
			if dke := duplicateKeyError(err, params.DB, params.Collection); dke != nil {
				return nil, dke
			}

			return nil, lazyerrors.Error(err)
		}

		h.metrics.modified.WithLabelValues("findAndModify").Inc()

		res.UpsertedID = idOf(doc)

		if params.ReturnNew {
			res.Value = projection.Project(doc)
		}

		return res, nil
	}

	doc := found[0]
	res.Matched = true

	h.metrics.matched.WithLabelValues("findAndModify").Inc()

	if params.Remove {
		if _, err = c.Delete(ctx, &backends.DeleteParams{IDs: []any{idOf(doc)}}); err != nil {
			return nil, lazyerrors.Error(err)
		}

		h.metrics.modified.WithLabelValues("findAndModify").Inc()

		res.Modified = true
		res.Value = projection.Project(doc)

		return res, nil
	}

	updated, changed, err := m.apply(doc)
	if err != nil {
		return nil, err
	}

	if changed {
		if _, err = c.Update(ctx, &backends.UpdateParams{Docs: []*types.Document{updated}}); err != nil {
			return nil, lazyerrors.Error(err)
		}

		h.metrics.modified.WithLabelValues("findAndModify").Inc()

		res.Modified = true
	}

	res.Value = projection.Project(doc)
	if params.ReturnNew {
		res.Value = projection.Project(updated)
	}

	return res, nil
}
