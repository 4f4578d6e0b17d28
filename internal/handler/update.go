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
	"github.com/FerretDB/docmatch/internal/handler/handlererrors"
	"github.com/FerretDB/docmatch/internal/query"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
	"github.com/FerretDB/docmatch/internal/util/must"
)

// UpdateParams represents parameters of Update method.
type UpdateParams struct {
	DB         string
	Collection string
	Filter     *types.Document
	Update     *types.Document // update expression or replacement document
	Multi      bool
	Upsert     bool
}

// UpdateResult represents the result of Update method.
type UpdateResult struct {
	Matched    int64
	Modified   int64
	UpsertedID any
}

// Update updates the first (or all, if Multi is set) documents matching the filter.
//
// If nothing matches and Upsert is set, a new document is inserted.
// It is built from the filter's literal values with the update expression applied,
// or from the replacement document.
func (h *Handler) Update(ctx context.Context, params *UpdateParams) (res *UpdateResult, err error) {
	ctx, end := h.startOp(ctx, "update", params.DB, params.Collection)
	defer end(&err)

	m, err := h.newModifier("update", params.Update)
	if err != nil {
		return nil, err
	}

	if m.replacement != nil && params.Multi {
		return nil, handlererrors.NewCommandErrorMsgWithArgument(
			handlererrors.ErrBadValue,
			"multi update is not supported for replacement-style update",
			"update",
		)
	}

	c, err := h.collection("update", params.DB, params.Collection)
	if err != nil {
		return nil, err
	}

	qr, err := c.Query(ctx)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	filter := query.ParseFilter(params.Filter)
	h.logUnknown("update", "filter", filter.Unknown())

	res = new(UpdateResult)

	var changed []*types.Document

	for _, doc := range qr.Docs {
		if !filter.Matches(doc) {
			continue
		}

		res.Matched++

		updated, ok, err := m.apply(doc)
		if err != nil {
			return nil, err
		}

		if ok {
			changed = append(changed, updated)
		}

		if !params.Multi {
			break
		}
	}

	if len(changed) > 0 {
		ur, err := c.Update(ctx, &backends.UpdateParams{Docs: changed})
		if err != nil {
			return nil, lazyerrors.Error(err)
		}

		res.Modified = ur.Updated
	}

	h.metrics.matched.WithLabelValues("update").Add(float64(res.Matched))
	h.metrics.modified.WithLabelValues("update").Add(float64(res.Modified))

	if res.Matched > 0 || !params.Upsert {
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

	res.UpsertedID = idOf(doc)

	h.metrics.modified.WithLabelValues("update").Inc()

	return res, nil
}

// modifier applies an update expression or a replacement document.
type modifier struct {
	update      *query.Update   // nil for replacement
	replacement *types.Document // nil for update expression
}

// newModifier returns a new modifier for the given update expression or replacement document.
func (h *Handler) newModifier(command string, update *types.Document) (*modifier, error) {
	if update == nil {
		return nil, handlererrors.NewCommandErrorMsgWithArgument(handlererrors.ErrBadValue, "update document is not set", command)
	}

	if !query.IsUpdateExpression(update) {
		return &modifier{replacement: update}, nil
	}

	u := query.ParseUpdate(update)
	h.logUnknown(command, "update", u.Unknown())

	return &modifier{update: u}, nil
}

// apply returns an updated copy of doc and true if it differs from doc.
//
// It returns an error if _id value was changed or removed.
func (m *modifier) apply(doc *types.Document) (*types.Document, bool, error) {
	id := idOf(doc)

	var res *types.Document
	var changed bool

	if m.update != nil {
		res = doc.DeepCopy()
		changed = m.update.Apply(res)
	} else {
		if newID, ok := m.replacement.Lookup("_id"); ok && !types.Identical(id, newID) {
			return nil, false, immutableIDError()
		}

		res = withID(mergeInto(must.NotFail(types.NewDocument("_id", id)), m.replacement))
		changed = !types.Identical(doc, res)
	}

	if newID, ok := res.Lookup("_id"); !ok || !types.Identical(id, newID) {
		return nil, false, immutableIDError()
	}

	return res, changed, nil
}

// upsert returns a new document to insert when nothing matched the filter.
func (m *modifier) upsert(filter *types.Document) (*types.Document, error) {
	seed := query.UpsertSeed(filter)

	if m.update != nil {
		m.update.Apply(seed)
		return withID(seed), nil
	}

	res := m.replacement.DeepCopy()

	if !res.Has("_id") {
		if id, ok := seed.Lookup("_id"); ok {
			return withID(mergeInto(must.NotFail(types.NewDocument("_id", id)), res)), nil
		}
	}

	return withID(res), nil
}

// mergeInto sets all fields of src into dst and returns dst.
func mergeInto(dst, src *types.Document) *types.Document {
	for _, k := range src.Keys() {
		v, _ := src.Lookup(k)
		must.NoError(dst.Set(k, v))
	}

	return dst
}

// immutableIDError returns an error for altered _id field.
func immutableIDError() error {
	return handlererrors.NewCommandErrorMsgWithArgument(
		handlererrors.ErrImmutableField,
		"Performing an update on the path '_id' would modify the immutable field '_id'",
		"_id",
	)
}
