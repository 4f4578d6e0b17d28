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
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/FerretDB/docmatch/internal/cursor"
	"github.com/FerretDB/docmatch/internal/handler/handlererrors"
	"github.com/FerretDB/docmatch/internal/query"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/iterator"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
)

// FindParams represents parameters of Find and FindOne methods.
type FindParams struct {
	DB         string
	Collection string
	Filter     *types.Document
	Sort       *types.Document
	Projection any
	Skip       int64
	Limit      int64
	BatchSize  int32
}

// Find returns a new registered cursor over matching documents.
//
// The cursor is executed lazily on the first read.
// The caller should close it; closing removes it from the registry.
func (h *Handler) Find(ctx context.Context, params *FindParams) (res *cursor.Cursor, err error) {
	_, end := h.startOp(ctx, "find", params.DB, params.Collection)
	defer end(&err)

	c, err := h.newCursor("find", params)
	if err != nil {
		return nil, err
	}

	h.cursors.Add(c, params.DB, params.Collection)

	return c, nil
}

// FindOne returns the first matching document, or nil if there is none.
func (h *Handler) FindOne(ctx context.Context, params *FindParams) (res *types.Document, err error) {
	ctx, end := h.startOp(ctx, "findOne", params.DB, params.Collection)
	defer end(&err)

	p := *params
	p.Limit = 1

	c, err := h.newCursor("findOne", &p)
	if err != nil {
		return nil, err
	}

	defer c.Close()

	res, err = c.Next(ctx)
	if errors.Is(err, iterator.ErrIteratorDone) {
		return nil, nil
	}

	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	return res, nil
}

// newCursor returns a new unregistered cursor for the given parameters.
func (h *Handler) newCursor(command string, params *FindParams) (*cursor.Cursor, error) {
	coll, err := h.collection(command, params.DB, params.Collection)
	if err != nil {
		return nil, err
	}

	filter := query.ParseFilter(params.Filter)
	h.logUnknown(command, "filter", filter.Unknown())

	c := cursor.New(source(coll), filter).
		Skip(params.Skip).
		Limit(params.Limit).
		BatchSize(params.BatchSize).
		Project(query.ParseProjection(params.Projection))

	if params.Sort != nil {
		c.Sort(query.ParseSort(params.Sort))
	}

	return c, nil
}

// GetMore returns the next batch of the registered cursor with the given ID.
//
// The cursor is closed and removed from the registry when it is exhausted.
func (h *Handler) GetMore(ctx context.Context, id int64) (res []*types.Document, err error) {
	ctx, end := h.startOp(ctx, "getMore", "", "")
	defer end(&err)

	c := h.cursors.Get(id)
	if c == nil {
		msg := fmt.Sprintf("cursor id %d not found", id)
		return nil, handlererrors.NewCommandErrorMsgWithArgument(handlererrors.ErrCursorNotFound, msg, "getMore")
	}

	if res, err = c.NextBatch(ctx); err != nil {
		return nil, lazyerrors.Error(err)
	}

	if c.State() == cursor.Exhausted {
		h.L.Debug("Cursor exhausted", zap.Int64("id", id))
		c.Close()
	}

	return res, nil
}

// KillCursor closes the registered cursor with the given ID.
func (h *Handler) KillCursor(ctx context.Context, id int64) (err error) {
	_, end := h.startOp(ctx, "killCursors", "", "")
	defer end(&err)

	c := h.cursors.Get(id)
	if c == nil {
		msg := fmt.Sprintf("cursor id %d not found", id)
		return handlererrors.NewCommandErrorMsgWithArgument(handlererrors.ErrCursorNotFound, msg, "killCursors")
	}

	c.Close()

	return nil
}
