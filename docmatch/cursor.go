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

package docmatch

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/FerretDB/docmatch/internal/cursor"
	"github.com/FerretDB/docmatch/internal/handler"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/convert"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
)

// Cursor iterates over documents returned by Find.
//
// Documents are fetched in batches; the first batch is produced on the first call to Next.
// Cursor is not safe for concurrent use.
type Cursor struct {
	h     *handler.Handler
	c     *cursor.Cursor
	batch []*types.Document
	cur   bson.D
	err   error

	exhausted bool // no more batches
	done      bool
}

// newCursor wraps registered handler's cursor.
func newCursor(h *handler.Handler, c *cursor.Cursor) *Cursor {
	return &Cursor{
		h: h,
		c: c,
	}
}

// ID returns the cursor ID.
func (c *Cursor) ID() int64 {
	return c.c.ID
}

// Next advances the cursor to the next document.
// It returns false when there are no more documents or an error occurred; check Err in that case.
func (c *Cursor) Next(ctx context.Context) bool {
	if c.done {
		return false
	}

	if len(c.batch) == 0 && !c.exhausted {
		batch, err := c.h.GetMore(ctx, c.c.ID)
		if err != nil {
			c.err = publicError(err)
			c.done = true
			c.c.Close()

			return false
		}

		c.batch = batch
		c.exhausted = c.c.State() == cursor.Exhausted
	}

	if len(c.batch) == 0 {
		c.done = true
		c.c.Close()

		return false
	}

	c.cur = convert.Doc(c.batch[0])
	c.batch = c.batch[1:]

	return true
}

// Current returns the current document.
func (c *Cursor) Current() bson.D {
	return c.cur
}

// Decode unmarshals the current document into v the same way bson.Unmarshal does.
func (c *Cursor) Decode(v any) error {
	if c.cur == nil {
		return errors.New("docmatch: no current document")
	}

	b, err := bson.Marshal(c.cur)
	if err != nil {
		return lazyerrors.Error(err)
	}

	return bson.Unmarshal(b, v)
}

// All returns all remaining documents and closes the cursor.
func (c *Cursor) All(ctx context.Context) ([]bson.D, error) {
	defer c.Close(ctx)

	res := []bson.D{}

	for c.Next(ctx) {
		res = append(res, c.Current())
	}

	if c.err != nil {
		return nil, c.err
	}

	return res, nil
}

// RemainingBatchLength returns the number of documents left in the current batch.
func (c *Cursor) RemainingBatchLength() int {
	return len(c.batch)
}

// Err returns the last error, if any.
func (c *Cursor) Err() error {
	return c.err
}

// Close closes the cursor and releases its resources.
// It is safe to call it multiple times.
func (c *Cursor) Close(ctx context.Context) error {
	c.done = true
	c.batch = nil
	c.c.Close()

	return nil
}

// documents converts documents to bson.D values.
func documents(docs []*types.Document) []bson.D {
	res := make([]bson.D, len(docs))
	for i, d := range docs {
		res[i] = convert.Doc(d)
	}

	return res
}
