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

// Package cursor provides lazy, chainable cursors over query results and the cursor registry.
//
// A cursor is created unexecuted with a document source and a filter,
// configured with chaining calls, and executed on first consumption:
// the source is called once, the results are filtered, sorted, skipped, limited, projected and cached.
// Consumption then walks the cache; Rewind restarts from the first cached document without re-executing.
//
// Cursors are not safe for concurrent use; Registry is.
package cursor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FerretDB/docmatch/internal/query"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/iterator"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
)

// State represents a cursor state.
type State int8

// Cursor states.
const (
	Unexecuted State = iota + 1 // unexecuted
	Executing                   // executing
	Cached                      // cached
	Exhausted                   // exhausted
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Unexecuted:
		return "unexecuted"
	case Executing:
		return "executing"
	case Cached:
		return "cached"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int8(s))
	}
}

// ErrExecuted is reported by Err when a chaining call was made after execution.
// Such calls do not change the cursor.
var ErrExecuted = errors.New("cursor: chaining call after execution")

// Source returns the full candidate document set.
//
// It is called at most once per successful execution.
// Returned documents must not be modified by the source afterwards.
type Source func(ctx context.Context) ([]*types.Document, error)

// SliceSource returns a Source for the given documents.
func SliceSource(docs []*types.Document) Source {
	return func(context.Context) ([]*types.Document, error) {
		return docs, nil
	}
}

// Cursor is a lazy, chainable, stateful handle over a query result.
//
//nolint:vet // for readability
type Cursor struct {
	src        Source
	filter     *query.Filter
	sort       *query.Sort
	projection *query.Projection
	skip       int64
	limit      int64
	batchSize  int32

	state   State
	results []*types.Document
	pos     int
	err     error

	// set by Registry
	ID         int64
	DB         string
	Collection string
	r          *Registry
	created    time.Time
}

// New returns a new unexecuted cursor over documents returned by src that match filter.
//
// Nil filter matches all documents.
func New(src Source, filter *query.Filter) *Cursor {
	if src == nil {
		panic("cursor.New: src is nil")
	}

	return &Cursor{
		src:     src,
		filter:  filter,
		state:   Unexecuted,
		created: time.Now(),
	}
}

// chain reports whether a chaining call is allowed, recording ErrExecuted if it is not.
func (c *Cursor) chain() bool {
	if c.state == Unexecuted {
		return true
	}

	c.err = ErrExecuted

	return false
}

// Sort sets the sort specification.
func (c *Cursor) Sort(sort *query.Sort) *Cursor {
	if c.chain() {
		c.sort = sort
	}

	return c
}

// Skip sets the number of documents to skip. Zero or negative means no skip.
func (c *Cursor) Skip(n int64) *Cursor {
	if c.chain() {
		c.skip = max(n, 0)
	}

	return c
}

// Limit sets the maximum number of documents. Zero or negative means no limit.
func (c *Cursor) Limit(n int64) *Cursor {
	if c.chain() {
		c.limit = max(n, 0)
	}

	return c
}

// Project sets the projection.
func (c *Cursor) Project(projection *query.Projection) *Cursor {
	if c.chain() {
		c.projection = projection
	}

	return c
}

// BatchSize sets the number of documents returned by NextBatch. Zero or negative means all remaining.
func (c *Cursor) BatchSize(n int32) *Cursor {
	if c.chain() {
		c.batchSize = max(n, 0)
	}

	return c
}

// State returns the current cursor state.
func (c *Cursor) State() State {
	return c.state
}

// Err returns ErrExecuted if a chaining call was made after execution, nil otherwise.
func (c *Cursor) Err() error {
	return c.err
}

// Filter returns the cursor's filter.
func (c *Cursor) Filter() *query.Filter {
	return c.filter
}

// Clone returns a new unexecuted cursor with the same source, filter, sort, projection,
// skip, limit and batch size.
func (c *Cursor) Clone() *Cursor {
	return &Cursor{
		src:        c.src,
		filter:     c.filter,
		sort:       c.sort,
		projection: c.projection,
		skip:       c.skip,
		limit:      c.limit,
		batchSize:  c.batchSize,
		state:      Unexecuted,
		created:    time.Now(),
	}
}

// execute executes the cursor if it is not executed yet.
func (c *Cursor) execute(ctx context.Context) error {
	if c.state != Unexecuted {
		return nil
	}

	c.state = Executing

	docs, err := c.src(ctx)
	if err != nil {
		c.state = Unexecuted
		return lazyerrors.Error(err)
	}

	c.results = Execute(docs, c.filter, c.sort, c.skip, c.limit, c.projection)
	c.pos = 0
	c.state = Cached

	if len(c.results) == 0 {
		c.state = Exhausted
	}

	return nil
}

// Execute runs the query pipeline over the given documents:
// filter, then stable sort, then skip, then limit, then projection.
//
// Returned documents are copies; given documents are not modified.
func Execute(docs []*types.Document, filter *query.Filter, sort *query.Sort, skip, limit int64, projection *query.Projection) []*types.Document {
	matched := make([]*types.Document, 0, len(docs))

	for _, doc := range docs {
		if filter.Matches(doc) {
			matched = append(matched, doc)
		}
	}

	sort.SortDocuments(matched)

	if skip > 0 {
		matched = matched[min(skip, int64(len(matched))):]
	}

	if limit > 0 && limit < int64(len(matched)) {
		matched = matched[:limit]
	}

	res := make([]*types.Document, len(matched))
	for i, doc := range matched {
		res[i] = projection.Project(doc)
	}

	return res
}

// Next returns the next document.
//
// It executes the cursor on the first call.
// At the end, it returns iterator.ErrIteratorDone; that is not a failure.
func (c *Cursor) Next(ctx context.Context) (*types.Document, error) {
	if err := c.execute(ctx); err != nil {
		return nil, lazyerrors.Error(err)
	}

	if c.pos >= len(c.results) {
		c.state = Exhausted
		return nil, iterator.ErrIteratorDone
	}

	doc := c.results[c.pos]
	c.pos++

	if c.pos == len(c.results) {
		c.state = Exhausted
	}

	return doc, nil
}

// All returns all remaining documents and exhausts the cursor.
func (c *Cursor) All(ctx context.Context) ([]*types.Document, error) {
	if err := c.execute(ctx); err != nil {
		return nil, lazyerrors.Error(err)
	}

	res := c.results[c.pos:]
	c.pos = len(c.results)
	c.state = Exhausted

	return res, nil
}

// NextBatch returns up to batch size remaining documents (all remaining if batch size is not set).
// It returns an empty slice when the cursor is exhausted.
func (c *Cursor) NextBatch(ctx context.Context) ([]*types.Document, error) {
	if err := c.execute(ctx); err != nil {
		return nil, lazyerrors.Error(err)
	}

	n := len(c.results) - c.pos
	if c.batchSize > 0 {
		n = min(n, int(c.batchSize))
	}

	res := c.results[c.pos : c.pos+n]
	c.pos += n

	if c.pos == len(c.results) {
		c.state = Exhausted
	}

	return res, nil
}

// Len executes the cursor if needed and returns the total number of cached documents.
func (c *Cursor) Len(ctx context.Context) (int, error) {
	if err := c.execute(ctx); err != nil {
		return 0, lazyerrors.Error(err)
	}

	return len(c.results), nil
}

// Remaining returns the number of cached documents not yet consumed.
// It returns 0 for unexecuted cursors.
func (c *Cursor) Remaining() int {
	return len(c.results) - c.pos
}

// Rewind resets the position of an executed cursor to the first cached document.
// It does nothing for unexecuted cursors.
func (c *Cursor) Rewind() {
	if c.state == Unexecuted || c.state == Executing {
		return
	}

	c.pos = 0
	c.state = Cached

	if len(c.results) == 0 {
		c.state = Exhausted
	}
}

// Close drops cached results and removes the cursor from the registry, if any.
func (c *Cursor) Close() {
	c.results = nil
	c.pos = 0
	c.state = Exhausted

	if c.r != nil {
		c.r.remove(c.ID)
		c.r = nil
	}
}
