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

package cursor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerretDB/docmatch/internal/query"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/iterator"
	"github.com/FerretDB/docmatch/internal/util/must"
	"github.com/FerretDB/docmatch/internal/util/testutil"
)

// indexed returns n documents {_id: i, i: i} for i in [0, n).
func indexed(n int) []*types.Document {
	res := make([]*types.Document, n)
	for i := range res {
		res[i] = must.NotFail(types.NewDocument("_id", int32(i), "i", int32(i)))
	}

	return res
}

// countingSource returns a source over docs and a pointer to the number of its calls.
func countingSource(docs []*types.Document) (Source, *int) {
	var calls int

	return func(context.Context) ([]*types.Document, error) {
		calls++
		return docs, nil
	}, &calls
}

// idsOf returns _id values of given documents.
func idsOf(docs []*types.Document) []any {
	res := make([]any, len(docs))
	for i, d := range docs {
		res[i] = must.NotFail(d.Get("_id"))
	}

	return res
}

func TestCursorSkipLimit(t *testing.T) {
	t.Parallel()

	ctx := testutil.Ctx(t)

	docs := indexed(10)

	// reverse source order so sorting matters
	reversed := make([]*types.Document, len(docs))
	for i, d := range docs {
		reversed[len(docs)-1-i] = d
	}

	c := New(SliceSource(reversed), nil).
		Sort(query.ParseSort(must.NotFail(types.NewDocument("i", int32(1))))).
		Skip(2).
		Limit(3)

	res, err := c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{int32(2), int32(3), int32(4)}, idsOf(res))
	assert.Equal(t, Exhausted, c.State())
}

func TestCursorPipeline(t *testing.T) {
	t.Parallel()

	ctx := testutil.Ctx(t)

	docs := []*types.Document{
		must.NotFail(types.NewDocument("_id", "a", "age", int32(30), "name", "A")),
		must.NotFail(types.NewDocument("_id", "b", "age", int32(25), "name", "B")),
		must.NotFail(types.NewDocument("_id", "c", "age", int32(35), "name", "C")),
		must.NotFail(types.NewDocument("_id", "d", "name", "D")),
	}

	for name, tc := range map[string]struct {
		filter     *types.Document
		sort       *types.Document
		projection *types.Document
		skip       int64
		limit      int64
		expected   []*types.Document
	}{
		"All": {
			expected: docs,
		},
		"SortAge": {
			filter: must.NotFail(types.NewDocument("age", must.NotFail(types.NewDocument("$exists", true)))),
			sort:   must.NotFail(types.NewDocument("age", int32(1))),
			expected: []*types.Document{
				docs[1], docs[0], docs[2],
			},
		},
		"SortByProjectedOutField": {
			sort:       must.NotFail(types.NewDocument("age", int32(-1))),
			projection: must.NotFail(types.NewDocument("name", int32(1), "_id", int32(0))),
			limit:      2,
			expected: []*types.Document{
				must.NotFail(types.NewDocument("name", "C")),
				must.NotFail(types.NewDocument("name", "A")),
			},
		},
		"NegativeSkipLimit": {
			skip:     -1,
			limit:    -5,
			expected: docs,
		},
		"SkipPastEnd": {
			skip:     10,
			expected: []*types.Document{},
		},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var sort *query.Sort
			if tc.sort != nil {
				sort = query.ParseSort(tc.sort)
			}

			c := New(SliceSource(docs), query.ParseFilter(tc.filter)).
				Sort(sort).
				Project(query.ParseProjection(tc.projection)).
				Skip(tc.skip).
				Limit(tc.limit)

			res, err := c.All(ctx)
			require.NoError(t, err)
			testutil.AssertEqualSlices(t, tc.expected, res)
			require.NoError(t, c.Err())
		})
	}
}

func TestCursorStates(t *testing.T) {
	t.Parallel()

	ctx := testutil.Ctx(t)

	src, calls := countingSource(indexed(3))
	c := New(src, nil)
	assert.Equal(t, Unexecuted, c.State())
	assert.Equal(t, 0, c.Remaining())

	doc, err := c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(0), must.NotFail(doc.Get("_id")))
	assert.Equal(t, Cached, c.State())
	assert.Equal(t, 2, c.Remaining())

	l, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, l)

	_, err = c.Next(ctx)
	require.NoError(t, err)
	_, err = c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, Exhausted, c.State())

	_, err = c.Next(ctx)
	assert.ErrorIs(t, err, iterator.ErrIteratorDone)

	c.Rewind()
	assert.Equal(t, Cached, c.State())

	res, err := c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{int32(0), int32(1), int32(2)}, idsOf(res))

	assert.Equal(t, 1, *calls, "source should be called once")
}

func TestCursorDeterminism(t *testing.T) {
	t.Parallel()

	ctx := testutil.Ctx(t)

	c := New(SliceSource(indexed(5)), nil).Sort(query.NewSort(query.SortKey{Field: "i", Order: types.Descending}))

	first, err := c.All(ctx)
	require.NoError(t, err)

	c.Rewind()

	second, err := c.All(ctx)
	require.NoError(t, err)

	testutil.AssertEqualSlices(t, first, second)
}

func TestCursorChainingAfterExecution(t *testing.T) {
	t.Parallel()

	ctx := testutil.Ctx(t)

	c := New(SliceSource(indexed(5)), nil).Limit(2)

	_, err := c.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Err())

	c.Limit(4).Skip(1).Sort(query.NewSort(query.SortKey{Field: "i", Order: types.Descending}))
	assert.ErrorIs(t, c.Err(), ErrExecuted)

	c.Rewind()

	res, err := c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{int32(0), int32(1)}, idsOf(res))
}

func TestCursorBatches(t *testing.T) {
	t.Parallel()

	ctx := testutil.Ctx(t)

	c := New(SliceSource(indexed(5)), nil).BatchSize(2)

	var batches [][]any

	for {
		batch, err := c.NextBatch(ctx)
		require.NoError(t, err)

		if len(batch) == 0 {
			break
		}

		batches = append(batches, idsOf(batch))
	}

	expected := [][]any{
		{int32(0), int32(1)},
		{int32(2), int32(3)},
		{int32(4)},
	}
	assert.Equal(t, expected, batches)
	assert.Equal(t, Exhausted, c.State())

	c = New(SliceSource(indexed(5)), nil)
	batch, err := c.NextBatch(ctx)
	require.NoError(t, err)
	assert.Len(t, batch, 5)
}

func TestCursorClone(t *testing.T) {
	t.Parallel()

	ctx := testutil.Ctx(t)

	src, calls := countingSource(indexed(10))

	c := New(src, query.ParseFilter(must.NotFail(types.NewDocument("i", must.NotFail(types.NewDocument("$gte", int32(3))))))).
		Sort(query.NewSort(query.SortKey{Field: "i", Order: types.Descending})).
		Skip(1).
		Limit(2).
		Project(query.ParseProjection(must.NotFail(types.NewArray("i")))).
		BatchSize(1)

	clone := c.Clone()

	expected, err := c.All(ctx)
	require.NoError(t, err)

	assert.Equal(t, Unexecuted, clone.State())

	batch, err := clone.NextBatch(ctx)
	require.NoError(t, err)
	assert.Len(t, batch, 1)

	clone.Rewind()

	actual, err := clone.All(ctx)
	require.NoError(t, err)

	testutil.AssertEqualSlices(t, expected, actual)
	assert.Equal(t, []any{int32(8), int32(7)}, idsOf(actual))
	assert.Equal(t, 2, *calls)
}

func TestCursorSourceError(t *testing.T) {
	t.Parallel()

	ctx := testutil.Ctx(t)

	srcErr := errors.New("boom")

	fail := true
	src := func(context.Context) ([]*types.Document, error) {
		if fail {
			return nil, srcErr
		}

		return indexed(1), nil
	}

	c := New(src, nil)

	_, err := c.Next(ctx)
	assert.ErrorIs(t, err, srcErr)
	assert.Equal(t, Unexecuted, c.State())

	fail = false

	res, err := c.All(ctx)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestCursorDoesNotModifySource(t *testing.T) {
	t.Parallel()

	ctx := testutil.Ctx(t)

	docs := indexed(2)

	res, err := New(SliceSource(docs), nil).All(ctx)
	require.NoError(t, err)

	res[0].Remove("i")

	assert.True(t, docs[0].Has("i"))
}

func TestCursorEmpty(t *testing.T) {
	t.Parallel()

	ctx := testutil.Ctx(t)

	c := New(SliceSource(nil), nil)

	_, err := c.Next(ctx)
	assert.ErrorIs(t, err, iterator.ErrIteratorDone)
	assert.Equal(t, Exhausted, c.State())

	c.Rewind()
	assert.Equal(t, Exhausted, c.State())
}
