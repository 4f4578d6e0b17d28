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

// Package integration provides docmatch integration tests.
package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/FerretDB/docmatch/docmatch"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/convert"
	"github.com/FerretDB/docmatch/internal/util/testutil"
)

// FindAll returns all documents matching the filter, sorted by _id.
func FindAll(tb testing.TB, ctx context.Context, collection *docmatch.Collection, filter any) []bson.D {
	tb.Helper()

	cursor, err := collection.Find(ctx, filter, docmatch.Find().SetSort(bson.D{{"_id", 1}}))
	require.NoError(tb, err)

	return FetchAll(tb, ctx, cursor)
}

// FetchAll fetches all documents from the cursor, closing it.
func FetchAll(tb testing.TB, ctx context.Context, cursor *docmatch.Cursor) []bson.D {
	tb.Helper()

	res, err := cursor.All(ctx)
	require.NoError(tb, err)
	require.NoError(tb, cursor.Close(ctx))

	return res
}

// CollectIDs returns all _id values from given documents.
//
// The order is preserved.
func CollectIDs(tb testing.TB, docs []bson.D) []any {
	tb.Helper()

	ids := make([]any, len(docs))
	for i, doc := range docs {
		id, ok := doc.Map()["_id"]
		require.True(tb, ok, "document without _id: %v", doc)
		ids[i] = id
	}

	return ids
}

// AssertEqualDocuments asserts that two documents are identical:
// equal, with the same numeric types and the same field order.
func AssertEqualDocuments(tb testing.TB, expected, actual bson.D) bool {
	tb.Helper()

	return testutil.AssertEqual(tb, toDocument(tb, expected), toDocument(tb, actual))
}

// AssertEqualDocumentsSlice asserts that two document slices are identical.
func AssertEqualDocumentsSlice(tb testing.TB, expected, actual []bson.D) bool {
	tb.Helper()

	e := make([]*types.Document, len(expected))
	for i, doc := range expected {
		e[i] = toDocument(tb, doc)
	}

	a := make([]*types.Document, len(actual))
	for i, doc := range actual {
		a[i] = toDocument(tb, doc)
	}

	return testutil.AssertEqualSlices(tb, e, a)
}

// toDocument converts bson.D to *types.Document.
func toDocument(tb testing.TB, doc bson.D) *types.Document {
	tb.Helper()

	res, err := convert.Document(doc)
	require.NoError(tb, err)

	return res
}
