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

package backends_test // to avoid import cycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerretDB/docmatch/internal/backends"
	"github.com/FerretDB/docmatch/internal/backends/memory"
	"github.com/FerretDB/docmatch/internal/backends/sqlite"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/must"
	"github.com/FerretDB/docmatch/internal/util/testutil"
)

// testBackends returns all backends configured for testing contracts.
func testBackends(t *testing.T) map[string]backends.Backend {
	t.Helper()

	res := map[string]backends.Backend{}

	{
		b := memory.NewBackend(&memory.NewBackendParams{
			L: testutil.Logger(t).Named("memory"),
		})
		t.Cleanup(b.Close)

		res["memory"] = b
	}

	{
		b, err := sqlite.NewBackend(testutil.Ctx(t), &sqlite.NewBackendParams{
			L: testutil.SLogger(t),
		})
		require.NoError(t, err)
		t.Cleanup(b.Close)

		res["sqlite"] = b
	}

	return res
}

// testCollection returns a collection handle for the given backend.
func testCollection(t *testing.T, b backends.Backend, dbName, collName string) backends.Collection {
	t.Helper()

	db, err := b.Database(dbName)
	require.NoError(t, err)

	c, err := db.Collection(collName)
	require.NoError(t, err)

	return c
}

// assertErrorCode asserts that err is *Error with one of the given error codes.
func assertErrorCode(t *testing.T, err error, code backends.ErrorCode, codes ...backends.ErrorCode) {
	t.Helper()

	assert.True(t, backends.ErrorCodeIs(err, code, codes...), "err = %v", err)
}

func doc(pairs ...any) *types.Document {
	return must.NotFail(types.NewDocument(pairs...))
}

func TestInsertQuery(t *testing.T) {
	t.Parallel()

	for name, b := range testBackends(t) {
		name, b := name, b
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)
			c := testCollection(t, b, "db", "coll")

			res, err := c.Query(ctx)
			require.NoError(t, err)
			assert.Empty(t, res.Docs)

			docs := []*types.Document{
				doc("_id", int32(2), "v", "b"),
				doc("_id", int32(1), "v", "a"),
			}

			ins, err := c.Insert(ctx, &backends.InsertParams{Docs: docs})
			require.NoError(t, err)
			assert.Equal(t, int64(2), ins.Inserted)

			ins, err = c.Insert(ctx, &backends.InsertParams{Docs: []*types.Document{doc("_id", int32(3), "v", "c")}})
			require.NoError(t, err)
			assert.Equal(t, int64(1), ins.Inserted)

			res, err = c.Query(ctx)
			require.NoError(t, err)

			expected := []*types.Document{
				doc("_id", int32(2), "v", "b"),
				doc("_id", int32(1), "v", "a"),
				doc("_id", int32(3), "v", "c"),
			}
			testutil.AssertEqualSlices(t, expected, res.Docs)

			// caller owns both inserted and returned documents
			must.NoError(docs[0].Set("v", "changed"))
			must.NoError(res.Docs[1].Set("v", "changed"))

			res, err = c.Query(ctx)
			require.NoError(t, err)
			testutil.AssertEqualSlices(t, expected, res.Docs)

			count, err := c.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)
		})
	}
}

func TestInsertErrors(t *testing.T) {
	t.Parallel()

	for name, b := range testBackends(t) {
		name, b := name, b
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)
			c := testCollection(t, b, "db", "coll")

			_, err := c.Insert(ctx, &backends.InsertParams{Docs: []*types.Document{doc("_id", "a")}})
			require.NoError(t, err)

			t.Run("DuplicateStored", func(t *testing.T) {
				_, err := c.Insert(ctx, &backends.InsertParams{Docs: []*types.Document{
					doc("_id", "b"),
					doc("_id", "a"),
				}})
				assertErrorCode(t, err, backends.ErrorCodeInsertDuplicateID)
				assert.Equal(t, "a", backends.ErrorArgument(err))
			})

			t.Run("DuplicateInBatch", func(t *testing.T) {
				_, err := c.Insert(ctx, &backends.InsertParams{Docs: []*types.Document{
					doc("_id", "c"),
					doc("_id", "c"),
				}})
				assertErrorCode(t, err, backends.ErrorCodeInsertDuplicateID)
			})

			t.Run("MissingID", func(t *testing.T) {
				_, err := c.Insert(ctx, &backends.InsertParams{Docs: []*types.Document{doc("v", int32(1))}})
				assertErrorCode(t, err, backends.ErrorCodeInsertMissingID)
			})

			// failed inserts do not insert anything
			count, err := c.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			// _id values of different types are different
			_, err = c.Insert(ctx, &backends.InsertParams{Docs: []*types.Document{
				doc("_id", int32(1)),
				doc("_id", int64(1)),
				doc("_id", float64(1)),
			}})
			require.NoError(t, err)
		})
	}
}

func TestUpdateDelete(t *testing.T) {
	t.Parallel()

	for name, b := range testBackends(t) {
		name, b := name, b
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)
			c := testCollection(t, b, "db", "coll")

			upd, err := c.Update(ctx, &backends.UpdateParams{Docs: []*types.Document{doc("_id", int32(1))}})
			require.NoError(t, err)
			assert.Equal(t, int64(0), upd.Updated)

			del, err := c.Delete(ctx, &backends.DeleteParams{IDs: []any{int32(1)}})
			require.NoError(t, err)
			assert.Equal(t, int64(0), del.Deleted)

			_, err = c.Insert(ctx, &backends.InsertParams{Docs: []*types.Document{
				doc("_id", int32(1), "v", int32(1)),
				doc("_id", int32(2), "v", int32(2)),
				doc("_id", int32(3), "v", int32(3)),
			}})
			require.NoError(t, err)

			upd, err = c.Update(ctx, &backends.UpdateParams{Docs: []*types.Document{
				doc("_id", int32(1), "w", "new"),
				doc("_id", int32(42), "w", "missing"),
			}})
			require.NoError(t, err)
			assert.Equal(t, int64(1), upd.Updated)

			del, err = c.Delete(ctx, &backends.DeleteParams{IDs: []any{int32(2), int64(3), int32(42)}})
			require.NoError(t, err)
			assert.Equal(t, int64(1), del.Deleted)

			res, err := c.Query(ctx)
			require.NoError(t, err)

			expected := []*types.Document{
				doc("_id", int32(1), "w", "new"),
				doc("_id", int32(3), "v", int32(3)),
			}
			testutil.AssertEqualSlices(t, expected, res.Docs)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for name, b := range testBackends(t) {
		name, b := name, b
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)
			c := testCollection(t, b, "db", "coll")

			expected := doc(
				"_id", types.NewObjectID(),
				"z", int32(1),
				"a", int64(1),
				"m", float64(1),
				"nested", doc("y", "y", "b", types.Null),
				"array", must.NotFail(types.NewArray(int32(1), "two", false)),
			)

			_, err := c.Insert(ctx, &backends.InsertParams{Docs: []*types.Document{expected}})
			require.NoError(t, err)

			res, err := c.Query(ctx)
			require.NoError(t, err)
			require.Len(t, res.Docs, 1)

			testutil.AssertEqual(t, expected, res.Docs[0])
			assert.Equal(t, []string{"_id", "z", "a", "m", "nested", "array"}, res.Docs[0].Keys())
		})
	}
}

func TestDatabasesCollections(t *testing.T) {
	t.Parallel()

	for name, b := range testBackends(t) {
		name, b := name, b
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)

			for _, ns := range [][2]string{{"db2", "b"}, {"db1", "c"}, {"db1", "a"}} {
				c := testCollection(t, b, ns[0], ns[1])
				_, err := c.Insert(ctx, &backends.InsertParams{Docs: []*types.Document{doc("_id", int32(1))}})
				require.NoError(t, err)
			}

			dbs, err := b.ListDatabases(ctx)
			require.NoError(t, err)
			assert.Equal(t, []backends.DatabaseInfo{{Name: "db1"}, {Name: "db2"}}, dbs.Databases)

			db1, err := b.Database("db1")
			require.NoError(t, err)

			colls, err := db1.ListCollections(ctx)
			require.NoError(t, err)
			assert.Equal(t, []backends.CollectionInfo{{Name: "a"}, {Name: "c"}}, colls.Collections)

			// deleting all documents keeps the collection
			c, err := db1.Collection("a")
			require.NoError(t, err)
			_, err = c.Delete(ctx, &backends.DeleteParams{IDs: []any{int32(1)}})
			require.NoError(t, err)

			colls, err = db1.ListCollections(ctx)
			require.NoError(t, err)
			assert.Len(t, colls.Collections, 2)

			require.NoError(t, db1.DropCollection(ctx, &backends.DropCollectionParams{Name: "a"}))
			err = db1.DropCollection(ctx, &backends.DropCollectionParams{Name: "a"})
			assertErrorCode(t, err, backends.ErrorCodeCollectionDoesNotExist)

			require.NoError(t, db1.DropCollection(ctx, &backends.DropCollectionParams{Name: "c"}))

			dbs, err = b.ListDatabases(ctx)
			require.NoError(t, err)
			assert.Equal(t, []backends.DatabaseInfo{{Name: "db2"}}, dbs.Databases)

			count, err := c.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, count)

			_, err = b.Database("invalid name")
			assertErrorCode(t, err, backends.ErrorCodeDatabaseNameIsInvalid)

			_, err = db1.Collection("$invalid")
			assertErrorCode(t, err, backends.ErrorCodeCollectionNameIsInvalid)

			err = db1.DropCollection(ctx, &backends.DropCollectionParams{Name: ""})
			assertErrorCode(t, err, backends.ErrorCodeCollectionNameIsInvalid)
		})
	}
}

func TestCreateDropDatabase(t *testing.T) {
	t.Parallel()

	for name, b := range testBackends(t) {
		name, b := name, b
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)

			db, err := b.Database("db")
			require.NoError(t, err)

			require.NoError(t, db.CreateCollection(ctx, &backends.CreateCollectionParams{Name: "empty"}))

			err = db.CreateCollection(ctx, &backends.CreateCollectionParams{Name: "empty"})
			assertErrorCode(t, err, backends.ErrorCodeCollectionAlreadyExists)

			err = db.CreateCollection(ctx, &backends.CreateCollectionParams{Name: "$invalid"})
			assertErrorCode(t, err, backends.ErrorCodeCollectionNameIsInvalid)

			c := testCollection(t, b, "db", "full")
			_, err = c.Insert(ctx, &backends.InsertParams{Docs: []*types.Document{doc("_id", int32(1))}})
			require.NoError(t, err)

			err = db.CreateCollection(ctx, &backends.CreateCollectionParams{Name: "full"})
			assertErrorCode(t, err, backends.ErrorCodeCollectionAlreadyExists)

			colls, err := db.ListCollections(ctx)
			require.NoError(t, err)
			assert.Equal(t, []backends.CollectionInfo{{Name: "empty"}, {Name: "full"}}, colls.Collections)

			dbs, err := b.ListDatabases(ctx)
			require.NoError(t, err)
			assert.Equal(t, []backends.DatabaseInfo{{Name: "db"}}, dbs.Databases)

			require.NoError(t, b.DropDatabase(ctx, &backends.DropDatabaseParams{Name: "db"}))

			dbs, err = b.ListDatabases(ctx)
			require.NoError(t, err)
			assert.Empty(t, dbs.Databases)

			count, err := c.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, count)

			err = b.DropDatabase(ctx, &backends.DropDatabaseParams{Name: "db"})
			assertErrorCode(t, err, backends.ErrorCodeDatabaseDoesNotExist)

			err = b.DropDatabase(ctx, &backends.DropDatabaseParams{Name: "invalid name"})
			assertErrorCode(t, err, backends.ErrorCodeDatabaseNameIsInvalid)
		})
	}
}
