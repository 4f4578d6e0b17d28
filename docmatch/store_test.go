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

package docmatch_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/AlekSi/pointer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/FerretDB/docmatch/docmatch"
	"github.com/FerretDB/docmatch/internal/util/testutil"
)

// testStores returns stores for all backends.
func testStores(t *testing.T) map[string]*docmatch.Store {
	t.Helper()

	res := map[string]*docmatch.Store{}

	for _, backend := range []string{"memory", "sqlite"} {
		s, err := docmatch.Open(testutil.Ctx(t), &docmatch.Config{
			Backend: backend,
			Logger:  testutil.Logger(t).Named(backend),
		})
		require.NoError(t, err)
		t.Cleanup(s.Close)

		res[backend] = s
	}

	return res
}

// setup returns a collection with five documents with _id 1 to 5 and v = 10 * _id.
func setup(t *testing.T, ctx context.Context, s *docmatch.Store) *docmatch.Collection {
	t.Helper()

	c := s.Collection("db", "coll")

	docs := make([]any, 5)
	for i := range docs {
		docs[i] = bson.D{{"_id", int32(i + 1)}, {"v", int32((i + 1) * 10)}, {"odd", i%2 == 0}}
	}

	_, err := c.InsertMany(ctx, docs)
	require.NoError(t, err)

	return c
}

// ids returns _id values of the documents.
func ids(docs []bson.D) []any {
	res := make([]any, len(docs))
	for i, d := range docs {
		res[i] = d[0].Value
	}

	return res
}

func TestInsertFind(t *testing.T) {
	t.Parallel()

	for name, s := range testStores(t) {
		s := s

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)
			c := setup(t, ctx, s)

			res, err := c.InsertOne(ctx, bson.M{"v": 1})
			require.NoError(t, err)
			assert.IsType(t, primitive.ObjectID{}, res.InsertedID)

			_, err = c.InsertOne(ctx, bson.D{{"_id", int32(1)}})
			assert.True(t, docmatch.IsDuplicateKeyError(err), "%v", err)

			cur, err := c.Find(ctx, bson.D{{"odd", true}}, docmatch.Find().SetSort(bson.D{{"v", -1}}))
			require.NoError(t, err)

			docs, err := cur.All(ctx)
			require.NoError(t, err)
			assert.Equal(t, []any{int32(5), int32(3), int32(1)}, ids(docs))

			opts := &docmatch.FindOptions{
				Sort:       bson.D{{"_id", 1}},
				Projection: bson.D{{"v", 1}, {"_id", 0}},
				Skip:       pointer.ToInt64(1),
				Limit:      pointer.ToInt64(2),
			}
			cur, err = c.Find(ctx, bson.D{{"v", bson.D{{"$lte", 50}}}}, opts)
			require.NoError(t, err)

			docs, err = cur.All(ctx)
			require.NoError(t, err)
			assert.Equal(t, []bson.D{{{"v", int32(20)}}, {{"v", int32(30)}}}, docs)

			doc, err := c.FindOne(ctx, bson.D{{"_id", int32(4)}})
			require.NoError(t, err)
			assert.Equal(t, bson.D{{"_id", int32(4)}, {"v", int32(40)}, {"odd", false}}, doc)

			var decoded struct {
				ID int32 `bson:"_id"`
				V  int32 `bson:"v"`
			}

			cur, err = c.Find(ctx, bson.D{{"_id", int32(2)}})
			require.NoError(t, err)
			require.True(t, cur.Next(ctx))
			require.NoError(t, cur.Decode(&decoded))
			assert.Equal(t, int32(20), decoded.V)
			assert.False(t, cur.Next(ctx))
			assert.NoError(t, cur.Err())
			assert.NoError(t, cur.Close(ctx))

			_, err = c.FindOne(ctx, bson.D{{"_id", int32(42)}})
			assert.ErrorIs(t, err, docmatch.ErrNoDocuments)
		})
	}
}

func TestInsertManyOrdered(t *testing.T) {
	t.Parallel()

	for name, s := range testStores(t) {
		s := s

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)
			c := s.Collection("db", "ordered")

			res, err := c.InsertMany(ctx, []any{
				bson.D{{"_id", int32(1)}},
				bson.D{{"_id", int32(2)}},
				bson.D{{"_id", int32(1)}},
				bson.D{{"_id", int32(3)}},
			})
			assert.True(t, docmatch.IsDuplicateKeyError(err), "%v", err)
			require.NotNil(t, res)
			assert.Equal(t, []any{int32(1), int32(2)}, res.InsertedIDs)

			n, err := c.CountDocuments(ctx, bson.D{})
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)
		})
	}
}

func TestCursorBatches(t *testing.T) {
	t.Parallel()

	for name, s := range testStores(t) {
		s := s

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)
			c := setup(t, ctx, s)

			cur, err := c.Find(ctx, nil, docmatch.Find().SetBatchSize(2))
			require.NoError(t, err)

			var actual []any
			var batches []int

			for cur.Next(ctx) {
				actual = append(actual, cur.Current()[0].Value)
				batches = append(batches, cur.RemainingBatchLength())
			}

			require.NoError(t, cur.Err())
			assert.Equal(t, []any{int32(1), int32(2), int32(3), int32(4), int32(5)}, actual)
			assert.Equal(t, []int{1, 0, 1, 0, 0}, batches)
			assert.NoError(t, cur.Close(ctx))
			assert.NoError(t, cur.Close(ctx))
		})
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	for name, s := range testStores(t) {
		s := s

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)
			c := setup(t, ctx, s)

			res, err := c.UpdateOne(ctx, bson.D{{"odd", true}}, bson.D{{"$inc", bson.D{{"v", 1}}}})
			require.NoError(t, err)
			assert.Equal(t, &docmatch.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, res)

			res, err = c.UpdateMany(ctx, bson.D{{"odd", true}}, bson.D{{"$set", bson.D{{"flag", "x"}}}})
			require.NoError(t, err)
			assert.Equal(t, &docmatch.UpdateResult{MatchedCount: 3, ModifiedCount: 3}, res)

			res, err = c.ReplaceOne(ctx, bson.D{{"_id", int32(2)}}, bson.D{{"w", "new"}})
			require.NoError(t, err)
			assert.Equal(t, &docmatch.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, res)

			doc, err := c.FindOne(ctx, bson.D{{"_id", int32(2)}})
			require.NoError(t, err)
			assert.Equal(t, bson.D{{"_id", int32(2)}, {"w", "new"}}, doc)

			doc, err = c.FindOne(ctx, bson.D{{"_id", int32(1)}})
			require.NoError(t, err)
			assert.Equal(t, bson.D{{"_id", int32(1)}, {"v", int32(11)}, {"odd", true}, {"flag", "x"}}, doc)

			res, err = c.UpdateOne(ctx, bson.D{{"_id", int32(10)}}, bson.D{{"$set", bson.D{{"v", 100}}}}, docmatch.Update().SetUpsert(true))
			require.NoError(t, err)
			assert.Equal(t, &docmatch.UpdateResult{UpsertedCount: 1, UpsertedID: int32(10)}, res)

			_, err = c.UpdateOne(ctx, nil, bson.D{{"v", 1}})
			var ce *docmatch.CommandError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, int32(2), ce.Code)
			assert.Equal(t, "BadValue", ce.Name)

			_, err = c.ReplaceOne(ctx, nil, bson.D{{"$set", bson.D{{"v", 1}}}})
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, int32(2), ce.Code)

			n, err := c.CountDocuments(ctx, nil)
			require.NoError(t, err)
			assert.Equal(t, int64(6), n)
		})
	}
}

func TestFindOneAndModify(t *testing.T) {
	t.Parallel()

	for name, s := range testStores(t) {
		s := s

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)
			c := setup(t, ctx, s)

			opts := docmatch.FindOneAndUpdate().SetSort(bson.D{{"v", -1}}).SetReturnNew(true)
			doc, err := c.FindOneAndUpdate(ctx, bson.D{{"odd", true}}, bson.D{{"$mul", bson.D{{"v", 2}}}}, opts)
			require.NoError(t, err)
			assert.Equal(t, bson.D{{"_id", int32(5)}, {"v", int32(100)}, {"odd", true}}, doc)

			doc, err = c.FindOneAndDelete(ctx, bson.D{{"odd", false}}, docmatch.FindOneAndDelete().SetProjection(bson.D{{"v", 1}}))
			require.NoError(t, err)
			assert.Equal(t, bson.D{{"_id", int32(2)}, {"v", int32(20)}}, doc)

			_, err = c.FindOneAndDelete(ctx, bson.D{{"_id", int32(2)}})
			assert.ErrorIs(t, err, docmatch.ErrNoDocuments)

			doc, err = c.FindOneAndReplace(ctx, bson.D{{"_id", int32(3)}}, bson.D{{"r", true}})
			require.NoError(t, err)
			assert.Equal(t, bson.D{{"_id", int32(3)}, {"v", int32(30)}, {"odd", true}}, doc)
		})
	}
}

func TestDeleteCountDistinct(t *testing.T) {
	t.Parallel()

	for name, s := range testStores(t) {
		s := s

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)
			c := setup(t, ctx, s)

			values, err := c.Distinct(ctx, "odd", nil)
			require.NoError(t, err)
			assert.Equal(t, []any{false, true}, values)

			n, err := c.CountDocuments(ctx, bson.D{{"v", bson.D{{"$gt", 15}}}}, docmatch.Count().SetSkip(1).SetLimit(2))
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)

			res, err := c.DeleteOne(ctx, bson.D{{"odd", true}})
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.DeletedCount)

			res, err = c.DeleteMany(ctx, bson.D{{"odd", true}})
			require.NoError(t, err)
			assert.Equal(t, int64(2), res.DeletedCount)

			n, err = c.EstimatedDocumentCount(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)
		})
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	for name, s := range testStores(t) {
		s := s

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)
			c := setup(t, ctx, s)

			docs, err := c.Aggregate(ctx, []bson.D{
				{{"$match", bson.D{{"odd", true}}}},
				{{"$sort", bson.D{{"v", -1}}}},
				{{"$limit", 2}},
				{{"$project", bson.D{{"v", 1}}}},
			})
			require.NoError(t, err)
			assert.Equal(t, []bson.D{
				{{"_id", int32(5)}, {"v", int32(50)}},
				{{"_id", int32(3)}, {"v", int32(30)}},
			}, docs)

			docs, err = c.Aggregate(ctx, bson.A{bson.D{{"$count", "n"}}})
			require.NoError(t, err)
			assert.Equal(t, []bson.D{{{"n", int32(5)}}}, docs)

			_, err = c.Aggregate(ctx, bson.A{"$match"})
			var ce *docmatch.CommandError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, int32(2), ce.Code)
		})
	}
}

func TestCollections(t *testing.T) {
	t.Parallel()

	for name, s := range testStores(t) {
		s := s

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)
			setup(t, ctx, s)

			_, err := s.Collection("other", "b").InsertOne(ctx, bson.D{{"_id", "x"}})
			require.NoError(t, err)
			_, err = s.Collection("other", "a").InsertOne(ctx, bson.D{{"_id", "y"}})
			require.NoError(t, err)

			dbs, err := s.ListDatabases(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"db", "other"}, dbs)

			colls, err := s.ListCollections(ctx, "other")
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, colls)

			require.NoError(t, s.Collection("other", "a").Drop(ctx))
			require.NoError(t, s.Collection("other", "a").Drop(ctx))

			colls, err = s.ListCollections(ctx, "other")
			require.NoError(t, err)
			assert.Equal(t, []string{"b"}, colls)

			_, err = s.Collection("db", "system.users").InsertOne(ctx, bson.D{})
			var ce *docmatch.CommandError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, int32(73), ce.Code)
		})
	}
}

func TestCreateDropDatabase(t *testing.T) {
	t.Parallel()

	for name, s := range testStores(t) {
		s := s

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)

			require.NoError(t, s.CreateCollection(ctx, "other", "empty"))

			err := s.CreateCollection(ctx, "other", "empty")
			var ce *docmatch.CommandError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, int32(48), ce.Code)
			assert.Equal(t, "NamespaceExists", ce.Name)

			colls, err := s.ListCollections(ctx, "other")
			require.NoError(t, err)
			assert.Equal(t, []string{"empty"}, colls)

			n, err := s.Collection("other", "empty").CountDocuments(ctx, bson.D{})
			require.NoError(t, err)
			assert.Zero(t, n)

			require.NoError(t, s.DropDatabase(ctx, "other"))
			require.NoError(t, s.DropDatabase(ctx, "other"))

			dbs, err := s.ListDatabases(ctx)
			require.NoError(t, err)
			assert.Empty(t, dbs)
		})
	}
}

func TestSQLitePersistence(t *testing.T) {
	t.Parallel()

	ctx := testutil.Ctx(t)
	config := &docmatch.Config{
		Backend:   "sqlite",
		SQLiteURI: "file:" + filepath.Join(t.TempDir(), "test.sqlite"),
		Logger:    testutil.Logger(t),
	}

	s, err := docmatch.Open(ctx, config)
	require.NoError(t, err)

	_, err = s.Collection("db", "coll").InsertOne(ctx, bson.D{{"_id", int32(1)}, {"v", "persisted"}})
	require.NoError(t, err)
	s.Close()

	s, err = docmatch.Open(ctx, config)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	doc, err := s.Collection("db", "coll").FindOne(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, bson.D{{"_id", int32(1)}, {"v", "persisted"}}, doc)
}

func TestOpenErrors(t *testing.T) {
	t.Parallel()

	_, err := docmatch.Open(testutil.Ctx(t), &docmatch.Config{Backend: "postgresql"})
	assert.EqualError(t, err, `unknown backend "postgresql"`)
}

func TestStoreCollector(t *testing.T) {
	t.Parallel()

	for name, s := range testStores(t) {
		s := s

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := testutil.Ctx(t)
			setup(t, ctx, s)

			reg := prometheus.NewPedanticRegistry()
			require.NoError(t, reg.Register(s))

			families, err := reg.Gather()
			require.NoError(t, err)
			assert.NotEmpty(t, families)
		})
	}
}
