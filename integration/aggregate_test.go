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

package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/FerretDB/docmatch/docmatch"
	"github.com/FerretDB/docmatch/integration/setup"
	"github.com/FerretDB/docmatch/integration/shareddata"
)

func TestAggregate(t *testing.T) {
	t.Parallel()

	ctx, collection := setup.Setup(t, shareddata.Inventory)

	for name, tc := range map[string]struct {
		pipeline bson.A
		expected []bson.D
		err      int32
	}{
		"MatchSortProject": {
			pipeline: bson.A{
				bson.D{{"$match", bson.D{{"tags", bson.D{{"$all", bson.A{"fruit"}}}}}}},
				bson.D{{"$sort", bson.D{{"qty", -1}}}},
				bson.D{{"$project", bson.D{{"item", 1}}}},
			},
			expected: []bson.D{
				{{"_id", "banana"}, {"item", "banana"}},
				{{"_id", "apple"}, {"item", "apple"}},
			},
		},
		"SkipLimit": {
			pipeline: bson.A{
				bson.D{{"$sort", bson.D{{"_id", 1}}}},
				bson.D{{"$skip", 1}},
				bson.D{{"$limit", 2}},
				bson.D{{"$project", bson.D{{"item", 1}}}},
			},
			expected: []bson.D{
				{{"_id", "banana"}, {"item", "banana"}},
				{{"_id", "carrot"}, {"item", "carrot"}},
			},
		},
		"Count": {
			pipeline: bson.A{
				bson.D{{"$match", bson.D{{"price", bson.D{{"$gt", 1}}}}}},
				bson.D{{"$count", "n"}},
			},
			expected: []bson.D{{{"n", int32(2)}}},
		},
		"CountEmpty": {
			pipeline: bson.A{
				bson.D{{"$match", bson.D{{"price", bson.D{{"$gt", 100}}}}}},
				bson.D{{"$count", "n"}},
			},
			expected: []bson.D{},
		},
		"Empty": {
			pipeline: bson.A{},
			expected: nil,
		},
		"TwoFields": {
			pipeline: bson.A{bson.D{{"$skip", 1}, {"$limit", 1}}},
			err:      2,
		},
		"NegativeSkip": {
			pipeline: bson.A{bson.D{{"$skip", -1}}},
			err:      2,
		},
		"ZeroLimit": {
			pipeline: bson.A{bson.D{{"$limit", 0}}},
			err:      2,
		},
		"NotDocument": {
			pipeline: bson.A{"$match"},
			err:      2,
		},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			actual, err := collection.Aggregate(ctx, tc.pipeline)

			if tc.err != 0 {
				var ce *docmatch.CommandError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, tc.err, ce.Code)

				return
			}

			require.NoError(t, err)

			if tc.expected == nil {
				assert.Len(t, actual, 4)
				return
			}

			AssertEqualDocumentsSlice(t, tc.expected, actual)
		})
	}
}

func TestDistinct(t *testing.T) {
	t.Parallel()

	ctx, collection := setup.Setup(t, shareddata.Inventory)

	for name, tc := range map[string]struct {
		key      string
		filter   bson.D
		expected []any
	}{
		"Array": {
			key:      "tags",
			expected: []any{"fruit", "red", "vegetable"},
		},
		"Numbers": {
			key:      "qty",
			expected: []any{int32(5), int32(10), int64(15)},
		},
		"Mixed": {
			key:      "price",
			expected: []any{nil, 0.25, 1.5, int32(2)},
		},
		"Filter": {
			key:      "item",
			filter:   bson.D{{"qty", bson.D{{"$gte", 10}}}},
			expected: []any{"banana", "carrot"},
		},
		"Missing": {
			key:      "foo",
			expected: []any{},
		},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			actual, err := collection.Distinct(ctx, tc.key, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestFindAndModify(t *testing.T) {
	t.Parallel()

	t.Run("UpdateReturnNew", func(t *testing.T) {
		t.Parallel()

		ctx, collection := setup.Setup(t, shareddata.Inventory)

		opts := docmatch.FindOneAndUpdate().
			SetSort(bson.D{{"qty", -1}}).
			SetProjection(bson.D{{"qty", 1}}).
			SetReturnNew(true)

		actual, err := collection.FindOneAndUpdate(ctx, bson.D{{"qty", bson.D{{"$lt", 100}}}}, bson.D{{"$inc", bson.D{{"qty", -5}}}}, opts)
		require.NoError(t, err)
		AssertEqualDocuments(t, bson.D{{"_id", "carrot"}, {"qty", int64(10)}}, actual)
	})

	t.Run("UpdateReturnOld", func(t *testing.T) {
		t.Parallel()

		ctx, collection := setup.Setup(t, shareddata.Inventory)

		actual, err := collection.FindOneAndUpdate(ctx, bson.D{{"_id", "date"}}, bson.D{{"$set", bson.D{{"price", 3.5}}}})
		require.NoError(t, err)
		AssertEqualDocuments(t, bson.D{{"_id", "date"}, {"item", "date"}, {"price", nil}}, actual)

		n, err := collection.CountDocuments(ctx, bson.D{{"price", 3.5}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("UpdateNoDocuments", func(t *testing.T) {
		t.Parallel()

		ctx, collection := setup.Setup(t, shareddata.Inventory)

		_, err := collection.FindOneAndUpdate(ctx, bson.D{{"_id", "fig"}}, bson.D{{"$set", bson.D{{"a", 1}}}})
		assert.ErrorIs(t, err, docmatch.ErrNoDocuments)
	})

	t.Run("Replace", func(t *testing.T) {
		t.Parallel()

		ctx, collection := setup.Setup(t, shareddata.Inventory)

		opts := docmatch.FindOneAndUpdate().SetReturnNew(true)
		actual, err := collection.FindOneAndReplace(ctx, bson.D{{"_id", "banana"}}, bson.D{{"item", "plantain"}}, opts)
		require.NoError(t, err)
		AssertEqualDocuments(t, bson.D{{"_id", "banana"}, {"item", "plantain"}}, actual)
	})

	t.Run("Delete", func(t *testing.T) {
		t.Parallel()

		ctx, collection := setup.Setup(t, shareddata.Inventory)

		opts := docmatch.FindOneAndDelete().SetSort(bson.D{{"price", 1}}).SetProjection(bson.D{{"price", 1}})
		actual, err := collection.FindOneAndDelete(ctx, bson.D{{"price", bson.D{{"$exists", true}}}}, opts)
		require.NoError(t, err)
		AssertEqualDocuments(t, bson.D{{"_id", "date"}, {"price", nil}}, actual)

		n, err := collection.EstimatedDocumentCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctx, collection := setup.Setup(t, shareddata.Scalars, shareddata.Composites)

	res, err := collection.DeleteOne(ctx, bson.D{{"v", 42}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)

	res, err = collection.DeleteMany(ctx, bson.D{{"v", 42}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.DeletedCount)

	res, err = collection.DeleteMany(ctx, bson.D{{"v", bson.D{{"$size", bson.D{{"$gt", 0}}}}}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.DeletedCount)

	res, err = collection.DeleteMany(ctx, bson.D{})
	require.NoError(t, err)
	assert.Equal(t, int64(34), res.DeletedCount)

	_, err = collection.FindOne(ctx, bson.D{})
	assert.ErrorIs(t, err, docmatch.ErrNoDocuments)
}
