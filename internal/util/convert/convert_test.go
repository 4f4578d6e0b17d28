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

package convert

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/must"
	"github.com/FerretDB/docmatch/internal/util/testutil"
)

func TestDocument(t *testing.T) {
	t.Parallel()

	oid := primitive.NewObjectID()
	date := time.Date(2024, 3, 4, 5, 6, 7, 8_000_000, time.UTC)

	d := bson.D{
		{Key: "_id", Value: oid},
		{Key: "int", Value: 42},
		{Key: "big", Value: int64(math.MaxInt32) + 1},
		{Key: "int64", Value: int64(1)},
		{Key: "double", Value: 1.5},
		{Key: "null", Value: nil},
		{Key: "date", Value: primitive.NewDateTimeFromTime(date)},
		{Key: "map", Value: bson.M{"b": "b", "a": true}},
		{Key: "array", Value: bson.A{"x", bson.D{{Key: "y", Value: int32(1)}}}},
	}

	actual, err := Document(d)
	require.NoError(t, err)

	expected := must.NotFail(types.NewDocument(
		"_id", types.ObjectID(oid),
		"int", int32(42),
		"big", int64(math.MaxInt32)+1,
		"int64", int64(1),
		"double", 1.5,
		"null", types.Null,
		"date", date,
		"map", must.NotFail(types.NewDocument("a", true, "b", "b")),
		"array", must.NotFail(types.NewArray("x", must.NotFail(types.NewDocument("y", int32(1))))),
	))
	testutil.AssertEqual(t, expected, actual)

	back := Doc(actual)
	assert.Equal(t, bson.D{
		{Key: "_id", Value: oid},
		{Key: "int", Value: int32(42)},
		{Key: "big", Value: int64(math.MaxInt32) + 1},
		{Key: "int64", Value: int64(1)},
		{Key: "double", Value: 1.5},
		{Key: "null", Value: nil},
		{Key: "date", Value: primitive.NewDateTimeFromTime(date)},
		{Key: "map", Value: bson.D{{Key: "a", Value: true}, {Key: "b", Value: "b"}}},
		{Key: "array", Value: bson.A{"x", bson.D{{Key: "y", Value: int32(1)}}}},
	}, back)
}

func TestDocumentStruct(t *testing.T) {
	t.Parallel()

	type item struct {
		Name  string `bson:"name"`
		Count int32  `bson:"count"`
	}

	actual, err := Document(item{Name: "a", Count: 2})
	require.NoError(t, err)
	testutil.AssertEqual(t, must.NotFail(types.NewDocument("name", "a", "count", int32(2))), actual)

	raw := must.NotFail(bson.Marshal(bson.D{{Key: "z", Value: "last"}, {Key: "a", Value: int64(1)}}))

	actual, err = Document(bson.Raw(raw))
	require.NoError(t, err)
	testutil.AssertEqual(t, must.NotFail(types.NewDocument("z", "last", "a", int64(1))), actual)

	actual, err = Document(nil)
	require.NoError(t, err)
	assert.Nil(t, actual)

	_, err = Document(bson.D{{Key: "re", Value: primitive.Regex{Pattern: "a"}}})
	assert.Error(t, err)

	_, err = Document(42)
	assert.Error(t, err)
}

func TestFromBSON(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in       any
		expected any
	}{
		{in: int8(1), expected: int32(1)},
		{in: int16(1), expected: int32(1)},
		{in: float32(0.5), expected: float64(0.5)},
		{in: primitive.Null{}, expected: types.Null},
		{in: math.MinInt32 - 1, expected: int64(math.MinInt32 - 1)},
		{in: "s", expected: "s"},
	} {
		actual, err := FromBSON(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, actual)
	}
}
