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

package shareddata

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	doubleBig = float64(2 << 60)
	int64Big  = int64(2 << 61)
)

// Scalars contain scalar values for tests.
//
// This shared data set is frozen. If you need more values, add them in the test itself.
var Scalars = &Values[string]{
	name: "Scalars",
	data: map[string]any{
		"double":               42.13,
		"double-whole":         42.0,
		"double-zero":          math.Copysign(0, +1), // the same as just 0.0 in Go
		"double-negative-zero": math.Copysign(0, -1),
		"double-max":           math.MaxFloat64,
		"double-smallest":      math.SmallestNonzeroFloat64,
		"double-big":           doubleBig,

		"string":        "foo",
		"string-double": "42.13",
		"string-whole":  "42",
		"string-empty":  "",

		"objectid":       primitive.ObjectID{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x10, 0x11},
		"objectid-empty": primitive.NilObjectID,

		"bool-false": false,
		"bool-true":  true,

		"datetime":       primitive.NewDateTimeFromTime(time.Date(2021, 11, 1, 10, 18, 42, 123000000, time.UTC)),
		"datetime-epoch": primitive.NewDateTimeFromTime(time.Unix(0, 0)),

		"null": nil,

		"int32":      int32(42),
		"int32-zero": int32(0),
		"int32-max":  int32(math.MaxInt32),
		"int32-min":  int32(math.MinInt32),

		"int64":      int64(42),
		"int64-zero": int64(0),
		"int64-max":  int64(math.MaxInt64),
		"int64-min":  int64(math.MinInt64),
		"int64-big":  int64Big,
	},
}

// Unsets contains documents without "v" field.
var Unsets = &Values[string]{
	name: "Unsets",
	data: map[string]any{
		"unset": unset,
	},
}
