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
	"go.mongodb.org/mongo-driver/bson"
)

// Composites contain composite values for tests.
//
// This shared data set is not frozen yet, but please add to it only if it is really shared.
var Composites = &Values[string]{
	name: "Composites",
	data: map[string]any{
		"document":           bson.D{{"foo", int32(42)}},
		"document-composite": bson.D{{"foo", int32(42)}, {"42", "foo"}, {"array", bson.A{int32(42), "foo", nil}}},
		"document-empty":     bson.D{},

		"array":              bson.A{int32(42)},
		"array-two":          bson.A{42.13, "foo"},
		"array-three":        bson.A{int32(42), "foo", nil},
		"array-strings-desc": bson.A{"c", "b", "a"},
		"array-documents":    bson.A{bson.D{{"field", int32(42)}}, bson.D{{"field", int32(44)}}},
		"array-empty":        bson.A{},
		"array-null":         bson.A{nil},
	},
}

// Inventory contains documents with several top-level fields.
var Inventory = NewTopLevelFieldsProvider("Inventory", map[string]Fields{
	"apple": {
		{Key: "item", Value: "apple"},
		{Key: "qty", Value: int32(5)},
		{Key: "price", Value: 1.5},
		{Key: "tags", Value: bson.A{"fruit", "red"}},
	},
	"banana": {
		{Key: "item", Value: "banana"},
		{Key: "qty", Value: int32(10)},
		{Key: "price", Value: 0.25},
		{Key: "tags", Value: bson.A{"fruit"}},
	},
	"carrot": {
		{Key: "item", Value: "carrot"},
		{Key: "qty", Value: int64(15)},
		{Key: "price", Value: int32(2)},
		{Key: "tags", Value: bson.A{"vegetable"}},
	},
	"date": {
		{Key: "item", Value: "date"},
		{Key: "price", Value: nil},
	},
})
