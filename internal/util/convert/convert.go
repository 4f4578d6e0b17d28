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

// Package convert converts values between MongoDB Go driver's bson package and internal types.
package convert

import (
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
	"github.com/FerretDB/docmatch/internal/util/must"
)

// Document converts bson.D, bson.M, bson.Raw, or any value that can be marshaled
// to BSON document (like structs and maps) to *types.Document.
//
// Nil value converts to nil document.
func Document(v any) (*types.Document, error) {
	if v == nil {
		return nil, nil
	}

	if d, ok := v.(*types.Document); ok {
		return d, nil
	}

	switch v.(type) {
	case bson.D, bson.M, map[string]any:
		// convert directly
	case bson.Raw:
		var d bson.D
		if err := bson.Unmarshal(v.(bson.Raw), &d); err != nil {
			return nil, lazyerrors.Error(err)
		}

		v = d

	default:
		b, err := bson.Marshal(v)
		if err != nil {
			return nil, lazyerrors.Error(err)
		}

		var d bson.D
		if err = bson.Unmarshal(b, &d); err != nil {
			return nil, lazyerrors.Error(err)
		}

		v = d
	}

	res, err := FromBSON(v)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	return res.(*types.Document), nil
}

// FromBSON converts driver's value to the internal type.
//
// Go int and smaller integer types become int32 if the value fits, int64 otherwise.
// Map keys are sorted, since maps do not preserve order.
func FromBSON(v any) (any, error) {
	switch v := v.(type) {
	case *types.Document, *types.Array:
		return v, nil

	case bson.D:
		res := types.MakeDocument(len(v))

		for _, e := range v {
			ev, err := FromBSON(e.Value)
			if err != nil {
				return nil, lazyerrors.Errorf("field %q: %w", e.Key, err)
			}

			if err = res.Set(e.Key, ev); err != nil {
				return nil, lazyerrors.Error(err)
			}
		}

		return res, nil

	case bson.M:
		return fromMap(v)

	case map[string]any:
		return fromMap(v)

	case bson.A:
		return fromSlice(v)

	case []any:
		return fromSlice(v)

	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case string:
		return v, nil
	case bool:
		return v, nil
	case int32:
		return v, nil
	case int64:
		return v, nil
	case int:
		return fromInt64(int64(v)), nil
	case int8:
		return int32(v), nil
	case int16:
		return int32(v), nil
	case primitive.ObjectID:
		return types.ObjectID(v), nil
	case types.ObjectID:
		return v, nil
	case primitive.DateTime:
		return v.Time().UTC(), nil
	case time.Time:
		return v.UTC().Truncate(time.Millisecond), nil
	case nil, primitive.Null, types.NullType:
		return types.Null, nil

	default:
		return nil, lazyerrors.Errorf("unsupported type %T", v)
	}
}

// fromInt64 returns int32 if the value fits, int64 otherwise.
func fromInt64(v int64) any {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return int32(v)
	}

	return v
}

// fromMap converts map with sorted keys.
func fromMap(m map[string]any) (*types.Document, error) {
	keys := maps.Keys(m)
	slices.Sort(keys)

	res := types.MakeDocument(len(keys))

	for _, k := range keys {
		v, err := FromBSON(m[k])
		if err != nil {
			return nil, lazyerrors.Errorf("field %q: %w", k, err)
		}

		if err = res.Set(k, v); err != nil {
			return nil, lazyerrors.Error(err)
		}
	}

	return res, nil
}

// fromSlice converts slice to array.
func fromSlice(s []any) (*types.Array, error) {
	res := types.MakeArray(len(s))

	for i, e := range s {
		v, err := FromBSON(e)
		if err != nil {
			return nil, lazyerrors.Errorf("index %d: %w", i, err)
		}

		if err = res.Append(v); err != nil {
			return nil, lazyerrors.Error(err)
		}
	}

	return res, nil
}

// ToBSON converts the internal type to driver's value.
//
// Documents become bson.D, arrays become bson.A, dates become primitive.DateTime,
// and null becomes nil, the same way the driver decodes BSON into bson.D.
func ToBSON(v any) any {
	switch v := v.(type) {
	case *types.Document:
		return Doc(v)

	case *types.Array:
		res := make(bson.A, v.Len())
		for i := range res {
			res[i] = ToBSON(must.NotFail(v.Get(i)))
		}

		return res

	case types.ObjectID:
		return primitive.ObjectID(v)
	case time.Time:
		return primitive.NewDateTimeFromTime(v)
	case types.NullType:
		return nil
	case float64, string, bool, int32, int64:
		return v

	default:
		panic(fmt.Sprintf("unsupported type %T", v))
	}
}

// Doc converts *types.Document to bson.D.
//
// Nil document converts to nil.
func Doc(doc *types.Document) bson.D {
	if doc == nil {
		return nil
	}

	res := make(bson.D, 0, doc.Len())

	for _, k := range doc.Keys() {
		v, _ := doc.Lookup(k)
		res = append(res, bson.E{Key: k, Value: ToBSON(v)})
	}

	return res
}
