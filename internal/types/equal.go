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

package types

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/slices"
)

// equalTyped compares any values using value semantics.
//
// Numbers of different types are equal if their values are equal; NaN is equal to NaN.
// Documents are equal if they have the same keys in the same order with equal values.
// Arrays are equal if they have the same length and equal elements.
func equalTyped[T Type](v1, v2 T) bool {
	return equal(v1, v2)
}

// EqualValues is equalTyped for values of unknown types.
// Both values must belong to the closed set of types.
func EqualValues(v1, v2 any) bool {
	return equal(v1, v2)
}

// equal compares any values.
func equal(v1, v2 any) bool {
	if !SameTypeBracket(v1, v2) {
		return false
	}

	switch v1 := v1.(type) {
	case *Document:
		return equalDocuments(v1, v2.(*Document), equal)

	case *Array:
		return equalArrays(v1, v2.(*Array), equal)

	case time.Time:
		return v1.Equal(v2.(time.Time))

	default:
		return Compare(v1, v2) == Equal
	}
}

// Identical compares any values like Equal, but requires numbers to have the same type.
// It is used to detect whether an update actually changed a value.
func Identical(v1, v2 any) bool {
	switch v1 := v1.(type) {
	case *Document:
		d, ok := v2.(*Document)
		return ok && equalDocuments(v1, d, Identical)

	case *Array:
		a, ok := v2.(*Array)
		return ok && equalArrays(v1, a, Identical)

	case float64:
		f, ok := v2.(float64)
		if !ok {
			return false
		}

		if math.IsNaN(v1) {
			return math.IsNaN(f)
		}

		// distinguish 0.0 and -0.0
		return v1 == f && math.Signbit(v1) == math.Signbit(f)

	case int32:
		i, ok := v2.(int32)
		return ok && v1 == i

	case int64:
		i, ok := v2.(int64)
		return ok && v1 == i

	case NullType, bool, string, ObjectID:
		return v1 == v2

	case time.Time:
		t, ok := v2.(time.Time)
		return ok && v1.Equal(t)

	default:
		panic(fmt.Sprintf("types.Identical: unsupported type %[1]T (%[1]v)", v1))
	}
}

// equalDocuments compares documents using the given value comparison function.
func equalDocuments(v1, v2 *Document, eq func(a, b any) bool) bool {
	keys := v1.Keys()
	if !slices.Equal(keys, v2.Keys()) {
		return false
	}

	for _, k := range keys {
		if !eq(v1.m[k], v2.m[k]) {
			return false
		}
	}

	return true
}

// equalArrays compares arrays using the given value comparison function.
func equalArrays(v1, v2 *Array, eq func(a, b any) bool) bool {
	if v1.Len() != v2.Len() {
		return false
	}

	for i, v := range v1.s {
		if !eq(v, v2.s[i]) {
			return false
		}
	}

	return true
}
