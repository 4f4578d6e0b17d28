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
	"bytes"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"golang.org/x/exp/constraints"
)

// CompareResult represents the result of a comparison.
type CompareResult int8

// Values match results of comparison functions such as bytes.Compare.
// They do not match sort order values where 1 means ascending order and -1 means descending.
const (
	Equal   CompareResult = 0  // ==
	Less    CompareResult = -1 // <
	Greater CompareResult = 1  // >
)

// String implements fmt.Stringer.
func (r CompareResult) String() string {
	switch r {
	case Equal:
		return "=="
	case Less:
		return "<"
	case Greater:
		return ">"
	default:
		return fmt.Sprintf("CompareResult(%d)", int8(r))
	}
}

// SortType represents sort direction.
type SortType int8

const (
	// Ascending is used for sort in ascending order.
	Ascending SortType = 1

	// Descending is used for sort in descending order.
	Descending SortType = -1
)

// typeOrder represents the canonical comparison order of value types.
type typeOrder uint8

const (
	_ typeOrder = iota
	nullTypeOrder
	numbersTypeOrder
	stringTypeOrder
	documentTypeOrder
	arrayTypeOrder
	objectIDTypeOrder
	boolTypeOrder
	dateTypeOrder
)

// detectTypeOrder returns the canonical type order of the given value.
func detectTypeOrder(value any) typeOrder {
	switch value.(type) {
	case NullType:
		return nullTypeOrder
	case int32, int64, float64:
		return numbersTypeOrder
	case string:
		return stringTypeOrder
	case *Document:
		return documentTypeOrder
	case *Array:
		return arrayTypeOrder
	case ObjectID:
		return objectIDTypeOrder
	case bool:
		return boolTypeOrder
	case time.Time:
		return dateTypeOrder
	default:
		panic(fmt.Sprintf("detectTypeOrder: unsupported type %[1]T (%[1]v)", value))
	}
}

// SameTypeBracket returns true if both values belong to the same type bracket.
// All numbers are in the same bracket.
func SameTypeBracket(a, b any) bool {
	return detectTypeOrder(a) == detectTypeOrder(b)
}

// Compare compares any values using the total order:
// values of different type brackets are ordered by the canonical type order
// (null < numbers < string < document < array < ObjectID < bool < date),
// values of the same bracket are compared by value.
//
// Numbers of different types are compared by value, so int32(1) and float64(1) are Equal.
func Compare(a, b any) CompareResult {
	if a == nil {
		panic("types.Compare: a is nil")
	}
	if b == nil {
		panic("types.Compare: b is nil")
	}

	if at, bt := detectTypeOrder(a), detectTypeOrder(b); at != bt {
		return compareOrdered(at, bt)
	}

	switch a := a.(type) {
	case NullType:
		return Equal

	case int32, int64, float64:
		return compareNumbers(a, b)

	case string:
		return CompareResult(strings.Compare(a, b.(string)))

	case *Document:
		return compareDocuments(a, b.(*Document))

	case *Array:
		return compareArrays(a, b.(*Array))

	case ObjectID:
		bID := b.(ObjectID)
		return CompareResult(bytes.Compare(a[:], bID[:]))

	case bool:
		switch bb := b.(bool); {
		case a == bb:
			return Equal
		case bb:
			return Less
		default:
			return Greater
		}

	case time.Time:
		return compareOrdered(a.UnixMilli(), b.(time.Time).UnixMilli())
	}

	panic("not reached")
}

// CompareOrder compares values like Compare, inverting the result for Descending order.
func CompareOrder(a, b any, order SortType) CompareResult {
	res := Compare(a, b)

	switch order {
	case Ascending:
		return res
	case Descending:
		return -res
	default:
		panic(fmt.Sprintf("types.CompareOrder: order is %d", order))
	}
}

// compareOrdered compares values of the same ordered type.
func compareOrdered[T constraints.Ordered](a, b T) CompareResult {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

// compareNumbers compares two numbers of any numeric types by value.
// NaN is less than any other number and equal to itself.
func compareNumbers(a, b any) CompareResult {
	af, aIsFloat := a.(float64)
	bf, bIsFloat := b.(float64)

	switch {
	case !aIsFloat && !bIsFloat:
		return compareOrdered(toInt64(a), toInt64(b))

	case aIsFloat && bIsFloat:
		switch {
		case math.IsNaN(af) && math.IsNaN(bf):
			return Equal
		case math.IsNaN(af):
			return Less
		case math.IsNaN(bf):
			return Greater
		}

		return compareOrdered(af, bf)

	case aIsFloat:
		return compareFloatInt(af, toInt64(b))

	default:
		return -compareFloatInt(bf, toInt64(a))
	}
}

// compareFloatInt compares float64 and int64 without losing precision.
func compareFloatInt(f float64, i int64) CompareResult {
	if math.IsNaN(f) {
		return Less
	}

	if math.IsInf(f, 0) {
		if f > 0 {
			return Greater
		}

		return Less
	}

	bigF := new(big.Float).SetFloat64(f)
	bigI := new(big.Float).SetInt64(i)

	return CompareResult(bigF.Cmp(bigI))
}

// toInt64 converts int32 or int64 to int64.
func toInt64(v any) int64 {
	switch v := v.(type) {
	case int32:
		return int64(v)
	case int64:
		return v
	default:
		panic(fmt.Sprintf("toInt64: unexpected type %T", v))
	}
}

// compareDocuments compares documents field by field:
// first by field value type order, then by field name, then by field value.
// A document that is a prefix of another is less.
func compareDocuments(a, b *Document) CompareResult {
	aKeys, bKeys := a.Keys(), b.Keys()

	for i, aKey := range aKeys {
		if i == len(bKeys) {
			return Greater
		}

		av, bv := a.m[aKey], b.m[bKeys[i]]

		if res := compareOrdered(detectTypeOrder(av), detectTypeOrder(bv)); res != Equal {
			return res
		}

		if res := CompareResult(strings.Compare(aKey, bKeys[i])); res != Equal {
			return res
		}

		if res := Compare(av, bv); res != Equal {
			return res
		}
	}

	return compareOrdered(len(aKeys), len(bKeys))
}

// compareArrays compares arrays element by element.
// An array that is a prefix of another is less.
func compareArrays(a, b *Array) CompareResult {
	for i, av := range a.s {
		if i == len(b.s) {
			return Greater
		}

		if res := Compare(av, b.s[i]); res != Equal {
			return res
		}
	}

	return compareOrdered(len(a.s), len(b.s))
}
