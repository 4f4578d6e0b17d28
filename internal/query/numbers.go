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

package query

import (
	"math"
)

// isNumber returns true if v is int32, int64 or float64.
func isNumber(v any) bool {
	switch v.(type) {
	case int32, int64, float64:
		return true
	default:
		return false
	}
}

// wholeNumber returns the int64 value of v if v is a number without a fractional part.
func wholeNumber(v any) (int64, bool) {
	switch v := v.(type) {
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}

		return int64(v), true
	default:
		return 0, false
	}
}

// toFloat64 converts a number to float64.
func toFloat64(v any) float64 {
	switch v := v.(type) {
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		panic("toFloat64: not a number")
	}
}

// zeroLike returns zero of the same numeric type as v.
func zeroLike(v any) any {
	switch v.(type) {
	case int32:
		return int32(0)
	case int64:
		return int64(0)
	default:
		return float64(0)
	}
}

// addNumbers returns the sum of two numbers.
//
// int32 + int32 is int32, promoted to int64 on overflow.
// int64 + int32 or int64 is int64, promoted to float64 on overflow.
// Anything with float64 is float64.
func addNumbers(a, b any) any {
	switch a := a.(type) {
	case float64:
		return a + toFloat64(b)

	case int32:
		switch b := b.(type) {
		case float64:
			return float64(a) + b
		case int32:
			res := int64(a) + int64(b)
			if res < math.MinInt32 || res > math.MaxInt32 {
				return res
			}

			return int32(res)
		case int64:
			return addInt64(int64(a), b)
		}

	case int64:
		switch b := b.(type) {
		case float64:
			return float64(a) + b
		case int32:
			return addInt64(a, int64(b))
		case int64:
			return addInt64(a, b)
		}
	}

	panic("addNumbers: not a number")
}

// addInt64 returns a + b as int64, or as float64 on overflow.
func addInt64(a, b int64) any {
	res := a + b
	if (b > 0 && res < a) || (b < 0 && res > a) {
		return float64(a) + float64(b)
	}

	return res
}

// mulNumbers returns the product of two numbers with the same type rules as addNumbers.
func mulNumbers(a, b any) any {
	switch a := a.(type) {
	case float64:
		return a * toFloat64(b)

	case int32:
		switch b := b.(type) {
		case float64:
			return float64(a) * b
		case int32:
			res := int64(a) * int64(b)
			if res < math.MinInt32 || res > math.MaxInt32 {
				return res
			}

			return int32(res)
		case int64:
			return mulInt64(int64(a), b)
		}

	case int64:
		switch b := b.(type) {
		case float64:
			return float64(a) * b
		case int32:
			return mulInt64(a, int64(b))
		case int64:
			return mulInt64(a, b)
		}
	}

	panic("mulNumbers: not a number")
}

// mulInt64 returns a * b as int64, or as float64 on overflow.
func mulInt64(a, b int64) any {
	if a == 0 || b == 0 {
		return int64(0)
	}

	res := a * b
	if res/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return float64(a) * float64(b)
	}

	return res
}
