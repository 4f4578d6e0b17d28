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

// Package query implements evaluation of filter, update, projection and sort expressions
// over documents.
//
// Expressions are parsed once into a closed set of operator variants;
// evaluation is pure (except for update application that mutates the given document),
// never returns errors, and never blocks.
// Malformed operands and unknown operators are handled permissively:
// unknown operators are ignored and reported by Unknown methods,
// malformed operands make the corresponding condition or field update a no-op.
package query

import (
	"math"
	"strings"

	"github.com/FerretDB/docmatch/internal/types"
)

// isOperator returns true if the given key is an operator name.
func isOperator(key string) bool {
	return strings.HasPrefix(key, "$")
}

// truthy returns the truthiness of the given value.
//
// false, zero numbers and null are falsy; all other values are truthy.
func truthy(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case int32:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0 && !math.IsNaN(v)
	case types.NullType:
		return false
	default:
		return true
	}
}
