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

// Package types provides Go types for document values.
//
// All values used by the query engine belong to a closed set:
//
// Composite types (passed by pointers)
//
//	*types.Document  ordered document
//	*types.Array     ordered array
//
// Scalar types (passed by values)
//
//	types.NullType   null (use types.Null value)
//	bool             boolean
//	int32            32-bit integer
//	int64            64-bit integer
//	float64          64-bit binary floating point
//	string           UTF-8 string
//	types.ObjectID   12-byte identity
//	time.Time        UTC datetime with millisecond precision
//
// Integers and floating point numbers are kept distinguishable:
// they compare equal by value for matching, but not for update change detection (see Identical).
//
// Absence of a field is not a value; it is represented by the second return value of Document.Lookup.
package types

import (
	"fmt"
	"time"
)

// ScalarType represents scalar type.
type ScalarType interface {
	NullType | bool | int32 | int64 | float64 | string | ObjectID | time.Time
}

// CompositeType represents composite type - *Document or *Array.
type CompositeType interface {
	*Document | *Array
}

// Type represents any value type (scalar or composite).
type Type interface {
	ScalarType | CompositeType
}

// CompositeTypeInterface consists of Document and Array.
type CompositeTypeInterface interface {
	*Document | *Array

	compositeType() // seal for go-sumtype
}

//go-sumtype:decl CompositeTypeInterface

// NullType represents null value.
//
// Most callers should use types.Null value instead.
type NullType struct{}

// Null represents null value.
var Null = NullType{}

// validateValue returns an error if value does not belong to the closed set of supported types.
func validateValue(value any) error {
	switch value := value.(type) {
	case *Document:
		if value == nil {
			return fmt.Errorf("types.validateValue: nil document")
		}
		return nil
	case *Array:
		if value == nil {
			return fmt.Errorf("types.validateValue: nil array")
		}
		return nil
	case NullType, bool, int32, int64, float64, string, ObjectID, time.Time:
		return nil
	default:
		return fmt.Errorf("types.validateValue: unsupported type: %[1]T (%[1]v)", value)
	}
}

// deepCopy returns a deep copy of the given value.
func deepCopy(value any) any {
	if value == nil {
		panic("types.deepCopy: nil value")
	}

	switch value := value.(type) {
	case *Document:
		keys := make([]string, len(value.keys))
		copy(keys, value.keys)

		m := make(map[string]any, len(value.m))
		for k, v := range value.m {
			m[k] = deepCopy(v)
		}

		return &Document{
			keys: keys,
			m:    m,
		}

	case *Array:
		s := make([]any, len(value.s))
		for i, v := range value.s {
			s[i] = deepCopy(v)
		}

		return &Array{s: s}

	case NullType, bool, int32, int64, float64, string, ObjectID, time.Time:
		return value

	default:
		panic(fmt.Sprintf("types.deepCopy: unsupported type: %[1]T (%[1]v)", value))
	}
}
