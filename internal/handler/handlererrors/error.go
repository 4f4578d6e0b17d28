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

// Package handlererrors provides errors returned by the handler.
package handlererrors

import (
	"errors"
	"fmt"
)

// ErrorCode represents MongoDB-compatible error code.
type ErrorCode int32

const (
	errUnset = ErrorCode(0) // Unset

	// ErrBadValue indicates wrong input.
	ErrBadValue = ErrorCode(2) // BadValue

	// ErrTypeMismatch indicates that a value has unexpected type.
	ErrTypeMismatch = ErrorCode(14) // TypeMismatch

	// ErrNamespaceNotFound indicates that a collection is not found.
	ErrNamespaceNotFound = ErrorCode(26) // NamespaceNotFound

	// ErrNamespaceExists indicates that the collection already exists.
	ErrNamespaceExists = ErrorCode(48) // NamespaceExists

	// ErrCursorNotFound indicates that cursor is not found.
	ErrCursorNotFound = ErrorCode(43) // CursorNotFound

	// ErrImmutableField indicates that immutable field like _id was altered.
	ErrImmutableField = ErrorCode(66) // ImmutableField

	// ErrInvalidNamespace indicates that the database or collection name is invalid.
	ErrInvalidNamespace = ErrorCode(73) // InvalidNamespace

	// ErrDuplicateKey indicates duplicate key violation.
	ErrDuplicateKey = ErrorCode(11000) // Location11000
)

// String implements fmt.Stringer.
func (c ErrorCode) String() string {
	switch c {
	case errUnset:
		return "Unset"
	case ErrBadValue:
		return "BadValue"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrNamespaceNotFound:
		return "NamespaceNotFound"
	case ErrNamespaceExists:
		return "NamespaceExists"
	case ErrCursorNotFound:
		return "CursorNotFound"
	case ErrImmutableField:
		return "ImmutableField"
	case ErrInvalidNamespace:
		return "InvalidNamespace"
	case ErrDuplicateKey:
		return "Location11000"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int32(c))
	}
}

// ErrInfo represents additional optional error information.
type ErrInfo struct {
	// Argument that caused the error.
	Argument string
}

// Code returns the error code of the first *CommandError in err's chain,
// or zero value if there is none.
func Code(err error) ErrorCode {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.code
	}

	return errUnset
}
