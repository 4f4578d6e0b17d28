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

package docmatch

import (
	"errors"

	"github.com/FerretDB/docmatch/internal/handler/handlererrors"
)

// ErrNoDocuments is returned by single-document operations when no document matches the filter.
var ErrNoDocuments = errors.New("docmatch: no documents in result")

// CommandError represents an error returned by a store operation.
type CommandError struct {
	// MongoDB-compatible error code, for example, 11000 for duplicate key errors.
	Code int32

	// Error code name, for example, "Location11000".
	Name string

	// Human-readable message.
	Message string
}

// Error implements error interface.
func (e *CommandError) Error() string {
	return e.Message
}

// IsDuplicateKeyError returns true if err is a duplicate key error.
func IsDuplicateKeyError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.Code == int32(handlererrors.ErrDuplicateKey)
}

// publicError converts an internal error to the public one.
//
// Handler errors become *CommandError.
// Other errors lose internal details such as call locations and wrapped types.
func publicError(err error) error {
	if err == nil {
		return nil
	}

	var ce *handlererrors.CommandError
	if errors.As(err, &ce) {
		return &CommandError{
			Code:    int32(ce.Code()),
			Name:    ce.Code().String(),
			Message: ce.Unwrap().Error(),
		}
	}

	return errors.New(err.Error())
}

// check interfaces
var (
	_ error = (*CommandError)(nil)
)
