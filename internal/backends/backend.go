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

package backends

import (
	"context"

	"github.com/FerretDB/docmatch/internal/util/observability"
)

// Backend is a generic interface for all backends for accessing them.
//
// Backend object is expected to be stateful and wrap storage.
// Backend methods can be called concurrently; they should be thread-safe.
//
// See backendContract and its methods for additional details.
type Backend interface {
	Close()
	Database(string) (Database, error)
	ListDatabases(context.Context) (*ListDatabasesResult, error)
	DropDatabase(context.Context, *DropDatabaseParams) error

	// There is no method to create a database; it is created with its first collection.
}

// backendContract implements Backend interface.
type backendContract struct {
	b Backend
}

// BackendContract wraps Backend and enforces its contract.
//
// All backend implementations should use that function when they create new Backend instances.
// The handler should not use that function.
//
// See backendContract and its methods for additional details.
func BackendContract(b Backend) Backend {
	return &backendContract{
		b: b,
	}
}

// Close closes all connections and frees all resources associated with the backend.
func (bc *backendContract) Close() {
	bc.b.Close()
}

// Database returns a Database instance for the given name.
//
// The database does not need to exist.
func (bc *backendContract) Database(name string) (Database, error) {
	var res Database

	err := validateDatabaseName(name)
	if err == nil {
		res, err = bc.b.Database(name)
	}

	checkError(err, ErrorCodeDatabaseNameIsInvalid)

	return res, err
}

// ListDatabasesResult represents the results of Backend.ListDatabases method.
type ListDatabasesResult struct {
	Databases []DatabaseInfo
}

// DatabaseInfo represents information about a single database.
type DatabaseInfo struct {
	Name string
}

// ListDatabases returns information about all databases that contain at least one collection,
// sorted by name.
func (bc *backendContract) ListDatabases(ctx context.Context) (*ListDatabasesResult, error) {
	defer observability.FuncCall(ctx)()

	res, err := bc.b.ListDatabases(ctx)
	checkError(err)

	return res, err
}

// DropDatabaseParams represents the parameters of Backend.DropDatabase method.
type DropDatabaseParams struct {
	Name string
}

// DropDatabase drops existing database with all its collections.
func (bc *backendContract) DropDatabase(ctx context.Context, params *DropDatabaseParams) error {
	defer observability.FuncCall(ctx)()

	err := validateDatabaseName(params.Name)
	if err == nil {
		err = bc.b.DropDatabase(ctx, params)
	}

	checkError(err, ErrorCodeDatabaseNameIsInvalid, ErrorCodeDatabaseDoesNotExist)

	return err
}

// check interfaces
var (
	_ Backend = (*backendContract)(nil)
)
