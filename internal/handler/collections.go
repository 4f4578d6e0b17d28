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

package handler

import (
	"context"
	"fmt"

	"github.com/FerretDB/docmatch/internal/backends"
	"github.com/FerretDB/docmatch/internal/handler/handlererrors"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
)

// database returns a backend database for the given name.
func (h *Handler) database(command, dbName string) (backends.Database, error) {
	db, err := h.Backend.Database(dbName)
	if err != nil {
		if backends.ErrorCodeIs(err, backends.ErrorCodeDatabaseNameIsInvalid) {
			msg := fmt.Sprintf("Invalid database name: %s", dbName)
			return nil, handlererrors.NewCommandErrorMsgWithArgument(handlererrors.ErrInvalidNamespace, msg, command)
		}

		return nil, lazyerrors.Error(err)
	}

	return db, nil
}

// CreateCollection creates a new empty collection.
func (h *Handler) CreateCollection(ctx context.Context, dbName, collName string) (err error) {
	ctx, end := h.startOp(ctx, "create", dbName, collName)
	defer end(&err)

	db, err := h.database("create", dbName)
	if err != nil {
		return err
	}

	err = db.CreateCollection(ctx, &backends.CreateCollectionParams{Name: collName})

	switch {
	case err == nil:
		return nil
	case backends.ErrorCodeIs(err, backends.ErrorCodeCollectionNameIsInvalid):
		msg := fmt.Sprintf("Invalid collection name: %s", collName)
		return handlererrors.NewCommandErrorMsgWithArgument(handlererrors.ErrInvalidNamespace, msg, "create")
	case backends.ErrorCodeIs(err, backends.ErrorCodeCollectionAlreadyExists):
		msg := fmt.Sprintf("Collection %s.%s already exists.", dbName, collName)
		return handlererrors.NewCommandErrorMsgWithArgument(handlererrors.ErrNamespaceExists, msg, "create")
	default:
		return lazyerrors.Error(err)
	}
}

// DropDatabase drops the database with all its collections and closes their registered cursors.
//
// Dropping a non-existent database is not an error.
func (h *Handler) DropDatabase(ctx context.Context, dbName string) (err error) {
	ctx, end := h.startOp(ctx, "dropDatabase", dbName, "")
	defer end(&err)

	err = h.Backend.DropDatabase(ctx, &backends.DropDatabaseParams{Name: dbName})

	switch {
	case err == nil:
		// nothing
	case backends.ErrorCodeIs(err, backends.ErrorCodeDatabaseNameIsInvalid):
		msg := fmt.Sprintf("Invalid database name: %s", dbName)
		return handlererrors.NewCommandErrorMsgWithArgument(handlererrors.ErrInvalidNamespace, msg, "dropDatabase")
	case backends.ErrorCodeIs(err, backends.ErrorCodeDatabaseDoesNotExist):
		return nil
	default:
		return lazyerrors.Error(err)
	}

	for _, c := range h.cursors.All() {
		if c.DB == dbName {
			c.Close()
		}
	}

	return nil
}

// DropCollection drops the collection and closes its registered cursors.
func (h *Handler) DropCollection(ctx context.Context, dbName, collName string) (err error) {
	ctx, end := h.startOp(ctx, "drop", dbName, collName)
	defer end(&err)

	db, err := h.database("drop", dbName)
	if err != nil {
		return err
	}

	err = db.DropCollection(ctx, &backends.DropCollectionParams{Name: collName})

	switch {
	case err == nil:
		// nothing
	case backends.ErrorCodeIs(err, backends.ErrorCodeCollectionNameIsInvalid):
		msg := fmt.Sprintf("Invalid collection name: %s", collName)
		return handlererrors.NewCommandErrorMsgWithArgument(handlererrors.ErrInvalidNamespace, msg, "drop")
	case backends.ErrorCodeIs(err, backends.ErrorCodeCollectionDoesNotExist):
		return handlererrors.NewCommandErrorMsgWithArgument(handlererrors.ErrNamespaceNotFound, "ns not found", "drop")
	default:
		return lazyerrors.Error(err)
	}

	for _, c := range h.cursors.All() {
		if c.DB == dbName && c.Collection == collName {
			c.Close()
		}
	}

	return nil
}

// ListCollections returns sorted names of collections in the database.
func (h *Handler) ListCollections(ctx context.Context, dbName string) (res []string, err error) {
	ctx, end := h.startOp(ctx, "listCollections", dbName, "")
	defer end(&err)

	db, err := h.database("listCollections", dbName)
	if err != nil {
		return nil, err
	}

	lr, err := db.ListCollections(ctx)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	res = make([]string, len(lr.Collections))
	for i, c := range lr.Collections {
		res[i] = c.Name
	}

	return res, nil
}

// ListDatabases returns sorted names of databases that contain collections.
func (h *Handler) ListDatabases(ctx context.Context) (res []string, err error) {
	ctx, end := h.startOp(ctx, "listDatabases", "", "")
	defer end(&err)

	lr, err := h.Backend.ListDatabases(ctx)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	res = make([]string, len(lr.Databases))
	for i, db := range lr.Databases {
		res[i] = db.Name
	}

	return res, nil
}
