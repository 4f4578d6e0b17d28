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

// Package sqlite provides SQLite backend.
//
// # Design principles
//
//  1. All documents of all databases and collections are stored in a single table.
//     Documents are stored in fjson format together with fjson-encoded _id values
//     and insertion sequence numbers.
//  2. Collections (and databases) are registered in a separate table.
//     They are created implicitly on the first insert and exist until dropped.
//  3. A single connection is used, so in-memory databases and writes just work.
package sqlite

import (
	"context"
	"errors"

	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/FerretDB/docmatch/internal/util/fsql"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
)

// schema creates all tables if they do not exist yet.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS collections (
		db TEXT NOT NULL,
		collection TEXT NOT NULL,
		PRIMARY KEY (db, collection)
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		db TEXT NOT NULL,
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		doc TEXT NOT NULL,
		PRIMARY KEY (db, collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS documents_seq ON documents (db, collection, seq)`,
}

// setupSchema creates tables and indexes.
func setupSchema(ctx context.Context, db *fsql.DB) error {
	return db.InTransaction(ctx, func(tx *fsql.Tx) error {
		for _, q := range schema {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return lazyerrors.Error(err)
			}
		}

		return nil
	})
}

// isConstraintViolation returns true if err is a SQLite constraint violation error.
func isConstraintViolation(err error) bool {
	var e *sqlite.Error
	if !errors.As(err, &e) {
		return false
	}

	// primary code is in the lower byte of the extended one
	return e.Code()&0xff == sqlitelib.SQLITE_CONSTRAINT
}
