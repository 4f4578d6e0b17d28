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

package sqlite

import (
	"context"
	"log/slog"

	"github.com/FerretDB/docmatch/internal/backends"
	"github.com/FerretDB/docmatch/internal/util/fsql"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
)

// database implements backends.Database interface.
type database struct {
	db   *fsql.DB
	l    *slog.Logger
	name string
}

// newDatabase creates a new Database.
func newDatabase(db *fsql.DB, l *slog.Logger, name string) backends.Database {
	return backends.DatabaseContract(&database{
		db:   db,
		l:    l,
		name: name,
	})
}

// Collection implements backends.Database interface.
func (db *database) Collection(name string) (backends.Collection, error) {
	return newCollection(db.db, db.l, db.name, name), nil
}

// ListCollections implements backends.Database interface.
func (db *database) ListCollections(ctx context.Context) (*backends.ListCollectionsResult, error) {
	q := `SELECT collection FROM collections WHERE db = ? ORDER BY collection`

	names, err := queryStrings(ctx, db.db, q, db.name)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	res := &backends.ListCollectionsResult{
		Collections: make([]backends.CollectionInfo, len(names)),
	}
	for i, name := range names {
		res.Collections[i] = backends.CollectionInfo{Name: name}
	}

	return res, nil
}

// CreateCollection implements backends.Database interface.
func (db *database) CreateCollection(ctx context.Context, params *backends.CreateCollectionParams) error {
	q := `INSERT OR IGNORE INTO collections (db, collection) VALUES (?, ?)`

	res, err := db.db.ExecContext(ctx, q, db.name, params.Name)
	if err != nil {
		return lazyerrors.Error(err)
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return lazyerrors.Error(err)
	}

	if ra == 0 {
		return backends.NewError(backends.ErrorCodeCollectionAlreadyExists, nil)
	}

	db.l.DebugContext(ctx, "Collection created", slog.String("db", db.name), slog.String("collection", params.Name))

	return nil
}

// DropCollection implements backends.Database interface.
func (db *database) DropCollection(ctx context.Context, params *backends.DropCollectionParams) error {
	return db.db.InTransaction(ctx, func(tx *fsql.Tx) error {
		q := `DELETE FROM collections WHERE db = ? AND collection = ?`

		res, err := tx.ExecContext(ctx, q, db.name, params.Name)
		if err != nil {
			return lazyerrors.Error(err)
		}

		ra, err := res.RowsAffected()
		if err != nil {
			return lazyerrors.Error(err)
		}

		if ra == 0 {
			return backends.NewError(backends.ErrorCodeCollectionDoesNotExist, nil)
		}

		q = `DELETE FROM documents WHERE db = ? AND collection = ?`
		if _, err = tx.ExecContext(ctx, q, db.name, params.Name); err != nil {
			return lazyerrors.Error(err)
		}

		db.l.DebugContext(ctx, "Collection dropped", slog.String("db", db.name), slog.String("collection", params.Name))

		return nil
	})
}

// check interfaces
var (
	_ backends.Database = (*database)(nil)
)
