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
	"github.com/FerretDB/docmatch/internal/fjson"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/fsql"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
	"github.com/FerretDB/docmatch/internal/util/must"
)

// collection implements backends.Collection interface.
type collection struct {
	db     *fsql.DB
	l      *slog.Logger
	dbName string
	name   string
}

// newCollection creates a new Collection.
func newCollection(db *fsql.DB, l *slog.Logger, dbName, name string) backends.Collection {
	return backends.CollectionContract(&collection{
		db:     db,
		l:      l,
		dbName: dbName,
		name:   name,
	})
}

// idArg returns fjson-encoded _id value of the given document.
func idArg(doc *types.Document) string {
	return string(must.NotFail(fjson.Marshal(must.NotFail(doc.Get("_id")))))
}

// Query implements backends.Collection interface.
func (c *collection) Query(ctx context.Context) (*backends.QueryResult, error) {
	q := `SELECT doc FROM documents WHERE db = ? AND collection = ? ORDER BY seq`

	rows, err := c.db.QueryContext(ctx, q, c.dbName, c.name)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	defer rows.Close()

	var res backends.QueryResult

	for rows.Next() {
		var b []byte
		if err = rows.Scan(&b); err != nil {
			return nil, lazyerrors.Error(err)
		}

		var doc *types.Document
		if doc, err = fjson.UnmarshalDocument(b); err != nil {
			return nil, lazyerrors.Error(err)
		}

		res.Docs = append(res.Docs, doc)
	}

	if err = rows.Err(); err != nil {
		return nil, lazyerrors.Error(err)
	}

	return &res, nil
}

// Insert implements backends.Collection interface.
func (c *collection) Insert(ctx context.Context, params *backends.InsertParams) (*backends.InsertResult, error) {
	err := c.db.InTransaction(ctx, func(tx *fsql.Tx) error {
		q := `INSERT OR IGNORE INTO collections (db, collection) VALUES (?, ?)`

		res, err := tx.ExecContext(ctx, q, c.dbName, c.name)
		if err != nil {
			return lazyerrors.Error(err)
		}

		if ra, _ := res.RowsAffected(); ra > 0 {
			c.l.DebugContext(ctx, "Collection created", slog.String("db", c.dbName), slog.String("collection", c.name))
		}

		q = `SELECT coalesce(max(seq), 0) FROM documents WHERE db = ? AND collection = ?`

		rows, err := tx.QueryContext(ctx, q, c.dbName, c.name)
		if err != nil {
			return lazyerrors.Error(err)
		}

		var seq int64

		for rows.Next() {
			if err = rows.Scan(&seq); err != nil {
				_ = rows.Close()
				return lazyerrors.Error(err)
			}
		}

		if err = rows.Close(); err != nil {
			return lazyerrors.Error(err)
		}

		q = `INSERT INTO documents (db, collection, id, seq, doc) VALUES (?, ?, ?, ?, ?)`

		for _, doc := range params.Docs {
			var b []byte
			if b, err = fjson.Marshal(doc); err != nil {
				return lazyerrors.Error(err)
			}

			seq++

			if _, err = tx.ExecContext(ctx, q, c.dbName, c.name, idArg(doc), seq, string(b)); err != nil {
				if isConstraintViolation(err) {
					id, _ := doc.Get("_id")
					return backends.NewErrorWithArgument(backends.ErrorCodeInsertDuplicateID, err, id)
				}

				return lazyerrors.Error(err)
			}
		}

		return nil
	})
	if err != nil {
		if backends.ErrorCodeIs(err, backends.ErrorCodeInsertDuplicateID) {
			return nil, err
		}

		return nil, lazyerrors.Error(err)
	}

	return &backends.InsertResult{Inserted: int64(len(params.Docs))}, nil
}

// Update implements backends.Collection interface.
func (c *collection) Update(ctx context.Context, params *backends.UpdateParams) (*backends.UpdateResult, error) {
	var res backends.UpdateResult

	err := c.db.InTransaction(ctx, func(tx *fsql.Tx) error {
		q := `UPDATE documents SET doc = ? WHERE db = ? AND collection = ? AND id = ?`

		for _, doc := range params.Docs {
			b, err := fjson.Marshal(doc)
			if err != nil {
				return lazyerrors.Error(err)
			}

			r, err := tx.ExecContext(ctx, q, string(b), c.dbName, c.name, idArg(doc))
			if err != nil {
				return lazyerrors.Error(err)
			}

			ra, err := r.RowsAffected()
			if err != nil {
				return lazyerrors.Error(err)
			}

			res.Updated += ra
		}

		return nil
	})
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	return &res, nil
}

// Delete implements backends.Collection interface.
func (c *collection) Delete(ctx context.Context, params *backends.DeleteParams) (*backends.DeleteResult, error) {
	var res backends.DeleteResult

	err := c.db.InTransaction(ctx, func(tx *fsql.Tx) error {
		q := `DELETE FROM documents WHERE db = ? AND collection = ? AND id = ?`

		for _, id := range params.IDs {
			b, err := fjson.Marshal(id)
			if err != nil {
				return lazyerrors.Error(err)
			}

			r, err := tx.ExecContext(ctx, q, c.dbName, c.name, string(b))
			if err != nil {
				return lazyerrors.Error(err)
			}

			ra, err := r.RowsAffected()
			if err != nil {
				return lazyerrors.Error(err)
			}

			res.Deleted += ra
		}

		return nil
	})
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	return &res, nil
}

// Count implements backends.Collection interface.
func (c *collection) Count(ctx context.Context) (int64, error) {
	q := `SELECT count(*) FROM documents WHERE db = ? AND collection = ?`

	var res int64
	if err := c.db.QueryRowContext(ctx, q, c.dbName, c.name).Scan(&res); err != nil {
		return 0, lazyerrors.Error(err)
	}

	return res, nil
}

// check interfaces
var (
	_ backends.Collection = (*collection)(nil)
)
