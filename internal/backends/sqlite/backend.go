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
	"database/sql"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	_ "modernc.org/sqlite" // register database/sql driver

	"github.com/FerretDB/docmatch/internal/backends"
	"github.com/FerretDB/docmatch/internal/util/fsql"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
)

// MemoryURI is an URI of a private in-memory database.
const MemoryURI = "file::memory:"

// backend implements backends.Backend interface.
type backend struct {
	db *fsql.DB
	l  *slog.Logger
}

// NewBackendParams represents the parameters of NewBackend function.
type NewBackendParams struct {
	URI string // MemoryURI if empty
	L   *slog.Logger
}

// NewBackend creates a new SQLite backend.
//
// Returned backend also implements prometheus.Collector interface.
func NewBackend(ctx context.Context, params *NewBackendParams) (backends.Backend, error) {
	uri := params.URI
	if uri == "" {
		uri = MemoryURI
	}

	l := params.L
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	sqlDB, err := sql.Open("sqlite", uri)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	// in-memory databases are per-connection; SQLite has a single writer anyway
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	db := fsql.WrapDB(sqlDB, "sqlite", l)

	if err = setupSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, lazyerrors.Error(err)
	}

	l.InfoContext(ctx, "SQLite backend ready", slog.String("uri", uri))

	return &collectorBackend{
		Backend: backends.BackendContract(&backend{
			db: db,
			l:  l,
		}),
		c: db,
	}, nil
}

// Close implements backends.Backend interface.
func (b *backend) Close() {
	if err := b.db.Close(); err != nil {
		b.l.Error("Failed to close SQLite database", slog.Any("error", err))
	}
}

// Database implements backends.Backend interface.
func (b *backend) Database(name string) (backends.Database, error) {
	return newDatabase(b.db, b.l, name), nil
}

// ListDatabases implements backends.Backend interface.
func (b *backend) ListDatabases(ctx context.Context) (*backends.ListDatabasesResult, error) {
	names, err := queryStrings(ctx, b.db, `SELECT DISTINCT db FROM collections ORDER BY db`)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	res := &backends.ListDatabasesResult{
		Databases: make([]backends.DatabaseInfo, len(names)),
	}
	for i, name := range names {
		res.Databases[i] = backends.DatabaseInfo{Name: name}
	}

	return res, nil
}

// DropDatabase implements backends.Backend interface.
func (b *backend) DropDatabase(ctx context.Context, params *backends.DropDatabaseParams) error {
	return b.db.InTransaction(ctx, func(tx *fsql.Tx) error {
		q := `DELETE FROM collections WHERE db = ?`

		res, err := tx.ExecContext(ctx, q, params.Name)
		if err != nil {
			return lazyerrors.Error(err)
		}

		ra, err := res.RowsAffected()
		if err != nil {
			return lazyerrors.Error(err)
		}

		if ra == 0 {
			return backends.NewError(backends.ErrorCodeDatabaseDoesNotExist, nil)
		}

		q = `DELETE FROM documents WHERE db = ?`
		if _, err = tx.ExecContext(ctx, q, params.Name); err != nil {
			return lazyerrors.Error(err)
		}

		b.l.DebugContext(ctx, "Database dropped", slog.String("db", params.Name))

		return nil
	})
}

// collectorBackend adds prometheus.Collector implementation to the contract-wrapped backend.
type collectorBackend struct {
	backends.Backend
	c prometheus.Collector
}

// Describe implements prometheus.Collector.
func (cb *collectorBackend) Describe(ch chan<- *prometheus.Desc) {
	cb.c.Describe(ch)
}

// Collect implements prometheus.Collector.
func (cb *collectorBackend) Collect(ch chan<- prometheus.Metric) {
	cb.c.Collect(ch)
}

// queryStrings returns values of the single string column for all rows.
func queryStrings(ctx context.Context, db *fsql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	defer rows.Close()

	var res []string

	for rows.Next() {
		var s string
		if err = rows.Scan(&s); err != nil {
			return nil, lazyerrors.Error(err)
		}

		res = append(res, s)
	}

	if err = rows.Err(); err != nil {
		return nil, lazyerrors.Error(err)
	}

	return res, nil
}

// check interfaces
var (
	_ backends.Backend     = (*backend)(nil)
	_ backends.Backend     = (*collectorBackend)(nil)
	_ prometheus.Collector = (*collectorBackend)(nil)
)
