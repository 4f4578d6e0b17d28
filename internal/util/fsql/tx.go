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

package fsql

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/FerretDB/docmatch/internal/util/observability"
)

// Tx wraps [*database/sql.Tx] with tracing and logging.
//
// It exposes the subset of *sql.Tx methods we use.
type Tx struct {
	sqlTx *sql.Tx
	l     *slog.Logger
}

// wrapTx creates new Tx.
func wrapTx(tx *sql.Tx, l *slog.Logger) *Tx {
	if tx == nil {
		return nil
	}

	return &Tx{
		sqlTx: tx,
		l:     l,
	}
}

// Commit calls [*sql.Tx.Commit].
func (tx *Tx) Commit() error {
	return tx.sqlTx.Commit()
}

// Rollback calls [*sql.Tx.Rollback].
func (tx *Tx) Rollback() error {
	return tx.sqlTx.Rollback()
}

// QueryContext calls [*sql.Tx.QueryContext].
func (tx *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer observability.FuncCall(ctx)()

	start := time.Now()

	tx.l.DebugContext(ctx, ">>> "+query, slog.Any("args", args))

	rows, err := tx.sqlTx.QueryContext(ctx, query, args...)

	tx.l.DebugContext(ctx, "<<< "+query, slog.Duration("time", time.Since(start)), slog.Any("error", err))

	return rows, err
}

// ExecContext calls [*sql.Tx.ExecContext].
func (tx *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer observability.FuncCall(ctx)()

	start := time.Now()

	tx.l.DebugContext(ctx, ">>> "+query, slog.Any("args", args))

	res, err := tx.sqlTx.ExecContext(ctx, query, args...)

	tx.l.DebugContext(ctx, "<<< "+query, slog.Duration("time", time.Since(start)), slog.Any("error", err))

	return res, err
}
