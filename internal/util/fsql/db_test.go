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
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/FerretDB/docmatch/internal/util/testutil"
)

func setup(t *testing.T) *DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", "file::memory:")
	require.NoError(t, err)

	// each connection gets its own in-memory database
	sqlDB.SetMaxOpenConns(1)

	db := WrapDB(sqlDB, "test", testutil.SLogger(t))
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	_, err = db.ExecContext(testutil.Ctx(t), "CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	return db
}

func count(t *testing.T, db *DB) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRowContext(testutil.Ctx(t), "SELECT count(*) FROM t").Scan(&n))

	return n
}

func TestInTransaction(t *testing.T) {
	t.Parallel()

	t.Run("Commit", func(t *testing.T) {
		t.Parallel()

		db := setup(t)

		err := db.InTransaction(testutil.Ctx(t), func(tx *Tx) error {
			_, err := tx.ExecContext(testutil.Ctx(t), "INSERT INTO t (v) VALUES (?), (?)", 1, 2)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 2, count(t, db))
	})

	t.Run("Rollback", func(t *testing.T) {
		t.Parallel()

		db := setup(t)

		expected := errors.New("test")

		err := db.InTransaction(testutil.Ctx(t), func(tx *Tx) error {
			if _, err := tx.ExecContext(testutil.Ctx(t), "INSERT INTO t (v) VALUES (?)", 1); err != nil {
				return err
			}

			return expected
		})
		require.ErrorIs(t, err, expected)
		assert.Equal(t, 0, count(t, db))
	})

	t.Run("Panic", func(t *testing.T) {
		t.Parallel()

		db := setup(t)

		assert.Panics(t, func() {
			_ = db.InTransaction(testutil.Ctx(t), func(tx *Tx) error {
				_, err := tx.ExecContext(testutil.Ctx(t), "INSERT INTO t (v) VALUES (?)", 1)
				require.NoError(t, err)
				panic("boom")
			})
		})
		assert.Equal(t, 0, count(t, db))
	})
}

func TestQuery(t *testing.T) {
	t.Parallel()

	db := setup(t)
	ctx := testutil.Ctx(t)

	_, err := db.ExecContext(ctx, "INSERT INTO t (v) VALUES (3), (1), (2)")
	require.NoError(t, err)

	rows, err := db.QueryContext(ctx, "SELECT v FROM t ORDER BY v")
	require.NoError(t, err)

	defer rows.Close()

	var actual []int

	for rows.Next() {
		var v int
		require.NoError(t, rows.Scan(&v))
		actual = append(actual, v)
	}

	require.NoError(t, rows.Err())
	assert.Equal(t, []int{1, 2, 3}, actual)
}
