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

package memory

import (
	"context"

	"go.uber.org/zap"

	"github.com/FerretDB/docmatch/internal/backends"
	"github.com/FerretDB/docmatch/internal/types"
)

// backend implements backends.Backend interface.
type backend struct {
	s *storage
}

// NewBackendParams represents the parameters of NewBackend function.
type NewBackendParams struct {
	L *zap.Logger
}

// NewBackend creates a new in-memory backend.
func NewBackend(params *NewBackendParams) backends.Backend {
	l := params.L
	if l == nil {
		l = zap.NewNop()
	}

	return backends.BackendContract(&backend{
		s: newStorage(l),
	})
}

// Close implements backends.Backend interface.
func (b *backend) Close() {
	b.s.rw.Lock()
	defer b.s.rw.Unlock()

	b.s.dbs = map[string]map[string][]*types.Document{}
}

// Database implements backends.Backend interface.
func (b *backend) Database(name string) (backends.Database, error) {
	return newDatabase(b.s, name), nil
}

// ListDatabases implements backends.Backend interface.
func (b *backend) ListDatabases(ctx context.Context) (*backends.ListDatabasesResult, error) {
	names := b.s.databaseNames()

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
	b.s.rw.Lock()
	defer b.s.rw.Unlock()

	if _, ok := b.s.dbs[params.Name]; !ok {
		return backends.NewError(backends.ErrorCodeDatabaseDoesNotExist, nil)
	}

	delete(b.s.dbs, params.Name)

	b.s.l.Debug("Database dropped", zap.String("db", params.Name))

	return nil
}

// check interfaces
var (
	_ backends.Backend = (*backend)(nil)
)
