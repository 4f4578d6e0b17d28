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

// database implements backends.Database interface.
type database struct {
	s    *storage
	name string
}

// newDatabase creates a new Database.
func newDatabase(s *storage, name string) backends.Database {
	return backends.DatabaseContract(&database{
		s:    s,
		name: name,
	})
}

// Collection implements backends.Database interface.
func (db *database) Collection(name string) (backends.Collection, error) {
	return newCollection(db.s, db.name, name), nil
}

// ListCollections implements backends.Database interface.
func (db *database) ListCollections(ctx context.Context) (*backends.ListCollectionsResult, error) {
	names := db.s.collectionNames(db.name)

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
	db.s.rw.Lock()
	defer db.s.rw.Unlock()

	colls := db.s.dbs[db.name]
	if _, ok := colls[params.Name]; ok {
		return backends.NewError(backends.ErrorCodeCollectionAlreadyExists, nil)
	}

	if colls == nil {
		colls = map[string][]*types.Document{}
		db.s.dbs[db.name] = colls
	}

	colls[params.Name] = []*types.Document{}

	db.s.l.Debug("Collection created", zap.String("db", db.name), zap.String("collection", params.Name))

	return nil
}

// DropCollection implements backends.Database interface.
func (db *database) DropCollection(ctx context.Context, params *backends.DropCollectionParams) error {
	db.s.rw.Lock()
	defer db.s.rw.Unlock()

	colls := db.s.dbs[db.name]
	if _, ok := colls[params.Name]; !ok {
		return backends.NewError(backends.ErrorCodeCollectionDoesNotExist, nil)
	}

	delete(colls, params.Name)

	if len(colls) == 0 {
		delete(db.s.dbs, db.name)
	}

	db.s.l.Debug("Collection dropped", zap.String("db", db.name), zap.String("collection", params.Name))

	return nil
}

// check interfaces
var (
	_ backends.Database = (*database)(nil)
)
