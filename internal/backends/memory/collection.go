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

// collection implements backends.Collection interface.
type collection struct {
	s      *storage
	dbName string
	name   string
}

// newCollection creates a new Collection.
func newCollection(s *storage, dbName, name string) backends.Collection {
	return backends.CollectionContract(&collection{
		s:      s,
		dbName: dbName,
		name:   name,
	})
}

// Query implements backends.Collection interface.
func (c *collection) Query(ctx context.Context) (*backends.QueryResult, error) {
	c.s.rw.RLock()
	defer c.s.rw.RUnlock()

	stored := c.s.dbs[c.dbName][c.name]

	res := &backends.QueryResult{
		Docs: make([]*types.Document, len(stored)),
	}
	for i, doc := range stored {
		res.Docs[i] = doc.DeepCopy()
	}

	return res, nil
}

// Insert implements backends.Collection interface.
func (c *collection) Insert(ctx context.Context, params *backends.InsertParams) (*backends.InsertResult, error) {
	c.s.rw.Lock()
	defer c.s.rw.Unlock()

	colls := c.s.dbs[c.dbName]
	stored := colls[c.name]

	for _, doc := range params.Docs {
		id, _ := doc.Get("_id")
		if indexOf(stored, id) >= 0 {
			return nil, backends.NewErrorWithArgument(backends.ErrorCodeInsertDuplicateID, nil, id)
		}
	}

	if colls == nil {
		colls = map[string][]*types.Document{}
		c.s.dbs[c.dbName] = colls
	}

	if _, ok := colls[c.name]; !ok {
		c.s.l.Debug("Collection created", zap.String("db", c.dbName), zap.String("collection", c.name))
	}

	for _, doc := range params.Docs {
		stored = append(stored, doc.DeepCopy())
	}

	colls[c.name] = stored

	return &backends.InsertResult{Inserted: int64(len(params.Docs))}, nil
}

// Update implements backends.Collection interface.
func (c *collection) Update(ctx context.Context, params *backends.UpdateParams) (*backends.UpdateResult, error) {
	c.s.rw.Lock()
	defer c.s.rw.Unlock()

	var res backends.UpdateResult

	stored := c.s.dbs[c.dbName][c.name]

	for _, doc := range params.Docs {
		id, _ := doc.Get("_id")

		i := indexOf(stored, id)
		if i < 0 {
			continue
		}

		stored[i] = doc.DeepCopy()
		res.Updated++
	}

	return &res, nil
}

// Delete implements backends.Collection interface.
func (c *collection) Delete(ctx context.Context, params *backends.DeleteParams) (*backends.DeleteResult, error) {
	c.s.rw.Lock()
	defer c.s.rw.Unlock()

	var res backends.DeleteResult

	colls := c.s.dbs[c.dbName]

	stored, ok := colls[c.name]
	if !ok {
		return &res, nil
	}

	for _, id := range params.IDs {
		i := indexOf(stored, id)
		if i < 0 {
			continue
		}

		stored = append(stored[:i], stored[i+1:]...)
		res.Deleted++
	}

	colls[c.name] = stored

	return &res, nil
}

// Count implements backends.Collection interface.
func (c *collection) Count(ctx context.Context) (int64, error) {
	c.s.rw.RLock()
	defer c.s.rw.RUnlock()

	return int64(len(c.s.dbs[c.dbName][c.name])), nil
}

// check interfaces
var (
	_ backends.Collection = (*collection)(nil)
)
