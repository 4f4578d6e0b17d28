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

// Package memory provides in-memory backend.
//
// All documents are deep-copied on the way in and out,
// so callers never share values with the storage.
package memory

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"go.uber.org/zap"

	"github.com/FerretDB/docmatch/internal/types"
)

// storage holds all databases.
type storage struct {
	rw  sync.RWMutex
	dbs map[string]map[string][]*types.Document
	l   *zap.Logger
}

// newStorage creates a new storage.
func newStorage(l *zap.Logger) *storage {
	return &storage{
		dbs: map[string]map[string][]*types.Document{},
		l:   l,
	}
}

// databaseNames returns sorted names of non-empty databases.
func (s *storage) databaseNames() []string {
	s.rw.RLock()
	defer s.rw.RUnlock()

	res := maps.Keys(s.dbs)
	slices.Sort(res)

	return res
}

// collectionNames returns sorted names of collections in the given database.
func (s *storage) collectionNames(dbName string) []string {
	s.rw.RLock()
	defer s.rw.RUnlock()

	res := maps.Keys(s.dbs[dbName])
	slices.Sort(res)

	return res
}

// indexOf returns the index of the document with the given _id value, or -1.
func indexOf(docs []*types.Document, id any) int {
	return slices.IndexFunc(docs, func(doc *types.Document) bool {
		v, _ := doc.Get("_id")
		return types.Identical(v, id)
	})
}
