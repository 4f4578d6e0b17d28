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

package types

import (
	"sync"

	"github.com/FerretDB/docmatch/internal/util/iterator"
)

// documentIterator represents an iterator over the document fields.
type documentIterator struct {
	m   sync.Mutex
	doc *Document
	n   int
}

// newDocumentIterator creates a new document iterator.
func newDocumentIterator(doc *Document) iterator.Interface[string, any] {
	return &documentIterator{
		doc: doc,
	}
}

// Next implements iterator.Interface.
func (iter *documentIterator) Next() (string, any, error) {
	iter.m.Lock()
	defer iter.m.Unlock()

	if iter.doc == nil || iter.n >= iter.doc.Len() {
		return "", nil, iterator.ErrIteratorDone
	}

	k := iter.doc.keys[iter.n]
	iter.n++

	return k, iter.doc.m[k], nil
}

// Close implements iterator.Interface.
func (iter *documentIterator) Close() {
	iter.m.Lock()
	defer iter.m.Unlock()

	iter.doc = nil
}

// check interfaces
var (
	_ iterator.Interface[string, any] = (*documentIterator)(nil)
)
