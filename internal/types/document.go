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
	"fmt"

	"github.com/FerretDB/docmatch/internal/util/iterator"
)

// Document represents an ordered document.
//
// Duplicate field names are not supported.
// Zero value is a valid empty document.
type Document struct {
	m    map[string]any
	keys []string
}

// MakeDocument creates an empty document with set capacity.
func MakeDocument(capacity int) *Document {
	if capacity == 0 {
		return new(Document)
	}

	return &Document{
		m:    make(map[string]any, capacity),
		keys: make([]string, 0, capacity),
	}
}

// NewDocument creates a document with the given key/value pairs.
func NewDocument(pairs ...any) (*Document, error) {
	l := len(pairs)
	if l%2 != 0 {
		return nil, fmt.Errorf("types.NewDocument: invalid number of arguments: %d", l)
	}

	doc := MakeDocument(l / 2)

	for i := 0; i < l; i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("types.NewDocument: invalid key type: %T", pairs[i])
		}

		if doc.Has(key) {
			return nil, fmt.Errorf("types.NewDocument: duplicate key: %q", key)
		}

		if err := doc.Set(key, pairs[i+1]); err != nil {
			return nil, fmt.Errorf("types.NewDocument: %w", err)
		}
	}

	return doc, nil
}

func (*Document) compositeType() {}

// DeepCopy returns a deep copy of this Document.
func (d *Document) DeepCopy() *Document {
	if d == nil {
		panic("types.Document.DeepCopy: nil document")
	}

	return deepCopy(d).(*Document)
}

// Len returns the number of elements in the document.
//
// It returns 0 for nil Document.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}

	return len(d.keys)
}

// Keys returns document's keys. Do not modify it.
//
// It returns nil for nil Document.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}

	return d.keys
}

// Values returns a copy of document's values in the key order.
func (d *Document) Values() []any {
	if d == nil {
		return nil
	}

	values := make([]any, len(d.keys))
	for i, k := range d.keys {
		values[i] = d.m[k]
	}

	return values
}

// Command returns the first document's key.
// It returns an empty string if document is nil or empty.
func (d *Document) Command() string {
	keys := d.Keys()
	if len(keys) == 0 {
		return ""
	}

	return keys[0]
}

// Has returns true if the given key is present in the document.
func (d *Document) Has(key string) bool {
	if d == nil {
		return false
	}

	_, ok := d.m[key]

	return ok
}

// Lookup returns a value at the given key and true if the field is present.
// Present null field returns (types.Null, true); absent field returns (nil, false).
func (d *Document) Lookup(key string) (any, bool) {
	if d == nil {
		return nil, false
	}

	v, ok := d.m[key]

	return v, ok
}

// Get returns a value at the given key, or an error if the field is absent.
func (d *Document) Get(key string) (any, error) {
	if v, ok := d.Lookup(key); ok {
		return v, nil
	}

	return nil, fmt.Errorf("types.Document.Get: key not found: %q", key)
}

// Set sets the value of the given key, replacing any existing value.
// New keys are appended to the end.
func (d *Document) Set(key string, value any) error {
	if err := validateValue(value); err != nil {
		return fmt.Errorf("types.Document.Set: %w", err)
	}

	if d.m == nil {
		d.m = make(map[string]any, 1)
	}

	if _, ok := d.m[key]; !ok {
		d.keys = append(d.keys, key)
	}

	d.m[key] = value

	return nil
}

// Remove removes the given key and returns its value,
// or returns nil if the key does not exist.
func (d *Document) Remove(key string) any {
	v, ok := d.Lookup(key)
	if !ok {
		return nil
	}

	delete(d.m, key)

	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			return v
		}
	}

	// should not be reached
	panic(fmt.Sprintf("types.Document.Remove: key not found: %q", key))
}

// Iterator returns an iterator over the document fields in the key order.
func (d *Document) Iterator() iterator.Interface[string, any] {
	return newDocumentIterator(d)
}
