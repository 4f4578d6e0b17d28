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

package query

import (
	"golang.org/x/exp/slices"

	"github.com/FerretDB/docmatch/internal/types"
)

// SortKey is a single sort key.
type SortKey struct {
	Field string
	Order types.SortType
}

// Sort is a parsed sort specification.
//
// Nil or empty Sort keeps documents order.
type Sort struct {
	keys []SortKey
}

// ParseSort parses the given sort document.
//
// Negative numbers mean descending order, other numbers mean ascending order.
// Fields with non-numeric directions are ignored.
func ParseSort(sort *types.Document) *Sort {
	res := &Sort{
		keys: make([]SortKey, 0, sort.Len()),
	}

	for _, field := range sort.Keys() {
		v, _ := sort.Lookup(field)
		if !isNumber(v) {
			continue
		}

		order := types.Ascending
		if toFloat64(v) < 0 {
			order = types.Descending
		}

		res.keys = append(res.keys, SortKey{Field: field, Order: order})
	}

	return res
}

// NewSort returns a Sort for the given keys.
func NewSort(keys ...SortKey) *Sort {
	return &Sort{keys: slices.Clone(keys)}
}

// Keys returns sort keys in priority order.
func (s *Sort) Keys() []SortKey {
	if s == nil {
		return nil
	}

	return s.keys
}

// Len returns the number of sort keys.
func (s *Sort) Len() int {
	return len(s.Keys())
}

// SortDocuments sorts given documents in place.
//
// The sort is stable; earlier keys take priority, later keys break ties.
// Absent fields sort as null.
func (s *Sort) SortDocuments(docs []*types.Document) {
	if s.Len() == 0 {
		return
	}

	slices.SortStableFunc(docs, func(a, b *types.Document) int {
		for _, key := range s.keys {
			if res := types.CompareOrder(sortValue(a, key.Field), sortValue(b, key.Field), key.Order); res != types.Equal {
				return int(res)
			}
		}

		return 0
	})
}

// sortValue returns the value of the given field for sorting.
func sortValue(doc *types.Document, field string) any {
	if v, ok := doc.Lookup(field); ok {
		return v
	}

	return types.Null
}
