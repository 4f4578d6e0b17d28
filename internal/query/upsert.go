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
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/must"
)

// UpsertSeed returns a new document built from literal field values of the given filter.
//
// It takes {field: value} pairs with plain values and literal documents,
// {field: {$eq: value}} pairs, and literal pairs of $and members.
// Other operators are skipped.
// When the same field is seeded more than once, the first value wins.
func UpsertSeed(filter *types.Document) *types.Document {
	res := new(types.Document)
	seed(res, filter)

	return res
}

// seed adds literal pairs of filter to doc.
func seed(doc, filter *types.Document) {
	for _, k := range filter.Keys() {
		v, _ := filter.Lookup(k)

		if k == "$and" {
			arr, ok := v.(*types.Array)
			if !ok {
				continue
			}

			for i := 0; i < arr.Len(); i++ {
				if sub, ok := must.NotFail(arr.Get(i)).(*types.Document); ok {
					seed(doc, sub)
				}
			}

			continue
		}

		if isOperator(k) || doc.Has(k) {
			continue
		}

		if expr, ok := v.(*types.Document); ok && isOperator(expr.Command()) {
			eq, ok := expr.Lookup("$eq")
			if !ok {
				continue
			}

			v = eq
		}

		setCopy(doc, k, v)
	}
}

// setCopy sets a copy of value in the document.
func setCopy(doc *types.Document, key string, value any) {
	must.NoError(doc.Set(key, copyValue(value)))
}
