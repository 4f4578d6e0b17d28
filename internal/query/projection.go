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
	"github.com/FerretDB/docmatch/internal/util/must"
)

// idField is the name of the identity field.
const idField = "_id"

// Projection is a parsed projection expression.
//
// Nil Projection is the identity projection.
type Projection struct {
	fields    []string // non-_id fields to include or exclude
	inclusion bool
	excludeID bool
}

// ParseProjection parses the given projection expression.
//
// The expression is either a *types.Document mapping field names to truthy (include)
// or falsy (exclude) values, or a *types.Array of field names to include.
// Nil, empty, and values of other types produce the identity projection (nil).
//
// The projection is in inclusion mode if any non-_id field is truthy.
// In that mode falsy non-_id fields are ignored.
// _id is always kept unless it is explicitly falsy.
func ParseProjection(projection any) *Projection {
	switch projection := projection.(type) {
	case *types.Document:
		if projection.Len() == 0 {
			return nil
		}

		res := new(Projection)

		for _, k := range projection.Keys() {
			v, _ := projection.Lookup(k)

			if k == idField {
				res.excludeID = !truthy(v)
				continue
			}

			if truthy(v) && !res.inclusion {
				res.inclusion = true
				res.fields = res.fields[:0]
			}

			if truthy(v) == res.inclusion {
				res.fields = append(res.fields, k)
			}
		}

		return res

	case *types.Array:
		if projection.Len() == 0 {
			return nil
		}

		res := &Projection{
			inclusion: true,
		}

		for i := 0; i < projection.Len(); i++ {
			k, ok := must.NotFail(projection.Get(i)).(string)
			if !ok {
				continue
			}

			if k == idField {
				continue
			}

			res.fields = append(res.fields, k)
		}

		return res

	default:
		return nil
	}
}

// Inclusion returns true if the projection is in inclusion mode.
func (p *Projection) Inclusion() bool {
	return p != nil && p.inclusion
}

// Project returns a new document with fields selected by the projection.
// The source document is not modified.
func (p *Projection) Project(doc *types.Document) *types.Document {
	if p == nil {
		return doc.DeepCopy()
	}

	if !p.inclusion {
		res := doc.DeepCopy()

		for _, k := range p.fields {
			res.Remove(k)
		}

		if p.excludeID {
			res.Remove(idField)
		}

		return res
	}

	res := types.MakeDocument(len(p.fields) + 1)

	if !p.excludeID {
		if v, ok := doc.Lookup(idField); ok {
			setCopy(res, idField, v)
		}
	}

	for _, k := range doc.Keys() {
		if k == idField || !slices.Contains(p.fields, k) {
			continue
		}

		v, _ := doc.Lookup(k)
		setCopy(res, k, v)
	}

	return res
}
