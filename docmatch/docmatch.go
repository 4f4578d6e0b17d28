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

// Package docmatch provides embeddable MongoDB-style document matching, updating, and storage.
//
// Documents, filters, updates, and projections are values of the MongoDB Go driver's bson package.
package docmatch

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/FerretDB/docmatch/internal/query"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/convert"
)

// Match reports whether the document matches the filter.
//
// Empty or nil filter matches every document.
// Unknown operators are ignored.
// The error is returned only if the document or the filter contain values of unsupported types.
func Match(doc, filter bson.D) (bool, error) {
	d, err := toDocument(doc)
	if err != nil {
		return false, err
	}

	f, err := convert.Document(filter)
	if err != nil {
		return false, publicError(err)
	}

	return query.FilterDocument(d, f), nil
}

// Apply applies the update expression to a copy of the document.
//
// It returns the updated document and whether any operator changed it.
// The given document is not modified.
func Apply(doc, update bson.D) (bson.D, bool, error) {
	d, err := toDocument(doc)
	if err != nil {
		return nil, false, err
	}

	u, err := convert.Document(update)
	if err != nil {
		return nil, false, publicError(err)
	}

	d = d.DeepCopy()
	changed := query.UpdateDocument(d, u)

	return convert.Doc(d), changed, nil
}

// Project returns a projected copy of the document.
//
// Projection is either a document (bson.D, bson.M) mapping field names to truthy or falsy values,
// or a list of field names to include (bson.A, []string).
// Nil projection returns the whole document.
func Project(doc bson.D, projection any) (bson.D, error) {
	d, err := toDocument(doc)
	if err != nil {
		return nil, err
	}

	p, err := projectionValue(projection)
	if err != nil {
		return nil, err
	}

	return convert.Doc(query.ParseProjection(p).Project(d)), nil
}

// toDocument converts a non-nil document.
func toDocument(doc bson.D) (*types.Document, error) {
	if doc == nil {
		return types.MakeDocument(0), nil
	}

	d, err := convert.Document(doc)
	if err != nil {
		return nil, publicError(err)
	}

	return d, nil
}

// projectionValue converts the projection to the form accepted by the projection engine.
func projectionValue(projection any) (any, error) {
	var v any
	var err error

	switch projection := projection.(type) {
	case nil:
		return nil, nil
	case []string:
		a := make(bson.A, len(projection))
		for i, f := range projection {
			a[i] = f
		}

		v, err = convert.FromBSON(a)
	case bson.A, []any:
		v, err = convert.FromBSON(projection)
	default:
		v, err = convert.Document(projection)
	}

	if err != nil {
		return nil, publicError(err)
	}

	return v, nil
}

// sortValue converts the sort specification.
// Maps are converted with sorted keys; use bson.D to keep the order.
func sortValue(sort any) (*types.Document, error) {
	d, err := convert.Document(sort)
	if err != nil {
		return nil, publicError(err)
	}

	return d, nil
}
