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

package backends

import (
	"context"
	"fmt"

	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/observability"
)

// Collection is a generic interface for all backends for accessing collection.
//
// Collection object should be stateless and temporary;
// all state should be in the Backend that created Database instance that created this Collection instance.
// Creating a Collection object does not imply the creating of the database or collection.
//
// Collection methods should be thread-safe.
//
// See collectionContract and its methods for additional details.
type Collection interface {
	Query(context.Context) (*QueryResult, error)
	Insert(context.Context, *InsertParams) (*InsertResult, error)
	Update(context.Context, *UpdateParams) (*UpdateResult, error)
	Delete(context.Context, *DeleteParams) (*DeleteResult, error)
	Count(context.Context) (int64, error)
}

// collectionContract implements Collection interface.
type collectionContract struct {
	c Collection
}

// CollectionContract wraps Collection and enforces its contract.
//
// All backend implementations should use that function when they create new Collection instances.
// The handler should not use that function.
//
// See collectionContract and its methods for additional details.
func CollectionContract(c Collection) Collection {
	return &collectionContract{
		c: c,
	}
}

// QueryResult represents the results of Collection.Query method.
type QueryResult struct {
	Docs []*types.Document
}

// Query returns all documents of the collection in insertion order.
//
// Returned documents are owned by the caller.
// Database or collection may not exist; that's not an error, empty result is returned.
func (cc *collectionContract) Query(ctx context.Context) (*QueryResult, error) {
	defer observability.FuncCall(ctx)()

	res, err := cc.c.Query(ctx)
	checkError(err)

	return res, err
}

// InsertParams represents the parameters of Collection.Insert method.
type InsertParams struct {
	Docs []*types.Document
}

// InsertResult represents the results of Collection.Insert method.
type InsertResult struct {
	Inserted int64
}

// Insert inserts documents into the collection.
//
// All documents must have _id field; they are inserted together or not at all.
// Both database and collection may or may not exist; they should be created automatically if needed.
func (cc *collectionContract) Insert(ctx context.Context, params *InsertParams) (*InsertResult, error) {
	defer observability.FuncCall(ctx)()

	var res *InsertResult

	err := checkIDs(params.Docs)
	if err == nil {
		res, err = cc.c.Insert(ctx, params)
	}

	checkError(err, ErrorCodeInsertMissingID, ErrorCodeInsertDuplicateID)

	return res, err
}

// UpdateParams represents the parameters of Collection.Update method.
type UpdateParams struct {
	Docs []*types.Document
}

// UpdateResult represents the results of Collection.Update method.
type UpdateResult struct {
	Updated int64
}

// Update replaces stored documents with given ones, matching them by _id value.
//
// Documents without stored counterparts are skipped.
// Database or collection may not exist; that's not an error.
func (cc *collectionContract) Update(ctx context.Context, params *UpdateParams) (*UpdateResult, error) {
	defer observability.FuncCall(ctx)()

	for _, doc := range params.Docs {
		if !doc.Has("_id") {
			panic(fmt.Sprintf("document without _id: %v", doc.Keys()))
		}
	}

	res, err := cc.c.Update(ctx, params)
	checkError(err)

	return res, err
}

// DeleteParams represents the parameters of Collection.Delete method.
type DeleteParams struct {
	IDs []any
}

// DeleteResult represents the results of Collection.Delete method.
type DeleteResult struct {
	Deleted int64
}

// Delete deletes documents with given _id values from the collection.
//
// Database or collection may not exist; that's not an error.
func (cc *collectionContract) Delete(ctx context.Context, params *DeleteParams) (*DeleteResult, error) {
	defer observability.FuncCall(ctx)()

	res, err := cc.c.Delete(ctx, params)
	checkError(err)

	return res, err
}

// Count returns the number of documents in the collection.
//
// Database or collection may not exist; that's not an error, 0 is returned.
func (cc *collectionContract) Count(ctx context.Context) (int64, error) {
	defer observability.FuncCall(ctx)()

	res, err := cc.c.Count(ctx)
	checkError(err)

	return res, err
}

// checkIDs returns an error if some document does not have _id field,
// or if some _id values are duplicated within the batch.
func checkIDs(docs []*types.Document) error {
	ids := make([]any, 0, len(docs))

	for _, doc := range docs {
		id, err := doc.Get("_id")
		if err != nil {
			return NewError(ErrorCodeInsertMissingID, err)
		}

		for _, seen := range ids {
			if types.Identical(seen, id) {
				return NewErrorWithArgument(ErrorCodeInsertDuplicateID, nil, id)
			}
		}

		ids = append(ids, id)
	}

	return nil
}

// check interfaces
var (
	_ Collection = (*collectionContract)(nil)
)
