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

package docmatch

import (
	"context"
	"fmt"

	"github.com/AlekSi/pointer"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/FerretDB/docmatch/internal/handler"
	"github.com/FerretDB/docmatch/internal/handler/handlererrors"
	"github.com/FerretDB/docmatch/internal/query"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/convert"
)

// Collection represents a named collection in a database.
//
// Collection handles are cheap; the underlying collection is created on the first insert.
type Collection struct {
	s    *Store
	db   string
	name string
}

// Database returns the database name.
func (c *Collection) Database() string {
	return c.db
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// InsertOneResult represents the result of InsertOne.
type InsertOneResult struct {
	InsertedID any
}

// InsertManyResult represents the result of InsertMany.
type InsertManyResult struct {
	InsertedIDs []any
}

// UpdateResult represents the result of UpdateOne, UpdateMany, and ReplaceOne.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedCount int64
	UpsertedID    any
}

// DeleteResult represents the result of DeleteOne and DeleteMany.
type DeleteResult struct {
	DeletedCount int64
}

// InsertOne inserts a single document.
//
// If the document has no _id field, a new ObjectID is generated.
func (c *Collection) InsertOne(ctx context.Context, doc any) (*InsertOneResult, error) {
	res, err := c.InsertMany(ctx, []any{doc})
	if err != nil {
		return nil, err
	}

	return &InsertOneResult{InsertedID: res.InsertedIDs[0]}, nil
}

// InsertMany inserts documents in order.
//
// If some document has a duplicate _id value, documents before it stay inserted;
// the result with their _id values is returned together with the error.
func (c *Collection) InsertMany(ctx context.Context, docs []any) (*InsertManyResult, error) {
	params := &handler.InsertParams{
		DB:         c.db,
		Collection: c.name,
		Docs:       make([]*types.Document, len(docs)),
	}

	for i, doc := range docs {
		d, err := convert.Document(doc)
		if err != nil {
			return nil, publicError(err)
		}

		if d == nil {
			return nil, badValue("document must not be nil")
		}

		params.Docs[i] = d
	}

	res, err := c.s.h.Insert(ctx, params)
	if res == nil {
		return nil, publicError(err)
	}

	ids := make([]any, len(res.InsertedIDs))
	for i, id := range res.InsertedIDs {
		ids[i] = convert.ToBSON(id)
	}

	return &InsertManyResult{InsertedIDs: ids}, publicError(err)
}

// Find returns a cursor over documents matching the filter.
//
// The cursor should be closed by the caller; reading all documents with All closes it.
func (c *Collection) Find(ctx context.Context, filter any, opts ...*FindOptions) (*Cursor, error) {
	params, err := c.findParams(filter, mergeFindOptions(opts...))
	if err != nil {
		return nil, err
	}

	cur, err := c.s.h.Find(ctx, params)
	if err != nil {
		return nil, publicError(err)
	}

	return newCursor(c.s.h, cur), nil
}

// FindOne returns the first document matching the filter.
//
// If there is none, ErrNoDocuments is returned.
func (c *Collection) FindOne(ctx context.Context, filter any, opts ...*FindOptions) (bson.D, error) {
	params, err := c.findParams(filter, mergeFindOptions(opts...))
	if err != nil {
		return nil, err
	}

	doc, err := c.s.h.FindOne(ctx, params)
	if err != nil {
		return nil, publicError(err)
	}

	if doc == nil {
		return nil, ErrNoDocuments
	}

	return convert.Doc(doc), nil
}

// findParams converts filter and options to handler parameters.
func (c *Collection) findParams(filter any, o *FindOptions) (*handler.FindParams, error) {
	f, err := convert.Document(filter)
	if err != nil {
		return nil, publicError(err)
	}

	params := &handler.FindParams{
		DB:         c.db,
		Collection: c.name,
		Filter:     f,
		Skip:       pointer.GetInt64(o.Skip),
		Limit:      pointer.GetInt64(o.Limit),
		BatchSize:  pointer.GetInt32(o.BatchSize),
	}

	if o.Sort != nil {
		if params.Sort, err = sortValue(o.Sort); err != nil {
			return nil, err
		}
	}

	if params.Projection, err = projectionValue(o.Projection); err != nil {
		return nil, err
	}

	return params, nil
}

// UpdateOne applies the update expression to the first document matching the filter.
func (c *Collection) UpdateOne(ctx context.Context, filter, update any, opts ...*UpdateOptions) (*UpdateResult, error) {
	return c.update(ctx, filter, update, true, false, upsert(opts...))
}

// UpdateMany applies the update expression to all documents matching the filter.
func (c *Collection) UpdateMany(ctx context.Context, filter, update any, opts ...*UpdateOptions) (*UpdateResult, error) {
	return c.update(ctx, filter, update, true, true, upsert(opts...))
}

// ReplaceOne replaces the first document matching the filter.
//
// The replacement keeps the original _id.
func (c *Collection) ReplaceOne(ctx context.Context, filter, replacement any, opts ...*UpdateOptions) (*UpdateResult, error) {
	return c.update(ctx, filter, replacement, false, false, upsert(opts...))
}

// update implements UpdateOne, UpdateMany, and ReplaceOne.
func (c *Collection) update(ctx context.Context, filter, update any, expression, multi, upsert bool) (*UpdateResult, error) {
	f, err := convert.Document(filter)
	if err != nil {
		return nil, publicError(err)
	}

	u, err := updateDocument(update, expression)
	if err != nil {
		return nil, err
	}

	res, err := c.s.h.Update(ctx, &handler.UpdateParams{
		DB:         c.db,
		Collection: c.name,
		Filter:     f,
		Update:     u,
		Multi:      multi,
		Upsert:     upsert,
	})
	if err != nil {
		return nil, publicError(err)
	}

	ur := &UpdateResult{
		MatchedCount:  res.Matched,
		ModifiedCount: res.Modified,
	}

	if res.UpsertedID != nil {
		ur.UpsertedCount = 1
		ur.UpsertedID = convert.ToBSON(res.UpsertedID)
	}

	return ur, nil
}

// updateDocument converts the update and checks that it is an update expression
// or a replacement document, as expected.
func updateDocument(update any, expression bool) (*types.Document, error) {
	u, err := convert.Document(update)
	if err != nil {
		return nil, publicError(err)
	}

	switch {
	case expression && !query.IsUpdateExpression(u):
		return nil, badValue("update document must contain only update operators")
	case !expression && query.IsUpdateExpression(u):
		return nil, badValue("replacement document must not contain update operators")
	}

	if u == nil {
		u = types.MakeDocument(0)
	}

	return u, nil
}

// DeleteOne deletes the first document matching the filter.
func (c *Collection) DeleteOne(ctx context.Context, filter any) (*DeleteResult, error) {
	return c.delete(ctx, filter, false)
}

// DeleteMany deletes all documents matching the filter.
func (c *Collection) DeleteMany(ctx context.Context, filter any) (*DeleteResult, error) {
	return c.delete(ctx, filter, true)
}

// delete implements DeleteOne and DeleteMany.
func (c *Collection) delete(ctx context.Context, filter any, multi bool) (*DeleteResult, error) {
	f, err := convert.Document(filter)
	if err != nil {
		return nil, publicError(err)
	}

	res, err := c.s.h.Delete(ctx, &handler.DeleteParams{
		DB:         c.db,
		Collection: c.name,
		Filter:     f,
		Multi:      multi,
	})
	if err != nil {
		return nil, publicError(err)
	}

	return &DeleteResult{DeletedCount: res.Deleted}, nil
}

// CountDocuments returns the number of documents matching the filter.
func (c *Collection) CountDocuments(ctx context.Context, filter any, opts ...*CountOptions) (int64, error) {
	f, err := convert.Document(filter)
	if err != nil {
		return 0, publicError(err)
	}

	params := &handler.CountParams{
		DB:         c.db,
		Collection: c.name,
		Filter:     f,
	}

	for _, o := range opts {
		if o == nil {
			continue
		}

		if o.Skip != nil {
			params.Skip = *o.Skip
		}

		if o.Limit != nil {
			params.Limit = *o.Limit
		}
	}

	res, err := c.s.h.Count(ctx, params)
	return res, publicError(err)
}

// EstimatedDocumentCount returns the number of documents in the collection.
func (c *Collection) EstimatedDocumentCount(ctx context.Context) (int64, error) {
	res, err := c.s.h.EstimatedCount(ctx, c.db, c.name)
	return res, publicError(err)
}

// Distinct returns distinct values of the field among documents matching the filter.
//
// Elements of array fields are considered separately.
// Values are returned in the canonical sort order.
func (c *Collection) Distinct(ctx context.Context, field string, filter any) ([]any, error) {
	f, err := convert.Document(filter)
	if err != nil {
		return nil, publicError(err)
	}

	res, err := c.s.h.Distinct(ctx, &handler.DistinctParams{
		DB:         c.db,
		Collection: c.name,
		Key:        field,
		Filter:     f,
	})
	if err != nil {
		return nil, publicError(err)
	}

	return convert.ToBSON(res).(bson.A), nil
}

// Aggregate runs the pipeline of stages and returns resulting documents.
//
// Pipeline is a slice of stage documents: []bson.D, bson.A, or []any.
// Supported stages are $match, $sort, $skip, $limit, $project, and $count.
func (c *Collection) Aggregate(ctx context.Context, pipeline any) ([]bson.D, error) {
	var stages []any

	switch pipeline := pipeline.(type) {
	case nil:
	case []bson.D:
		for _, s := range pipeline {
			stages = append(stages, s)
		}
	case bson.A:
		stages = pipeline
	case []any:
		stages = pipeline
	default:
		return nil, badValue(fmt.Sprintf("unsupported pipeline type %T", pipeline))
	}

	params := &handler.AggregateParams{
		DB:         c.db,
		Collection: c.name,
		Pipeline:   make([]*types.Document, len(stages)),
	}

	for i, s := range stages {
		d, err := convert.Document(s)
		if err != nil || d == nil {
			return nil, badValue(fmt.Sprintf("pipeline stage %d must be a document", i))
		}

		params.Pipeline[i] = d
	}

	res, err := c.s.h.Aggregate(ctx, params)
	if err != nil {
		return nil, publicError(err)
	}

	return documents(res), nil
}

// FindOneAndUpdate applies the update expression to the first document matching the filter
// and returns either the original or the updated document.
//
// If nothing matches and no document is upserted, ErrNoDocuments is returned.
func (c *Collection) FindOneAndUpdate(ctx context.Context, filter, update any, opts ...*FindOneAndUpdateOptions) (bson.D, error) {
	u, err := updateDocument(update, true)
	if err != nil {
		return nil, err
	}

	return c.findAndModify(ctx, filter, u, false, opts...)
}

// FindOneAndReplace replaces the first document matching the filter
// and returns either the original or the replacement document.
func (c *Collection) FindOneAndReplace(ctx context.Context, filter, replacement any, opts ...*FindOneAndUpdateOptions) (bson.D, error) {
	u, err := updateDocument(replacement, false)
	if err != nil {
		return nil, err
	}

	return c.findAndModify(ctx, filter, u, false, opts...)
}

// FindOneAndDelete deletes the first document matching the filter and returns it.
func (c *Collection) FindOneAndDelete(ctx context.Context, filter any, opts ...*FindOneAndDeleteOptions) (bson.D, error) {
	var o []*FindOneAndUpdateOptions

	for _, d := range opts {
		if d != nil {
			o = append(o, &FindOneAndUpdateOptions{Sort: d.Sort, Projection: d.Projection})
		}
	}

	return c.findAndModify(ctx, filter, nil, true, o...)
}

// findAndModify implements FindOneAndUpdate, FindOneAndReplace, and FindOneAndDelete.
func (c *Collection) findAndModify(ctx context.Context, filter any, update *types.Document, remove bool, opts ...*FindOneAndUpdateOptions) (bson.D, error) {
	f, err := convert.Document(filter)
	if err != nil {
		return nil, publicError(err)
	}

	params := &handler.FindAndModifyParams{
		DB:         c.db,
		Collection: c.name,
		Filter:     f,
		Update:     update,
		Remove:     remove,
	}

	for _, o := range opts {
		if o == nil {
			continue
		}

		if o.Sort != nil {
			if params.Sort, err = sortValue(o.Sort); err != nil {
				return nil, err
			}
		}

		if o.Projection != nil {
			if params.Projection, err = projectionValue(o.Projection); err != nil {
				return nil, err
			}
		}

		if o.Upsert != nil {
			params.Upsert = *o.Upsert
		}

		if o.ReturnNew != nil {
			params.ReturnNew = *o.ReturnNew
		}
	}

	res, err := c.s.h.FindAndModify(ctx, params)
	if err != nil {
		return nil, publicError(err)
	}

	if res.Value == nil {
		return nil, ErrNoDocuments
	}

	return convert.Doc(res.Value), nil
}

// Drop drops the collection.
//
// Dropping a collection that does not exist is not an error.
func (c *Collection) Drop(ctx context.Context) error {
	err := c.s.h.DropCollection(ctx, c.db, c.name)
	if handlererrors.Code(err) == handlererrors.ErrNamespaceNotFound {
		return nil
	}

	return publicError(err)
}

// badValue returns a public BadValue error.
func badValue(msg string) error {
	return publicError(handlererrors.NewCommandErrorMsg(handlererrors.ErrBadValue, msg))
}
