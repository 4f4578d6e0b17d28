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
	"github.com/AlekSi/pointer"
)

// FindOptions represents options for Find and FindOne.
//
// Nil fields are not set.
type FindOptions struct {
	Sort       any // bson.D for ordered keys
	Projection any
	Skip       *int64
	Limit      *int64
	BatchSize  *int32
}

// Find returns empty FindOptions.
func Find() *FindOptions {
	return new(FindOptions)
}

// SetSort sets the sort specification.
func (o *FindOptions) SetSort(sort any) *FindOptions {
	o.Sort = sort
	return o
}

// SetProjection sets the projection.
func (o *FindOptions) SetProjection(projection any) *FindOptions {
	o.Projection = projection
	return o
}

// SetSkip sets the number of documents to skip.
func (o *FindOptions) SetSkip(n int64) *FindOptions {
	o.Skip = pointer.ToInt64(n)
	return o
}

// SetLimit sets the maximum number of documents to return; 0 means no limit.
func (o *FindOptions) SetLimit(n int64) *FindOptions {
	o.Limit = pointer.ToInt64(n)
	return o
}

// SetBatchSize sets the number of documents returned by one cursor batch.
func (o *FindOptions) SetBatchSize(n int32) *FindOptions {
	o.BatchSize = pointer.ToInt32(n)
	return o
}

// mergeFindOptions combines options; later non-nil fields win.
func mergeFindOptions(opts ...*FindOptions) *FindOptions {
	res := new(FindOptions)

	for _, o := range opts {
		if o == nil {
			continue
		}

		if o.Sort != nil {
			res.Sort = o.Sort
		}

		if o.Projection != nil {
			res.Projection = o.Projection
		}

		if o.Skip != nil {
			res.Skip = o.Skip
		}

		if o.Limit != nil {
			res.Limit = o.Limit
		}

		if o.BatchSize != nil {
			res.BatchSize = o.BatchSize
		}
	}

	return res
}

// UpdateOptions represents options for UpdateOne, UpdateMany, and ReplaceOne.
type UpdateOptions struct {
	// If true, a new document is inserted when nothing matches the filter.
	Upsert *bool
}

// Update returns empty UpdateOptions.
func Update() *UpdateOptions {
	return new(UpdateOptions)
}

// SetUpsert sets the upsert flag.
func (o *UpdateOptions) SetUpsert(b bool) *UpdateOptions {
	o.Upsert = pointer.ToBool(b)
	return o
}

// upsert returns the combined upsert flag; later non-nil fields win.
func upsert(opts ...*UpdateOptions) bool {
	var res *bool

	for _, o := range opts {
		if o != nil && o.Upsert != nil {
			res = o.Upsert
		}
	}

	return pointer.GetBool(res)
}

// CountOptions represents options for CountDocuments.
type CountOptions struct {
	Skip  *int64
	Limit *int64
}

// Count returns empty CountOptions.
func Count() *CountOptions {
	return new(CountOptions)
}

// SetSkip sets the number of documents to skip before counting.
func (o *CountOptions) SetSkip(n int64) *CountOptions {
	o.Skip = pointer.ToInt64(n)
	return o
}

// SetLimit sets the maximum number of documents to count; 0 means no limit.
func (o *CountOptions) SetLimit(n int64) *CountOptions {
	o.Limit = pointer.ToInt64(n)
	return o
}

// FindOneAndUpdateOptions represents options for FindOneAndUpdate and FindOneAndReplace.
type FindOneAndUpdateOptions struct {
	Sort       any
	Projection any
	Upsert     *bool

	// If true, the document after the update is returned; the original one otherwise.
	ReturnNew *bool
}

// FindOneAndUpdate returns empty FindOneAndUpdateOptions.
func FindOneAndUpdate() *FindOneAndUpdateOptions {
	return new(FindOneAndUpdateOptions)
}

// SetSort sets the sort specification used to pick a document.
func (o *FindOneAndUpdateOptions) SetSort(sort any) *FindOneAndUpdateOptions {
	o.Sort = sort
	return o
}

// SetProjection sets the projection of the returned document.
func (o *FindOneAndUpdateOptions) SetProjection(projection any) *FindOneAndUpdateOptions {
	o.Projection = projection
	return o
}

// SetUpsert sets the upsert flag.
func (o *FindOneAndUpdateOptions) SetUpsert(b bool) *FindOneAndUpdateOptions {
	o.Upsert = pointer.ToBool(b)
	return o
}

// SetReturnNew sets whether the updated document is returned.
func (o *FindOneAndUpdateOptions) SetReturnNew(b bool) *FindOneAndUpdateOptions {
	o.ReturnNew = pointer.ToBool(b)
	return o
}

// FindOneAndDeleteOptions represents options for FindOneAndDelete.
type FindOneAndDeleteOptions struct {
	Sort       any
	Projection any
}

// FindOneAndDelete returns empty FindOneAndDeleteOptions.
func FindOneAndDelete() *FindOneAndDeleteOptions {
	return new(FindOneAndDeleteOptions)
}

// SetSort sets the sort specification used to pick a document.
func (o *FindOneAndDeleteOptions) SetSort(sort any) *FindOneAndDeleteOptions {
	o.Sort = sort
	return o
}

// SetProjection sets the projection of the returned document.
func (o *FindOneAndDeleteOptions) SetProjection(projection any) *FindOneAndDeleteOptions {
	o.Projection = projection
	return o
}
