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

package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/FerretDB/docmatch/internal/handler/handlererrors"
	"github.com/FerretDB/docmatch/internal/query"
	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
	"github.com/FerretDB/docmatch/internal/util/must"
)

// AggregateParams represents parameters of Aggregate method.
type AggregateParams struct {
	DB         string
	Collection string
	Pipeline   []*types.Document
}

// stageFunc processes documents of a single pipeline stage.
type stageFunc func(docs []*types.Document) []*types.Document

// Aggregate runs the aggregation pipeline over all documents of the collection.
//
// Supported stages are $match, $sort, $skip, $limit, $project and $count.
// Other stages pass documents through unchanged.
func (h *Handler) Aggregate(ctx context.Context, params *AggregateParams) (res []*types.Document, err error) {
	ctx, end := h.startOp(ctx, "aggregate", params.DB, params.Collection)
	defer end(&err)

	stages := make([]stageFunc, 0, len(params.Pipeline))

	for _, stage := range params.Pipeline {
		var f stageFunc
		if f, err = h.parseStage(stage); err != nil {
			return nil, err
		}

		if f != nil {
			stages = append(stages, f)
		}
	}

	c, err := h.collection("aggregate", params.DB, params.Collection)
	if err != nil {
		return nil, err
	}

	qr, err := c.Query(ctx)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	res = qr.Docs
	for _, f := range stages {
		res = f(res)
	}

	return res, nil
}

// parseStage parses a single pipeline stage.
//
// It returns nil function for stages that pass documents through unchanged.
func (h *Handler) parseStage(stage *types.Document) (stageFunc, error) {
	if stage.Len() != 1 {
		return nil, handlererrors.NewCommandErrorMsgWithArgument(
			handlererrors.ErrBadValue,
			"A pipeline stage specification object must contain exactly one field.",
			"aggregate",
		)
	}

	name := stage.Command()
	operand := must.NotFail(stage.Get(name))

	switch name {
	case "$match":
		filter, ok := operand.(*types.Document)
		if !ok {
			return nil, stageError(name, "the match filter must be an expression in an object")
		}

		f := query.ParseFilter(filter)
		h.logUnknown("aggregate", "filter", f.Unknown())

		return func(docs []*types.Document) []*types.Document {
			res := make([]*types.Document, 0, len(docs))

			for _, doc := range docs {
				if f.Matches(doc) {
					res = append(res, doc)
				}
			}

			return res
		}, nil

	case "$sort":
		sort, ok := operand.(*types.Document)
		if !ok || sort.Len() == 0 {
			return nil, stageError(name, "the $sort key specification must be a non-empty object")
		}

		s := query.ParseSort(sort)

		return func(docs []*types.Document) []*types.Document {
			s.SortDocuments(docs)
			return docs
		}, nil

	case "$skip", "$limit":
		n, err := toInt64(operand)
		if err != nil {
			return nil, stageError(name, fmt.Sprintf("invalid argument: %v", err))
		}

		if n < 0 || (name == "$limit" && n == 0) {
			return nil, stageError(name, fmt.Sprintf("invalid argument: %d", n))
		}

		if name == "$skip" {
			return func(docs []*types.Document) []*types.Document {
				return docs[min(int64(len(docs)), n):]
			}, nil
		}

		return func(docs []*types.Document) []*types.Document {
			return docs[:min(int64(len(docs)), n)]
		}, nil

	case "$project":
		projection, ok := operand.(*types.Document)
		if !ok || projection.Len() == 0 {
			return nil, stageError(name, "$project specification must be a non-empty object")
		}

		p := query.ParseProjection(projection)

		return func(docs []*types.Document) []*types.Document {
			res := make([]*types.Document, len(docs))
			for i, doc := range docs {
				res[i] = p.Project(doc)
			}

			return res
		}, nil

	case "$count":
		field, ok := operand.(string)
		if !ok || field == "" || strings.HasPrefix(field, "$") || strings.Contains(field, ".") {
			return nil, stageError(name, "the count field must be a non-empty string without '$' prefix and '.'")
		}

		return func(docs []*types.Document) []*types.Document {
			if len(docs) == 0 {
				return nil
			}

			return []*types.Document{must.NotFail(types.NewDocument(field, int32(len(docs))))}
		}, nil

	default:
		h.logUnknown("aggregate", "stage", []string{name})
		return nil, nil
	}
}

// stageError returns an error for the invalid pipeline stage.
func stageError(stage, msg string) error {
	return handlererrors.NewCommandErrorMsgWithArgument(handlererrors.ErrBadValue, msg, stage)
}
