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
	"fmt"
	"time"

	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/must"
)

//go:generate ../../bin/stringer -linecomment -type UpdateOperator

// UpdateOperator represents an update operator.
type UpdateOperator int8

// Supported update operators.
const (
	UpdateSet         UpdateOperator = iota + 1 // $set
	UpdateUnset                                 // $unset
	UpdateInc                                   // $inc
	UpdateMul                                   // $mul
	UpdateMin                                   // $min
	UpdateMax                                   // $max
	UpdatePush                                  // $push
	UpdatePull                                  // $pull
	UpdateAddToSet                              // $addToSet
	UpdateRename                                // $rename
	UpdatePop                                   // $pop
	UpdateCurrentDate                           // $currentDate
)

// updateOperators maps operator names to update operators.
var updateOperators = map[string]UpdateOperator{
	"$set":         UpdateSet,
	"$unset":       UpdateUnset,
	"$inc":         UpdateInc,
	"$mul":         UpdateMul,
	"$min":         UpdateMin,
	"$max":         UpdateMax,
	"$push":        UpdatePush,
	"$pull":        UpdatePull,
	"$addToSet":    UpdateAddToSet,
	"$rename":      UpdateRename,
	"$pop":         UpdatePop,
	"$currentDate": UpdateCurrentDate,
}

// fieldUpdate is a single field of an update operator's operand document.
type fieldUpdate struct {
	field   string
	operand any
}

// updateStep is a single update operator with its fields in order.
type updateStep struct {
	op     UpdateOperator
	fields []fieldUpdate
}

// Update is a parsed update expression.
//
// Nil or zero value Update does not change anything.
type Update struct {
	steps   []updateStep
	unknown []string

	now func() time.Time
}

// IsUpdateExpression returns true if the given document is an update expression
// (its first key is an operator) and false if it is a replacement document.
func IsUpdateExpression(update *types.Document) bool {
	return isOperator(update.Command())
}

// ParseUpdate parses the given update expression.
//
// Unknown operators and operators with non-document operands are ignored (see Unknown).
func ParseUpdate(update *types.Document) *Update {
	res := &Update{
		steps: make([]updateStep, 0, update.Len()),
		now:   time.Now,
	}

	for _, name := range update.Keys() {
		op, ok := updateOperators[name]
		if !ok {
			res.unknown = append(res.unknown, name)
			continue
		}

		v, _ := update.Lookup(name)

		operand, ok := v.(*types.Document)
		if !ok {
			res.unknown = append(res.unknown, name)
			continue
		}

		step := updateStep{
			op:     op,
			fields: make([]fieldUpdate, 0, operand.Len()),
		}

		for _, field := range operand.Keys() {
			fv, _ := operand.Lookup(field)

			step.fields = append(step.fields, fieldUpdate{
				field:   field,
				operand: copyValue(fv),
			})
		}

		res.steps = append(res.steps, step)
	}

	return res
}

// Unknown returns names of unknown or malformed operators that were ignored during parsing.
func (u *Update) Unknown() []string {
	if u == nil {
		return nil
	}

	return u.unknown
}

// Apply applies the update to the given document in place.
//
// It returns true if any field was actually changed.
// Operators are applied in the order of the update expression;
// fields of each operator are applied in the order of its operand.
// A field update that violates an invariant (for example, $push to a present non-array)
// is skipped without affecting other fields.
func (u *Update) Apply(doc *types.Document) bool {
	if u == nil {
		return false
	}

	var changed bool

	for _, step := range u.steps {
		for _, fu := range step.fields {
			if u.applyField(doc, step.op, fu.field, copyValue(fu.operand)) {
				changed = true
			}
		}
	}

	return changed
}

// UpdateDocument applies update expression to the given document in place.
// It returns true if the document was changed.
func UpdateDocument(doc, update *types.Document) bool {
	return ParseUpdate(update).Apply(doc)
}

// applyField applies a single operator to a single field.
func (u *Update) applyField(doc *types.Document, op UpdateOperator, field string, operand any) bool {
	current, present := doc.Lookup(field)

	switch op {
	case UpdateSet:
		if present && types.Identical(current, operand) {
			return false
		}

		must.NoError(doc.Set(field, operand))

		return true

	case UpdateUnset:
		if !present {
			return false
		}

		doc.Remove(field)

		return true

	case UpdateInc, UpdateMul:
		if !isNumber(operand) {
			return false
		}

		if !present {
			current = zeroLike(operand)
		}

		if !isNumber(current) {
			return false
		}

		var res any
		if op == UpdateInc {
			res = addNumbers(current, operand)
		} else {
			res = mulNumbers(current, operand)
		}

		must.NoError(doc.Set(field, res))

		return true

	case UpdateMin, UpdateMax:
		expected := types.Less
		if op == UpdateMax {
			expected = types.Greater
		}

		if present && types.Compare(operand, current) != expected {
			return false
		}

		must.NoError(doc.Set(field, operand))

		return true

	case UpdatePush, UpdateAddToSet:
		arr := new(types.Array)

		if present {
			var ok bool
			if arr, ok = current.(*types.Array); !ok {
				return false
			}
		}

		values := []any{operand}
		if each, ok := eachModifier(operand); ok {
			values = each
		}

		var changed bool

		for _, v := range values {
			if op == UpdateAddToSet && arr.Contains(v) {
				continue
			}

			must.NoError(arr.Append(v))
			changed = true
		}

		if !present {
			must.NoError(doc.Set(field, arr))
			changed = true
		}

		return changed

	case UpdatePull:
		arr, ok := current.(*types.Array)
		if !ok {
			return false
		}

		var changed bool

		for i := arr.Len() - 1; i >= 0; i-- {
			if types.EqualValues(must.NotFail(arr.Get(i)), operand) {
				arr.Remove(i)
				changed = true
			}
		}

		return changed

	case UpdateRename:
		to, ok := operand.(string)
		if !ok || to == "" || to == field || !present {
			return false
		}

		doc.Remove(field)
		must.NoError(doc.Set(to, current))

		return true

	case UpdatePop:
		arr, ok := current.(*types.Array)
		if !ok || arr.Len() == 0 {
			return false
		}

		direction, ok := wholeNumber(operand)
		if !ok {
			return false
		}

		if direction >= 0 {
			arr.Remove(arr.Len() - 1)
		} else {
			arr.Remove(0)
		}

		return true

	case UpdateCurrentDate:
		now := u.now().UTC().Truncate(time.Millisecond)
		must.NoError(doc.Set(field, now))

		return true

	default:
		panic(fmt.Sprintf("unexpected update operator %s", op))
	}
}

// eachModifier returns values of {$each: [...]} operand of $push and $addToSet.
func eachModifier(operand any) ([]any, bool) {
	doc, ok := operand.(*types.Document)
	if !ok || doc.Command() != "$each" {
		return nil, false
	}

	arr, ok := must.NotFail(doc.Get("$each")).(*types.Array)
	if !ok {
		return nil, false
	}

	res := make([]any, arr.Len())
	for i := range res {
		res[i] = must.NotFail(arr.Get(i))
	}

	return res, true
}
