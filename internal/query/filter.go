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

	"github.com/FerretDB/docmatch/internal/types"
)

// logicalOperator represents a top-level logical filter operator.
type logicalOperator int8

const (
	logicalAnd logicalOperator = iota + 1 // $and
	logicalOr                             // $or
	logicalNor                            // $nor
)

// String implements fmt.Stringer.
func (op logicalOperator) String() string {
	switch op {
	case logicalAnd:
		return "$and"
	case logicalOr:
		return "$or"
	case logicalNor:
		return "$nor"
	default:
		return fmt.Sprintf("logicalOperator(%d)", int8(op))
	}
}

// logicalOperators maps operator names to logical operators.
var logicalOperators = map[string]logicalOperator{
	"$and": logicalAnd,
	"$or":  logicalOr,
	"$nor": logicalNor,
}

// clause is a single top-level filter clause.
type clause interface {
	clause() // seal for go-sumtype

	// matches returns true if the given document satisfies the clause.
	matches(doc *types.Document) bool
}

//go-sumtype:decl clause

// valueClause represents {field: value} where value is not an operator document.
type valueClause struct {
	field string
	value any
}

// fieldClause represents {field: {$op1: operand1, $op2: operand2, ...}}.
type fieldClause struct {
	field      string
	conditions []condition
}

// logicalClause represents {$and|$or|$nor: [filter1, filter2, ...]}.
type logicalClause struct {
	op      logicalOperator
	filters []*Filter

	// malformed is set when the operand is not an array of documents;
	// such a clause never matches.
	malformed bool
}

func (*valueClause) clause()   {}
func (*fieldClause) clause()   {}
func (*logicalClause) clause() {}

// matches implements clause interface.
//
// Plain values match by deep equality; absent field never matches.
func (c *valueClause) matches(doc *types.Document) bool {
	v, ok := doc.Lookup(c.field)
	if !ok {
		return false
	}

	return types.EqualValues(v, c.value)
}

// matches implements clause interface.
//
// All conditions are ANDed.
func (c *fieldClause) matches(doc *types.Document) bool {
	v, ok := doc.Lookup(c.field)

	for _, cond := range c.conditions {
		if !cond.matches(v, ok) {
			return false
		}
	}

	return true
}

// matches implements clause interface.
func (c *logicalClause) matches(doc *types.Document) bool {
	if c.malformed {
		return false
	}

	switch c.op {
	case logicalAnd:
		for _, f := range c.filters {
			if !f.Matches(doc) {
				return false
			}
		}

		return true

	case logicalOr:
		for _, f := range c.filters {
			if f.Matches(doc) {
				return true
			}
		}

		return false

	case logicalNor:
		for _, f := range c.filters {
			if f.Matches(doc) {
				return false
			}
		}

		return true

	default:
		panic(fmt.Sprintf("unexpected logical operator %s", c.op))
	}
}

// Filter is a parsed filter expression.
//
// Nil or zero value Filter matches every document.
// Filter is immutable and safe for concurrent use.
type Filter struct {
	clauses []clause
	unknown []string
}

// ParseFilter parses the given filter expression.
//
// It never fails: unknown operators are ignored (see Unknown),
// malformed operands make their conditions fail.
// The filter document is not retained; values are deep-copied when needed.
func ParseFilter(filter *types.Document) *Filter {
	res := &Filter{
		clauses: make([]clause, 0, filter.Len()),
	}

	for _, key := range filter.Keys() {
		value, _ := filter.Lookup(key)

		if isOperator(key) {
			op, ok := logicalOperators[key]
			if !ok {
				res.unknown = append(res.unknown, key)
				continue
			}

			res.clauses = append(res.clauses, res.parseLogical(op, value))

			continue
		}

		if expr, ok := value.(*types.Document); ok && isOperator(expr.Command()) {
			res.clauses = append(res.clauses, &fieldClause{
				field:      key,
				conditions: res.parseConditions(expr),
			})

			continue
		}

		res.clauses = append(res.clauses, &valueClause{
			field: key,
			value: copyValue(value),
		})
	}

	return res
}

// parseLogical parses the operand of a logical operator.
func (f *Filter) parseLogical(op logicalOperator, value any) *logicalClause {
	res := &logicalClause{op: op}

	arr, ok := value.(*types.Array)
	if !ok {
		res.malformed = true
		return res
	}

	res.filters = make([]*Filter, 0, arr.Len())

	for i := 0; i < arr.Len(); i++ {
		v, _ := arr.Get(i)

		sub, ok := v.(*types.Document)
		if !ok {
			res.malformed = true
			return res
		}

		subFilter := ParseFilter(sub)
		f.unknown = append(f.unknown, subFilter.unknown...)
		res.filters = append(res.filters, subFilter)
	}

	return res
}

// Matches returns true if the given document satisfies the filter.
//
// Top-level clauses are ANDed.
func (f *Filter) Matches(doc *types.Document) bool {
	if f == nil {
		return true
	}

	for _, c := range f.clauses {
		if !c.matches(doc) {
			return false
		}
	}

	return true
}

// Unknown returns names of unknown operators that were ignored during parsing.
func (f *Filter) Unknown() []string {
	if f == nil {
		return nil
	}

	return f.unknown
}

// FilterDocument returns true if given document satisfies given filter expression.
//
// Passed arguments are not modified.
func FilterDocument(doc, filter *types.Document) bool {
	return ParseFilter(filter).Matches(doc)
}

// copyValue returns a deep copy of composite values and the value itself for scalars.
func copyValue(v any) any {
	switch v := v.(type) {
	case *types.Document:
		return v.DeepCopy()
	case *types.Array:
		return v.DeepCopy()
	default:
		return v
	}
}

// check interfaces
var (
	_ clause = (*valueClause)(nil)
	_ clause = (*fieldClause)(nil)
	_ clause = (*logicalClause)(nil)
)
