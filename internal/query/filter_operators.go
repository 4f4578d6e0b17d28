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
	"regexp"
	"strings"

	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/must"
)

//go:generate ../../bin/stringer -linecomment -type FilterOperator

// FilterOperator represents a field-level filter operator.
type FilterOperator int8

// Supported field-level filter operators.
const (
	FilterEq        FilterOperator = iota + 1 // $eq
	FilterNe                                  // $ne
	FilterGt                                  // $gt
	FilterGte                                 // $gte
	FilterLt                                  // $lt
	FilterLte                                 // $lte
	FilterIn                                  // $in
	FilterNin                                 // $nin
	FilterExists                              // $exists
	FilterRegex                               // $regex
	FilterSize                                // $size
	FilterAll                                 // $all
	FilterNot                                 // $not
	FilterElemMatch                           // $elemMatch
)

// filterOperators maps operator names to field-level filter operators.
var filterOperators = map[string]FilterOperator{
	"$eq":        FilterEq,
	"$ne":        FilterNe,
	"$gt":        FilterGt,
	"$gte":       FilterGte,
	"$lt":        FilterLt,
	"$lte":       FilterLte,
	"$in":        FilterIn,
	"$nin":       FilterNin,
	"$exists":    FilterExists,
	"$regex":     FilterRegex,
	"$size":      FilterSize,
	"$all":       FilterAll,
	"$not":       FilterNot,
	"$elemMatch": FilterElemMatch,
}

// regexOptions is a modifier of $regex; it is not a condition by itself.
const regexOptions = "$options"

// condition is a single field-level operator with its prepared operand.
type condition struct {
	op      FilterOperator
	operand any

	regex     *regexp.Regexp // for $regex; nil if pattern is invalid
	not       []condition    // for $not
	elemMatch *elemMatch     // for $elemMatch
}

// elemMatch is a prepared $elemMatch operand.
type elemMatch struct {
	filter     *Filter     // for documents elements: {$elemMatch: {field: ...}}
	conditions []condition // for any elements: {$elemMatch: {$op: ...}}
}

// parseConditions parses an operator document {$op1: operand1, ...}.
func (f *Filter) parseConditions(expr *types.Document) []condition {
	res := make([]condition, 0, expr.Len())

	for _, name := range expr.Keys() {
		if name == regexOptions {
			continue
		}

		operand, _ := expr.Lookup(name)

		op, ok := filterOperators[name]
		if !ok {
			f.unknown = append(f.unknown, name)
			continue
		}

		cond := condition{
			op:      op,
			operand: copyValue(operand),
		}

		switch op {
		case FilterRegex:
			options, _ := expr.Lookup(regexOptions)
			cond.regex = compileRegex(operand, options)

		case FilterNot:
			if sub, ok := operand.(*types.Document); ok && isOperator(sub.Command()) {
				cond.not = f.parseConditions(sub)
			}

		case FilterElemMatch:
			if sub, ok := operand.(*types.Document); ok {
				cond.elemMatch = new(elemMatch)

				if isOperator(sub.Command()) {
					cond.elemMatch.conditions = f.parseConditions(sub)
				} else {
					cond.elemMatch.filter = ParseFilter(sub)
					f.unknown = append(f.unknown, cond.elemMatch.filter.unknown...)
				}
			}

		case FilterEq, FilterNe, FilterGt, FilterGte, FilterLt, FilterLte,
			FilterIn, FilterNin, FilterExists, FilterSize, FilterAll:
			// operand is used as is
		}

		res = append(res, cond)
	}

	return res
}

// matches returns true if the field value satisfies the condition.
// present is false for absent fields, in which case v is nil.
func (c *condition) matches(v any, present bool) bool {
	switch c.op {
	case FilterEq:
		return present && types.EqualValues(v, c.operand)

	case FilterNe:
		return !present || !types.EqualValues(v, c.operand)

	case FilterGt:
		return present && compareBracketed(v, c.operand, types.Greater)

	case FilterGte:
		return present && (compareBracketed(v, c.operand, types.Greater) || compareBracketed(v, c.operand, types.Equal))

	case FilterLt:
		return present && compareBracketed(v, c.operand, types.Less)

	case FilterLte:
		return present && (compareBracketed(v, c.operand, types.Less) || compareBracketed(v, c.operand, types.Equal))

	case FilterIn:
		arr, ok := c.operand.(*types.Array)
		if !ok || !present {
			return false
		}

		return arr.Contains(v)

	case FilterNin:
		arr, ok := c.operand.(*types.Array)
		if !ok || !present {
			return true
		}

		return !arr.Contains(v)

	case FilterExists:
		return present == truthy(c.operand)

	case FilterRegex:
		s, ok := v.(string)
		if !ok || c.regex == nil {
			return false
		}

		return c.regex.MatchString(s)

	case FilterSize:
		arr, ok := v.(*types.Array)
		if !ok {
			return false
		}

		size, ok := wholeNumber(c.operand)

		return ok && int64(arr.Len()) == size

	case FilterAll:
		arr, ok := v.(*types.Array)
		if !ok {
			return false
		}

		all, ok := c.operand.(*types.Array)
		if !ok {
			return false
		}

		for i := 0; i < all.Len(); i++ {
			if !arr.Contains(must.NotFail(all.Get(i))) {
				return false
			}
		}

		return true

	case FilterNot:
		if c.not == nil {
			return false
		}

		for _, sub := range c.not {
			if !sub.matches(v, present) {
				return true
			}
		}

		return false

	case FilterElemMatch:
		arr, ok := v.(*types.Array)
		if !ok || c.elemMatch == nil {
			return false
		}

		for i := 0; i < arr.Len(); i++ {
			if c.elemMatch.matches(must.NotFail(arr.Get(i))) {
				return true
			}
		}

		return false

	default:
		panic(fmt.Sprintf("unexpected filter operator %s", c.op))
	}
}

// matches returns true if the array element satisfies $elemMatch operand.
func (em *elemMatch) matches(elem any) bool {
	if em.filter != nil {
		doc, ok := elem.(*types.Document)
		return ok && em.filter.Matches(doc)
	}

	for _, c := range em.conditions {
		if !c.matches(elem, true) {
			return false
		}
	}

	return true
}

// compareBracketed returns true if a compared to b gives the expected result.
// Values from different type brackets are never ordered.
func compareBracketed(a, b any, expected types.CompareResult) bool {
	if !types.SameTypeBracket(a, b) {
		return false
	}

	return types.Compare(a, b) == expected
}

// compileRegex compiles $regex pattern with $options flags.
// It returns nil if pattern or options are invalid.
func compileRegex(pattern, options any) *regexp.Regexp {
	p, ok := pattern.(string)
	if !ok {
		return nil
	}

	var flags string

	if options != nil {
		opts, ok := options.(string)
		if !ok {
			return nil
		}

		for _, o := range opts {
			switch o {
			case 'i', 'm', 's':
				if !strings.ContainsRune(flags, o) {
					flags += string(o)
				}
			case 'x':
				p = stripExtended(p)
			default:
				return nil
			}
		}
	}

	if flags != "" {
		p = "(?" + flags + ")" + p
	}

	re, err := regexp.Compile(p)
	if err != nil {
		return nil
	}

	return re
}

// stripExtended removes unescaped whitespace and #-comments outside of character classes
// from the pattern, implementing the extended regex syntax.
func stripExtended(p string) string {
	var b strings.Builder

	var escaped, inClass, inComment bool

	for _, r := range p {
		switch {
		case inComment:
			if r == '\n' {
				inComment = false
			}

			continue

		case escaped:
			escaped = false

		case r == '\\':
			escaped = true

		case inClass:
			if r == ']' {
				inClass = false
			}

		case r == '[':
			inClass = true

		case r == '#':
			inComment = true
			continue

		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v':
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}
