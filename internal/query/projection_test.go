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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/testutil"
)

func TestProjection(t *testing.T) {
	t.Parallel()

	source := doc("_id", "x", "a", int32(1), "b", "two", "c", arr(int32(3)))

	for name, tc := range map[string]struct {
		projection any
		expected   *types.Document
		inclusion  bool
	}{
		"Nil": {
			expected: source,
		},
		"Empty": {
			projection: doc(),
			expected:   source,
		},
		"OtherType": {
			projection: "a",
			expected:   source,
		},
		"Include": {
			projection: doc("b", int32(1)),
			expected:   doc("_id", "x", "b", "two"),
			inclusion:  true,
		},
		"IncludeSourceOrder": {
			projection: doc("c", true, "a", float64(1)),
			expected:   doc("_id", "x", "a", int32(1), "c", arr(int32(3))),
			inclusion:  true,
		},
		"IncludeAbsent": {
			projection: doc("a", int32(1), "missing", int32(1)),
			expected:   doc("_id", "x", "a", int32(1)),
			inclusion:  true,
		},
		"IncludeWithoutID": {
			projection: doc("_id", int32(0), "a", int32(1)),
			expected:   doc("a", int32(1)),
			inclusion:  true,
		},
		"IncludeAll": {
			projection: doc("a", int32(1), "b", int32(1), "c", int32(1)),
			expected:   source,
			inclusion:  true,
		},
		"IncludeTruthyString": {
			projection: doc("a", "yes"),
			expected:   doc("_id", "x", "a", int32(1)),
			inclusion:  true,
		},
		"Exclude": {
			projection: doc("a", int32(0), "c", false),
			expected:   doc("_id", "x", "b", "two"),
		},
		"ExcludeID": {
			projection: doc("_id", int32(0)),
			expected:   doc("a", int32(1), "b", "two", "c", arr(int32(3))),
		},
		"ExcludeNull": {
			projection: doc("b", types.Null),
			expected:   doc("_id", "x", "a", int32(1), "c", arr(int32(3))),
		},
		"IDOnlyTruthy": {
			projection: doc("_id", int32(1)),
			expected:   source,
		},
		"MixedInclusionWins": {
			projection: doc("a", int32(0), "b", int32(1), "c", int32(0)),
			expected:   doc("_id", "x", "b", "two"),
			inclusion:  true,
		},
		"Array": {
			projection: arr("c", "a", int32(5)),
			expected:   doc("_id", "x", "a", int32(1), "c", arr(int32(3))),
			inclusion:  true,
		},
		"ArrayWithID": {
			projection: arr("_id", "b"),
			expected:   doc("_id", "x", "b", "two"),
			inclusion:  true,
		},
		"EmptyArray": {
			projection: arr(),
			expected:   source,
		},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := ParseProjection(tc.projection)
			assert.Equal(t, tc.inclusion, p.Inclusion())

			actual := p.Project(source)
			testutil.AssertEqual(t, tc.expected, actual)
		})
	}
}

func TestProjectionDoesNotModifySource(t *testing.T) {
	t.Parallel()

	source := doc("_id", "x", "a", arr(int32(1)))
	expected := source.DeepCopy()

	for _, p := range []*Projection{
		nil,
		ParseProjection(doc("_id", int32(0))),
		ParseProjection(doc("a", int32(1))),
	} {
		res := p.Project(source)
		res.Remove("_id")

		if v, ok := res.Lookup("a"); ok {
			v.(*types.Array).Remove(0)
		}

		testutil.AssertEqual(t, expected, source)
	}
}
