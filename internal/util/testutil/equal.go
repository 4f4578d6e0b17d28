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

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerretDB/docmatch/internal/fjson"
	"github.com/FerretDB/docmatch/internal/types"
)

// AssertEqual asserts that two values are identical:
// equal, with the same numeric types and the same field order.
func AssertEqual[T types.Type](tb testing.TB, expected, actual T) bool {
	tb.Helper()

	if types.Identical(expected, actual) {
		return true
	}

	expectedS, actualS, diff := diffValues(tb, expected, actual)
	msg := fmt.Sprintf("Not equal: \nexpected: %s\nactual  : %s\n%s", expectedS, actualS, diff)

	return assert.Fail(tb, msg)
}

// AssertNotEqual asserts that two values are not identical.
func AssertNotEqual[T types.Type](tb testing.TB, expected, actual T) bool {
	tb.Helper()

	if !types.Identical(expected, actual) {
		return true
	}

	// The diff of equal values should be empty, but produce it anyway to catch subtle bugs.
	expectedS, actualS, diff := diffValues(tb, expected, actual)
	msg := fmt.Sprintf("Unexpected equal: \nexpected: %s\nactual  : %s\n%s", expectedS, actualS, diff)

	return assert.Fail(tb, msg)
}

// AssertEqualSlices asserts that two document slices are identical.
func AssertEqualSlices(tb testing.TB, expected, actual []*types.Document) bool {
	tb.Helper()

	e := types.MakeArray(len(expected))
	for _, d := range expected {
		require.NoError(tb, e.Append(d))
	}

	a := types.MakeArray(len(actual))
	for _, d := range actual {
		require.NoError(tb, a.Append(d))
	}

	return AssertEqual(tb, e, a)
}

// diffValues returns a readable form of given values and the difference between them.
func diffValues[T types.Type](tb testing.TB, expected, actual T) (expectedS string, actualS string, diff string) {
	expectedS = dump(tb, expected)
	actualS = dump(tb, actual)

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expectedS),
		FromFile: "expected",
		B:        difflib.SplitLines(actualS),
		ToFile:   "actual",
		Context:  1,
	})
	require.NoError(tb, err)

	return
}

// dump returns indented fjson representation of the value.
func dump(tb testing.TB, v any) string {
	tb.Helper()

	b, err := fjson.Marshal(v)
	require.NoError(tb, err)

	var buf bytes.Buffer
	require.NoError(tb, json.Indent(&buf, b, "", "  "))

	return buf.String()
}
