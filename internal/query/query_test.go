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
	"github.com/FerretDB/docmatch/internal/util/must"
)

// doc is a shortcut for must.NotFail(types.NewDocument(pairs...)).
func doc(pairs ...any) *types.Document {
	return must.NotFail(types.NewDocument(pairs...))
}

// arr is a shortcut for must.NotFail(types.NewArray(values...)).
func arr(values ...any) *types.Array {
	return must.NotFail(types.NewArray(values...))
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	for _, v := range []any{true, int32(1), int64(-1), float64(0.5), "", "0", doc(), arr()} {
		assert.True(t, truthy(v), "%#v", v)
	}

	for _, v := range []any{false, int32(0), int64(0), float64(0), types.Null} {
		assert.False(t, truthy(v), "%#v", v)
	}
}

func TestArithmetic(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		a, b     any
		add, mul any
	}{
		"Int32": {
			a: int32(2), b: int32(3),
			add: int32(5), mul: int32(6),
		},
		"Int32Overflow": {
			a: int32(2147483647), b: int32(2),
			add: int64(2147483649), mul: int64(4294967294),
		},
		"Int32Int64": {
			a: int32(2), b: int64(3),
			add: int64(5), mul: int64(6),
		},
		"Int64Overflow": {
			a: int64(9223372036854775807), b: int64(2),
			add: float64(9.223372036854775808e18), mul: float64(1.8446744073709551616e19),
		},
		"Int64Float64": {
			a: int64(2), b: float64(0.5),
			add: float64(2.5), mul: float64(1),
		},
		"Float64Int32": {
			a: float64(1.5), b: int32(2),
			add: float64(3.5), mul: float64(3),
		},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.add, addNumbers(tc.a, tc.b))
			assert.Equal(t, tc.mul, mulNumbers(tc.a, tc.b))
		})
	}
}
