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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerretDB/docmatch/internal/util/iterator"
	"github.com/FerretDB/docmatch/internal/util/must"
)

func TestArray(t *testing.T) {
	t.Parallel()

	t.Run("ZeroValue", func(t *testing.T) {
		t.Parallel()

		var a Array
		assert.Equal(t, 0, a.Len())
		assert.False(t, a.Contains(Null))

		require.NoError(t, a.Append(int32(1), "b"))
		assert.Equal(t, 2, a.Len())
	})

	t.Run("Bounds", func(t *testing.T) {
		t.Parallel()

		a := must.NotFail(NewArray(int32(1)))

		_, err := a.Get(1)
		assert.Error(t, err)

		_, err = a.Get(-1)
		assert.Error(t, err)

		assert.Error(t, a.Set(1, int32(2)))
		assert.Panics(t, func() { a.Remove(1) })
	})

	t.Run("InvalidValue", func(t *testing.T) {
		t.Parallel()

		_, err := NewArray(42)
		assert.Error(t, err)

		a := MakeArray(1)
		assert.Error(t, a.Append(uint8(1)))
		assert.Equal(t, 0, a.Len())
	})

	t.Run("Contains", func(t *testing.T) {
		t.Parallel()

		a := must.NotFail(NewArray(int32(1), "x", must.NotFail(NewDocument("a", int64(1)))))

		assert.True(t, a.Contains(float64(1)))
		assert.True(t, a.Contains("x"))
		assert.True(t, a.Contains(must.NotFail(NewDocument("a", int32(1)))))
		assert.False(t, a.Contains("1"))
		assert.False(t, a.Contains(Null))
	})

	t.Run("Remove", func(t *testing.T) {
		t.Parallel()

		a := must.NotFail(NewArray("a", "b", "c"))
		a.Remove(1)

		values, err := iterator.ConsumeValues(a.Iterator())
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "c"}, values)
	})
}

func TestObjectID(t *testing.T) {
	t.Parallel()

	id1 := NewObjectID()
	id2 := NewObjectID()
	assert.NotEqual(t, id1, id2)

	parsed, err := ParseObjectID(id1.Hex())
	require.NoError(t, err)
	assert.Equal(t, id1, parsed)

	_, err = ParseObjectID("zz")
	assert.Error(t, err)

	_, err = ParseObjectID("zzzzzzzzzzzzzzzzzzzzzzzz")
	assert.Error(t, err)
}
