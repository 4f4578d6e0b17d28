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

package fjson

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/must"
)

func TestDocument(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 3, 4, 5, 6, 7, 8_000_000, time.UTC)
	oid := types.ObjectID{0x62, 0x56, 0xc5, 0xba, 0x06, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}

	doc := must.NotFail(types.NewDocument(
		"_id", oid,
		"int32", int32(42),
		"int64", int64(42),
		"double", float64(42),
		"string", "foo",
		"bool", true,
		"null", types.Null,
		"date", date,
		"array", must.NotFail(types.NewArray(int32(1), "x", must.NotFail(types.NewArray()))),
		"doc", must.NotFail(types.NewDocument("b", int32(2), "a", int32(1))),
	))

	b, err := Marshal(doc)
	require.NoError(t, err)

	expected := `{"$k":["_id","int32","int64","double","string","bool","null","date","array","doc"],` +
		`"_id":{"$o":"6256c5ba0600000000000001"},"int32":42,"int64":{"$l":"42"},"double":{"$f":42},` +
		`"string":"foo","bool":true,"null":null,"date":{"$d":1709528767008},` +
		`"array":[1,"x",[]],"doc":{"$k":["b","a"],"b":2,"a":1}}`
	assert.JSONEq(t, expected, string(b))

	actual, err := UnmarshalDocument(b)
	require.NoError(t, err)
	assert.Equal(t, doc.Keys(), actual.Keys())

	for _, k := range doc.Keys() {
		e, _ := doc.Lookup(k)
		a, _ := actual.Lookup(k)
		assert.True(t, types.Identical(e, a), "key %q: expected %v, got %v", k, e, a)
	}
}

func TestDouble(t *testing.T) {
	t.Parallel()

	for name, f := range map[string]float64{
		"Zero":        0,
		"NegZero":     math.Copysign(0, -1),
		"Inf":         math.Inf(1),
		"NegInf":      math.Inf(-1),
		"NaN":         math.NaN(),
		"Fraction":    3.14,
		"MaxFloat64":  math.MaxFloat64,
		"SmallestPos": math.SmallestNonzeroFloat64,
	} {
		name, f := name, f
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b, err := Marshal(f)
			require.NoError(t, err)

			v, err := Unmarshal(b)
			require.NoError(t, err)
			assert.True(t, types.Identical(f, v), "expected %v, got %v", f, v)
		})
	}
}

func TestUnmarshalErrors(t *testing.T) {
	t.Parallel()

	for name, data := range map[string]string{
		"Empty":          ``,
		"UnknownObject":  `{"foo":1}`,
		"MissingKey":     `{"$k":["a"]}`,
		"ExtraKey":       `{"$k":[],"a":1}`,
		"Int32Overflow":  `2147483648`,
		"Int32Fraction":  `1.5`,
		"Int64NotNumber": `{"$l":"x"}`,
		"DoubleString":   `{"$f":"foo"}`,
		"ObjectIDShort":  `{"$o":"0102"}`,
		"Trailing":       `"a" "b"`,
	} {
		name, data := name, data
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Unmarshal([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestMarshalReservedKey(t *testing.T) {
	t.Parallel()

	_, err := Marshal(must.NotFail(types.NewDocument("$k", int32(1))))
	assert.Error(t, err)
}
