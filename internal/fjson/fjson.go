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

// Package fjson provides converters from/to FJSON (JSON with some extensions) for built-in and `types` types.
//
// FJSON is used by the SQLite backend to store documents and by tests to produce readable diffs.
// It preserves field order and the distinction between int32, int64 and float64 values.
//
// # Mapping
//
// Composite types
//
//	Alias      types package    fjson package         JSON representation
//
//	object     *types.Document  *fjson.documentType   {"$k": ["<key 1>", "<key 2>", ...], "<key 1>": <value 1>, "<key 2>": <value 2>, ...}
//	array      *types.Array     *fjson.arrayType      JSON array
//
// Scalar types
//
//	Alias      types package    fjson package         JSON representation
//
//	double     float64          *fjson.doubleType     {"$f": JSON number} or {"$f": "Infinity|-Infinity|NaN|-0"}
//	string     string           *fjson.stringType     JSON string
//	objectId   types.ObjectID   *fjson.objectIDType   {"$o": "<ObjectID as 24 character hex string"}
//	bool       bool             *fjson.boolType       JSON true / false values
//	date       time.Time        *fjson.dateTimeType   {"$d": milliseconds since epoch as JSON number}
//	null       types.NullType   *fjson.nullType       JSON null
//	int        int32            *fjson.int32Type      JSON number
//	long       int64            *fjson.int64Type      {"$l": "<number as string>"}
//
//nolint:lll // for readability
package fjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/AlekSi/pointer"

	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
)

// fjsontype is a type that can be marshaled to and unmarshaled from FJSON.
type fjsontype interface {
	fjsontype() // seal for go-sumtype

	json.Marshaler
	json.Unmarshaler
}

//go-sumtype:decl fjsontype

// fromFJSON converts fjsontype value to matching built-in or types' package value.
func fromFJSON(v fjsontype) any {
	switch v := v.(type) {
	case *documentType:
		return v.doc
	case *arrayType:
		return v.arr
	case *doubleType:
		return float64(*v)
	case *stringType:
		return string(*v)
	case *objectIDType:
		return types.ObjectID(*v)
	case *boolType:
		return bool(*v)
	case *dateTimeType:
		return time.Time(*v)
	case *nullType:
		return types.Null
	case *int32Type:
		return int32(*v)
	case *int64Type:
		return int64(*v)
	}

	panic(fmt.Sprintf("not reached: %T", v)) // for go-sumtype to work
}

// toFJSON converts built-in or types' package value to fjsontype value.
func toFJSON(v any) fjsontype {
	switch v := v.(type) {
	case *types.Document:
		return &documentType{doc: v}
	case *types.Array:
		return &arrayType{arr: v}
	case float64:
		return pointer.To(doubleType(v))
	case string:
		return pointer.To(stringType(v))
	case types.ObjectID:
		return pointer.To(objectIDType(v))
	case bool:
		return pointer.To(boolType(v))
	case time.Time:
		return pointer.To(dateTimeType(v))
	case types.NullType:
		return pointer.To(nullType(v))
	case int32:
		return pointer.To(int32Type(v))
	case int64:
		return pointer.To(int64Type(v))
	}

	panic(fmt.Sprintf("not reached: %T", v)) // for go-sumtype to work
}

// checkConsumed returns error if decoder or reader have buffered or unread data.
func checkConsumed(dec *json.Decoder, r *bytes.Reader) error {
	if dr := dec.Buffered().(*bytes.Reader); dr.Len() != 0 {
		b, _ := io.ReadAll(dr)
		if len(bytes.TrimSpace(b)) != 0 {
			return lazyerrors.Errorf("%d bytes remains in the decoder: %s", len(b), b)
		}
	}

	if l := r.Len(); l != 0 {
		b, _ := io.ReadAll(r)
		if len(bytes.TrimSpace(b)) != 0 {
			return lazyerrors.Errorf("%d bytes remains in the reader: %s", l, b)
		}
	}

	return nil
}

// decodeStrict decodes a single JSON value into v and checks that nothing remains.
func decodeStrict(data []byte, v any) error {
	r := bytes.NewReader(data)
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return lazyerrors.Error(err)
	}

	if err := checkConsumed(dec, r); err != nil {
		return lazyerrors.Error(err)
	}

	return nil
}

// Unmarshal decodes the given fjson-encoded data into built-in or types' package value.
func Unmarshal(data []byte) (any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, lazyerrors.New("fjson.Unmarshal: empty data")
	}

	var v fjsontype

	switch data[0] {
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, lazyerrors.Error(err)
		}

		switch {
		case m["$k"] != nil:
			v = new(documentType)
		case m["$f"] != nil:
			v = new(doubleType)
		case m["$o"] != nil:
			v = new(objectIDType)
		case m["$d"] != nil:
			v = new(dateTimeType)
		case m["$l"] != nil:
			v = new(int64Type)
		default:
			return nil, lazyerrors.Errorf("fjson.Unmarshal: unhandled object %s", data)
		}

	case '[':
		v = new(arrayType)
	case '"':
		v = new(stringType)
	case 't', 'f':
		v = new(boolType)
	case 'n':
		v = new(nullType)
	default:
		v = new(int32Type)
	}

	if err := v.UnmarshalJSON(data); err != nil {
		return nil, lazyerrors.Error(err)
	}

	return fromFJSON(v), nil
}

// UnmarshalDocument decodes the given fjson-encoded data into a document.
func UnmarshalDocument(data []byte) (*types.Document, error) {
	v, err := Unmarshal(data)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	doc, ok := v.(*types.Document)
	if !ok {
		return nil, lazyerrors.Errorf("fjson.UnmarshalDocument: expected document, got %T", v)
	}

	return doc, nil
}

// Marshal encodes given built-in or types' package value into fjson.
func Marshal(v any) ([]byte, error) {
	if v == nil {
		panic("v is nil")
	}

	b, err := toFJSON(v).MarshalJSON()
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	return b, nil
}
