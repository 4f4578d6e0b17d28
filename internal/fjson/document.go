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
	"bytes"
	"encoding/json"

	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
)

// keysField is a reserved field that holds document keys in order.
const keysField = "$k"

// documentType represents *types.Document.
type documentType struct {
	doc *types.Document
}

func (doc *documentType) fjsontype() {}

// UnmarshalJSON implements fjsontype interface.
func (doc *documentType) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return lazyerrors.Error(err)
	}

	rawKeys, ok := m[keysField]
	if !ok {
		return lazyerrors.Errorf("fjson.documentType.UnmarshalJSON: missing %s", keysField)
	}

	var keys []string
	if err := json.Unmarshal(rawKeys, &keys); err != nil {
		return lazyerrors.Error(err)
	}

	if len(keys)+1 != len(m) {
		return lazyerrors.Errorf("fjson.documentType.UnmarshalJSON: %d keys in %s, %d in map", len(keys), keysField, len(m)-1)
	}

	res := types.MakeDocument(len(keys))

	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			return lazyerrors.Errorf("fjson.documentType.UnmarshalJSON: missing key %q", key)
		}

		if res.Has(key) {
			return lazyerrors.Errorf("fjson.documentType.UnmarshalJSON: duplicate key %q", key)
		}

		v, err := Unmarshal(raw)
		if err != nil {
			return lazyerrors.Error(err)
		}

		if err = res.Set(key, v); err != nil {
			return lazyerrors.Error(err)
		}
	}

	doc.doc = res

	return nil
}

// MarshalJSON implements fjsontype interface.
func (doc *documentType) MarshalJSON() ([]byte, error) {
	keys := doc.doc.Keys()
	if keys == nil {
		keys = []string{}
	}

	var buf bytes.Buffer

	buf.WriteString(`{"` + keysField + `":`)

	b, err := json.Marshal(keys)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	buf.Write(b)

	for _, key := range keys {
		if key == keysField {
			return nil, lazyerrors.Errorf("fjson.documentType.MarshalJSON: reserved key %q", key)
		}

		buf.WriteByte(',')

		if b, err = json.Marshal(key); err != nil {
			return nil, lazyerrors.Error(err)
		}

		buf.Write(b)
		buf.WriteByte(':')

		v, _ := doc.doc.Lookup(key)

		if b, err = Marshal(v); err != nil {
			return nil, lazyerrors.Error(err)
		}

		buf.Write(b)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// check interfaces
var (
	_ fjsontype = (*documentType)(nil)
)
