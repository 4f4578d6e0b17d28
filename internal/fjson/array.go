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

// arrayType represents *types.Array.
type arrayType struct {
	arr *types.Array
}

func (a *arrayType) fjsontype() {}

// UnmarshalJSON implements fjsontype interface.
func (a *arrayType) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return lazyerrors.Error(err)
	}

	res := types.MakeArray(len(raws))

	for _, raw := range raws {
		v, err := Unmarshal(raw)
		if err != nil {
			return lazyerrors.Error(err)
		}

		if err = res.Append(v); err != nil {
			return lazyerrors.Error(err)
		}
	}

	a.arr = res

	return nil
}

// MarshalJSON implements fjsontype interface.
func (a *arrayType) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i := 0; i < a.arr.Len(); i++ {
		if i != 0 {
			buf.WriteByte(',')
		}

		el, err := a.arr.Get(i)
		if err != nil {
			return nil, lazyerrors.Error(err)
		}

		b, err := Marshal(el)
		if err != nil {
			return nil, lazyerrors.Error(err)
		}

		buf.Write(b)
	}

	buf.WriteByte(']')

	return buf.Bytes(), nil
}

// check interfaces
var (
	_ fjsontype = (*arrayType)(nil)
)
