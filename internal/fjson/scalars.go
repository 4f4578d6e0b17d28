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
	"encoding/hex"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/FerretDB/docmatch/internal/types"
	"github.com/FerretDB/docmatch/internal/util/lazyerrors"
)

// doubleType represents float64.
type doubleType float64

func (d *doubleType) fjsontype() {}

type doubleJSON struct {
	F any `json:"$f"`
}

// UnmarshalJSON implements fjsontype interface.
func (d *doubleType) UnmarshalJSON(data []byte) error {
	var o doubleJSON
	if err := decodeStrict(data, &o); err != nil {
		return lazyerrors.Error(err)
	}

	switch f := o.F.(type) {
	case float64:
		*d = doubleType(f)
	case string:
		switch f {
		case "Infinity":
			*d = doubleType(math.Inf(1))
		case "-Infinity":
			*d = doubleType(math.Inf(-1))
		case "NaN":
			*d = doubleType(math.NaN())
		case "-0":
			*d = doubleType(math.Copysign(0, -1))
		default:
			return lazyerrors.Errorf("fjson.doubleType.UnmarshalJSON: unexpected string %q", f)
		}
	default:
		return lazyerrors.Errorf("fjson.doubleType.UnmarshalJSON: unexpected type %[1]T: %[1]v", f)
	}

	return nil
}

// MarshalJSON implements fjsontype interface.
func (d *doubleType) MarshalJSON() ([]byte, error) {
	f := float64(*d)

	var o doubleJSON

	switch {
	case math.IsInf(f, 1):
		o.F = "Infinity"
	case math.IsInf(f, -1):
		o.F = "-Infinity"
	case math.IsNaN(f):
		o.F = "NaN"
	case f == 0 && math.Signbit(f):
		o.F = "-0"
	default:
		o.F = f
	}

	res, err := json.Marshal(o)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	return res, nil
}

// int64Type represents int64.
type int64Type int64

func (i *int64Type) fjsontype() {}

type int64JSON struct {
	L string `json:"$l"`
}

// UnmarshalJSON implements fjsontype interface.
func (i *int64Type) UnmarshalJSON(data []byte) error {
	var o int64JSON
	if err := decodeStrict(data, &o); err != nil {
		return lazyerrors.Error(err)
	}

	v, err := strconv.ParseInt(o.L, 10, 64)
	if err != nil {
		return lazyerrors.Error(err)
	}

	*i = int64Type(v)

	return nil
}

// MarshalJSON implements fjsontype interface.
func (i *int64Type) MarshalJSON() ([]byte, error) {
	res, err := json.Marshal(int64JSON{
		L: strconv.FormatInt(int64(*i), 10),
	})
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	return res, nil
}

// int32Type represents int32.
type int32Type int32

func (i *int32Type) fjsontype() {}

// UnmarshalJSON implements fjsontype interface.
func (i *int32Type) UnmarshalJSON(data []byte) error {
	var o int32
	if err := decodeStrict(data, &o); err != nil {
		return lazyerrors.Error(err)
	}

	*i = int32Type(o)

	return nil
}

// MarshalJSON implements fjsontype interface.
func (i *int32Type) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(*i), 10)), nil
}

// stringType represents string.
type stringType string

func (s *stringType) fjsontype() {}

// UnmarshalJSON implements fjsontype interface.
func (s *stringType) UnmarshalJSON(data []byte) error {
	var o string
	if err := decodeStrict(data, &o); err != nil {
		return lazyerrors.Error(err)
	}

	*s = stringType(o)

	return nil
}

// MarshalJSON implements fjsontype interface.
func (s *stringType) MarshalJSON() ([]byte, error) {
	res, err := json.Marshal(string(*s))
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	return res, nil
}

// boolType represents bool.
type boolType bool

func (b *boolType) fjsontype() {}

// UnmarshalJSON implements fjsontype interface.
func (b *boolType) UnmarshalJSON(data []byte) error {
	var o bool
	if err := decodeStrict(data, &o); err != nil {
		return lazyerrors.Error(err)
	}

	*b = boolType(o)

	return nil
}

// MarshalJSON implements fjsontype interface.
func (b *boolType) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatBool(bool(*b))), nil
}

// nullType represents types.NullType.
type nullType types.NullType

func (*nullType) fjsontype() {}

// UnmarshalJSON implements fjsontype interface.
func (*nullType) UnmarshalJSON(data []byte) error {
	if string(data) != "null" {
		return lazyerrors.Errorf("fjson.nullType.UnmarshalJSON: unexpected data %s", data)
	}

	return nil
}

// MarshalJSON implements fjsontype interface.
func (*nullType) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// objectIDType represents types.ObjectID.
type objectIDType types.ObjectID

func (obj *objectIDType) fjsontype() {}

type objectIDJSON struct {
	O string `json:"$o"`
}

// UnmarshalJSON implements fjsontype interface.
func (obj *objectIDType) UnmarshalJSON(data []byte) error {
	var o objectIDJSON
	if err := decodeStrict(data, &o); err != nil {
		return lazyerrors.Error(err)
	}

	b, err := hex.DecodeString(o.O)
	if err != nil {
		return lazyerrors.Error(err)
	}

	if len(b) != types.ObjectIDLen {
		return lazyerrors.Errorf("fjson.objectIDType.UnmarshalJSON: %d bytes", len(b))
	}

	copy(obj[:], b)

	return nil
}

// MarshalJSON implements fjsontype interface.
func (obj *objectIDType) MarshalJSON() ([]byte, error) {
	res, err := json.Marshal(objectIDJSON{
		O: hex.EncodeToString(obj[:]),
	})
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	return res, nil
}

// dateTimeType represents time.Time.
type dateTimeType time.Time

func (dt *dateTimeType) fjsontype() {}

type dateTimeJSON struct {
	D int64 `json:"$d"`
}

// UnmarshalJSON implements fjsontype interface.
func (dt *dateTimeType) UnmarshalJSON(data []byte) error {
	var o dateTimeJSON
	if err := decodeStrict(data, &o); err != nil {
		return lazyerrors.Error(err)
	}

	*dt = dateTimeType(time.UnixMilli(o.D).UTC())

	return nil
}

// MarshalJSON implements fjsontype interface.
func (dt *dateTimeType) MarshalJSON() ([]byte, error) {
	res, err := json.Marshal(dateTimeJSON{
		D: time.Time(*dt).UnixMilli(),
	})
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	return res, nil
}

// check interfaces
var (
	_ fjsontype = (*doubleType)(nil)
	_ fjsontype = (*int64Type)(nil)
	_ fjsontype = (*int32Type)(nil)
	_ fjsontype = (*stringType)(nil)
	_ fjsontype = (*boolType)(nil)
	_ fjsontype = (*nullType)(nil)
	_ fjsontype = (*objectIDType)(nil)
	_ fjsontype = (*dateTimeType)(nil)
)
