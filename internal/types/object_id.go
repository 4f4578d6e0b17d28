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
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/FerretDB/docmatch/internal/util/must"
)

// ObjectIDLen is an ObjectID length in bytes.
const ObjectIDLen = 12

// ObjectID represents 12-byte document identity.
type ObjectID [ObjectIDLen]byte

var (
	objectIDProcess [5]byte
	objectIDCounter atomic.Uint32
)

func init() {
	must.NotFail(rand.Read(objectIDProcess[:]))

	var b [4]byte
	must.NotFail(rand.Read(b[:]))
	objectIDCounter.Store(binary.BigEndian.Uint32(b[:]))
}

// NewObjectID returns a new ObjectID: 4 bytes of seconds since epoch,
// 5 bytes of per-process random value, and 3 bytes of an incrementing counter.
func NewObjectID() ObjectID {
	return newObjectIDTime(time.Now())
}

// newObjectIDTime returns a new ObjectID with given time.
func newObjectIDTime(t time.Time) ObjectID {
	var res ObjectID

	binary.BigEndian.PutUint32(res[0:4], uint32(t.Unix()))
	copy(res[4:9], objectIDProcess[:])

	c := objectIDCounter.Add(1)
	res[9] = byte(c >> 16)
	res[10] = byte(c >> 8)
	res[11] = byte(c)

	return res
}

// ParseObjectID parses 24-character hex representation of ObjectID.
func ParseObjectID(s string) (ObjectID, error) {
	var res ObjectID

	if len(s) != hex.EncodedLen(ObjectIDLen) {
		return res, fmt.Errorf("types.ParseObjectID: invalid length %d", len(s))
	}

	if _, err := hex.Decode(res[:], []byte(s)); err != nil {
		return res, fmt.Errorf("types.ParseObjectID: %w", err)
	}

	return res, nil
}

// Hex returns 24-character hex representation of ObjectID.
func (id ObjectID) Hex() string {
	return hex.EncodeToString(id[:])
}

// String implements fmt.Stringer.
func (id ObjectID) String() string {
	return "ObjectId(" + id.Hex() + ")"
}
