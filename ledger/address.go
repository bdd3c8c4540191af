// Copyright 2025 OpenRelay Labs
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

package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// AddressSize is the length of a ledger address in bytes
const AddressSize = 32

// Address identifies a record, account, or external identity on the ledger
type Address [AddressSize]byte

var ErrBadAddressLength = errors.New("address must be 32 bytes")

// DeriveAddress computes the deterministic address for the given seeds.
// Each seed is length-prefixed before hashing so that seed boundaries
// cannot be shifted to produce collisions
func DeriveAddress(seeds ...[]byte) Address {
	h := sha256.New()
	var lenBuf [4]byte
	for _, seed := range seeds {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(seed))) //nolint:gosec
		h.Write(lenBuf[:])
		h.Write(seed)
	}
	var addr Address
	copy(addr[:], h.Sum(nil))
	return addr
}

// Uint64Seed encodes a nonce or sequence number as a fixed-width seed
// for DeriveAddress
func Uint64Seed(n uint64) []byte {
	var data [8]byte
	binary.BigEndian.PutUint64(data[:], n)
	return data[:]
}

// AddressFromBytes converts a 32-byte slice into an Address
func AddressFromBytes(data []byte) (Address, error) {
	var addr Address
	if len(data) != AddressSize {
		return addr, ErrBadAddressLength
	}
	copy(addr[:], data)
	return addr, nil
}

// Bytes returns the address as a byte slice
func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero reports whether the address is the zero value
func (a Address) IsZero() bool {
	return a == Address{}
}
