// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"encoding/hex"

	"golang.org/x/exp/constraints"
)

// Identifier is the type constraint on ordinal numbers used for addressing
// items in stores and node tables.
type Identifier interface {
	constraints.Unsigned
}

// Hash is a 32-byte cryptographic hash value.
type Hash [32]byte

// HashLength is the byte length of a Hash.
const HashLength = 32

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Serializer converts a value of the type T to and from its fixed-size
// binary representation.
type Serializer[T any] interface {
	// ToBytes serializes the value into a new byte slice of length Size().
	ToBytes(T) []byte

	// CopyBytes serializes the value into the provided byte slice,
	// which must be at least Size() bytes long.
	CopyBytes(T, []byte)

	// FromBytes deserializes a value from the first Size() bytes of the slice.
	FromBytes([]byte) T

	// Size provides the length of the serialized form in bytes.
	Size() int
}
