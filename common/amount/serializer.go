// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package amount

// Serializer is a common.Serializer of the Amount type.
type Serializer struct{}

func (s Serializer) ToBytes(value Amount) []byte {
	res := make([]byte, BytesLength)
	s.CopyBytes(value, res)
	return res
}

func (s Serializer) CopyBytes(value Amount, out []byte) {
	bytes := value.Bytes32()
	copy(out, bytes[:])
}

func (s Serializer) FromBytes(bytes []byte) Amount {
	return NewFromBytes(bytes[0:BytesLength]...)
}

func (s Serializer) Size() int {
	return BytesLength
}
