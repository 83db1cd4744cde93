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
	"bytes"
	"testing"
)

func TestUint64SerializerRoundTrip(t *testing.T) {
	serializer := Uint64Serializer{}
	for _, value := range []uint64{0, 1, 256, 1 << 32, 0xFFFFFFFFFFFFFFFF} {
		b := serializer.ToBytes(value)
		if got, want := len(b), serializer.Size(); got != want {
			t.Fatalf("unexpected serialized size: got %d, want %d", got, want)
		}
		if got := serializer.FromBytes(b); got != value {
			t.Errorf("round trip failed: got %d, want %d", got, value)
		}
		out := make([]byte, serializer.Size())
		serializer.CopyBytes(value, out)
		if !bytes.Equal(out, b) {
			t.Errorf("CopyBytes output differs from ToBytes output")
		}
	}
}

func TestUint64SerializerIsBigEndian(t *testing.T) {
	b := Uint64Serializer{}.ToBytes(0x0102030405060708)
	if !bytes.Equal(b, []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("unexpected byte order: %x", b)
	}
}

func TestUint32SerializerRoundTrip(t *testing.T) {
	serializer := Uint32Serializer{}
	for _, value := range []uint32{0, 1, 256, 0xFFFFFFFF} {
		b := serializer.ToBytes(value)
		if got, want := len(b), serializer.Size(); got != want {
			t.Fatalf("unexpected serialized size: got %d, want %d", got, want)
		}
		if got := serializer.FromBytes(b); got != value {
			t.Errorf("round trip failed: got %d, want %d", got, value)
		}
	}
}

func TestHashSerializerRoundTrip(t *testing.T) {
	serializer := HashSerializer{}
	hash := Keccak256([]byte("payload"))
	b := serializer.ToBytes(hash)
	if got, want := len(b), HashLength; got != want {
		t.Fatalf("unexpected serialized size: got %d, want %d", got, want)
	}
	if got := serializer.FromBytes(b); got != hash {
		t.Errorf("round trip failed: got %x, want %x", got, hash)
	}
}
