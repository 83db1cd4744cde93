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

import (
	"math/big"
	"testing"
)

func TestNewAmount(t *testing.T) {
	tests := []struct {
		name string
		args []uint64
		want Amount
	}{
		{"no arguments", nil, Amount{}},
		{"single argument", []uint64{1}, NewFromBytes(1)},
		{"two arguments", []uint64{1, 2}, NewFromBytes(1, 0, 0, 0, 0, 0, 0, 0, 2)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got, want := New(test.args...), test.want; got != want {
				t.Errorf("unexpected amount: got %v, want %v", got, want)
			}
		})
	}
}

func TestNewFromBigInt(t *testing.T) {
	a, err := NewFromBigInt(big.NewInt(100))
	if err != nil {
		t.Fatalf("failed to create amount; %s", err)
	}
	if got, want := a, New(100); got != want {
		t.Errorf("unexpected amount: got %v, want %v", got, want)
	}
	if _, err := NewFromBigInt(big.NewInt(-100)); err == nil {
		t.Errorf("negative value must be rejected")
	}
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	if _, err := NewFromBigInt(tooBig); err == nil {
		t.Errorf("value over 256 bits must be rejected")
	}
}

func TestAmountPredicates(t *testing.T) {
	if !New().IsZero() || New(1).IsZero() {
		t.Errorf("IsZero is broken")
	}
	if !New(42).IsUint64() || Max().IsUint64() {
		t.Errorf("IsUint64 is broken")
	}
	if !New(1).Less(New(2)) || New(2).Less(New(1)) || New(1).Less(New(1)) {
		t.Errorf("Less is broken")
	}
}

func TestAddOverflow(t *testing.T) {
	sum, overflow := AddOverflow(New(40), New(60))
	if overflow || sum != New(100) {
		t.Errorf("unexpected sum: got %v, overflow %t", sum, overflow)
	}
	if _, overflow := AddOverflow(Max(), New(1)); !overflow {
		t.Errorf("overflow not detected")
	}
}

func TestSubUnderflow(t *testing.T) {
	diff, underflow := SubUnderflow(New(100), New(60))
	if underflow || diff != New(40) {
		t.Errorf("unexpected difference: got %v, underflow %t", diff, underflow)
	}
	if _, underflow := SubUnderflow(New(60), New(100)); !underflow {
		t.Errorf("underflow not detected")
	}
}

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name     string
		a, b, c  Amount
		want     Amount
		overflow bool
	}{
		{"exact", New(110), New(40), New(100), New(44), false},
		{"floored", New(10), New(1), New(3), New(3), false},
		{"zero numerator", New(0), New(123), New(7), New(0), false},
		{"wide intermediate product", New(1, 0, 0), New(4), New(2), New(2, 0, 0), false},
		{"overflowing product", Max(), Max(), New(1), Amount{}, true},
		{"division by zero", New(1), New(1), New(0), Amount{}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, overflow := MulDiv(test.a, test.b, test.c)
			if overflow != test.overflow {
				t.Fatalf("unexpected overflow flag: got %t, want %t", overflow, test.overflow)
			}
			if got != test.want {
				t.Errorf("unexpected result: got %v, want %v", got, test.want)
			}
		})
	}
}

func TestAmountSerializerRoundTrip(t *testing.T) {
	serializer := Serializer{}
	for _, a := range []Amount{New(), New(1), New(1, 2, 3, 4), Max()} {
		b := serializer.ToBytes(a)
		if got, want := len(b), serializer.Size(); got != want {
			t.Fatalf("unexpected serialized size: got %d, want %d", got, want)
		}
		if got := serializer.FromBytes(b); got != a {
			t.Errorf("round trip failed: got %v, want %v", got, a)
		}
	}
}
