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
	"fmt"
	"testing"
)

func TestKeccak256KnownHashes(t *testing.T) {
	tests := []struct {
		input string
		hash  string
	}{
		{"", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"a", "3ac225168df54212a25c1c01fd35bebfea408fca99434c4e5052f1582a33bd4c"},
		{"abc", "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			hash := Keccak256([]byte(test.input))
			if got, want := fmt.Sprintf("%x", hash[:]), test.hash; got != want {
				t.Errorf("unexpected hash of %q: got %s, want %s", test.input, got, want)
			}
		})
	}
}

func TestKeccak256IsDeterministic(t *testing.T) {
	data := []byte("some page content")
	if Keccak256(data) != Keccak256(bytes.Clone(data)) {
		t.Errorf("hashes of equal inputs differ")
	}
	if Keccak256([]byte("a")) == Keccak256([]byte("b")) {
		t.Errorf("hashes of different inputs collide")
	}
}
