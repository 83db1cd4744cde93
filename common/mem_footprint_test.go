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
	"strings"
	"testing"
)

func TestMemoryFootprintTotalIncludesChildren(t *testing.T) {
	parent := NewMemoryFootprint(100)
	parent.AddChild("a", NewMemoryFootprint(20))
	parent.AddChild("b", NewMemoryFootprint(30))
	if got, want := parent.Total(), uintptr(150); got != want {
		t.Errorf("unexpected total: got %d, want %d", got, want)
	}
	if got, want := parent.Value(), uintptr(100); got != want {
		t.Errorf("unexpected value: got %d, want %d", got, want)
	}
}

func TestMemoryFootprintSharedChildCountedOnce(t *testing.T) {
	shared := NewMemoryFootprint(50)
	parent := NewMemoryFootprint(10)
	parent.AddChild("x", shared)
	parent.AddChild("y", shared)
	if got, want := parent.Total(), uintptr(60); got != want {
		t.Errorf("shared child counted more than once: got %d, want %d", got, want)
	}
}

func TestMemoryFootprintToStringIsDeterministic(t *testing.T) {
	parent := NewMemoryFootprint(1024)
	parent.AddChild("b", NewMemoryFootprint(2048))
	parent.AddChild("a", NewMemoryFootprint(4096))
	out := parent.ToString("pool")
	if !strings.Contains(out, "pool/a") || !strings.Contains(out, "pool/b") {
		t.Errorf("summary misses children:\n%s", out)
	}
	if strings.Index(out, "pool/a") > strings.Index(out, "pool/b") {
		t.Errorf("children are not listed in lexicographic order:\n%s", out)
	}
}
