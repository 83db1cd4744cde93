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
	"errors"
	"fmt"
	"testing"
)

func TestConstErrorCanBeUsedAsConstant(t *testing.T) {
	const err = ConstError("something failed")
	if got, want := err.Error(), "something failed"; got != want {
		t.Errorf("unexpected error message: got %s, want %s", got, want)
	}
}

func TestConstErrorCanBeMatchedWhenWrapped(t *testing.T) {
	const base = ConstError("base error")
	wrapped := fmt.Errorf("context: %w", base)
	if !errors.Is(wrapped, base) {
		t.Errorf("wrapped error does not match its base")
	}
	if errors.Is(wrapped, ConstError("other error")) {
		t.Errorf("wrapped error matches an unrelated error")
	}
}
