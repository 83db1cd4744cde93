// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ltree

import "github.com/Fantom-foundation/LiquidityTree/go/common"

const (
	// ErrLeafNotFound is returned by operations addressing a leaf that has never been allocated.
	ErrLeafNotFound = common.ConstError("leaf not found")

	// ErrInvalidPercent is returned when a percent argument exceeds PercentWhole.
	ErrInvalidPercent = common.ConstError("percent out of range")

	// ErrInsufficientAmount is returned when a subtraction would underflow a node's recorded amount.
	ErrInsufficientAmount = common.ConstError("insufficient amount")

	// ErrCapacityExceeded is returned by deposits once all leaf slots have been allocated.
	ErrCapacityExceeded = common.ConstError("leaf capacity exceeded")

	// ErrZeroAmount is returned by deposits of a zero amount, which would create
	// a leaf that can never participate in pro-rata distributions.
	ErrZeroAmount = common.ConstError("amount must be positive")

	// ErrNoLiquidity is returned by range adjustments on a tree without any active deposit.
	ErrNoLiquidity = common.ConstError("no active deposits")
)
