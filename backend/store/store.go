// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package store

import (
	"github.com/Fantom-foundation/LiquidityTree/go/common"
)

//go:generate mockgen -source store.go -destination store_mocks.go -package store

// Store is a mutable index/value store. It provides mutation/lookup support,
// as well as global state hashing support to obtain a quick hash for the entire content.
//
// The type I is the type used for the ordinal numbers,
// the type V for the store values - needs to be serializable.
type Store[I common.Identifier, V any] interface {

	// Set creates a new mapping from the index to the value
	Set(id I, value V) error

	// Get returns a value associated with the index, or the default value
	// of V if the index has never been set
	Get(id I) (V, error)

	// GetStateHash computes and returns a cryptographical hash of the stored data
	GetStateHash() (common.Hash, error)

	// Stores need to provide information on their memory footprint.
	common.MemoryFootprintProvider

	// Also, stores need to be flush and closable.
	common.FlushAndCloser
}
