//
// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use
// of this software will be governed by the GNU Lesser General Public License v3.
//

package pool

import (
	"fmt"
	"strconv"
)

// Configuration identifies a liquidity pool setup option. A setup is defined
// by the storage technology of the node table (Variant) and the number of
// leaf slots of the liquidity tree (Capacity). The capacity is fixed when the
// pool is created and must match on every later open.
type Configuration struct {
	Variant  Variant
	Capacity uint64
}

func (c Configuration) String() string {
	return fmt.Sprintf("%v-C%d", c.Variant, c.Capacity)
}

// Variant describes the storage technology of the node table.
type Variant string

const (
	// VariantMemory keeps the node table in memory only. The pool state is
	// lost when the pool is closed; intended for tests and simulations.
	VariantMemory = Variant("go-memory")

	// VariantLevelDb persists the node table in a LevelDB instance hosted in
	// the pool directory.
	VariantLevelDb = Variant("go-ldb")
)

// Property is an optional parameter for configuring a pool instance.
type Property string

const (
	// PageSize is a configuration property defining the node table page size
	// in bytes, the granularity of the integrity hashing.
	PageSize = Property("PageSize")
	// BranchingFactor is a configuration property defining the branching
	// factor of the integrity hash tree.
	BranchingFactor = Property("BranchingFactor")
)

const (
	defaultPageSize        = 4096
	defaultBranchingFactor = 32
)

// Properties are optional settings which may influence the behavior of a
// pool, but do not alter compatibility of its stored state.
type Properties map[Property]string

// GetInteger is a utility function for Properties to retrieve numeric values.
func (p *Properties) GetInteger(name Property, fallback int) (int, error) {
	if value, found := (*p)[name]; found {
		res, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid value for '%s' property: %v", name, value)
		}
		return res, nil
	}
	return fallback, nil
}

// SetInteger is a utility function for Properties to set numeric values.
func (p *Properties) SetInteger(name Property, value int) {
	if *p == nil {
		*p = map[Property]string{}
	}
	(*p)[name] = strconv.Itoa(value)
}
