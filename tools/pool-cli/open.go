// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/LiquidityTree/go/common/amount"
	"github.com/Fantom-foundation/LiquidityTree/go/pool"
	"github.com/urfave/cli/v2"
)

var (
	directoryFlag = cli.StringFlag{
		Name:     "directory",
		Aliases:  []string{"d"},
		Usage:    "the directory hosting the pool database",
		Required: true,
	}
	capacityFlag = cli.Uint64Flag{
		Name:  "capacity",
		Usage: "the leaf capacity of the pool, must be a power of two",
		Value: 0,
	}
	leafFlag = cli.Uint64Flag{
		Name:     "leaf",
		Aliases:  []string{"l"},
		Usage:    "the leaf id of the targeted deposit",
		Required: true,
	}
	upToFlag = cli.Uint64Flag{
		Name:  "up-to",
		Usage: "restrict the adjustment to deposits made no later than the given leaf",
		Value: 0,
	}
)

// openPool opens the persistent pool hosted in the directory named by the
// command line, adopting the capacity the pool was created with unless one
// is given explicitly.
func openPool(context *cli.Context) (pool.Pool, error) {
	configuration := pool.Configuration{
		Variant:  pool.VariantLevelDb,
		Capacity: context.Uint64(capacityFlag.Name),
	}
	return pool.OpenPool(context.String(directoryFlag.Name), configuration, pool.Properties{})
}

// parseAmount converts a decimal command-line argument into an amount.
func parseAmount(value string) (amount.Amount, error) {
	i, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return amount.Amount{}, fmt.Errorf("invalid amount: %s", value)
	}
	return amount.NewFromBigInt(i)
}
