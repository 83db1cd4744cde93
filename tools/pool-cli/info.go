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
	"errors"
	"fmt"

	"github.com/Fantom-foundation/LiquidityTree/go/pool"
	"github.com/urfave/cli/v2"
)

var Init = cli.Command{
	Action: doInit,
	Name:   "init",
	Usage:  "creates an empty pool in the given directory",
	Flags: []cli.Flag{
		&directoryFlag,
		&capacityFlag,
	},
}

var Info = cli.Command{
	Action: doInfo,
	Name:   "info",
	Usage:  "prints summary information of the pool in the given directory",
	Flags: []cli.Flag{
		&directoryFlag,
	},
}

func doInit(context *cli.Context) error {
	if context.Uint64(capacityFlag.Name) == 0 {
		return fmt.Errorf("a non-zero --%s is required to create a pool", capacityFlag.Name)
	}
	p, err := openPool(context)
	if err != nil {
		return err
	}
	if err := p.Close(); err != nil {
		return err
	}
	fmt.Printf("created pool with capacity %d\n", context.Uint64(capacityFlag.Name))
	return nil
}

func doInfo(context *cli.Context) error {
	p, err := openPool(context)
	if err != nil {
		return err
	}
	defer p.Close()

	total, err := p.Total()
	if err != nil {
		return err
	}
	hash, err := p.StateHash()
	if err != nil {
		return err
	}

	fmt.Printf("capacity:   %d\n", p.Capacity())
	fmt.Printf("deposits:   %d\n", p.NextLeaf()-p.FirstLeaf())
	fmt.Printf("next leaf:  %d\n", p.NextLeaf())
	fmt.Printf("total:      %s\n", total)
	fmt.Printf("state hash: %s\n", hash)
	return nil
}

func runAndClose(p pool.Pool, op func() error) error {
	return errors.Join(op(), p.Close())
}
