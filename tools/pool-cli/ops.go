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

	"github.com/Fantom-foundation/LiquidityTree/go/common/amount"
	"github.com/Fantom-foundation/LiquidityTree/go/ltree"
	"github.com/urfave/cli/v2"
)

var percentFlag = cli.Uint64Flag{
	Name:  "percent",
	Usage: fmt.Sprintf("the share of the deposit to withdraw, %d = 100%%", ltree.PercentWhole),
	Value: ltree.PercentWhole,
}

var DepositCmd = cli.Command{
	Action:    doDeposit,
	Name:      "deposit",
	Usage:     "books a new deposit into the pool",
	ArgsUsage: "<amount>",
	Flags: []cli.Flag{
		&directoryFlag,
	},
}

var WithdrawCmd = cli.Command{
	Action: doWithdraw,
	Name:   "withdraw",
	Usage:  "withdraws the current share of a deposit, or a percentage of it",
	Flags: []cli.Flag{
		&directoryFlag,
		&leafFlag,
		&percentFlag,
	},
}

var AddCmd = cli.Command{
	Action:    doAdd,
	Name:      "add",
	Usage:     "books a profit pro-rata over the deposits of the pool",
	ArgsUsage: "<amount>",
	Flags: []cli.Flag{
		&directoryFlag,
		&upToFlag,
	},
}

var RemoveCmd = cli.Command{
	Action:    doRemove,
	Name:      "remove",
	Usage:     "books a loss pro-rata over the deposits of the pool",
	ArgsUsage: "<amount>",
	Flags: []cli.Flag{
		&directoryFlag,
		&upToFlag,
	},
}

func argAmount(context *cli.Context) (amount.Amount, error) {
	if context.Args().Len() != 1 {
		return amount.Amount{}, fmt.Errorf("missing amount parameter")
	}
	return parseAmount(context.Args().Get(0))
}

func doDeposit(context *cli.Context) error {
	a, err := argAmount(context)
	if err != nil {
		return err
	}
	p, err := openPool(context)
	if err != nil {
		return err
	}
	return runAndClose(p, func() error {
		leaf, err := p.Deposit(a)
		if err != nil {
			return err
		}
		fmt.Printf("deposited %s as leaf %d\n", a, leaf)
		return nil
	})
}

func doWithdraw(context *cli.Context) error {
	p, err := openPool(context)
	if err != nil {
		return err
	}
	return runAndClose(p, func() error {
		leaf := context.Uint64(leafFlag.Name)
		var paid amount.Amount
		if percent := context.Uint64(percentFlag.Name); percent != ltree.PercentWhole {
			paid, err = p.WithdrawPercent(leaf, percent)
		} else {
			paid, err = p.Withdraw(leaf)
		}
		if err != nil {
			return err
		}
		fmt.Printf("withdrawn %s from leaf %d\n", paid, leaf)
		return nil
	})
}

func doAdd(context *cli.Context) error {
	a, err := argAmount(context)
	if err != nil {
		return err
	}
	p, err := openPool(context)
	if err != nil {
		return err
	}
	return runAndClose(p, func() error {
		if leaf := context.Uint64(upToFlag.Name); leaf != 0 {
			err = p.AddUpTo(a, leaf)
		} else {
			err = p.AddGlobal(a)
		}
		if err != nil {
			return err
		}
		fmt.Printf("added %s to the pool\n", a)
		return nil
	})
}

func doRemove(context *cli.Context) error {
	a, err := argAmount(context)
	if err != nil {
		return err
	}
	p, err := openPool(context)
	if err != nil {
		return err
	}
	return runAndClose(p, func() error {
		if leaf := context.Uint64(upToFlag.Name); leaf != 0 {
			err = p.RemoveUpTo(a, leaf)
		} else {
			err = p.RemoveGlobal(a)
		}
		if err != nil {
			return err
		}
		fmt.Printf("removed %s from the pool\n", a)
		return nil
	})
}
