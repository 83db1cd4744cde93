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
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"os"

	"github.com/Fantom-foundation/LiquidityTree/go/pool"
	"github.com/urfave/cli/v2"
)

var ExportCmd = cli.Command{
	Action:    doExport,
	Name:      "export",
	Usage:     "exports the pool state into a file",
	ArgsUsage: "<target-file>",
	Flags: []cli.Flag{
		&directoryFlag,
	},
}

var ImportCmd = cli.Command{
	Action:    doImport,
	Name:      "import",
	Usage:     "initializes a pool in the given directory from an exported file",
	ArgsUsage: "<source-file>",
	Flags: []cli.Flag{
		&directoryFlag,
	},
}

func doExport(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("missing target file parameter")
	}
	p, err := openPool(context)
	if err != nil {
		return err
	}
	defer p.Close()

	file, err := os.Create(context.Args().Get(0))
	if err != nil {
		return err
	}
	bufferedWriter := bufio.NewWriter(file)
	out := gzip.NewWriter(bufferedWriter)

	return errors.Join(
		p.Export(out),
		out.Close(),
		bufferedWriter.Flush(),
		file.Close(),
	)
}

func doImport(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("missing source file parameter")
	}
	file, err := os.Open(context.Args().Get(0))
	if err != nil {
		return err
	}
	defer file.Close()
	in, err := gzip.NewReader(bufio.NewReader(file))
	if err != nil {
		return err
	}

	configuration := pool.Configuration{Variant: pool.VariantLevelDb}
	p, err := pool.ImportPool(context.String(directoryFlag.Name), configuration, pool.Properties{}, in)
	if err != nil {
		return errors.Join(err, in.Close())
	}
	if err := errors.Join(in.Close(), p.Close()); err != nil {
		return err
	}
	fmt.Printf("pool imported into %s\n", context.String(directoryFlag.Name))
	return nil
}
