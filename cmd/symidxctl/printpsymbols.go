// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// newPrintPsymbolsCmd builds the "print-psymbols [--pc ADDR] [--source
// FILE] [OUTFILE]" command.
func newPrintPsymbolsCmd() *cobra.Command {
	var pc string
	var source string

	cmd := &cobra.Command{
		Use:   "print-psymbols [OUTFILE]",
		Short: "Dump psymbols, optionally filtered by PC or source file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, facade, err := buildIndex(objfile)
			if err != nil {
				return err
			}

			out := os.Stdout
			if len(args) > 0 {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			if pc != "" {
				addr, err := strconv.ParseUint(pc, 0, 64)
				if err != nil {
					return fmt.Errorf("invalid --pc value %q: %w", pc, err)
				}
				pst := facade.FindPCSectPsymtab(addr, 0)
				if pst == nil {
					fmt.Fprintf(out, "no psymtab covers pc %#x\n", addr)
					return nil
				}
				printOnePsymtab(out, pst)
				return nil
			}

			printAllPsymtabs(out, facade, source)
			return nil
		},
	}

	cmd.Flags().StringVar(&pc, "pc", "", "restrict output to the psymtab covering this address")
	cmd.Flags().StringVar(&source, "source", "", "restrict output to psymtabs matching this source filename")
	return cmd
}
