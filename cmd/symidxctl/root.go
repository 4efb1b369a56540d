// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command symidxctl exposes maintenance-diagnostics subcommands for the
// partial-symbol index: print psymbols, info psymtabs, and check
// psymtabs. These are debugging aids for the indexing core itself, not a
// user-facing symbol browser, mirroring gdb's own "maintenance" command
// family.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	objfile    string
	solarisACC bool
	solaris2   bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "symidxctl",
		Short: "Partial-symbol-table maintenance diagnostics",
		Long:  "Inspects the partial-symbol index built from stabs/ECOFF debug info",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version 0.1.0")
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newPrintPsymbolsCmd())
	rootCmd.AddCommand(newInfoPsymtabsCmd())
	rootCmd.AddCommand(newCheckPsymtabsCmd())

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&objfile, "objfile", "", "", "object file to index")
	rootCmd.PersistentFlags().BoolVarP(&solarisACC, "solaris-acc", "", false, "enable Solaris ACC relative-strtab support")
	rootCmd.PersistentFlags().BoolVarP(&solaris2, "solaris2", "", false, "enable Solaris 2 N_ENDM module boundaries")
	rootCmd.MarkPersistentFlagRequired("objfile")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
