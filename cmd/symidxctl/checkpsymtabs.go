// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/saferwall/symidx"
	"github.com/spf13/cobra"
)

// newCheckPsymtabsCmd builds the "check-psymtabs" command: it verifies
// the structural invariants of the built psymtab index (text-range
// ordering, sorted global psymbols, dependency ordering) and reports any
// violation found.
func newCheckPsymtabsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-psymtabs",
		Short: "Verify psymtab invariants against the built index",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, facade, err := buildIndex(objfile)
			if err != nil {
				return err
			}

			violations := checkInvariants(facade.Storage)
			for _, v := range violations {
				fmt.Fprintln(os.Stderr, v)
			}
			fmt.Printf("%d psymtabs checked, %d violation(s)\n", len(facade.Storage.Range()), len(violations))
			if len(violations) > 0 {
				os.Exit(1)
			}
			return nil
		},
	}
}

func checkInvariants(storage *psymtab.PsymtabStorage) []string {
	var violations []string

	index := make(map[*psymtab.Psymtab]int)
	for i, pst := range storage.Range() {
		index[pst] = i
	}

	for _, pst := range storage.Range() {
		low, lowOK := pst.TextLow()
		high, highOK := pst.TextHigh()
		if lowOK && highOK && low > high {
			violations = append(violations, fmt.Sprintf("%s: text_low %#x > text_high %#x", pst.Filename, low, high))
		}

		for i := 0; i+1 < len(pst.GlobalPsymbols); i++ {
			if pst.GlobalPsymbols[i].SearchName() > pst.GlobalPsymbols[i+1].SearchName() {
				violations = append(violations, fmt.Sprintf("%s: global_psymbols not sorted at index %d", pst.Filename, i))
			}
		}

		for _, dep := range pst.Dependencies {
			depIdx, ok := index[dep]
			if !ok {
				violations = append(violations, fmt.Sprintf("%s: dependency %s not present in storage", pst.Filename, dep.Filename))
				continue
			}
			if depIdx >= index[pst] {
				violations = append(violations, fmt.Sprintf("%s: dependency %s does not precede it in creation order", pst.Filename, dep.Filename))
			}
		}
	}

	return violations
}
