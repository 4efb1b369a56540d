// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/saferwall/symidx"
)

func printOnePsymtab(out io.Writer, pst *psymtab.Psymtab) {
	dir := ""
	if pst.Dirname != nil {
		dir = *pst.Dirname
	}
	low, lowOK := pst.TextLow()
	high, highOK := pst.TextHigh()
	fmt.Fprintf(out, "psymtab %s (dir=%q text=[%#x,%#x) low_ok=%v high_ok=%v readin=%v)\n",
		pst.Filename, dir, low, high, lowOK, highOK, pst.Readin)
	for _, p := range pst.GlobalPsymbols {
		fmt.Fprintf(out, "  [global] %-8s %-24s %#x\n", p.Domain, p.SearchName(), p.Address)
	}
	for _, p := range pst.StaticPsymbols {
		fmt.Fprintf(out, "  [static] %-8s %-24s %#x\n", p.Domain, p.SearchName(), p.Address)
	}
}

func printAllPsymtabs(out io.Writer, facade *psymtab.Facade, sourceFilter string) {
	for _, pst := range facade.Storage.Range() {
		if sourceFilter != "" && !strings.Contains(pst.Filename, sourceFilter) {
			continue
		}
		printOnePsymtab(out, pst)
	}
}
