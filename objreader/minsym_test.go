// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package objreader

import "testing"

func TestMinimalSymbolTableRecordAndLookup(t *testing.T) {
	tbl := NewMinimalSymbolTable()
	tbl.Record("_Z3fooi", 0x1000, 1, MinSymText)

	byLinkage := tbl.Lookup("_Z3fooi")
	if len(byLinkage) != 1 || byLinkage[0].Address != 0x1000 {
		t.Fatalf("Lookup by linkage name = %v, want one entry at 0x1000", byLinkage)
	}

	byDemangled := tbl.LookupDemangled("foo(int)")
	if len(byDemangled) != 1 || byDemangled[0].Name != "_Z3fooi" {
		t.Fatalf("LookupDemangled = %v, want the same record keyed by its demangled form", byDemangled)
	}
}

func TestMinimalSymbolTableLookupDemangledFallsBackToPlainName(t *testing.T) {
	tbl := NewMinimalSymbolTable()
	tbl.Record("plain_c_name", 0x2000, 0, MinSymData)

	// A name that was never mangled has Demangled == Name, so it is never
	// indexed under byDemangled; LookupDemangled must still find it via
	// the byName fallback.
	got := tbl.LookupDemangled("plain_c_name")
	if len(got) != 1 || got[0].Address != 0x2000 {
		t.Fatalf("LookupDemangled fallback = %v, want one entry at 0x2000", got)
	}
}

func TestMinimalSymbolTableAllPreservesInsertionOrder(t *testing.T) {
	tbl := NewMinimalSymbolTable()
	tbl.Record("a", 1, 0, MinSymText)
	tbl.Record("b", 2, 0, MinSymData)
	tbl.Record("c", 3, 0, MinSymBSS)

	all := tbl.All()
	if len(all) != 3 || all[0].Name != "a" || all[1].Name != "b" || all[2].Name != "c" {
		t.Fatalf("All() = %v, want [a b c] in insertion order", all)
	}
}

func TestMinimalSymbolTableDuplicateNamesAccumulate(t *testing.T) {
	tbl := NewMinimalSymbolTable()
	tbl.Record("dup", 1, 0, MinSymText)
	tbl.Record("dup", 2, 1, MinSymData)

	got := tbl.Lookup("dup")
	if len(got) != 2 {
		t.Fatalf("Lookup(dup) = %d entries, want 2 (same name in different sections)", len(got))
	}
}
