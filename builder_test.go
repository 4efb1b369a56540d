// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package psymtab

import "testing"

func TestBuilderDirectoryPair(t *testing.T) {
	storage := NewPsymtabStorage()
	b := NewBuilder(storage)

	b.Start("proj/src/", 0, false, 0)
	// A two-N_SO pair folds the directory into the next Start call in
	// the stabs reader; here we exercise the psymtab-level contract
	// directly: Start for the real file, then manually assign Dirname.
	b.End(0, 0, false, false)

	pst := b.Start("main.c", 0x1000, true, 0)
	pst.Dirname = strPtr("proj/src/")
	b.AddGlobal("main", VarDomain, ClassBlock, 0, 0x1000, LanguageC)
	b.End(1, 0x2000, false, false)
	b.Commit()

	found := false
	for _, p := range storage.Range() {
		if p.Filename != "main.c" {
			continue
		}
		found = true
		if p.Dirname == nil || *p.Dirname != "proj/src/" {
			t.Errorf("dirname = %v, want proj/src/", p.Dirname)
		}
		low, ok := p.TextLow()
		if !ok || low != 0x1000 {
			t.Errorf("text_low = %#x (ok=%v), want 0x1000", low, ok)
		}
		if len(p.GlobalPsymbols) != 1 || p.GlobalPsymbols[0].SearchName() != "main" {
			t.Errorf("global psyms = %v, want [main]", p.GlobalPsymbols)
		}
	}
	if !found {
		t.Fatalf("no psymtab named main.c in storage")
	}
}

func strPtr(s string) *string { return &s }

func TestBuilderTwoUnitDependency(t *testing.T) {
	storage := NewPsymtabStorage()
	b := NewBuilder(storage)

	b.Start("a.c", 0, false, 0)
	b.RecordBincl("h.h", 7)
	b.AddGlobal("a", VarDomain, ClassStatic, 0, 0, LanguageC)
	b.End(1, 0, true, false)

	bpst := b.Start("b.c", 0, false, 0)
	dep, ok := b.FindBincl("h.h", 7)
	if !ok {
		t.Fatalf("FindBincl(h.h, 7) = not found, want found")
	}
	b.AddDependency(dep)
	b.AddGlobal("b", VarDomain, ClassStatic, 0, 0, LanguageC)
	b.End(2, 0, true, false)
	b.Commit()

	if len(bpst.Dependencies) != 1 {
		t.Fatalf("b.c dependencies = %d, want 1", len(bpst.Dependencies))
	}

	expander := &countingExpander{results: map[*Psymtab]*CompUnitSymtab{}}
	facade := NewFacade(storage, expander)

	if _, err := facade.LookupSymbol(SearchGlobalBlock, "a", VarDomain); err != nil {
		t.Fatalf("lookup a: %v", err)
	}
	if expander.count != 1 {
		t.Fatalf("expanding a.c should not expand b.c; expand count = %d, want 1", expander.count)
	}

	if _, err := facade.LookupSymbol(SearchGlobalBlock, "b", VarDomain); err != nil {
		t.Fatalf("lookup b: %v", err)
	}
	if expander.count != 2 {
		t.Fatalf("expanding b.c should expand only b.c (a.c is already read in); expand count = %d, want 2", expander.count)
	}
}

type countingExpander struct {
	count   int
	results map[*Psymtab]*CompUnitSymtab
}

func (c *countingExpander) ExpandPsymtab(pst *Psymtab) (*CompUnitSymtab, error) {
	c.count++
	cu := &CompUnitSymtab{Name: pst.Filename}
	c.results[pst] = cu
	return cu, nil
}

func TestEndDiscardsEmptyPsymtab(t *testing.T) {
	storage := NewPsymtabStorage()
	b := NewBuilder(storage)

	b.Start("empty.c", 0, false, 0)
	b.End(0, 0, false, false)
	b.Commit()

	for _, p := range storage.Range() {
		if p.Filename == "empty.c" {
			t.Fatalf("empty psymtab with no globals/statics/deps/lines should be discarded")
		}
	}
}

func TestEndKeepsEmptyPsymtabWithLineNumbers(t *testing.T) {
	storage := NewPsymtabStorage()
	b := NewBuilder(storage)

	b.Start("lines.c", 0, false, 0)
	b.End(0, 0, false, true)
	b.Commit()

	found := false
	for _, p := range storage.Range() {
		if p.Filename == "lines.c" {
			found = true
		}
	}
	if !found {
		t.Fatalf("psymtab with has_line_numbers should be retained even when empty")
	}
}

func TestAbortDiscardsAllInstalledPsymtabs(t *testing.T) {
	storage := NewPsymtabStorage()
	b := NewBuilder(storage)

	b.Start("a.c", 0, false, 0)
	b.AddGlobal("a", VarDomain, ClassStatic, 0, 0, LanguageC)
	b.End(1, 0, true, false)
	b.Abort()

	if len(storage.Range()) != 0 {
		t.Fatalf("Abort should discard every psymtab installed since NewBuilder, got %d remaining", len(storage.Range()))
	}
}
