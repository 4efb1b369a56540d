// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package psymtab

import "testing"

type stubExpander struct{ calls int }

func (s *stubExpander) ExpandPsymtab(pst *Psymtab) (*CompUnitSymtab, error) {
	s.calls++
	return &CompUnitSymtab{Name: pst.Filename}, nil
}

func TestFindPCSectPsymtabRefinement(t *testing.T) {
	storage := NewPsymtabStorage()
	b := NewBuilder(storage)

	b.Start("a.c", 0x1000, true, 0)
	b.AddGlobal("foo", VarDomain, ClassBlock, 0, 0x1100, LanguageC)
	b.End(1, 0x1200, false, false)

	b.Start("b.c", 0x1000, true, 0)
	b.AddGlobal("bar", VarDomain, ClassBlock, 0, 0x1050, LanguageC)
	b.End(2, 0x1500, false, false)

	b.Commit()

	facade := NewFacade(storage, &stubExpander{})
	pst := facade.FindPCSectPsymtab(0x1100, 0x1100)
	if pst == nil || pst.Filename != "a.c" {
		got := "nil"
		if pst != nil {
			got = pst.Filename
		}
		t.Fatalf("FindPCSectPsymtab = %s, want a.c", got)
	}
}

func TestLookupGlobalSymbolLanguageNoExpansion(t *testing.T) {
	storage := NewPsymtabStorage()
	b := NewBuilder(storage)
	b.Start("a.cpp", 0, false, 0)
	b.AddGlobal("foo", VarDomain, ClassStatic, 0, 0, LanguageCPlusPlus)
	b.End(1, 0, true, false)
	b.Commit()

	expander := &stubExpander{}
	facade := NewFacade(storage, expander)

	lang, ok := facade.LookupGlobalSymbolLanguage("foo", VarDomain)
	if !ok || lang != LanguageCPlusPlus {
		t.Fatalf("LookupGlobalSymbolLanguage = (%v, %v), want (c++, true)", lang, ok)
	}
	if expander.calls != 0 {
		t.Fatalf("LookupGlobalSymbolLanguage must not expand any psymtab, got %d calls", expander.calls)
	}
}

func TestExpandSymtabsMatchingFilterAndNotify(t *testing.T) {
	storage := NewPsymtabStorage()
	b := NewBuilder(storage)
	b.Start("a.c", 0, false, 0)
	b.AddGlobal("foo", VarDomain, ClassStatic, 0, 0, LanguageC)
	b.End(1, 0, true, false)
	b.Start("b.c", 0, false, 0)
	b.AddGlobal("bar", VarDomain, ClassStatic, 0, 0, LanguageC)
	b.End(2, 0, true, false)
	b.Commit()

	expander := &stubExpander{}
	facade := NewFacade(storage, expander)

	var seen []string
	err := facade.ExpandSymtabsMatching(
		func(filename string, basenameOnly bool) bool { return filename == "a.c" },
		nil,
		func(cu *CompUnitSymtab) bool {
			seen = append(seen, cu.Name)
			return true
		},
		SearchGlobalBlock,
		UndefDomain,
	)
	if err != nil {
		t.Fatalf("ExpandSymtabsMatching error: %v", err)
	}
	if len(seen) != 1 || seen[0] != "a.c" {
		t.Fatalf("notified = %v, want [a.c]", seen)
	}
}

func TestHasSymbolsAndUnexpanded(t *testing.T) {
	storage := NewPsymtabStorage()
	facade := NewFacade(storage, &stubExpander{})
	if facade.HasSymbols() {
		t.Fatalf("HasSymbols on empty storage = true, want false")
	}

	b := NewBuilder(storage)
	b.Start("a.c", 0, false, 0)
	b.AddGlobal("foo", VarDomain, ClassStatic, 0, 0, LanguageC)
	b.End(1, 0, true, false)
	b.Commit()

	if !facade.HasSymbols() {
		t.Fatalf("HasSymbols = false, want true")
	}
	if !facade.HasUnexpandedSymtabs() {
		t.Fatalf("HasUnexpandedSymtabs = false, want true")
	}
}
