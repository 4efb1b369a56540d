// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package stabs

import (
	"testing"

	"github.com/saferwall/symidx"
	"github.com/saferwall/symidx/objreader"
)

// stubObject is a minimal objreader.ObjectFile for driving the parser in
// isolation, with no real file behind it.
type stubObject struct {
	arch    objreader.Arch
	minsyms map[string]objreader.MinimalSymbol
}

func (s *stubObject) Sections() []objreader.Section        { return nil }
func (s *stubObject) SectionOffset(int) uint64              { return 0 }
func (s *stubObject) TextSectionOffset() uint64              { return 0 }
func (s *stubObject) Arch() objreader.Arch                   { return s.arch }
func (s *stubObject) SymbolLeadingChar() byte                { return 0 }
func (s *stubObject) Bytes(string) ([]byte, bool)            { return nil, false }
func (s *stubObject) LookupMinimalSymbol(name string, filename *string) (objreader.MinimalSymbol, bool) {
	ms, ok := s.minsyms[name]
	return ms, ok
}

func newParser(arch objreader.Arch) (*Parser, *psymtab.PsymtabStorage, *psymtab.Builder) {
	storage := psymtab.NewPsymtabStorage()
	builder := psymtab.NewBuilder(storage)
	p := &Parser{
		Object:  &stubObject{arch: arch},
		Builder: builder,
		Options: Options{Arch: arch},
	}
	return p, storage, builder
}

func strtabOf(names ...string) ([]byte, map[string]uint32) {
	var buf []byte
	offsets := make(map[string]uint32)
	buf = append(buf, 0) // offset 0 is reserved / empty name
	for _, n := range names {
		offsets[n] = uint32(len(buf))
		buf = append(buf, []byte(n)...)
		buf = append(buf, 0)
	}
	return buf, offsets
}

func TestDirectoryPairScenario(t *testing.T) {
	p, storage, builder := newParser(objreader.Arch{})

	strtab, off := strtabOf("proj/src/", "main.c", "main:F0")
	records := []Nlist{
		{Strx: off["proj/src/"], Type: NSo, Value: 0},
		{Strx: off["main.c"], Type: NSo, Value: 0x1000},
		{Strx: off["main:F0"], Type: NFun, Value: 0x1000},
		{Strx: 0, Type: NSo, Value: 0x2000},
	}

	if err := p.Parse(records, strtab); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	builder.Commit()

	var pst *psymtab.Psymtab
	for _, x := range storage.Range() {
		if x.Filename == "main.c" {
			pst = x
		}
	}
	if pst == nil {
		t.Fatalf("no psymtab named main.c produced")
	}
	if pst.Dirname == nil || *pst.Dirname != "proj/src/" {
		t.Fatalf("dirname = %v, want proj/src/", pst.Dirname)
	}
	low, ok := pst.TextLow()
	if !ok || low != 0x1000 {
		t.Fatalf("text_low = %#x (ok=%v), want 0x1000", low, ok)
	}
	if len(pst.GlobalPsymbols) != 1 || pst.GlobalPsymbols[0].SearchName() != "main" {
		t.Fatalf("global psyms = %v, want [main]", pst.GlobalPsymbols)
	}
	if pst.GlobalPsymbols[0].Class != psymtab.ClassBlock {
		t.Fatalf("main's class = %v, want ClassBlock", pst.GlobalPsymbols[0].Class)
	}
}

func TestTwoUnitBinclExclDependency(t *testing.T) {
	p, storage, builder := newParser(objreader.Arch{})

	strtab, off := strtabOf("a.c", "h.h", "a:G0", "b.c", "b:G0")
	records := []Nlist{
		{Strx: off["a.c"], Type: NSo, Value: 0},
		{Strx: off["h.h"], Type: NBincl, Value: 7},
		{Strx: off["a:G0"], Type: NGsym, Value: 0},
		{Strx: 0, Type: NSo, Value: 0},

		{Strx: off["b.c"], Type: NSo, Value: 0},
		{Strx: off["h.h"], Type: NExcl, Value: 7},
		{Strx: off["b:G0"], Type: NGsym, Value: 0},
		{Strx: 0, Type: NSo, Value: 0},
	}

	if err := p.Parse(records, strtab); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	builder.Commit()

	var a, b *psymtab.Psymtab
	for _, x := range storage.Range() {
		switch x.Filename {
		case "a.c":
			a = x
		case "b.c":
			b = x
		}
	}
	if a == nil || b == nil {
		t.Fatalf("expected psymtabs a.c and b.c, got %d psymtabs", len(storage.Range()))
	}
	found := false
	for _, dep := range b.Dependencies {
		if dep == a {
			found = true
		}
	}
	if !found {
		t.Fatalf("b.c should depend on a.c via the N_BINCL/N_EXCL chain")
	}
}

func TestEnumConstantsScenario(t *testing.T) {
	p, storage, builder := newParser(objreader.Arch{})

	strtab, off := strtabOf("u.c", "Color:T12=eRED:0,GREEN:1,BLUE:2,;")
	records := []Nlist{
		{Strx: off["u.c"], Type: NSo, Value: 0x1000},
		{Strx: off["Color:T12=eRED:0,GREEN:1,BLUE:2,;"], Type: NLsym, Value: 0},
	}

	if err := p.Parse(records, strtab); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	builder.Commit()

	var pst *psymtab.Psymtab
	for _, x := range storage.Range() {
		if x.Filename == "u.c" {
			pst = x
		}
	}
	if pst == nil {
		t.Fatalf("no psymtab produced")
	}

	names := map[string]bool{}
	for _, s := range pst.StaticPsymbols {
		names[s.SearchName()] = true
	}
	for _, want := range []string{"Color", "RED", "GREEN", "BLUE"} {
		if !names[want] {
			t.Errorf("missing expected static psym %q, got %v", want, names)
		}
	}
}

func TestNameContinuation(t *testing.T) {
	p, storage, builder := newParser(objreader.Arch{})

	strtab, off := strtabOf("u.c", `verylongname\`, "continued:G0")
	records := []Nlist{
		{Strx: off["u.c"], Type: NSo, Value: 0},
		{Strx: off[`verylongname\`], Type: NGsym, Value: 0},
		{Strx: off["continued:G0"], Type: NUndf, Value: 0},
	}

	if err := p.Parse(records, strtab); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	builder.Commit()

	var pst *psymtab.Psymtab
	for _, x := range storage.Range() {
		if x.Filename == "u.c" {
			pst = x
		}
	}
	if pst == nil || len(pst.GlobalPsymbols) != 1 {
		t.Fatalf("expected one global psym, got %v", pst)
	}
	if got := pst.GlobalPsymbols[0].SearchName(); got != "verylongnamecontinued" {
		t.Fatalf("continued name = %q, want verylongnamecontinued", got)
	}
}

func TestSolarisACCRelativeStrtab(t *testing.T) {
	arch := objreader.Arch{SolarisACC: true}
	p, storage, builder := newParser(arch)

	base, _ := strtabOf("unused")
	strtab, off := strtabOf("u.c", "a:G0")
	records := []Nlist{
		{Strx: 1, Type: NUndf, Value: uint64(len(base))},
		{Strx: off["u.c"], Type: NSo, Value: 0},
		{Strx: off["a:G0"], Type: NGsym, Value: 0},
	}
	combined := append(append([]byte{}, base...), strtab...)

	if err := p.Parse(records, combined); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	builder.Commit()

	var pst *psymtab.Psymtab
	for _, x := range storage.Range() {
		if x.Filename == "u.c" {
			pst = x
		}
	}
	if pst == nil || len(pst.GlobalPsymbols) != 1 || pst.GlobalPsymbols[0].SearchName() != "a" {
		t.Fatalf("expected global psym 'a' via relative-strtab shift, got %v", pst)
	}
}

func TestEmptyStabsSectionProducesNoPsymtabs(t *testing.T) {
	p, storage, builder := newParser(objreader.Arch{})
	if err := p.Parse(nil, nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	builder.Commit()
	if len(storage.Range()) != 0 {
		t.Fatalf("empty input should produce zero psymtabs, got %d", len(storage.Range()))
	}
}

func TestBadStringTableOffsetSubstitutesPlaceholder(t *testing.T) {
	p, storage, builder := newParser(objreader.Arch{})
	strtab, off := strtabOf("u.c")
	records := []Nlist{
		{Strx: off["u.c"], Type: NSo, Value: 0},
		{Strx: 9999, Type: NGsym, Value: 0},
	}
	if err := p.Parse(records, strtab); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	builder.Commit()
	if got := p.name(records[1]); got != "<bad string table offset>" {
		t.Fatalf("name of bad-offset record = %q, want <bad string table offset>", got)
	}
	// The bad-offset record has no colon in the placeholder text, so it
	// should simply be skipped rather than crashing the parser.
	_ = storage
}
