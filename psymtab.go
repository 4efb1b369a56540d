// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package psymtab

import "sort"

// SearchStatus is the transient flag psymtabs use during
// ExpandSymtabsMatching's walk.
type SearchStatus uint8

const (
	NotSearched SearchStatus = iota
	Found
	NotFound
)

// ReadSymtabPrivate is the reader-owned opaque locator stashed on a
// Psymtab. The core never looks inside it; only the format parser that
// created the psymtab interprets it when asked to expand.
type ReadSymtabPrivate interface{}

// CompUnitSymtab stands in for the full block/type/line-table tree that
// results from expanding a psymtab. Producing its contents is handled by
// the object-file reader's own expansion code; the core only stores and
// returns the opaque value the external expansion driver hands back.
type CompUnitSymtab struct {
	// Name is the primary source file name of the expanded unit, kept
	// here only so quick-symbol façade methods that must report a name
	// (find_last_source_symtab) have something to return without
	// reaching back into reader internals.
	Name string
}

// Psymtab is a partial symbol table: the index for one compilation unit,
// or a shared psymtab representing an included header.
type Psymtab struct {
	// Filename is the source filename, interned, never nil, may be "".
	Filename string

	// Fullname caches the resolved absolute path, or nil if unresolved.
	Fullname *string

	// Dirname is the optional compilation directory.
	Dirname *string

	textLow       uint64
	textHigh      uint64
	textLowValid  bool
	textHighValid bool

	// GlobalPsymbols is sorted by SearchName once End() runs.
	GlobalPsymbols []*Psym
	// StaticPsymbols has no ordering guarantee.
	StaticPsymbols []*Psym

	// Dependencies lists other psymtabs whose expansion must precede
	// this one's. Always points to earlier psymtabs of the same object
	// file.
	Dependencies []*Psymtab

	// User, if non-nil, names the single canonical includer of a shared
	// psymtab.
	User *Psymtab

	// Anonymous is true when Filename is a descriptive tag rather than
	// a real source file.
	Anonymous bool

	// SearchedFlag is transient scratch space for ExpandSymtabsMatching.
	SearchedFlag SearchStatus

	// Readin is true once this CU has been expanded into CompUnit.
	Readin bool
	// CompUnit is the result of expansion, or nil.
	CompUnit *CompUnitSymtab

	// Language is the psymtab's inferred source language, upgraded
	// monotonically as more N_SO/N_SOL/N_BINCL records are seen.
	Language Language

	// ReadSymtabPrivate is the reader-owned locator used to drive
	// expansion (offsets, sizes); opaque to the core.
	ReadSymtabPrivate ReadSymtabPrivate

	// HasLineNumbers records whether any N_SLINE-equivalent record was
	// seen; an otherwise-empty psymtab with line numbers is still kept.
	HasLineNumbers bool

	// LdSymOffset is the offset into the symbol table at which this
	// psymtab's records begin (passed to Start, used by readers to
	// locate their slice of the symbol stream on expansion).
	LdSymOffset int

	// SymOffsetEnd is the capping symbol-table offset passed to End,
	// one past this psymtab's last record.
	SymOffsetEnd int

	// includes holds the header filenames recorded via RecordInclude,
	// consumed by Builder.End to create one shared sub-psymtab per name.
	includes []string
}

// TextLow returns the unrelocated low text address and whether it is
// valid.
func (p *Psymtab) TextLow() (uint64, bool) { return p.textLow, p.textLowValid }

// TextHigh returns the unrelocated high text address and whether it is
// valid.
func (p *Psymtab) TextHigh() (uint64, bool) { return p.textHigh, p.textHighValid }

// SetTextLow sets the unrelocated low text address and marks it valid.
// Callers must never leave text_low > text_high once both are valid.
func (p *Psymtab) SetTextLow(addr uint64) {
	p.textLow = addr
	p.textLowValid = true
}

// SetTextHigh sets the unrelocated high text address and marks it valid.
// It never shrinks an existing range: a lower value is ignored once a
// valid high is already set.
func (p *Psymtab) SetTextHigh(addr uint64) {
	if p.textHighValid && addr < p.textHigh {
		return
	}
	p.textHigh = addr
	p.textHighValid = true
}

// Empty reports whether both psym lists are empty. A psymtab may still be
// retained despite being Empty() if it has dependencies or line numbers.
func (p *Psymtab) Empty() bool {
	return len(p.GlobalPsymbols) == 0 && len(p.StaticPsymbols) == 0
}

// AddDependency pushes other onto p's Dependencies idempotently, for
// callers (such as the mdebug cross-FDR resolution pass) that operate on
// a specific psymtab rather than the Builder's Current one.
// Self-dependencies are silently ignored.
func (p *Psymtab) AddDependency(other *Psymtab) {
	p.addDependency(other)
}

// addDependency pushes other onto Dependencies idempotently.
// Self-dependencies are silently ignored.
func (p *Psymtab) addDependency(other *Psymtab) {
	if other == nil || other == p {
		return
	}
	for _, d := range p.Dependencies {
		if d == other {
			return
		}
	}
	p.Dependencies = append(p.Dependencies, other)
}

// sortGlobals sorts GlobalPsymbols by the ordered-by-search-name compare,
// called once from End().
func (p *Psymtab) sortGlobals() {
	sort.Slice(p.GlobalPsymbols, func(i, j int) bool {
		return orderedCompare(p.GlobalPsymbols[i].SearchName(), p.GlobalPsymbols[j].SearchName()) < 0
	})
}

// shrink trims slice capacity to length, GDB's "psymtab's vectors are
// shrunk" post-condition of end_psymtab_common().
func (p *Psymtab) shrink() {
	if len(p.GlobalPsymbols) > 0 {
		g := make([]*Psym, len(p.GlobalPsymbols))
		copy(g, p.GlobalPsymbols)
		p.GlobalPsymbols = g
	}
	if len(p.StaticPsymbols) > 0 {
		s := make([]*Psym, len(p.StaticPsymbols))
		copy(s, p.StaticPsymbols)
		p.StaticPsymbols = s
	}
}
