// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package objreader defines the narrow contract the partial-symbol
// indexing core expects from a host object-file reader, plus one
// concrete mmap-backed implementation good enough to drive the stabs
// and mdebug parsers against real ELF files (it does not read a.out or
// COFF containers).
package objreader

// Arch captures the few architecture facts the stabs/mdebug parsers
// need, mirroring the handful of gdbarch hooks those readers consult.
type Arch struct {
	// PointerWidth is the pointer size in bytes (4 or 8), used to decide
	// sign-extension of n_value in some stabs readers.
	PointerWidth int

	// SofunAddressMaybeMissing is true for compilers that emit
	// zero-valued N_SO/function-relative stabs in some ELF toolchains.
	SofunAddressMaybeMissing bool

	// SolarisACC enables the relative-string-table support for Solaris
	// ACC's N_UNDF convention.
	SolarisACC bool

	// Solaris2 enables N_ENDM-closes-psymtab handling for Solaris 2
	// module boundaries.
	Solaris2 bool
}

// AddrBitsRemove masks off any tagging bits the architecture stuffs into
// an address. The generic implementation is the identity function;
// specific architectures (e.g. ARM Thumb bit) can wrap an Arch value to
// override it.
func (a Arch) AddrBitsRemove(addr uint64) uint64 { return addr }

// Section describes one section of the underlying object file, enough
// for the parsers to compute relocated addresses and identify text vs.
// data/bss.
type Section struct {
	Name   string
	Index  int
	Offset uint64 // address delta applied to unrelocated addresses
	Kind   SectionKind
}

// SectionKind classifies a Section for minimal-symbol kind inference.
type SectionKind uint8

const (
	SectionUnknown SectionKind = iota
	SectionText
	SectionData
	SectionBSS
	SectionAbs
)

// ObjectFile is the host's view of one loaded object file. A format
// parser is handed one of these plus its raw debug-info bytes; it never
// opens or relocates files itself.
type ObjectFile interface {
	// Sections returns every section in file order.
	Sections() []Section

	// SectionOffset returns the address delta to add to an unrelocated
	// address found in section sectIndex.
	SectionOffset(sectIndex int) uint64

	// TextSectionOffset is the offset of the primary text section,
	// used as the default relocation for function addresses.
	TextSectionOffset() uint64

	// Arch returns the architecture facts governing parsing decisions.
	Arch() Arch

	// SymbolLeadingChar is the character (commonly '_' or 0) that a.out/
	// COFF linkers prepend to C linkage names on this platform.
	SymbolLeadingChar() byte

	// Bytes returns the raw content of the named section, or false if it
	// is absent. Format parsers use this to fetch .stab/.stabstr or
	// .mdebug section contents.
	Bytes(sectionName string) ([]byte, bool)

	// LookupMinimalSymbol resolves name (optionally qualified by
	// filename, for file-static disambiguation) to a minimal symbol, used
	// to fix up function addresses during parsing.
	LookupMinimalSymbol(name string, filename *string) (MinimalSymbol, bool)
}
