// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package mdebug implements a parser for the structured ECOFF/.mdebug
// debug-info format used by MIPS and Alpha toolchains, following the
// layout GDB's mdebugread.c decodes.
package mdebug

// StorageClass is the ECOFF symbol storage class (sc field), a narrow
// subset of the sc* enumeration in mdebugread.c relevant to psymtab
// construction.
type StorageClass uint8

const (
	ScUndefined StorageClass = iota
	ScText
	ScData
	ScBss
	ScRData
	ScSData
	ScPData
	ScXData
	ScSBss
	ScInfo
	ScCommon
	ScSCommon
	ScAbs
)

// SymbolType is the ECOFF st field.
type SymbolType uint8

const (
	StNil SymbolType = iota
	StGlobal
	StStatic
	StParam
	StLocal
	StLabel
	StProc
	StBlock
	StEnd
	StMember
	StTypedef
	StFile
	StStaticProc
	StConstant
	StStruct
	StUnion
	StEnum
	StIndirect
)

// Aux is one auxiliary table entry: a 32-bit word whose interpretation
// (type-index, relative-fd reference, dimension, ...) is determined by
// the symbol record that points at it.
type Aux struct {
	Value uint32
}

// Symbol is one local or external ECOFF symbol record (SYMR).
type Symbol struct {
	Name    string
	Value   uint64
	St      SymbolType
	Sc      StorageClass
	Index   int // index into the owning FDR's aux table, or isymStart-relative for globals
	IfdNull bool
}

// TypeRef describes one aux entry interpreted as a type reference: an
// index into the owning FDR's local symbols plus a relative-FDR number
// (rfd). rfd == -1 denotes an opaque cross reference to an unknown FDR.
type TypeRef struct {
	Rfd   int
	Index int
}

// FDR is a File Descriptor Record: one compilation unit's worth of
// local symbols, its own string table, and its list of cross-FDR
// dependencies.
type FDR struct {
	Name        string
	Bigendian   bool
	Locals      []Symbol
	Aux         []Aux
	CrossFDRefs []int // crfd entries, relative FDR indices this FDR depends on

	// IsStabs is true when the second local symbol is the sentinel
	// "@stabs" name, switching this FDR into stabs-in-ECOFF mode.
	IsStabs bool
}

// External is one external ECOFF symbol record plus the FDR index (ifd)
// it was bucketed under during pass 1.
type External struct {
	Symbol
	Ifd int
}

// StabsInECOFFSentinel is the well-known second-local-symbol name that
// marks an FDR as carrying stabs records instead of native ECOFF local
// symbols.
const StabsInECOFFSentinel = "@stabs"

func (f *FDR) hasStabsSentinel() bool {
	return len(f.Locals) > 1 && f.Locals[1].Name == StabsInECOFFSentinel
}
