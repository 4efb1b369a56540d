// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package psymtab

import "github.com/ianlancetaylor/demangle"

// Domain classifies the namespace a psym's name lives in.
type Domain uint8

const (
	// UndefDomain is used for symbols whose namespace is not yet known.
	UndefDomain Domain = iota

	// VarDomain holds variables, functions, typedefs and enum constants.
	VarDomain

	// StructDomain holds struct/union/enum/class tags.
	StructDomain

	// ModuleDomain holds Fortran/Modula module names.
	ModuleDomain

	// LabelDomain holds goto labels.
	LabelDomain

	// CommonBlockDomain holds Fortran COMMON block names.
	CommonBlockDomain
)

// String implements fmt.Stringer for diagnostics and dump output.
func (d Domain) String() string {
	switch d {
	case VarDomain:
		return "VAR_DOMAIN"
	case StructDomain:
		return "STRUCT_DOMAIN"
	case ModuleDomain:
		return "MODULE_DOMAIN"
	case LabelDomain:
		return "LABEL_DOMAIN"
	case CommonBlockDomain:
		return "COMMON_BLOCK_DOMAIN"
	default:
		return "UNDEF_DOMAIN"
	}
}

// AddressClass classifies how a psym's address/value field is to be
// interpreted.
type AddressClass uint8

const (
	// ClassUndef means the class has not been determined.
	ClassUndef AddressClass = iota
	// ClassConst is a constant whose value is in the psym itself.
	ClassConst
	// ClassStatic is a static variable/function, address is in Address.
	ClassStatic
	// ClassRegister lives in a register; Address holds the register number.
	ClassRegister
	// ClassArg is a function argument on the stack.
	ClassArg
	// ClassRefArg is a reference argument.
	ClassRefArg
	// ClassLocal is a local (stack) variable.
	ClassLocal
	// ClassTypedef is a typedef or struct/union/enum tag.
	ClassTypedef
	// ClassLabel is a code label.
	ClassLabel
	// ClassBlock is a function; Address is the entry address.
	ClassBlock
	// ClassConstBytes is a constant whose value is an out-of-line byte blob.
	ClassConstBytes
	// ClassUnresolved could not be resolved at psymtab-build time.
	ClassUnresolved
	// ClassOptimizedOut was optimized away; no location is available.
	ClassOptimizedOut
	// ClassComputed requires a location expression to evaluate.
	ClassComputed
	// ClassCommonBlock is a Fortran COMMON block.
	ClassCommonBlock
	// ClassRegparmAddr is the address of a register-passed parameter,
	// spilled to the stack.
	ClassRegparmAddr
)

// Language tags the source language a psymtab or psym originates from.
// Inference is monotonic: once upgraded from C to C++ it is never
// downgraded.
type Language uint8

const (
	LanguageUnknown Language = iota
	LanguageC
	LanguageCPlusPlus
	LanguageFortran
	LanguageObjC
	LanguageAsm
	LanguageOpenCL
)

// String implements fmt.Stringer.
func (l Language) String() string {
	switch l {
	case LanguageC:
		return "c"
	case LanguageCPlusPlus:
		return "c++"
	case LanguageFortran:
		return "fortran"
	case LanguageObjC:
		return "objc"
	case LanguageAsm:
		return "asm"
	case LanguageOpenCL:
		return "opencl"
	default:
		return "unknown"
	}
}

// rank gives the monotonic-upgrade ordering: a psymtab's language may
// only move to a strictly higher rank.
func (l Language) rank() int {
	switch l {
	case LanguageCPlusPlus:
		return 2
	case LanguageC, LanguageFortran, LanguageObjC, LanguageAsm, LanguageOpenCL:
		return 1
	default:
		return 0
	}
}

// Upgrade returns the language that results from learning that a
// compilation unit also contains next. It never downgrades C++ to C.
func (l Language) Upgrade(next Language) Language {
	if next.rank() > l.rank() {
		return next
	}
	return l
}

// Psym is a partial symbol: a compact, deduplicated summary of one
// externally observable name found in a compilation unit before full
// parsing. Instances are produced only through a PsymbolBcache, which
// guarantees the value-equality/dedup contract.
type Psym struct {
	// LinkageName is the interned mangled/link-time name.
	LinkageName *string
	// Natural is the interned demangled/natural name. Equal to
	// LinkageName for languages without name mangling.
	Natural *string
	Language Language
	Domain   Domain
	Class    AddressClass
	// Address is unrelocated; callers add the enclosing object file's
	// section offset to obtain a runtime address.
	Address uint64
	// Section indexes into the owning object file's section table.
	Section int
}

// SearchName returns the name psymtabs sort and binary-search on: the
// natural name when present, else the linkage name.
func (p *Psym) SearchName() string {
	if p.Natural != nil && *p.Natural != "" {
		return *p.Natural
	}
	if p.LinkageName != nil {
		return *p.LinkageName
	}
	return ""
}

// NaturalName computes the natural/demangled form of a linkage name for
// the given language. For C++ this defers to demangle.Filter, which
// returns the input unchanged when it does not look mangled.
func NaturalName(linkageName string, lang Language) string {
	if lang != LanguageCPlusPlus {
		return linkageName
	}
	return demangle.Filter(linkageName)
}

// orderedCompare is the language-independent ordered compare on search
// names used to sort a psymtab's global psymbols and to binary search
// them. It is a case-sensitive lexicographic byte comparison; stab and
// ECOFF names are ASCII, so no further canonicalization is needed.
func orderedCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
