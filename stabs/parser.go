// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package stabs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/saferwall/symidx"
	"github.com/saferwall/symidx/log"
	"github.com/saferwall/symidx/objreader"
)

// MaxStringTableSize bounds a declared string-table size against a
// corrupt/hostile length field.
const MaxStringTableSize = 256 << 20

// Options carries the per-build knobs the stabs parser needs from the
// host object file beyond the plain objreader.Arch facts.
type Options struct {
	Arch objreader.Arch
}

// Parser converts one object file's .stab/.stabstr section pair into
// psymtab events against Builder, following the pass structure of GDB's
// dbxread.c (read_dbx_symtab).
type Parser struct {
	Object   objreader.ObjectFile
	Builder  *psymtab.Builder
	MinSyms  *objreader.MinimalSymbolTable
	Complain *psymtab.Complainer
	Options  Options
	Logger   *log.Helper

	strtab    []byte
	strtabAdj uint64 // Solaris ACC relative-strtab base shift

	records []Nlist
	pos     int
}

// Parse drives the full record dispatch table. strtab is the raw
// .stabstr content; records is the decoded .stab section.
func (p *Parser) Parse(records []Nlist, strtab []byte) error {
	if len(strtab) > MaxStringTableSize {
		return fmt.Errorf("%w: stabstr section is %d bytes", psymtab.ErrStringTableTooLarge, len(strtab))
	}
	p.records = records
	p.strtab = strtab
	p.strtabAdj = 0

	for p.pos = 0; p.pos < len(p.records); p.pos++ {
		if err := p.dispatch(p.records[p.pos]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) name(n Nlist) string {
	strx := n.Strx
	if p.strtabAdj != 0 {
		strx += uint32(p.strtabAdj)
	}
	if int(strx) >= len(p.strtab) {
		p.complain("bad-strtab-offset", "stab string offset %d is beyond string table of size %d", strx, len(p.strtab))
		return "<bad string table offset>"
	}
	end := strx
	for int(end) < len(p.strtab) && p.strtab[end] != 0 {
		end++
	}
	return string(p.strtab[strx:end])
}

func (p *Parser) complain(kind, format string, args ...interface{}) {
	if p.Complain != nil {
		p.Complain.Complain(kind, format, args...)
	}
}

func (p *Parser) sectionOffset(idx int) uint64 {
	return p.Object.SectionOffset(idx)
}

// dispatch implements the stab-type table.
func (p *Parser) dispatch(n Nlist) error {
	name := p.name(n)

	switch n.Type {
	case NText | NExt, NData | NExt, NBss | NExt, NAbs | NExt, NSetV | NExt:
		p.recordMinimalSymbolExternal(n, name)
		return nil

	case NText, NData, NBss, NFn, NFnSeq, NNbtext:
		if isLibOrObjectSuffix(name) {
			p.closeCurrentPsymtab(n)
			return nil
		}
		p.recordMinimalSymbolLocal(n, name)
		return nil

	case NUndf:
		if p.Options.Arch.SolarisACC && n.Strx == 1 {
			p.strtabAdj = n.Value
		}
		return nil

	case NSo:
		return p.handleSO(n, name)

	case NSol:
		p.handleSOL(name)
		return nil

	case NBincl:
		p.handleBINCL(n, name)
		return nil

	case NExcl:
		p.handleEXCL(n, name)
		return nil

	case NSline:
		if p.Builder.Current != nil {
			p.Builder.Current.HasLineNumbers = true
		}
		return nil

	case NFun, NStsym, NLcsym, NRosym, NGsym, NLsym:
		return p.handleDescriptorRecord(n, name)

	case NEndm:
		if p.Options.Arch.Solaris2 && p.Builder.Current != nil {
			p.Builder.End(p.pos, n.Value, false, false)
		}
		return nil

	default:
		p.complain("unhandled-stab-type", "unhandled stab type 0x%x", n.Type)
		return nil
	}
}

// isLibOrObjectSuffix reports whether name looks like a "-llib" or ".o"
// linker-synthesized symbol, which closes the active psymtab instead of
// being recorded as a psym.
func isLibOrObjectSuffix(name string) bool {
	return strings.HasPrefix(name, "-l") || strings.HasSuffix(name, ".o")
}

func (p *Parser) minsymKindForSection(typ uint8) objreader.MinSymKind {
	switch typ &^ NExt {
	case NText:
		return objreader.MinSymText
	case NData:
		return objreader.MinSymData
	case NBss:
		return objreader.MinSymBSS
	case NAbs:
		return objreader.MinSymAbs
	default:
		return objreader.MinSymUnknown
	}
}

func (p *Parser) recordMinimalSymbolExternal(n Nlist, name string) {
	if p.MinSyms == nil || name == "" {
		return
	}
	kind := p.minsymKindForSection(n.Type)
	addr := n.Value + p.sectionOffset(int(n.Other))
	p.MinSyms.Record(name, addr, int(n.Other), kind)
}

func (p *Parser) recordMinimalSymbolLocal(n Nlist, name string) {
	if p.MinSyms == nil || name == "" {
		return
	}
	kind := p.minsymKindForSection(n.Type)
	switch kind {
	case objreader.MinSymText:
		kind = objreader.MinSymFileText
	case objreader.MinSymData:
		kind = objreader.MinSymFileData
	case objreader.MinSymBSS:
		kind = objreader.MinSymFileBSS
	}
	addr := n.Value + p.sectionOffset(int(n.Other))
	p.MinSyms.Record(name, addr, int(n.Other), kind)
}

func (p *Parser) closeCurrentPsymtab(n Nlist) {
	if p.Builder.Current == nil {
		return
	}
	p.Builder.End(p.pos, n.Value, false, false)
}

func (p *Parser) handleSO(n Nlist, name string) error {
	if name == "" {
		// An empty name closes the psymtab.
		if p.Builder.Current != nil {
			p.Builder.End(p.pos, n.Value, false, false)
		}
		return nil
	}

	if strings.HasSuffix(name, "/") && p.pos+1 < len(p.records) && p.records[p.pos+1].Type == NSo {
		// Directory half of a two-N_SO pair: fold it into the next
		// record instead of opening a psymtab for it.
		dir := name
		p.pos++
		fileN := p.records[p.pos]
		fileName := p.name(fileN)
		return p.startPsymtab(fileName, &dir, fileN)
	}

	return p.startPsymtab(name, nil, n)
}

func (p *Parser) startPsymtab(filename string, dirname *string, n Nlist) error {
	if p.Builder.Current != nil {
		p.Builder.End(p.pos, n.Value, false, false)
	}
	textLowValid := n.Value != 0 || !p.Options.Arch.SofunAddressMaybeMissing
	pst := p.Builder.Start(filename, n.Value, textLowValid, p.pos)
	if dirname != nil {
		d := *dirname
		pst.Dirname = &d
	}
	pst.Language = pst.Language.Upgrade(languageFromFilename(filename))
	return nil
}

func (p *Parser) handleSOL(name string) {
	if p.Builder.Current == nil {
		p.complain("sol-no-active-psymtab", "N_SOL %q seen with no active psymtab", name)
		return
	}
	p.Builder.RecordInclude(name)
	p.Builder.Current.Language = p.Builder.Current.Language.Upgrade(languageFromFilename(name))
}

func (p *Parser) handleBINCL(n Nlist, name string) {
	if p.Builder.Current == nil {
		// GDB complains and then dereferences a null psymtab anyway here;
		// this short-circuits instead of following it off the cliff.
		p.complain("bincl-no-active-psymtab", "N_BINCL %q seen with no active psymtab", name)
		return
	}
	p.Builder.RecordBincl(name, int(n.Value))
	p.Builder.Current.Language = p.Builder.Current.Language.Upgrade(languageFromFilename(name))
}

func (p *Parser) handleEXCL(n Nlist, name string) {
	if p.Builder.Current == nil {
		p.complain("excl-no-active-psymtab", "N_EXCL %q seen with no active psymtab", name)
		return
	}
	pst, ok := p.Builder.FindBincl(name, int(n.Value))
	if !ok {
		p.complain("excl-no-matching-bincl", "N_EXCL %q (instance %d) has no matching N_BINCL", name, n.Value)
		return
	}
	p.Builder.AddDependency(pst)
}

// languageFromFilename performs the filename-suffix language inference.
func languageFromFilename(name string) psymtab.Language {
	switch {
	case strings.HasSuffix(name, ".c"):
		return psymtab.LanguageC
	case strings.HasSuffix(name, ".cc"), strings.HasSuffix(name, ".cpp"),
		strings.HasSuffix(name, ".cxx"), strings.HasSuffix(name, ".C"):
		return psymtab.LanguageCPlusPlus
	case strings.HasSuffix(name, ".f"), strings.HasSuffix(name, ".f90"):
		return psymtab.LanguageFortran
	case strings.HasSuffix(name, ".m"):
		return psymtab.LanguageObjC
	case strings.HasSuffix(name, ".s"), strings.HasSuffix(name, ".S"):
		return psymtab.LanguageAsm
	default:
		return psymtab.LanguageUnknown
	}
}

// handleDescriptorRecord parses the "name:descriptor<type-info>" shape
// and emits the appropriate psym.
func (p *Parser) handleDescriptorRecord(n Nlist, name string) error {
	if p.Builder.Current == nil {
		p.complain("descriptor-no-active-psymtab", "symbol descriptor record seen with no active psymtab")
		return nil
	}

	full, err := p.resolveContinuation(name)
	if err != nil {
		return err
	}
	p.decodeDescriptor(full, n)
	return nil
}

// DecodeEmbeddedSymbol decodes one already-resolved "name:descriptor..."
// string directly, for callers (the mdebug stabs-in-ECOFF path) that
// have already performed their own string-table lookup and so have no
// use for this parser's record stream or backslash-continuation logic.
func (p *Parser) DecodeEmbeddedSymbol(full string, value uint64, section int) {
	p.decodeDescriptor(full, Nlist{Value: value, Other: uint8(section)})
}

func (p *Parser) decodeDescriptor(full string, n Nlist) {
	if full == "" {
		// N_FUN with an empty name closes the preceding function's
		// address range instead of emitting a psym; n.Value carries the
		// function's end address.
		if n.Type == NFun && p.Builder.Current != nil && n.Value != 0 {
			p.Builder.Current.SetTextHigh(n.Value)
		}
		return
	}
	colon := strings.IndexByte(full, ':')
	if colon < 0 {
		return
	}
	symName := full[:colon]
	rest := full[colon+1:]
	if rest == "" {
		return
	}

	desc := rest[0]
	typeInfo := rest[1:]
	lang := p.Builder.Current.Language

	switch desc {
	case 'S':
		p.Builder.AddStatic(symName, psymtab.VarDomain, psymtab.ClassStatic, int(n.Other), n.Value, lang)
	case 'G':
		p.Builder.AddGlobal(symName, psymtab.VarDomain, psymtab.ClassStatic, int(n.Other), n.Value, lang)
	case 'T':
		p.Builder.AddStatic(symName, psymtab.StructDomain, psymtab.ClassTypedef, int(n.Other), 0, lang)
		if len(typeInfo) > 0 && typeInfo[0] == 't' {
			p.Builder.AddStatic(symName, psymtab.VarDomain, psymtab.ClassTypedef, int(n.Other), 0, lang)
			typeInfo = typeInfo[1:]
		}
		p.scanEnumConstants(typeInfo, lang)
	case 't':
		p.Builder.AddStatic(symName, psymtab.VarDomain, psymtab.ClassTypedef, int(n.Other), 0, lang)
	case 'c':
		p.Builder.AddStatic(symName, psymtab.VarDomain, psymtab.ClassConst, int(n.Other), n.Value, lang)
	case 'f':
		p.emitFunction(symName, n, lang, false)
	case 'F':
		p.emitFunction(symName, n, lang, true)
	case 'V', '(', '-', '#', ':':
		// Skip silently.
	default:
		if desc >= '0' && desc <= '9' {
			return
		}
		p.complain("unhandled-descriptor", "unhandled symbol descriptor %q in %q", string(desc), full)
	}
}

// emitFunction handles the "f"/"F" descriptors, including the
// function-address-fixup fallback below.
func (p *Parser) emitFunction(symName string, n Nlist, lang psymtab.Language, global bool) {
	addr := n.Value
	section := int(n.Other)

	if addr == 0 && p.Options.Arch.SofunAddressMaybeMissing {
		if resolved, ok := p.resolveFunctionAddress(symName); ok {
			addr = resolved
		} else {
			p.complain("fixup-missing-minsym", "function %q is outside any known compilation unit; address left 0", symName)
		}
	}

	if global {
		p.Builder.AddGlobal(symName, psymtab.VarDomain, psymtab.ClassBlock, section, addr, lang)
	} else {
		p.Builder.AddStatic(symName, psymtab.VarDomain, psymtab.ClassBlock, section, addr, lang)
	}
	p.Builder.NoteTextFunction(addr)
}

// resolveFunctionAddress retries the minimal-symbol lookup with and
// without a trailing underscore (the Sun Fortran accommodation) and with
// and without filename qualification. The mdebug reader does not perform
// this lookup; it uses each procedure symbol's value as is.
func (p *Parser) resolveFunctionAddress(name string) (uint64, bool) {
	if p.Object == nil {
		return 0, false
	}
	var filename *string
	if p.Builder.Current != nil {
		filename = &p.Builder.Current.Filename
	}
	candidates := []string{name, name + "_"}
	for _, cand := range candidates {
		if ms, ok := p.Object.LookupMinimalSymbol(cand, filename); ok {
			return ms.Address, true
		}
		if ms, ok := p.Object.LookupMinimalSymbol(cand, nil); ok {
			return ms.Address, true
		}
	}
	return 0, false
}

// resolveContinuation splices in the next record's name whenever name
// ends in a backslash continuation marker, treating the stab name stream
// as a restartable iterator.
func (p *Parser) resolveContinuation(name string) (string, error) {
	for strings.HasSuffix(name, `\`) {
		name = name[:len(name)-1]
		p.pos++
		if p.pos >= len(p.records) {
			return name, fmt.Errorf("%w: name continuation ran past end of stab records", psymtab.ErrTruncatedSection)
		}
		name += p.name(p.records[p.pos])
	}
	return name, nil
}

// typeSpecHead strips a leading "<typenum>=" prefix (the stab type-number
// binding) off a type-info string, returning the actual type-descriptor
// spec that follows.
func typeSpecHead(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i < len(s) && s[i] == '=' {
		i++
	}
	return s[i:]
}

// scanEnumConstants walks an enum's "{name:value,}" member list when its
// type spec starts with an 'e' type-descriptor, emitting one LOC_CONST
// psym per enumerator.
func (p *Parser) scanEnumConstants(typeInfo string, lang psymtab.Language) {
	spec := typeSpecHead(typeInfo)
	if spec == "" || spec[0] != 'e' {
		return
	}
	list := spec[1:]
	for {
		if list == "" {
			return
		}
		if strings.HasSuffix(list, `\`) {
			p.pos++
			if p.pos >= len(p.records) {
				return
			}
			list = list[:len(list)-1] + p.name(p.records[p.pos])
			continue
		}
		if list[0] == ';' {
			return
		}
		colon := strings.IndexByte(list, ':')
		if colon < 0 {
			return
		}
		enumName := list[:colon]
		rest := list[colon+1:]
		comma := strings.IndexByte(rest, ',')
		var valStr string
		if comma < 0 {
			valStr = rest
			rest = ""
		} else {
			valStr = rest[:comma]
			rest = rest[comma+1:]
		}
		val, _ := strconv.ParseInt(valStr, 10, 64)
		p.Builder.AddStatic(enumName, psymtab.VarDomain, psymtab.ClassConst, 0, uint64(val), lang)
		list = rest
	}
}
