// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mdebug

import (
	"github.com/saferwall/symidx"
	"github.com/saferwall/symidx/objreader"
	"github.com/saferwall/symidx/stabs"
)

// Options carries the facts the mdebug parser needs about the hosting
// object file, mirroring stabs.Options.
type Options struct {
	Arch objreader.Arch
}

// Parser converts one object file's ECOFF/.mdebug debug header into
// psymtab events.
type Parser struct {
	Object   objreader.ObjectFile
	Builder  *psymtab.Builder
	MinSyms  *objreader.MinimalSymbolTable
	Complain *psymtab.Complainer
	Options  Options

	// StabsDecoder, when non-nil, is used to decode local symbols of an
	// FDR that has switched into stabs-in-ECOFF mode. It is expected to
	// already be wired to the same Builder/MinSyms/Complain.
	StabsDecoder *stabs.Parser

	fdrs       []*FDR
	psymtabFor map[*FDR]*psymtab.Psymtab
}

// Parse runs a four-pass algorithm over fdrs and the externals bucketed
// per pass 1: bucket externals by owning FDR, emit external minimal
// symbols, build one psymtab per FDR from its local symbols, then
// resolve cross-FDR dependencies.
func (p *Parser) Parse(fdrs []*FDR, externals []External) error {
	p.fdrs = fdrs
	p.psymtabFor = make(map[*FDR]*psymtab.Psymtab)

	byIfd := p.pass1(externals)
	p.pass2(byIfd)
	if err := p.pass3(); err != nil {
		return err
	}
	p.pass4()
	return nil
}

// pass1 buckets every external symbol record (assumed already
// byte-order-normalized by the caller) by its owning FDR index.
func (p *Parser) pass1(externals []External) map[int][]External {
	byIfd := make(map[int][]External)
	for _, e := range externals {
		byIfd[e.Ifd] = append(byIfd[e.Ifd], e)
	}
	return byIfd
}

// pass2 emits a minimal symbol for each qualifying external, skipping
// stProc/stStaticProc (handled through the FDR's own local symbol in
// pass 3).
func (p *Parser) pass2(byIfd map[int][]External) {
	if p.MinSyms == nil {
		return
	}
	for _, externals := range byIfd {
		for _, e := range externals {
			// stProc/stStaticProc externals are handled through the
			// FDR's own local symbol in pass 3, not here.
			if e.St != StGlobal && e.St != StLabel {
				continue
			}
			kind, ok := minsymKindForSC(e.Sc, true)
			if !ok {
				continue
			}
			p.MinSyms.Record(e.Name, e.Value, 0, kind)
		}
	}
}

func minsymKindForSC(sc StorageClass, global bool) (objreader.MinSymKind, bool) {
	switch sc {
	case ScText, ScRData, ScSData, ScPData, ScXData:
		if global {
			return objreader.MinSymText, true
		}
		return objreader.MinSymFileText, true
	case ScData:
		if global {
			return objreader.MinSymData, true
		}
		return objreader.MinSymFileData, true
	case ScBss, ScSBss:
		if global {
			return objreader.MinSymBSS, true
		}
		return objreader.MinSymFileBSS, true
	case ScAbs:
		return objreader.MinSymAbs, true
	default:
		return objreader.MinSymUnknown, false
	}
}

// pass3 starts one psymtab per FDR and walks its local symbols, emitting
// psyms according to each symbol's storage class and symbol type.
func (p *Parser) pass3() error {
	for _, fh := range p.fdrs {
		if len(fh.Locals) == 0 {
			// An FDR with no local symbols contributes no psymtab and
			// no minimal symbols.
			continue
		}

		fh.IsStabs = fh.hasStabsSentinel()

		pst := p.Builder.Start(fh.Name, 0, false, 0)
		pst.Language = pst.Language.Upgrade(languageFromFilename(fh.Name))
		p.psymtabFor[fh] = pst

		if fh.IsStabs && p.StabsDecoder != nil {
			p.delegateToStabs(fh)
			p.Builder.End(len(fh.Locals), 0, true, false)
			continue
		}

		i := 0
		for i < len(fh.Locals) {
			sym := fh.Locals[i]
			switch sym.St {
			case StProc, StStaticProc:
				p.emitProc(fh, sym)
				end := p.skipToMatchingEnd(fh, i)
				i = end
			case StStatic:
				p.emitStatic(sym)
			case StBlock:
				p.emitBlockTypedef(fh, sym, i)
			case StStruct, StUnion, StEnum:
				p.emitBlockTypedef(fh, sym, i)
			case StIndirect:
				// Skip: forward declaration.
			case StTypedef:
				if !p.hasOpaqueXref(fh, sym) {
					p.Builder.AddStatic(sym.Name, psymtab.StructDomain, psymtab.ClassTypedef, 0, 0, pst.Language)
				}
			case StConstant:
				p.Builder.AddStatic(sym.Name, psymtab.VarDomain, psymtab.ClassConst, 0, sym.Value, pst.Language)
			case StFile, StLabel, StEnd, StLocal:
				// No psymbol or minimal symbol to emit.
			}
			i++
		}

		if p.Builder.End(len(fh.Locals), 0, false, false).Empty() {
			// Builder.End discards a psymtab with no psyms, but an FDR
			// with local symbols keeps its psymtab so that pass 4 can
			// attach its crfd dependencies to it.
			p.Builder.Storage.InstallPsymtab(pst)
		}
	}
	return nil
}

// delegateToStabs hands fh's local symbols past the @stabs sentinel to
// the shared stabs descriptor decoder. Each local symbol's already-
// resolved Name/Value pair is fed straight into the stabs descriptor
// grammar, since the ECOFF local symbol has already done the
// string-table lookup this FDR's reader would otherwise have to repeat.
func (p *Parser) delegateToStabs(fh *FDR) {
	for _, s := range fh.Locals[2:] {
		p.StabsDecoder.DecodeEmbeddedSymbol(s.Name, s.Value, 0)
	}
}

// emitProc handles an stProc/stStaticProc symbol: emit a minimal symbol
// for the static case, a LOC_BLOCK psym, and update the psymtab's text
// range.
func (p *Parser) emitProc(fh *FDR, sym Symbol) {
	pst := p.psymtabFor[fh]
	lang := pst.Language
	if sym.St == StStaticProc && p.MinSyms != nil {
		p.MinSyms.Record(sym.Name, sym.Value, 0, objreader.MinSymFileText)
	}
	if sym.St == StProc {
		p.Builder.AddGlobal(sym.Name, psymtab.VarDomain, psymtab.ClassBlock, 0, sym.Value, lang)
	} else {
		p.Builder.AddStatic(sym.Name, psymtab.VarDomain, psymtab.ClassBlock, 0, sym.Value, lang)
	}
	p.Builder.NoteTextFunction(sym.Value)
}

// skipToMatchingEnd advances past a stProc/stStaticProc's body to its
// matching stEnd, using the aux-pointed isym the way mdebugread.c's
// parse_partial_symbols does, returning the index of the stEnd record
// (or len(fh.Locals) if truncated).
func (p *Parser) skipToMatchingEnd(fh *FDR, start int) int {
	sym := fh.Locals[start]
	if sym.Index > 0 && sym.Index < len(fh.Aux) {
		target := int(fh.Aux[sym.Index].Value)
		if target > start && target < len(fh.Locals) {
			return target
		}
	}
	for i := start + 1; i < len(fh.Locals); i++ {
		if fh.Locals[i].St == StEnd {
			return i
		}
	}
	return len(fh.Locals)
}

// emitStatic handles an stStatic symbol, recording a minimal symbol for
// its storage class.
func (p *Parser) emitStatic(sym Symbol) {
	if p.MinSyms != nil {
		kind, ok := minsymKindForSC(sym.Sc, false)
		if ok {
			p.MinSyms.Record(sym.Name, sym.Value, 0, kind)
		}
	}
}

// emitBlockTypedef handles an stBlock/stStruct/stUnion/stEnum symbol in
// scInfo or common storage, emitting a typedef psym and, for stEnum,
// walking its enumerator members.
//
// Neither this function nor handlePsymbolEnumerators reads the aux
// table: the members of a block are not skipped here, and pass3 walks
// them as ordinary local symbols, so a block nested inside another block
// is handled like a top-level one.
func (p *Parser) emitBlockTypedef(fh *FDR, sym Symbol, idx int) {
	if sym.Sc != ScInfo && sym.Sc != ScCommon && sym.Sc != ScSCommon {
		return
	}
	pst := p.psymtabFor[fh]
	p.Builder.AddStatic(sym.Name, psymtab.StructDomain, psymtab.ClassTypedef, 0, 0, pst.Language)
	if sym.St == StEnum {
		p.handlePsymbolEnumerators(fh, idx)
	}
}

// handlePsymbolEnumerators walks the member symbols following an stEnum
// block up to its stEnd, emitting one VAR_DOMAIN LOC_CONST psym per
// enumerator, mirroring mdebugread.c's handle_psymbol_enumerators.
func (p *Parser) handlePsymbolEnumerators(fh *FDR, blockIdx int) {
	pst := p.psymtabFor[fh]
	for i := blockIdx + 1; i < len(fh.Locals); i++ {
		m := fh.Locals[i]
		if m.St == StEnd {
			return
		}
		if m.St == StMember {
			p.Builder.AddStatic(m.Name, psymtab.VarDomain, psymtab.ClassConst, 0, m.Value, pst.Language)
		}
	}
}

// hasOpaqueXref reports whether sym is an opaque forward declaration: an
// stTypedef with a single aux entry whose resolution fd is -1.
func (p *Parser) hasOpaqueXref(fh *FDR, sym Symbol) bool {
	if sym.Index < 0 || sym.Index >= len(fh.Aux) {
		return false
	}
	ref := decodeTypeRef(fh.Aux[sym.Index])
	return ref.Rfd == -1
}

// decodeTypeRef extracts the relative-FDR number packed into an aux
// entry. The original packs rfd into the high bits of the 32-bit aux
// word; -1 (all bits set) marks "no known defining FDR".
func decodeTypeRef(a Aux) TypeRef {
	rfd := int32(a.Value >> 20)
	if rfd == 0xfff {
		rfd = -1
	}
	return TypeRef{Rfd: int(rfd), Index: int(a.Value & 0xfffff)}
}

// pass4 resolves crfd (cross-FDR reference) entries into per-psymtab
// dependency arrays, skipping self-dependencies.
func (p *Parser) pass4() {
	for _, fh := range p.fdrs {
		if _, ok := p.psymtabFor[fh]; !ok {
			continue
		}
		for _, crfd := range fh.CrossFDRefs {
			if crfd < 0 || crfd >= len(p.fdrs) || p.fdrs[crfd] == fh {
				continue
			}
			dep, ok := p.psymtabFor[p.fdrs[crfd]]
			if !ok {
				continue
			}
			p.psymtabFor[fh].AddDependency(dep)
		}
	}
}

func languageFromFilename(name string) psymtab.Language {
	n := len(name)
	switch {
	case n >= 2 && name[n-2:] == ".c":
		return psymtab.LanguageC
	case n >= 4 && name[n-4:] == ".cpp":
		return psymtab.LanguageCPlusPlus
	case n >= 3 && name[n-3:] == ".cc":
		return psymtab.LanguageCPlusPlus
	case n >= 2 && name[n-2:] == ".f":
		return psymtab.LanguageFortran
	default:
		return psymtab.LanguageUnknown
	}
}
