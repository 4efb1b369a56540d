// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package psymtab

// binclEntry records one N_BINCL header-file begin, kept on the active
// bincl list until the matching N_EXCL resolves it.
type binclEntry struct {
	name     string
	instance int
	pst      *Psymtab
}

// Builder owns the mutable state a single build pass over one object
// file's debug info threads through: the psymtab currently being filled,
// the bincl chain, and the storage everything is installed into. Folding
// gdb's several file-scope globals (current psymtab, bincl_list, ...) into
// one value makes a build re-entrant and independently cancellable.
type Builder struct {
	Storage *PsymtabStorage

	// Current is the psymtab presently being filled by Start/AddGlobal/
	// AddStatic/etc. It is nil before the first Start() and after a
	// psymtab-closing End() until the next Start().
	Current *Psymtab

	binclList []binclEntry

	discarder *Discarder
}

// NewBuilder begins a build pass against storage, arming a Discarder so
// that an aborted build (quit/interrupt) can roll back every psymtab
// installed so far by calling Abort instead of Commit.
func NewBuilder(storage *PsymtabStorage) *Builder {
	return &Builder{
		Storage:   storage,
		discarder: NewDiscarder(storage),
	}
}

// Commit keeps every psymtab installed during this build pass.
func (b *Builder) Commit() {
	b.discarder.Keep()
}

// Abort discards every psymtab installed since NewBuilder.
func (b *Builder) Abort() {
	b.discarder.Discard()
}

// Start allocates a new psymtab, records its filename and initial low
// address, installs it into storage, and makes it Current.
func (b *Builder) Start(filename string, textLow uint64, textLowValid bool, ldSymOffset int) *Psymtab {
	pst := &Psymtab{
		Filename:    *b.Storage.Strings.Intern(filename),
		LdSymOffset: ldSymOffset,
	}
	if textLowValid {
		pst.SetTextLow(textLow)
	}
	b.Storage.InstallPsymtab(pst)
	b.Current = pst
	return pst
}

// internPsym interns name (and its demangled natural form) and returns a
// bcache-deduplicated *Psym with the given attributes, with an unrelocated
// address of addr.
func (b *Builder) internPsym(name string, domain Domain, class AddressClass, section int, addr uint64, lang Language) *Psym {
	linkage := b.Storage.Strings.Intern(name)
	natural := linkage
	if nat := NaturalName(name, lang); nat != name {
		natural = b.Storage.Strings.Intern(nat)
	}
	psym := &Psym{
		LinkageName: linkage,
		Natural:     natural,
		Language:    lang,
		Domain:      domain,
		Class:       class,
		Address:     addr,
		Section:     section,
	}
	canonical, _ := b.Storage.Bcache.Insert(psym)
	return canonical
}

// AddGlobal appends a psym to Current's global (sorted-on-End) list.
func (b *Builder) AddGlobal(name string, domain Domain, class AddressClass, section int, addr uint64, lang Language) *Psym {
	psym := b.internPsym(name, domain, class, section, addr, lang)
	b.Current.GlobalPsymbols = append(b.Current.GlobalPsymbols, psym)
	return psym
}

// AddStatic appends a psym to Current's file-scope list.
func (b *Builder) AddStatic(name string, domain Domain, class AddressClass, section int, addr uint64, lang Language) *Psym {
	psym := b.internPsym(name, domain, class, section, addr, lang)
	b.Current.StaticPsymbols = append(b.Current.StaticPsymbols, psym)
	return psym
}

// RecordInclude notes that Current includes a header file named name,
// deduplicated against both Current's own filename and any include
// recorded earlier for Current. The per-include sub-psymtab is actually
// created in End(); this only tracks the set of names to create
// sub-psymtabs for.
func (b *Builder) RecordInclude(name string) {
	if b.Current == nil {
		return
	}
	if name == b.Current.Filename {
		return
	}
	for _, inc := range b.Current.includes {
		if inc == name {
			return
		}
	}
	b.Current.includes = append(b.Current.includes, name)
}

// RecordBincl pushes a header-file-begin marker for later N_EXCL
// resolution. It also behaves as RecordInclude: a BINCL always implies an
// include of the same name.
func (b *Builder) RecordBincl(name string, instance int) {
	b.RecordInclude(name)
	if b.Current == nil {
		return
	}
	b.binclList = append(b.binclList, binclEntry{name: name, instance: instance, pst: b.Current})
}

// FindBincl linearly searches the active bincl list for (name, instance),
// returning the psymtab that defined the header. The bool return gives
// callers an explicit not-found signal they must check, rather than a
// null psymtab pointer they might forget to.
func (b *Builder) FindBincl(name string, instance int) (*Psymtab, bool) {
	for i := len(b.binclList) - 1; i >= 0; i-- {
		e := b.binclList[i]
		if e.name == name && e.instance == instance {
			return e.pst, true
		}
	}
	return nil, false
}

// AddDependency pushes other onto Current's dependency array, idempotent
// on duplicates.
func (b *Builder) AddDependency(other *Psymtab) {
	if b.Current == nil || other == nil {
		return
	}
	b.Current.addDependency(other)
}

// NoteTextFunction implements the address-range policy for compilers
// that emit a zero-valued N_SO: text_low is inferred from the lowest
// function address seen. A zero address means the function's real
// address could not be resolved (e.g. an unresolved Sun Fortran fixup)
// and must not be folded into the range.
func (b *Builder) NoteTextFunction(addr uint64) {
	if b.Current == nil || addr == 0 {
		return
	}
	if !b.Current.textLowValid || addr < b.Current.textLow {
		b.Current.SetTextLow(addr)
	}
	b.Current.SetTextHigh(addr)
}

// End finalizes Current: sorts its globals, creates one sub-psymtab per
// recorded include (each depending only on Current), applies the
// textlow-not-set fallback, extends a still-open sibling's text_high up
// to Current's text_low, and discards Current if it is empty and has no
// includes, dependencies, or line numbers. It returns the (possibly
// discarded) psymtab and clears Current.
func (b *Builder) End(cappingSymbolOffset int, cappingText uint64, textLowNotSet bool, hasLineNumbers bool) *Psymtab {
	pst := b.Current
	b.Current = nil
	if pst == nil {
		return nil
	}

	pst.SymOffsetEnd = cappingSymbolOffset
	pst.HasLineNumbers = pst.HasLineNumbers || hasLineNumbers

	if textLowNotSet {
		pst.SetTextLow(pst.textHigh)
	}
	pst.SetTextHigh(cappingText)

	// Extend a sibling psymtab whose text_high is still unset, up to
	// this psymtab's text_low, approximating a contiguous layout. Never
	// shrinks an existing range (SetTextHigh already enforces that).
	for _, sib := range b.Storage.Psymtabs {
		if sib == pst {
			continue
		}
		if sib.textLowValid && !sib.textHighValid && pst.textLowValid {
			sib.SetTextHigh(pst.textLow)
		}
	}

	for _, inc := range pst.includes {
		sub := &Psymtab{
			Filename:  *b.Storage.Strings.Intern(inc),
			Anonymous: false,
			Language:  pst.Language,
		}
		sub.addDependency(pst)
		b.Storage.InstallPsymtab(sub)
	}

	pst.sortGlobals()
	pst.shrink()

	if pst.Empty() && len(pst.includes) == 0 && len(pst.Dependencies) == 0 && !pst.HasLineNumbers {
		b.Storage.DiscardPsymtab(pst)
	}

	return pst
}
