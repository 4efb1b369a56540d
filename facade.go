// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package psymtab

import "sort"

// SearchBlock selects which of a psymtab's two psym lists a name lookup
// should consult: GLOBAL_BLOCK searches globals, STATIC_BLOCK searches
// statics.
type SearchBlock uint8

const (
	SearchGlobalBlock SearchBlock = 1 << iota
	SearchStaticBlock
)

// NameMatcher decides whether candidate satisfies a search for name. The
// façade's binary-search lookups use it both to find the matching run and
// to filter within it, which is what lets callers plug in language-
// specific matching (Ada case folding, C++ ABI-tag tolerance, ...)
// without the core knowing about any particular language.
type NameMatcher func(candidate, name string) bool

// ExactMatcher is the default NameMatcher: plain string equality.
func ExactMatcher(candidate, name string) bool { return candidate == name }

// Facade implements the quick-symbol interface over one PsymtabStorage.
type Facade struct {
	Storage  *PsymtabStorage
	Expander Expander
}

// NewFacade returns a Facade backed by storage, expanding psymtabs
// through expander when a query requires it.
func NewFacade(storage *PsymtabStorage, expander Expander) *Facade {
	return &Facade{Storage: storage, Expander: expander}
}

// HasSymbols reports whether any psymtab exists.
func (f *Facade) HasSymbols() bool {
	return len(f.Storage.Psymtabs) > 0
}

// HasUnexpandedSymtabs reports whether at least one psymtab has not been
// read in yet.
func (f *Facade) HasUnexpandedSymtabs() bool {
	for _, p := range f.Storage.Psymtabs {
		if !p.Readin {
			return true
		}
	}
	return false
}

// isHeaderOrAnonymous reports whether pst should be skipped when looking
// for "the last source file", mirroring gdb's check that excludes header
// files and the anonymous-namespace placeholder name from consideration.
func isHeaderOrAnonymous(pst *Psymtab) bool {
	if pst.Anonymous {
		return true
	}
	n := pst.Filename
	for _, suffix := range []string{".h", ".hh", ".hpp", ".hxx"} {
		if len(n) > len(suffix) && n[len(n)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}

// FindLastSourceSymtab returns the primary compunit of the last psymtab
// whose filename is neither a header nor the anonymous-namespace tag,
// expanding it lazily.
func (f *Facade) FindLastSourceSymtab() (*CompUnitSymtab, error) {
	for i := len(f.Storage.Psymtabs) - 1; i >= 0; i-- {
		pst := f.Storage.Psymtabs[i]
		if pst.User != nil || isHeaderOrAnonymous(pst) {
			continue
		}
		return Expand(pst, f.Expander)
	}
	return nil, nil
}

// ForgetCachedSourceInfo nulls out every psymtab's cached Fullname.
func (f *Facade) ForgetCachedSourceInfo() {
	for _, p := range f.Storage.Psymtabs {
		p.Fullname = nil
	}
}

// LookupGlobalSymbolLanguage binary-searches every unexpanded psymtab's
// globals for name in domain and returns the language of the first hit,
// without expanding anything.
func (f *Facade) LookupGlobalSymbolLanguage(name string, domain Domain) (Language, bool) {
	for _, pst := range f.Storage.Psymtabs {
		if pst.Readin {
			continue
		}
		if psym := binarySearchGlobal(pst, name, ExactMatcher); psym != nil {
			if domain == UndefDomain || psym.Domain == domain {
				return psym.Language, true
			}
		}
	}
	return LanguageUnknown, false
}

// binarySearchGlobal locates the first candidate >= name in pst's sorted
// global list, then linearly scans while names continue to match under
// matcher, returning the first actual match.
func binarySearchGlobal(pst *Psymtab, name string, matcher NameMatcher) *Psym {
	globals := pst.GlobalPsymbols
	i := sort.Search(len(globals), func(i int) bool {
		return orderedCompare(globals[i].SearchName(), name) >= 0
	})
	for ; i < len(globals); i++ {
		cand := globals[i].SearchName()
		if matcher(cand, name) {
			return globals[i]
		}
		if orderedCompare(cand, name) > 0 {
			break
		}
	}
	return nil
}

// linearSearchStatic scans pst's (unsorted) static list for a match,
// since it is rarely large.
func linearSearchStatic(pst *Psymtab, name string, matcher NameMatcher) *Psym {
	for _, p := range pst.StaticPsymbols {
		if matcher(p.SearchName(), name) {
			return p
		}
	}
	return nil
}

// LookupSymbol expands and returns the compunit of the first unexpanded
// psymtab containing a matching psym in the requested block, preferring a
// match with a non-opaque (TYPE-class) psym.
func (f *Facade) LookupSymbol(kind SearchBlock, name string, domain Domain) (*CompUnitSymtab, error) {
	var fallback *Psymtab
	for _, pst := range f.Storage.Psymtabs {
		if pst.Readin {
			continue
		}
		var psym *Psym
		if kind&SearchGlobalBlock != 0 {
			psym = binarySearchGlobal(pst, name, ExactMatcher)
		}
		if psym == nil && kind&SearchStaticBlock != 0 {
			psym = linearSearchStatic(pst, name, ExactMatcher)
		}
		if psym == nil || (domain != UndefDomain && psym.Domain != domain) {
			continue
		}
		if psym.Class == ClassTypedef {
			return Expand(pst, f.Expander)
		}
		if fallback == nil {
			fallback = pst
		}
	}
	if fallback != nil {
		return Expand(fallback, f.Expander)
	}
	return nil, nil
}

// FindPCSectPsymtab locates the psymtab whose range covers pc, refining
// the choice against msymAddr: the psymtab whose highest LOC_BLOCK psym
// at or below pc matches msymAddr wins, since that is the compilation
// unit that defines the function.
func (f *Facade) FindPCSectPsymtab(pc uint64, msymAddr uint64) *Psymtab {
	var candidate *Psymtab
	for _, pst := range f.Storage.Psymtabs {
		if pst.User != nil {
			continue // shared psymtabs never surface here.
		}
		low, lowOK := pst.TextLow()
		high, highOK := pst.TextHigh()
		if !lowOK || !highOK || pc < low || pc >= high {
			continue
		}
		if candidate == nil {
			candidate = pst
		}

		best, bestOK := highestBlockPsymAtOrBelow(pst, pc)
		if bestOK && best == msymAddr {
			return pst
		}
		if bestOK {
			if cBest, ok := highestBlockPsymAtOrBelow(candidate, pc); !ok || best > cBest {
				candidate = pst
			}
		} else if lowOK {
			if cLow, ok := candidate.TextLow(); ok && low > cLow {
				candidate = pst
			}
		}
	}
	return candidate
}

// highestBlockPsymAtOrBelow returns the highest unrelocated address among
// pst's LOC_BLOCK-class psyms that does not exceed pc.
func highestBlockPsymAtOrBelow(pst *Psymtab, pc uint64) (uint64, bool) {
	var best uint64
	found := false
	for _, lst := range [][]*Psym{pst.GlobalPsymbols, pst.StaticPsymbols} {
		for _, p := range lst {
			if p.Class != ClassBlock || p.Address > pc {
				continue
			}
			if !found || p.Address > best {
				best = p.Address
				found = true
			}
		}
	}
	return best, found
}

// FindPCSectCompUnitSymtab locates the covering psymtab via the PC
// refinement algorithm, then expands and returns its compunit.
func (f *Facade) FindPCSectCompUnitSymtab(pc uint64, msymAddr uint64) (*CompUnitSymtab, error) {
	pst := f.FindPCSectPsymtab(pc, msymAddr)
	if pst == nil {
		return nil, nil
	}
	return Expand(pst, f.Expander)
}

// FindCompUnitSymtabByAddress always returns nil: the psymtab
// implementation does not index non-text symbols by exact address.
func (f *Facade) FindCompUnitSymtabByAddress(addr uint64) *CompUnitSymtab {
	return nil
}

// FileMatcher decides whether a psymtab's filename should be considered
// during ExpandSymtabsMatching. basenameOnly is true on the fast-path
// first pass that checks only the base name before falling back to the
// full path.
type FileMatcher func(filename string, basenameOnly bool) bool

// SymbolMatcher decides whether a candidate psym name should be
// considered during ExpandSymtabsMatching.
type SymbolMatcher func(name string) bool

// ExpandNotify is called after a psymtab has been expanded during
// ExpandSymtabsMatching; returning false stops the walk.
type ExpandNotify func(cu *CompUnitSymtab) bool

// ExpandSymtabsMatching performs a two-stage walk: filter by filename,
// then by psym predicate, expanding and notifying on each match; shared
// psymtabs are visited before their users, and SearchedFlag is reset on
// every psymtab before the walk begins.
func (f *Facade) ExpandSymtabsMatching(fileMatcher FileMatcher, symbolMatcher SymbolMatcher, notify ExpandNotify, block SearchBlock, domain Domain) error {
	for _, p := range f.Storage.Psymtabs {
		p.SearchedFlag = NotSearched
	}

	ordered := make([]*Psymtab, 0, len(f.Storage.Psymtabs))
	for _, p := range f.Storage.Psymtabs {
		if p.User != nil {
			ordered = append(ordered, p)
		}
	}
	for _, p := range f.Storage.Psymtabs {
		if p.User == nil {
			ordered = append(ordered, p)
		}
	}

	for _, pst := range ordered {
		if pst.SearchedFlag != NotSearched {
			continue
		}
		if fileMatcher != nil {
			if !fileMatcher(pst.Filename, true) && !fileMatcher(pst.Filename, false) {
				pst.SearchedFlag = NotFound
				continue
			}
		}

		matched := symbolMatcher == nil
		if !matched {
			if block&SearchGlobalBlock != 0 {
				for _, p := range pst.GlobalPsymbols {
					if (domain == UndefDomain || p.Domain == domain) && symbolMatcher(p.SearchName()) {
						matched = true
						break
					}
				}
			}
			if !matched && block&SearchStaticBlock != 0 {
				for _, p := range pst.StaticPsymbols {
					if (domain == UndefDomain || p.Domain == domain) && symbolMatcher(p.SearchName()) {
						matched = true
						break
					}
				}
			}
		}

		if !matched {
			pst.SearchedFlag = NotFound
			continue
		}
		pst.SearchedFlag = Found

		cu, err := Expand(pst, f.Expander)
		if err != nil {
			return err
		}
		if notify != nil && !notify(cu) {
			return nil
		}
	}
	return nil
}

// MapSymbolFilenames calls fn(filename, fullname) for every unexpanded,
// non-shared, non-anonymous psymtab. fullname is nil unless needFullname
// is true and Fullname has already been cached.
func (f *Facade) MapSymbolFilenames(needFullname bool, fn func(filename string, fullname *string)) {
	for _, pst := range f.Storage.Psymtabs {
		if pst.Readin || pst.User != nil || pst.Anonymous {
			continue
		}
		var full *string
		if needFullname {
			full = pst.Fullname
		}
		fn(pst.Filename, full)
	}
}

// ComputeMainName is a no-op hook: inferring and caching the program's
// entry function name is optional.
func (f *Facade) ComputeMainName() {}
