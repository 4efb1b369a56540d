// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package objreader

import "github.com/ianlancetaylor/demangle"

// MinSymKind classifies a minimal symbol by the section it was recorded
// from.
type MinSymKind uint8

const (
	MinSymUnknown MinSymKind = iota
	MinSymText
	MinSymData
	MinSymBSS
	MinSymAbs
	MinSymFileText
	MinSymFileData
	MinSymFileBSS
)

// MinimalSymbol is a name+address record used when no full debug info is
// available, or during the initial pass before any psymtab expansion.
type MinimalSymbol struct {
	Name      string
	Demangled string
	Address   uint64 // unrelocated
	Kind      MinSymKind
	Section   int
}

// MinimalSymbolTable is recorded alongside psyms during the initial pass;
// it is indexed by both name hash and demangled-name hash for O(1)
// average lookups.
type MinimalSymbolTable struct {
	byName      map[string][]*MinimalSymbol
	byDemangled map[string][]*MinimalSymbol
	all         []*MinimalSymbol
}

// NewMinimalSymbolTable returns an empty table.
func NewMinimalSymbolTable() *MinimalSymbolTable {
	return &MinimalSymbolTable{
		byName:      make(map[string][]*MinimalSymbol),
		byDemangled: make(map[string][]*MinimalSymbol),
	}
}

// Record inserts a minimal symbol for name at addr, in section sect, with
// the given kind, computing its demangled form via demangle.Filter to
// turn a mangled linkage name into a display name.
func (t *MinimalSymbolTable) Record(name string, addr uint64, sect int, kind MinSymKind) *MinimalSymbol {
	ms := &MinimalSymbol{
		Name:      name,
		Demangled: demangle.Filter(name),
		Address:   addr,
		Kind:      kind,
		Section:   sect,
	}
	t.all = append(t.all, ms)
	t.byName[name] = append(t.byName[name], ms)
	if ms.Demangled != name {
		t.byDemangled[ms.Demangled] = append(t.byDemangled[ms.Demangled], ms)
	}
	return ms
}

// Lookup returns every minimal symbol recorded under the exact linkage
// name.
func (t *MinimalSymbolTable) Lookup(name string) []*MinimalSymbol {
	return t.byName[name]
}

// LookupDemangled returns every minimal symbol whose demangled form
// differs from its linkage name and equals name; when there is none, it
// returns the symbols whose exact linkage name is name.
func (t *MinimalSymbolTable) LookupDemangled(name string) []*MinimalSymbol {
	if ms, ok := t.byDemangled[name]; ok {
		return ms
	}
	return t.byName[name]
}

// All returns every recorded minimal symbol, in insertion order.
func (t *MinimalSymbolTable) All() []*MinimalSymbol {
	return t.all
}
