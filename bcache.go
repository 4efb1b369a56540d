// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package psymtab

import "unsafe"

// defaultBcacheCapacity is the initial slot count of a fresh PsymbolBcache.
// Must be a power of two so growth-by-doubling keeps masking cheap.
const defaultBcacheCapacity = 64

// maxLoadFactorNum / maxLoadFactorDen bound the load factor below 0.7.
const (
	maxLoadFactorNum = 7
	maxLoadFactorDen = 10
)

// PsymbolBcache deduplicates psyms so that many compilation units
// referencing the same external linkage name do not each allocate a
// distinct Psym. It is open-addressed with linear probing, deterministic,
// and owned exclusively by one PsymtabStorage -- it is never shared
// across object files.
type PsymbolBcache struct {
	slots []*Psym
	count int
}

// NewPsymbolBcache returns an empty bcache.
func NewPsymbolBcache() *PsymbolBcache {
	return &PsymbolBcache{slots: make([]*Psym, defaultBcacheCapacity)}
}

// hashPsym computes a value-only hash mixing the value bytes, language,
// domain, class, and the interned linkage-name pointer. Name *content* is
// deliberately not rehashed -- names are already interned to unique
// pointers by the per-object-file string cache, so the pointer value
// alone carries their identity.
func hashPsym(p *Psym) uint64 {
	var h uint64 = 1469598103934665603 // FNV-1a offset basis
	mix := func(v uint64) {
		h ^= v
		h *= 1099511628211 // FNV-1a prime
	}
	mix(p.Address)
	mix(uint64(p.Section))
	mix(uint64(p.Language))
	mix(uint64(p.Domain))
	mix(uint64(p.Class))
	if p.LinkageName != nil {
		mix(uint64(uintptr(unsafe.Pointer(p.LinkageName))))
	}
	return h
}

// equalPsym implements the bcache's byte-wise equality over the same
// fixed fields the hash mixes: two psyms are equal iff their value, class
// tuple and interned-name pointer coincide.
func equalPsym(a, b *Psym) bool {
	return a.Address == b.Address &&
		a.Section == b.Section &&
		a.Language == b.Language &&
		a.Domain == b.Domain &&
		a.Class == b.Class &&
		a.LinkageName == b.LinkageName
}

// Insert deduplicates psym against the cache's contents, returning the
// canonical (possibly pre-existing) pointer and whether it was newly
// inserted. The bytes behind psym must already have interned name
// pointers; Insert takes ownership of psym if it is new (it becomes the
// canonical instance), or discards it if an equal instance already exists.
func (c *PsymbolBcache) Insert(psym *Psym) (*Psym, bool) {
	if float64(c.count+1) > float64(len(c.slots))*maxLoadFactorNum/maxLoadFactorDen {
		c.grow()
	}

	h := hashPsym(psym)
	mask := uint64(len(c.slots) - 1)
	idx := h & mask
	for {
		existing := c.slots[idx]
		if existing == nil {
			c.slots[idx] = psym
			c.count++
			return psym, true
		}
		if equalPsym(existing, psym) {
			return existing, false
		}
		idx = (idx + 1) & mask
	}
}

// grow doubles capacity and rehashes every entry, preserving the
// open-addressing invariant.
func (c *PsymbolBcache) grow() {
	old := c.slots
	c.slots = make([]*Psym, len(old)*2)
	c.count = 0
	mask := uint64(len(c.slots) - 1)
	for _, p := range old {
		if p == nil {
			continue
		}
		h := hashPsym(p)
		idx := h & mask
		for c.slots[idx] != nil {
			idx = (idx + 1) & mask
		}
		c.slots[idx] = p
		c.count++
	}
}

// Len returns the number of distinct psyms currently interned.
func (c *PsymbolBcache) Len() int {
	return c.count
}
