// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package psymtab

import "sync"

// StringCache is the per-BFD string intern table. Two psyms or psymtabs
// with the same logical string share one pointer, which lets the bcache
// reduce psym identity to pointer comparison instead of content
// comparison.
//
// GDB shares this cache across every objfile that maps the same bfd;
// callers that want that sharing simply hold one StringCache and pass it
// to multiple PsymtabStorage instances.
type StringCache struct {
	mu       sync.Mutex
	interned map[string]*string
}

// NewStringCache returns an empty intern table.
func NewStringCache() *StringCache {
	return &StringCache{interned: make(map[string]*string)}
}

// Intern returns the unique *string for s, allocating one on first sight.
func (c *StringCache) Intern(s string) *string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.interned[s]; ok {
		return p
	}
	cp := s
	c.interned[s] = &cp
	return &cp
}

// Len reports how many distinct strings have been interned.
func (c *StringCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.interned)
}

// PsymtabStorage is the per-object-file owner of all psymtabs, their
// shared psymbol bcache, and the shared string intern table. Destroying
// it releases every psymtab and interned psym body it owns.
type PsymtabStorage struct {
	// Psymtabs holds every psymtab in creation order: newest psymtabs
	// are appended at the end (the reverse of GDB's newest-first head
	// list). Pointers remain stable for the storage's lifetime, so
	// dependency edges stored as *Psymtab stay valid across growth.
	Psymtabs []*Psymtab

	// Bcache owns every interned psym body referenced by this storage's
	// psymtabs.
	Bcache *PsymbolBcache

	// Strings is the string intern table backing filenames and psym
	// names for this object file.
	Strings *StringCache
}

// NewPsymtabStorage returns an empty storage with a fresh bcache and
// string cache.
func NewPsymtabStorage() *PsymtabStorage {
	return &PsymtabStorage{
		Bcache:  NewPsymbolBcache(),
		Strings: NewStringCache(),
	}
}

// InstallPsymtab transfers ownership of pst to this storage, appending it
// to the head-list.
func (s *PsymtabStorage) InstallPsymtab(pst *Psymtab) {
	s.Psymtabs = append(s.Psymtabs, pst)
}

// DiscardPsymtab unlinks pst from the head-list. Freeing the psymtab's
// own memory is deferred to storage teardown; this call only makes pst
// unreachable from future queries and iteration.
func (s *PsymtabStorage) DiscardPsymtab(pst *Psymtab) {
	for i, p := range s.Psymtabs {
		if p == pst {
			s.Psymtabs = append(s.Psymtabs[:i], s.Psymtabs[i+1:]...)
			return
		}
	}
}

// DiscardPsymtabsTo keeps the first markLen psymtabs and discards every
// psymtab at index markLen or later. An out-of-range markLen is ignored.
// It is the primitive behind the cancellation scope guard below.
func (s *PsymtabStorage) DiscardPsymtabsTo(markLen int) {
	if markLen < 0 || markLen > len(s.Psymtabs) {
		return
	}
	s.Psymtabs = s.Psymtabs[:markLen]
}

// Range returns every installed psymtab, in creation order.
func (s *PsymtabStorage) Range() []*Psymtab {
	return s.Psymtabs
}

// Discarder mirrors GDB's psymtab_discarder: a scope guard that, unless
// Keep is called, discards every psymtab installed after it was created.
// NewBuilder arms one around a whole build pass so that a cancelled or
// failed build does not leave half-built psymtabs behind.
type Discarder struct {
	storage *PsymtabStorage
	mark    int
}

// NewDiscarder records the current high-water mark of storage's psymtab
// list.
func NewDiscarder(storage *PsymtabStorage) *Discarder {
	return &Discarder{storage: storage, mark: len(storage.Psymtabs)}
}

// Keep disarms the discarder: psymtabs installed since its creation are
// retained.
func (d *Discarder) Keep() {
	d.storage = nil
}

// Discard rolls storage back to the recorded mark, unless Keep was
// called. Safe to call multiple times; idempotent after the first call.
func (d *Discarder) Discard() {
	if d.storage == nil {
		return
	}
	d.storage.DiscardPsymtabsTo(d.mark)
	d.storage = nil
}
