// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package psymtab

import "testing"

func TestBcacheDedupesEqualPsyms(t *testing.T) {
	cache := NewStringCache()
	bc := NewPsymbolBcache()

	name := cache.Intern("foo")
	a := &Psym{LinkageName: name, Domain: VarDomain, Class: ClassStatic, Address: 0x1000}
	b := &Psym{LinkageName: name, Domain: VarDomain, Class: ClassStatic, Address: 0x1000}

	canonA, insertedA := bc.Insert(a)
	canonB, insertedB := bc.Insert(b)

	if !insertedA {
		t.Fatalf("first insert should report inserted=true")
	}
	if insertedB {
		t.Fatalf("second insert of an equal psym should report inserted=false")
	}
	if canonA != canonB {
		t.Fatalf("equal psyms must resolve to the same canonical pointer")
	}
	if bc.Len() != 1 {
		t.Fatalf("bcache length = %d, want 1", bc.Len())
	}
}

func TestBcacheDistinguishesByAddress(t *testing.T) {
	cache := NewStringCache()
	bc := NewPsymbolBcache()
	name := cache.Intern("foo")

	a := &Psym{LinkageName: name, Domain: VarDomain, Class: ClassStatic, Address: 0x1000}
	b := &Psym{LinkageName: name, Domain: VarDomain, Class: ClassStatic, Address: 0x2000}

	bc.Insert(a)
	canonB, insertedB := bc.Insert(b)
	if !insertedB {
		t.Fatalf("psyms differing only by address must not be deduplicated")
	}
	if canonB != b {
		t.Fatalf("a freshly inserted psym should be returned as its own canonical pointer")
	}
	if bc.Len() != 2 {
		t.Fatalf("bcache length = %d, want 2", bc.Len())
	}
}

func TestBcacheGrowsPastLoadFactor(t *testing.T) {
	cache := NewStringCache()
	bc := NewPsymbolBcache()

	for i := 0; i < 500; i++ {
		name := cache.Intern(string(rune('a' + i%26)))
		bc.Insert(&Psym{LinkageName: name, Domain: VarDomain, Class: ClassStatic, Address: uint64(i)})
	}
	if bc.Len() != 500 {
		t.Fatalf("bcache length = %d, want 500", bc.Len())
	}
}

func TestStringCacheInternsEqualStrings(t *testing.T) {
	cache := NewStringCache()
	a := cache.Intern("hello")
	b := cache.Intern("hello")
	if a != b {
		t.Fatalf("Intern must return the same pointer for equal strings")
	}
	if *a != "hello" {
		t.Fatalf("interned string content = %q, want hello", *a)
	}
}
