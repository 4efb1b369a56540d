// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package psymtab

import "testing"

func TestExpandIdempotent(t *testing.T) {
	storage := NewPsymtabStorage()
	b := NewBuilder(storage)
	b.Start("a.c", 0, false, 0)
	b.AddGlobal("foo", VarDomain, ClassStatic, 0, 0, LanguageC)
	pst := b.End(1, 0, true, false)
	b.Commit()

	expander := &stubExpander{}
	if _, err := Expand(pst, expander); err != nil {
		t.Fatalf("first Expand: %v", err)
	}
	if _, err := Expand(pst, expander); err != nil {
		t.Fatalf("second Expand: %v", err)
	}
	if expander.calls != 1 {
		t.Fatalf("ExpandPsymtab called %d times, want exactly 1", expander.calls)
	}
	if !pst.Readin {
		t.Fatalf("Readin should be true after Expand")
	}
}

func TestExpandDependenciesSkipsShared(t *testing.T) {
	storage := NewPsymtabStorage()
	b := NewBuilder(storage)

	owner := b.Start("owner.c", 0, false, 0)
	b.AddGlobal("x", VarDomain, ClassStatic, 0, 0, LanguageC)
	b.End(1, 0, true, false)

	shared := b.Start("shared.h", 0, false, 0)
	b.AddGlobal("y", VarDomain, ClassStatic, 0, 0, LanguageC)
	b.End(2, 0, true, false)
	shared.User = owner

	pst := b.Start("a.c", 0, false, 0)
	b.AddDependency(shared)
	b.AddGlobal("foo", VarDomain, ClassStatic, 0, 0, LanguageC)
	b.End(3, 0, true, false)
	b.Commit()

	expander := &stubExpander{}
	if _, err := Expand(pst, expander); err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if shared.Readin {
		t.Fatalf("a shared (user != nil) dependency must not be expanded via expand_dependencies")
	}
}
