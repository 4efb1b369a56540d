// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package psymtab

// Expander is the external expansion driver's callback surface. A format
// reader implements ExpandPsymtab to actually parse full symbol/type/
// block information for one psymtab; this core only orchestrates *when*
// and in *what order* that happens.
type Expander interface {
	// ExpandPsymtab produces the full compunit symtab for pst. It is
	// called at most once per psymtab per Expand/ExpandDependencies
	// chain; Readin is already true by the time it runs, so re-entrant
	// calls triggered from within ExpandPsymtab itself must not recurse
	// back into the same pst (expand_dependencies's early readin=true
	// assignment exists precisely to make that safe).
	ExpandPsymtab(pst *Psymtab) (*CompUnitSymtab, error)
}

// Expand ensures pst is fully expanded, recursively expanding its
// non-shared dependencies first, and returns the resulting compunit. It
// is idempotent: calling Expand twice on the same psymtab only invokes
// the reader's ExpandPsymtab once.
func Expand(pst *Psymtab, expander Expander) (*CompUnitSymtab, error) {
	if pst.Readin {
		return pst.CompUnit, nil
	}
	// Set before recursing so that a cycle (which should not occur, but
	// is defended against) terminates instead of infinitely recursing
	// back into pst.
	pst.Readin = true

	if err := ExpandDependencies(pst, expander); err != nil {
		return nil, err
	}

	cu, err := expander.ExpandPsymtab(pst)
	if err != nil {
		return nil, err
	}
	pst.CompUnit = cu
	return cu, nil
}

// ExpandDependencies expands every dependency of pst that is not already
// read in and is not a shared psymtab (whose canonical user is expanded
// instead).
func ExpandDependencies(pst *Psymtab, expander Expander) error {
	for _, dep := range pst.Dependencies {
		if dep.Readin || dep.User != nil {
			continue
		}
		if _, err := Expand(dep, expander); err != nil {
			return err
		}
	}
	return nil
}
