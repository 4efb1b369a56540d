// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package psymtab

import "errors"

// Errors returned by the psymtab core. These are sentinel errors so callers
// can match with errors.Is; format parsers wrap them with fmt.Errorf("%w: ...")
// to attach the offending offset or record.
var (
	// ErrTruncatedSection is returned when a format parser is handed a
	// section shorter than the smallest valid record it must read.
	ErrTruncatedSection = errors.New("symidx: truncated debug section")

	// ErrStringTableTooLarge is returned when a string table's declared
	// size is implausible (protects against OOM on corrupt input).
	ErrStringTableTooLarge = errors.New("symidx: string table size is absurdly large")

	// ErrSymbolCountTooHigh names an implausibly large declared symbol
	// count. No parser in this module checks a declared count, and none
	// returns this error.
	ErrSymbolCountTooHigh = errors.New("symidx: symbol count is absurdly high")

	// ErrNoActivePsymtab names a record that requires an active
	// partial_symtab (N_SOL, N_BINCL, ...) arriving before any N_SO has
	// opened one. The stabs parser reports that case as a complaint and
	// does not return this error.
	ErrNoActivePsymtab = errors.New("symidx: no active partial symbol table")

	// ErrAlreadyReadIn names a second expansion of a psymtab that is
	// already read in. Expand does not return it: a repeated Expand is a
	// no-op that returns the cached compunit.
	ErrAlreadyReadIn = errors.New("symidx: psymtab already expanded")

	// ErrQuit names a cancelled build. No function in this module
	// returns it; a caller cancels a build by calling Builder.Abort.
	ErrQuit = errors.New("symidx: build cancelled")
)
