// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package stabs implements a parser for the classical a.out "stabs"
// debug-info format, following the layout GDB's dbxread.c decodes. It
// converts a stream of external nlist records plus a string table into
// psymbol events against a github.com/saferwall/symidx psymtab.Builder.
package stabs

// Stab type codes, taken from the classical a.out stab.def namespace (the
// same constants binutils/gdb/dbxread.c dispatches on). N_EXT is OR'd
// into N_TEXT/N_DATA/N_BSS/N_ABS/N_SETV to mark an external (linkage
// visible) minimal symbol.
const (
	NUndf  = 0x00
	NExt   = 0x01
	NAbs   = 0x02
	NText  = 0x04
	NData  = 0x06
	NBss   = 0x08
	NIndr  = 0x0a
	NFnSeq = 0x0c
	NComm  = 0x12
	NSetA  = 0x14
	NSetT  = 0x16
	NSetD  = 0x18
	NSetB  = 0x1a
	NSetV  = 0x1c
	NWarning = 0x1e
	NFn    = 0x1f

	NGsym   = 0x20
	NFname  = 0x22
	NFun    = 0x24
	NStsym  = 0x26
	NLcsym  = 0x28
	NMain   = 0x2a
	NRosym  = 0x2c
	NBnsym  = 0x2e
	NPC     = 0x30
	NNsyms  = 0x32
	NNomap  = 0x34
	NObj    = 0x38
	NOpt    = 0x3c
	NRsym   = 0x40
	NM2c    = 0x42
	NSline  = 0x44
	NDsline = 0x46
	NBsline = 0x48
	NDefd   = 0x4a
	NFline  = 0x4c
	NEnsym  = 0x4e
	NCatch  = 0x54
	NSsym   = 0x60
	NEndm   = 0x62
	NSo     = 0x64
	NLsym   = 0x80
	NBincl  = 0x82
	NSol    = 0x84
	NPsym   = 0xa0
	NEincl  = 0xa2
	NEntry  = 0xa4
	NLbrac  = 0xc0
	NExcl   = 0xc2
	NScope  = 0xc4
	NRbrac  = 0xe0
	NBcomm  = 0xe2
	NEcomm  = 0xe4
	NEcoml  = 0xe8
	NWith   = 0xea
	NNbtext = 0xf0
	NNbdata = 0xf2
	NNbbss  = 0xf4
	NNbsts  = 0xf6
	NNblcs  = 0xf8
	NLeng   = 0xfe
)

// Nlist is one external nlist record: a string-table index, a type byte,
// an auxiliary byte, a 16-bit descriptor, and a value.
type Nlist struct {
	Strx  uint32
	Type  uint8
	Other uint8
	Desc  uint16
	Value uint64
}
