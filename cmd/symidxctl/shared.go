// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/saferwall/symidx"
	"github.com/saferwall/symidx/log"
	"github.com/saferwall/symidx/objreader"
	"github.com/saferwall/symidx/stabs"
)

type identityExpander struct{}

func (identityExpander) ExpandPsymtab(pst *psymtab.Psymtab) (*psymtab.CompUnitSymtab, error) {
	return &psymtab.CompUnitSymtab{Name: pst.Filename}, nil
}

// buildIndex opens path, parses its stabs debug info, and returns the
// resulting storage plus a facade wired with a no-op expander (the CLI
// only inspects psymtabs, never full symtabs).
func buildIndex(path string) (*psymtab.PsymtabStorage, *psymtab.Facade, error) {
	logger := log.NewHelper(log.NewLogrusLogger())

	arch := objreader.Arch{
		PointerWidth:             8,
		SofunAddressMaybeMissing: true,
		SolarisACC:               solarisACC,
		Solaris2:                 solaris2,
	}

	obj, err := objreader.OpenMMapFile(path, arch)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer obj.Close()

	storage := psymtab.NewPsymtabStorage()
	builder := psymtab.NewBuilder(storage)
	complainer := psymtab.NewComplainer(logger)

	stabData, haveStabs := obj.Bytes(".stab")
	strData, _ := obj.Bytes(".stabstr")
	if haveStabs {
		sp := &stabs.Parser{
			Object:   obj,
			Builder:  builder,
			MinSyms:  obj.MinimalSymbols(),
			Complain: complainer,
			Options:  stabs.Options{Arch: arch},
			Logger:   logger,
		}
		records := decodeNlist(stabData, true)
		if err := sp.Parse(records, strData); err != nil {
			builder.Abort()
			return nil, nil, fmt.Errorf("parsing stabs: %w", err)
		}
	}
	builder.Commit()

	facade := psymtab.NewFacade(storage, identityExpander{})
	return storage, facade, nil
}

func decodeNlist(data []byte, wide bool) []stabs.Nlist {
	recSize := 12
	if wide {
		recSize = 16
	}
	var out []stabs.Nlist
	for off := 0; off+recSize <= len(data); off += recSize {
		n := stabs.Nlist{
			Strx:  le32(data[off:]),
			Type:  data[off+4],
			Other: data[off+5],
			Desc:  le16(data[off+6:]),
		}
		if wide {
			n.Value = le64(data[off+8:])
		} else {
			n.Value = uint64(le32(data[off+8:]))
		}
		out = append(out, n)
	}
	return out
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func le64(b []byte) uint64 {
	return uint64(le32(b)) | uint64(le32(b[4:]))<<32
}
