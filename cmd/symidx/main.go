// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/saferwall/symidx"
	"github.com/saferwall/symidx/log"
	"github.com/saferwall/symidx/objreader"
	"github.com/saferwall/symidx/stabs"
)

type config struct {
	wantGlobals bool
	wantStatics bool
	wantInfo    bool
	solarisACC  bool
	solaris2    bool
}

func main() {
	dumpCmd := flag.NewFlagSet("dump", flag.ExitOnError)
	dumpGlobals := dumpCmd.Bool("globals", false, "Dump global psymbols")
	dumpStatics := dumpCmd.Bool("statics", false, "Dump static psymbols")
	dumpInfo := dumpCmd.Bool("info", false, "Dump psymtab summary (filename, dirname, text range)")
	solarisACC := dumpCmd.Bool("solaris-acc", false, "Enable Solaris ACC relative-strtab support")
	solaris2 := dumpCmd.Bool("solaris2", false, "Enable Solaris 2 N_ENDM module boundaries")

	verCmd := flag.NewFlagSet("version", flag.ExitOnError)

	if len(os.Args) < 2 {
		showHelp()
	}

	switch os.Args[1] {
	case "dump":
		dumpCmd.Parse(os.Args[3:])
		cfg := config{
			wantGlobals: *dumpGlobals,
			wantStatics: *dumpStatics,
			wantInfo:    *dumpInfo,
			solarisACC:  *solarisACC,
			solaris2:    *solaris2,
		}
		if err := dump(os.Args[2], cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "version":
		verCmd.Parse(os.Args[2:])
		fmt.Println("You are using version 0.1.0")
	default:
		showHelp()
	}
}

func dump(path string, cfg config) error {
	logger := log.NewHelper(log.NewLogrusLogger())

	arch := objreader.Arch{
		PointerWidth:             8,
		SofunAddressMaybeMissing: true,
		SolarisACC:               cfg.solarisACC,
		Solaris2:                 cfg.solaris2,
	}

	obj, err := objreader.OpenMMapFile(path, arch)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer obj.Close()

	storage := psymtab.NewPsymtabStorage()
	builder := psymtab.NewBuilder(storage)
	complainer := psymtab.NewComplainer(logger)

	stabData, haveStabs := obj.Bytes(".stab")
	strData, _ := obj.Bytes(".stabstr")
	if haveStabs {
		records := decodeNlist(stabData, arch.PointerWidth == 8)
		sp := &stabs.Parser{
			Object:   obj,
			Builder:  builder,
			MinSyms:  obj.MinimalSymbols(),
			Complain: complainer,
			Options:  stabs.Options{Arch: arch},
			Logger:   logger,
		}
		if err := sp.Parse(records, strData); err != nil {
			builder.Abort()
			return fmt.Errorf("parsing stabs: %w", err)
		}
	}
	builder.Commit()

	facade := psymtab.NewFacade(storage, noopExpander{})
	printPsymtabs(storage, facade, cfg)
	return nil
}

// decodeNlist decodes a raw .stab section into external nlist records.
// Each record is 12 bytes on 32-bit targets (n_strx uint32, n_type byte,
// n_other byte, n_desc uint16, n_value uint32) or the 64-bit variant with
// an 8-byte n_value; this mirrors the fixed-width nlist layout every
// a.out/ELF stabs reader assumes.
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

type noopExpander struct{}

func (noopExpander) ExpandPsymtab(pst *psymtab.Psymtab) (*psymtab.CompUnitSymtab, error) {
	return &psymtab.CompUnitSymtab{Name: pst.Filename}, nil
}

func printPsymtabs(storage *psymtab.PsymtabStorage, facade *psymtab.Facade, cfg config) {
	for _, pst := range storage.Range() {
		if cfg.wantInfo || (!cfg.wantGlobals && !cfg.wantStatics) {
			low, lowOK := pst.TextLow()
			high, highOK := pst.TextHigh()
			dir := ""
			if pst.Dirname != nil {
				dir = *pst.Dirname
			}
			fmt.Printf("%s  dir=%q  text=[%#x,%#x) (low_ok=%v high_ok=%v)\n", pst.Filename, dir, low, high, lowOK, highOK)
		}
		if cfg.wantGlobals {
			for _, p := range pst.GlobalPsymbols {
				fmt.Printf("  G %-8s %-20s %#x\n", p.Domain, p.SearchName(), p.Address)
			}
		}
		if cfg.wantStatics {
			for _, p := range pst.StaticPsymbols {
				fmt.Printf("  S %-8s %-20s %#x\n", p.Domain, p.SearchName(), p.Address)
			}
		}
	}
}

func showHelp() {
	fmt.Print(
		`
╔═╗╦ ╦╔╦╗╦╔╦╗═╗ ╦
╚═╗╚╦╝║║║║ ║ ╔╩╦╝
╚═╝ ╩ ╩ ╩╩ ╩ ╩ ╩╚

	A partial-symbol-table indexer for stabs/ECOFF debug info.
`)
	fmt.Println("\nAvailable sub-commands 'dump' or 'version'")
	os.Exit(1)
}
