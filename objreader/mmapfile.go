// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package objreader

import (
	"debug/elf"
	"errors"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// ErrUnsupportedFormat is returned, wrapping debug/elf's error, when
// OpenMMapFile cannot parse the mapped bytes as an ELF file. Stabs-in-ELF
// carries ASCII section names the parsers look up by name, so this
// reader's only job is handing back named byte ranges; full object-file
// parsing such as relocation application and general symbol-table
// decoding is left to the host.
var ErrUnsupportedFormat = errors.New("objreader: unsupported object file format")

// MMapFile is a concrete, read-only ObjectFile backed by a memory-mapped
// ELF file, using the same mmap-go package github.com/saferwall/pe's
// File.New uses to map its input, with debug/elf for section enumeration.
type MMapFile struct {
	f    *os.File
	data mmap.MMap
	elf  *elf.File

	sections []Section
	byName   map[string]*elf.Section
	arch     Arch
	minsyms  *MinimalSymbolTable
}

// OpenMMapFile maps name read-only and parses its ELF section headers.
func OpenMMapFile(name string, arch Arch) (*MMapFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	ef, err := elf.NewFile(readerAt{data})
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	m := &MMapFile{
		f:       f,
		data:    data,
		elf:     ef,
		byName:  make(map[string]*elf.Section),
		arch:    arch,
		minsyms: NewMinimalSymbolTable(),
	}
	for i, s := range ef.Sections {
		kind := sectionKind(s.Flags)
		m.sections = append(m.sections, Section{
			Name:   s.Name,
			Index:  i,
			Offset: s.Addr,
			Kind:   kind,
		})
		m.byName[s.Name] = s
	}
	return m, nil
}

func sectionKind(flags elf.SectionFlag) SectionKind {
	switch {
	case flags&elf.SHF_EXECINSTR != 0:
		return SectionText
	case flags&elf.SHF_WRITE != 0 && flags&elf.SHF_ALLOC != 0:
		return SectionData
	case flags&elf.SHF_ALLOC != 0:
		return SectionBSS
	default:
		return SectionUnknown
	}
}

// Close releases the memory mapping and the underlying file descriptor.
func (m *MMapFile) Close() error {
	if err := m.data.Unmap(); err != nil {
		m.f.Close()
		return err
	}
	return m.f.Close()
}

// MinimalSymbols exposes the table minimal symbols are recorded into
// during the initial parser pass.
func (m *MMapFile) MinimalSymbols() *MinimalSymbolTable { return m.minsyms }

func (m *MMapFile) Sections() []Section { return m.sections }

func (m *MMapFile) SectionOffset(sectIndex int) uint64 {
	if sectIndex < 0 || sectIndex >= len(m.sections) {
		return 0
	}
	return m.sections[sectIndex].Offset
}

func (m *MMapFile) TextSectionOffset() uint64 {
	for _, s := range m.sections {
		if s.Kind == SectionText {
			return s.Offset
		}
	}
	return 0
}

func (m *MMapFile) Arch() Arch { return m.arch }

func (m *MMapFile) SymbolLeadingChar() byte {
	if m.elf.Machine == elf.EM_386 || m.elf.Machine == elf.EM_X86_64 {
		return 0
	}
	return '_'
}

func (m *MMapFile) Bytes(sectionName string) ([]byte, bool) {
	s, ok := m.byName[sectionName]
	if !ok {
		return nil, false
	}
	data, err := s.Data()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (m *MMapFile) LookupMinimalSymbol(name string, filename *string) (MinimalSymbol, bool) {
	candidates := m.minsyms.Lookup(name)
	if len(candidates) == 0 {
		return MinimalSymbol{}, false
	}
	return *candidates[0], true
}

// readerAt adapts an mmap.MMap (a []byte) to io.ReaderAt for elf.NewFile.
type readerAt struct {
	data []byte
}

func (r readerAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(r.data)) {
		return 0, errors.New("objreader: read past end of mapped file")
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, errors.New("objreader: short read")
	}
	return n, nil
}
