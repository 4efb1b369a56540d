// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package objreader

import (
	"debug/elf"
	"testing"
)

func TestSectionKindClassification(t *testing.T) {
	tests := []struct {
		name  string
		flags elf.SectionFlag
		want  SectionKind
	}{
		{"text", elf.SHF_EXECINSTR | elf.SHF_ALLOC, SectionText},
		{"data", elf.SHF_WRITE | elf.SHF_ALLOC, SectionData},
		{"rodata/bss-like alloc only", elf.SHF_ALLOC, SectionBSS},
		{"debug section, no alloc", 0, SectionUnknown},
	}
	for _, tt := range tests {
		if got := sectionKind(tt.flags); got != tt.want {
			t.Errorf("sectionKind(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestReaderAtRejectsOutOfRangeOffset(t *testing.T) {
	r := readerAt{data: []byte("hello")}

	buf := make([]byte, 2)
	n, err := r.ReadAt(buf, 1)
	if err != nil || n != 2 || string(buf) != "el" {
		t.Fatalf("ReadAt(1) = (%d, %v), buf=%q, want (2, nil), buf=\"el\"", n, err, buf)
	}

	if _, err := r.ReadAt(buf, 100); err == nil {
		t.Fatalf("ReadAt with an offset past the end of data should error")
	}
	if _, err := r.ReadAt(buf, -1); err == nil {
		t.Fatalf("ReadAt with a negative offset should error")
	}
}

func TestReaderAtShortRead(t *testing.T) {
	r := readerAt{data: []byte("ab")}
	buf := make([]byte, 5)
	n, err := r.ReadAt(buf, 0)
	if n != 2 || err == nil {
		t.Fatalf("ReadAt past the available bytes = (%d, %v), want (2, non-nil short-read error)", n, err)
	}
}
