package vm

import "bytes"
import "encoding/binary"
import "testing"

import "mem"

type elfseg_t struct {
	vaddr uint64
	memsz uint64
	flags uint32 // elf p_flags: 1=X 2=W 4=R
	data  []uint8
}

// builds a minimal ELF64 executable image: file header, one PT_LOAD
// program header per segment, then the segment bytes
func mkelf(entry uint64, segs []elfseg_t) []uint8 {
	const ehsize = 64
	const phentsize = 56
	var buf bytes.Buffer
	le := binary.LittleEndian

	ident := [16]uint8{0x7f, 'E', 'L', 'F', 2, 1, 1}
	buf.Write(ident[:])
	binary.Write(&buf, le, uint16(2))   // ET_EXEC
	binary.Write(&buf, le, uint16(243)) // EM_RISCV
	binary.Write(&buf, le, uint32(1))
	binary.Write(&buf, le, entry)
	binary.Write(&buf, le, uint64(ehsize)) // phoff
	binary.Write(&buf, le, uint64(0))      // shoff
	binary.Write(&buf, le, uint32(0))      // flags
	binary.Write(&buf, le, uint16(ehsize))
	binary.Write(&buf, le, uint16(phentsize))
	binary.Write(&buf, le, uint16(len(segs)))
	binary.Write(&buf, le, uint16(0)) // shentsize
	binary.Write(&buf, le, uint16(0)) // shnum
	binary.Write(&buf, le, uint16(0)) // shstrndx

	off := uint64(ehsize + phentsize*len(segs))
	for _, s := range segs {
		binary.Write(&buf, le, uint32(1)) // PT_LOAD
		binary.Write(&buf, le, s.flags)
		binary.Write(&buf, le, off)
		binary.Write(&buf, le, s.vaddr)
		binary.Write(&buf, le, s.vaddr) // paddr
		binary.Write(&buf, le, uint64(len(s.data)))
		binary.Write(&buf, le, s.memsz)
		binary.Write(&buf, le, uint64(mem.PGSIZE))
		off += uint64(len(s.data))
	}
	for _, s := range segs {
		buf.Write(s.data)
	}
	return buf.Bytes()
}

func TestFromElfLayout(t *testing.T) {
	pm := bootphys(t)
	text := make([]uint8, 0x100)
	for i := range text {
		text[i] = uint8(i)
	}
	as, usersp, entry := From_elf(pm, mkelf(0x10000, []elfseg_t{
		{vaddr: 0x10000, memsz: 0x2000, flags: 4 | 1, data: text},
		{vaddr: 0x20000, memsz: 0x1000, flags: 4 | 2, data: []uint8("data bytes")},
	}))
	defer as.Release()

	if entry != 0x10000 {
		t.Fatalf("entry %#x", entry)
	}
	// highest loaded page ends at 0x21000; guard page, then the stack
	want := uintptr(0x21000) + uintptr(mem.PGSIZE) + uintptr(mem.USER_STACK_SIZE)
	if usersp != want {
		t.Fatalf("user sp %#x, want %#x", usersp, want)
	}
	// guard page is unmapped, stack pages are r/w/u
	if as.Mapped(Va_t(0x21000)) {
		t.Fatal("guard page is mapped")
	}
	spte, ok := as.Translate(Va_t(usersp - 8).Vpn())
	if !ok || !spte.Valid() || !spte.Writable() || !spte.User() {
		t.Fatal("stack page not r/w/u")
	}

	// every byte of every segment is reachable through translate
	for i, want := range text {
		va := Va_t(0x10000 + i)
		pte, ok := as.Translate(va.Vpn())
		if !ok || !pte.Valid() {
			t.Fatalf("text va %#x unmapped", uintptr(va))
		}
		if got := pm.Dmap8(pte.Pa())[va.Pgoff()]; got != want {
			t.Fatalf("text byte %v is %#x, want %#x", i, got, want)
		}
	}
	dpte, ok := as.Translate(Va_t(0x20000).Vpn())
	if !ok || !dpte.Valid() {
		t.Fatal("data segment unmapped")
	}
	if got := string(pm.Dmap8(dpte.Pa())[:10]); got != "data bytes" {
		t.Fatalf("data segment holds %q", got)
	}
	// rest of the segment stays zero
	if pm.Dmap8(dpte.Pa())[10] != 0 {
		t.Fatal("segment tail not zero")
	}

	// segment permissions carry the U bit plus the elf flags
	tpte, _ := as.Translate(Va_t(0x10000).Vpn())
	if !tpte.Executable() || !tpte.Readable() || tpte.Writable() || !tpte.User() {
		t.Fatalf("text flags %#x", uint64(tpte))
	}
	if !dpte.Writable() || dpte.Executable() || !dpte.User() {
		t.Fatalf("data flags %#x", uint64(dpte))
	}

	// trap context page: r/w, kernel only, just below the trampoline
	cpte, ok := as.Translate(Va_t(mem.TRAP_CONTEXT).Vpn())
	if !ok || !cpte.Valid() || !cpte.Writable() || cpte.User() {
		t.Fatal("trap context page not kernel r/w")
	}
	// trampoline: shared text page, r|x only
	mpte, ok := as.Translate(Va_t(mem.TRAMPOLINE).Vpn())
	if !ok || mpte.Pa() != mem.Strampoline || !mpte.Executable() || mpte.Writable() {
		t.Fatal("trampoline wrong")
	}
}

func TestFromElfBadMagic(t *testing.T) {
	pm := bootphys(t)
	defer func() {
		if recover() == nil {
			t.Error("bad magic did not panic")
		}
	}()
	From_elf(pm, []uint8{0x7f, 'N', 'O', 'T', 0, 0, 0, 0})
}
