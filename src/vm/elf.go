package vm

import "bytes"
import "debug/elf"

import "mem"

// / From_elf builds a user address space from an ELF image: one framed
// / area per PT_LOAD segment (U plus the segment's R/W/X), then a guard
// / page, the user stack, and the trap context page below the
// / trampoline. Returns the space, the initial user stack pointer and
// / the entry point. A malformed image is a loader bug and panics.
func From_elf(phys *mem.Physmem_t, data []uint8) (*Vm_t, uintptr, uintptr) {
	if len(data) < 4 || data[0] != 0x7f || data[1] != 'E' || data[2] != 'L' || data[3] != 'F' {
		panic("invalid elf")
	}
	ef, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		panic("invalid elf: " + err.Error())
	}
	as := Mkbare(phys)
	as.map_trampoline()
	var maxend Vpn_t
	for _, ph := range ef.Progs {
		if ph.Type != elf.PT_LOAD {
			continue
		}
		startva := Va_t(ph.Vaddr)
		endva := Va_t(ph.Vaddr + ph.Memsz)
		perm := PTE_U
		if ph.Flags&elf.PF_R != 0 {
			perm |= PTE_R
		}
		if ph.Flags&elf.PF_W != 0 {
			perm |= PTE_W
		}
		if ph.Flags&elf.PF_X != 0 {
			perm |= PTE_X
		}
		ma := Mkarea(startva, endva, MAP_FRAMED, perm)
		if ma.End() > maxend {
			maxend = ma.End()
		}
		as.push(ma, data[ph.Off:ph.Off+ph.Filesz])
	}
	// guard page, then the user stack
	stackbottom := uintptr(maxend.Va()) + uintptr(mem.PGSIZE)
	stacktop := stackbottom + uintptr(mem.USER_STACK_SIZE)
	as.push(Mkarea(Va_t(stackbottom), Va_t(stacktop), MAP_FRAMED,
		PTE_R|PTE_W|PTE_U), nil)
	// trap context page, just below the trampoline
	as.push(Mkarea(Va_t(mem.TRAP_CONTEXT), Va_t(mem.TRAMPOLINE), MAP_FRAMED,
		PTE_R|PTE_W), nil)
	return as, stacktop, uintptr(ef.Entry)
}
