package vm

import "fmt"
import "sync"

import "mem"

// / Vm_t represents an address space: one page table plus an ordered
// / collection of map areas. The mutex protects modifications to areas
// / and the page table; each Vm_t is owned by one task and touched by
// / other tasks only through the map/unmap path.
type Vm_t struct {
	sync.Mutex

	pt    *Pagetable_t
	areas []*Maparea_t
}

/// Mkbare returns an empty address space: fresh page table, no areas,
/// no trampoline.
func Mkbare(phys *mem.Physmem_t) *Vm_t {
	return &Vm_t{pt: Mkpt(phys)}
}

/// Token returns the satp token of this space.
func (as *Vm_t) Token() uintptr {
	return as.pt.Token()
}

// the trampoline page is mapped at the same virtual address in every
// space so the root swap can happen under it; it is not tracked in
// areas.
func (as *Vm_t) map_trampoline() {
	as.pt.Map(Va_t(mem.TRAMPOLINE).Vpn(), mem.Strampoline, PTE_R|PTE_X)
}

func (as *Vm_t) push(ma *Maparea_t, data []uint8) {
	ma.Map(as.pt)
	if data != nil {
		ma.Copy_data(as.pt, data)
	}
	as.areas = append(as.areas, ma)
}

/// Mkkernel builds the kernel address space: identity mappings for the
/// kernel sections and the physical memory tail, plus the trampoline.
func Mkkernel(phys *mem.Physmem_t) *Vm_t {
	as := Mkbare(phys)
	as.map_trampoline()
	fmt.Printf("[kernel] .text   [%#x, %#x)\n", uintptr(mem.Stext), uintptr(mem.Etext))
	fmt.Printf("[kernel] .rodata [%#x, %#x)\n", uintptr(mem.Srodata), uintptr(mem.Erodata))
	fmt.Printf("[kernel] .data   [%#x, %#x)\n", uintptr(mem.Sdata), uintptr(mem.Edata))
	fmt.Printf("[kernel] .bss    [%#x, %#x)\n", uintptr(mem.Sbss), uintptr(mem.Ebss))
	as.push(Mkarea(Va_t(mem.Stext), Va_t(mem.Etext), MAP_IDENTICAL, PTE_R|PTE_X), nil)
	as.push(Mkarea(Va_t(mem.Srodata), Va_t(mem.Erodata), MAP_IDENTICAL, PTE_R), nil)
	as.push(Mkarea(Va_t(mem.Sdata), Va_t(mem.Edata), MAP_IDENTICAL, PTE_R|PTE_W), nil)
	as.push(Mkarea(Va_t(mem.Sbss), Va_t(mem.Ebss), MAP_IDENTICAL, PTE_R|PTE_W), nil)
	as.push(Mkarea(Va_t(mem.Ekernel), Va_t(mem.MEMORY_END), MAP_IDENTICAL, PTE_R|PTE_W), nil)
	return as
}

/// Translate returns the leaf entry for vpn.
func (as *Vm_t) Translate(vpn Vpn_t) (Pte_t, bool) {
	return as.pt.Translate(vpn)
}

/// Mapped reports whether va has a valid leaf mapping.
func (as *Vm_t) Mapped(va Va_t) bool {
	pte, ok := as.pt.Translate(va.Vpn())
	return ok && pte.Valid()
}

/// Areas returns the number of map areas, for diagnostics.
func (as *Vm_t) Areas() int {
	return len(as.areas)
}

/// Map_region services a map request for [start, start+length). The
/// range must not intersect any existing area; on overlap the request
/// fails with -1 and a log line. Returns length on success. A zero
/// length request succeeds and changes nothing.
func (as *Vm_t) Map_region(start Va_t, length int, perm Pte_t) int {
	if length == 0 {
		return 0
	}
	svpn := start.Vpn()
	evpn := Va_t(uintptr(start) + uintptr(length)).Vpn_ceil()
	for _, ma := range as.areas {
		maxstart := ma.start
		if svpn > maxstart {
			maxstart = svpn
		}
		minend := ma.end
		if evpn < minend {
			minend = evpn
		}
		if maxstart < minend {
			fmt.Printf("[kernel] map overlap: [%#x, %#x) vs [%#x, %#x)\n",
				uintptr(svpn), uintptr(evpn), uintptr(ma.start), uintptr(ma.end))
			return -1
		}
	}
	ma := Mkarea(start, Va_t(uintptr(start)+uintptr(length)), MAP_FRAMED, perm)
	as.push(ma, nil)
	return length
}

/// Unmap_region services an unmap request for [start, start+length).
/// Every page in the range must be covered by some area; otherwise the
/// request fails with -1. Any area that overlaps the range is unmapped
/// and removed whole, even where it extends past the range. Returns
/// length on success.
func (as *Vm_t) Unmap_region(start Va_t, length int) int {
	svpn := start.Vpn()
	evpn := Va_t(uintptr(start) + uintptr(length)).Vpn_ceil()
	for vpn := svpn; vpn < evpn; vpn++ {
		covered := false
		for _, ma := range as.areas {
			if ma.start <= vpn && vpn < ma.end {
				covered = true
				break
			}
		}
		if !covered {
			fmt.Printf("[kernel] unmap of unmapped vpn %#x\n", uintptr(vpn))
			return -1
		}
	}
	var hit []int
	for i, ma := range as.areas {
		maxstart := ma.start
		if svpn > maxstart {
			maxstart = svpn
		}
		minend := ma.end
		if evpn < minend {
			minend = evpn
		}
		if maxstart < minend {
			hit = append(hit, i)
		}
	}
	// remove back to front so indices stay valid
	for i := len(hit) - 1; i >= 0; i-- {
		idx := hit[i]
		as.areas[idx].Unmap(as.pt)
		as.areas = append(as.areas[:idx], as.areas[idx+1:]...)
	}
	return length
}

/// Activate loads this space's token into satp and fences the TLB.
/// Per-page fences are unnecessary: the root only changes at context
/// switch.
func (as *Vm_t) Activate() {
	Satpwritefn(as.Token())
	Sfencevmafn()
}

/// Release tears the space down: all areas are unmapped (returning
/// their frames) and the page table frames are freed.
func (as *Vm_t) Release() {
	for _, ma := range as.areas {
		ma.Unmap(as.pt)
	}
	as.areas = nil
	as.pt.Release()
}
