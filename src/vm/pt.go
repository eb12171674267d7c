package vm

import "fmt"

import "mem"

/// Pte_t is an Sv39 page table entry: flags in the low 10 bits, the
/// physical page number in bits [53:10].
type Pte_t uint64

/// PTE flag bits. A leaf entry has at least one of R/W/X set; an
/// intermediate entry has V set and R/W/X clear.
const (
	PTE_V Pte_t = 1 << 0
	PTE_R Pte_t = 1 << 1
	PTE_W Pte_t = 1 << 2
	PTE_X Pte_t = 1 << 3
	PTE_U Pte_t = 1 << 4
	PTE_G Pte_t = 1 << 5
	PTE_A Pte_t = 1 << 6
	PTE_D Pte_t = 1 << 7
)

/// PERM_RWXU masks the permission bits a map area may carry.
const PERM_RWXU Pte_t = PTE_R | PTE_W | PTE_X | PTE_U

/// Mkpte builds an entry pointing at the frame containing pa.
func Mkpte(pa mem.Pa_t, flags Pte_t) Pte_t {
	return Pte_t(pa>>mem.PGSHIFT)<<10 | flags
}

/// Pa returns the physical address of the frame the entry points to.
func (pte Pte_t) Pa() mem.Pa_t {
	return mem.Pa_t(pte>>10&(1<<44-1)) << mem.PGSHIFT
}

/// Valid reports whether the V bit is set.
func (pte Pte_t) Valid() bool { return pte&PTE_V != 0 }

/// Readable reports the R bit.
func (pte Pte_t) Readable() bool { return pte&PTE_R != 0 }

/// Writable reports the W bit.
func (pte Pte_t) Writable() bool { return pte&PTE_W != 0 }

/// Executable reports the X bit.
func (pte Pte_t) Executable() bool { return pte&PTE_X != 0 }

/// User reports the U bit.
func (pte Pte_t) User() bool { return pte&PTE_U != 0 }

/// Leaf reports whether the entry maps a page rather than a next-level
/// table.
func (pte Pte_t) Leaf() bool { return pte&(PTE_R|PTE_W|PTE_X) != 0 }

/// Pagetable_t owns a root frame and the intermediate-level frames
/// created on demand by Map. Leaf data frames belong to map areas, not
/// to the page table.
type Pagetable_t struct {
	phys   *mem.Physmem_t
	rootpa mem.Pa_t
	frames []*mem.Frame_t
}

/// Mkpt allocates a page table with a zeroed root frame.
func Mkpt(phys *mem.Physmem_t) *Pagetable_t {
	fr, ok := phys.Frame_alloc()
	if !ok {
		panic("out of frames for page table root")
	}
	return &Pagetable_t{
		phys:   phys,
		rootpa: fr.P_pg,
		frames: []*mem.Frame_t{fr},
	}
}

/// Ptfromtoken builds a read-only walker over the page table named by a
/// satp token. The walker owns no frames.
func Ptfromtoken(phys *mem.Physmem_t, token uintptr) *Pagetable_t {
	return &Pagetable_t{
		phys:   phys,
		rootpa: mem.Pa_t(token&(1<<44-1)) << mem.PGSHIFT,
	}
}

/// Token encodes the root PPN with the Sv39 mode bits, suitable for the
/// satp register.
func (pt *Pagetable_t) Token() uintptr {
	return uintptr(8)<<60 | uintptr(pt.rootpa>>mem.PGSHIFT)
}

func (pt *Pagetable_t) ptes(pa mem.Pa_t) *mem.Ptepg_t {
	return mem.Pg2pte(pt.phys.Dmap(pa))
}

// walks to the leaf slot, allocating missing intermediate levels. each
// created level gets a fresh frame whose PPN goes into the parent entry
// with V set and R/W/X clear.
func (pt *Pagetable_t) find_pte_create(vpn Vpn_t) *uint64 {
	idxs := vpn.Indexes()
	pa := pt.rootpa
	for lvl := 0; lvl < 2; lvl++ {
		slot := &pt.ptes(pa)[idxs[lvl]]
		if !Pte_t(*slot).Valid() {
			fr, ok := pt.phys.Frame_alloc()
			if !ok {
				panic("out of frames for page table")
			}
			pt.frames = append(pt.frames, fr)
			*slot = uint64(Mkpte(fr.P_pg, PTE_V))
		}
		pa = Pte_t(*slot).Pa()
	}
	return &pt.ptes(pa)[idxs[2]]
}

func (pt *Pagetable_t) find_pte(vpn Vpn_t) *uint64 {
	idxs := vpn.Indexes()
	pa := pt.rootpa
	for lvl := 0; lvl < 2; lvl++ {
		slot := &pt.ptes(pa)[idxs[lvl]]
		if !Pte_t(*slot).Valid() {
			return nil
		}
		pa = Pte_t(*slot).Pa()
	}
	return &pt.ptes(pa)[idxs[2]]
}

/// Map installs a leaf entry for vpn pointing at the frame containing
/// pa. Mapping over a valid leaf is a kernel bug and panics; the
/// address space layer guarantees it via overlap checks.
func (pt *Pagetable_t) Map(vpn Vpn_t, pa mem.Pa_t, flags Pte_t) {
	slot := pt.find_pte_create(vpn)
	if Pte_t(*slot).Valid() {
		panic(fmt.Sprintf("vpn %#x is mapped before mapping", uintptr(vpn)))
	}
	*slot = uint64(Mkpte(pa, flags|PTE_V))
}

/// Unmap clears the leaf entry for vpn. Intermediate frames are
/// retained. Unmapping an invalid leaf panics.
func (pt *Pagetable_t) Unmap(vpn Vpn_t) {
	slot := pt.find_pte(vpn)
	if slot == nil || !Pte_t(*slot).Valid() {
		panic(fmt.Sprintf("vpn %#x is invalid before unmapping", uintptr(vpn)))
	}
	*slot = 0
}

/// Translate returns the leaf entry for vpn. ok is false when an
/// intermediate level is missing; a returned entry may still have V
/// clear.
func (pt *Pagetable_t) Translate(vpn Vpn_t) (Pte_t, bool) {
	slot := pt.find_pte(vpn)
	if slot == nil {
		return 0, false
	}
	return Pte_t(*slot), true
}

/// Release returns the root and all intermediate frames to the
/// allocator. The table must not be used afterwards.
func (pt *Pagetable_t) Release() {
	for _, fr := range pt.frames {
		fr.Free()
	}
	pt.frames = nil
}
