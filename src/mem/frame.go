package mem

import "unsafe"

/// Frame_t is exclusive ownership of one physical frame. The frame goes
/// back to the allocator when Free is called; dropping a tracker without
/// freeing it leaks the frame.
type Frame_t struct {
	P_pg  Pa_t
	phys  *Physmem_t
	freed bool
}

/// Frame_alloc hands out a zeroed frame, or ok=false when physical
/// memory is exhausted.
func (phys *Physmem_t) Frame_alloc() (*Frame_t, bool) {
	p_pg, ok := phys._phys_new()
	if !ok {
		return nil, false
	}
	pg := phys.Dmap(p_pg)
	for i := range pg {
		pg[i] = 0
	}
	return &Frame_t{P_pg: p_pg, phys: phys}, true
}

/// Free returns the frame to the allocator.
func (fr *Frame_t) Free() {
	if fr.freed {
		panic("double frame free")
	}
	fr.freed = true
	fr.phys.Refdown(fr.P_pg)
}

/// Ppn returns the physical page number of the frame.
func (fr *Frame_t) Ppn() Pa_t {
	return fr.P_pg >> PGSHIFT
}

/// Pg2pte views a byte page as a table of page table entries.
func Pg2pte(pg *Bytepg_t) *Ptepg_t {
	return (*Ptepg_t)(unsafe.Pointer(pg))
}
