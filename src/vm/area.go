package vm

import "mem"
import "util"

/// Maptype_t selects how a map area backs its pages.
type Maptype_t int

const (
	/// MAP_IDENTICAL maps each page to the equal physical address; used
	/// for kernel sections. The area owns no frames.
	MAP_IDENTICAL Maptype_t = iota
	/// MAP_FRAMED demand-allocates a frame per page; the area owns the
	/// frames and frees them on unmap.
	MAP_FRAMED
)

/// Maparea_t is a half-open virtual page range with one map type and
/// one permission set.
type Maparea_t struct {
	start  Vpn_t
	end    Vpn_t
	kind   Maptype_t
	perm   Pte_t
	frames map[Vpn_t]*mem.Frame_t
}

/// Mkarea builds an area covering [startva floor, endva ceil).
func Mkarea(startva, endva Va_t, kind Maptype_t, perm Pte_t) *Maparea_t {
	if perm&^PERM_RWXU != 0 {
		panic("bad area perms")
	}
	return &Maparea_t{
		start:  startva.Vpn(),
		end:    endva.Vpn_ceil(),
		kind:   kind,
		perm:   perm,
		frames: make(map[Vpn_t]*mem.Frame_t),
	}
}

/// Start returns the first VPN of the area.
func (ma *Maparea_t) Start() Vpn_t { return ma.start }

/// End returns the VPN one past the area.
func (ma *Maparea_t) End() Vpn_t { return ma.end }

/// Perm returns the area's permission bits.
func (ma *Maparea_t) Perm() Pte_t { return ma.perm }

/// Pages returns the number of pages the area covers.
func (ma *Maparea_t) Pages() int { return int(ma.end - ma.start) }

func (ma *Maparea_t) map_one(pt *Pagetable_t, vpn Vpn_t) {
	var pa mem.Pa_t
	switch ma.kind {
	case MAP_IDENTICAL:
		pa = mem.Pa_t(vpn.Va())
	case MAP_FRAMED:
		fr, ok := pt.phys.Frame_alloc()
		if !ok {
			panic("out of user frames")
		}
		ma.frames[vpn] = fr
		pa = fr.P_pg
	}
	pt.Map(vpn, pa, ma.perm)
}

func (ma *Maparea_t) unmap_one(pt *Pagetable_t, vpn Vpn_t) {
	if ma.kind == MAP_FRAMED {
		fr, ok := ma.frames[vpn]
		if !ok {
			panic("framed page without frame")
		}
		fr.Free()
		delete(ma.frames, vpn)
	}
	pt.Unmap(vpn)
}

/// Map installs the whole range into pt.
func (ma *Maparea_t) Map(pt *Pagetable_t) {
	for vpn := ma.start; vpn < ma.end; vpn++ {
		ma.map_one(pt, vpn)
	}
}

/// Unmap removes the whole range from pt, returning owned frames.
func (ma *Maparea_t) Unmap(pt *Pagetable_t) {
	for vpn := ma.start; vpn < ma.end; vpn++ {
		ma.unmap_one(pt, vpn)
	}
}

/// Copy_data copies data into the first pages of a framed area, page by
/// page starting at offset 0 of each frame. The slice may be shorter
/// than the area; trailing pages stay zero.
func (ma *Maparea_t) Copy_data(pt *Pagetable_t, data []uint8) {
	if ma.kind != MAP_FRAMED {
		panic("copy into identical area")
	}
	vpn := ma.start
	for off := 0; off < len(data); off += mem.PGSIZE {
		src := data[off:util.Min(len(data), off+mem.PGSIZE)]
		pte, ok := pt.Translate(vpn)
		if !ok || !pte.Valid() {
			panic("copy into unmapped page")
		}
		dst := pt.phys.Dmap(pte.Pa())
		copy(dst[:len(src)], src)
		vpn++
	}
}
