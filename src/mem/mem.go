package mem

import "fmt"
import "sync"

/// PGSHIFT is the base-2 exponent for the page size.
const PGSHIFT uint = 12

/// PGSIZE is the size of a single page in bytes.
const PGSIZE int = 1 << PGSHIFT

/// PGOFFSET masks offsets within a page.
const PGOFFSET Pa_t = 0xfff

/// PGMASK masks the page number of an address.
const PGMASK Pa_t = ^(PGOFFSET)

/// Pa_t represents a physical address.
type Pa_t uintptr

/// Bytepg_t is a byte addressed page.
type Bytepg_t [PGSIZE]uint8

/// Ptepg_t views a page as a table of 512 page table entries.
type Ptepg_t [512]uint64

// Physical layout of the modeled machine. The kernel image is linked at
// KERNBASE; the trampoline occupies the first text page. Everything from
// Ekernel up to MEMORY_END feeds the frame allocator.
const (
	PHYSBASE    Pa_t = 0x80000000
	KERNBASE    Pa_t = 0x80200000
	Stext       Pa_t = KERNBASE
	Strampoline Pa_t = Stext
	Etext       Pa_t = Stext + 0x40000
	Srodata     Pa_t = Etext
	Erodata     Pa_t = Srodata + 0x10000
	Sdata       Pa_t = Erodata
	Edata       Pa_t = Sdata + 0x10000
	Sbss        Pa_t = Edata
	Ebss        Pa_t = Sbss + 0x20000
	Ekernel     Pa_t = Ebss
	MEMORY_END  Pa_t = 0x80800000
)

/// USER_STACK_SIZE is the size of each task's user stack.
const USER_STACK_SIZE int = 2 * PGSIZE

/// TRAMPOLINE is the highest page of every address space.
const TRAMPOLINE uintptr = 1<<39 - uintptr(PGSIZE)

/// TRAP_CONTEXT is the per-task trap frame page, just below the trampoline.
const TRAP_CONTEXT uintptr = TRAMPOLINE - uintptr(PGSIZE)

func pgn(p Pa_t) uint32 {
	return uint32(p >> PGSHIFT)
}

/// Physpg_t describes a single physical page.
type Physpg_t struct {
	Refcnt int32
	// index into pgs of next page on free list
	nexti uint32
}

/// Physmem_t manages all physical memory for the modeled machine. Pages
/// are backed by pages[]; the direct map is an index into that slice.
type Physmem_t struct {
	sync.Mutex
	pgs     []Physpg_t
	pages   []Bytepg_t
	startn  uint32
	freei   uint32
	freelen int32
}

/// Physmem is the global physical memory allocator instance.
var Physmem = &Physmem_t{}

/// Phys_init initializes the global allocator to cover
/// [PHYSBASE, MEMORY_END); only frames at or above Ekernel are placed on
/// the free list. The kernel image frames stay permanently referenced.
func Phys_init() *Physmem_t {
	phys := Physmem
	n := int(MEMORY_END-PHYSBASE) / PGSIZE
	phys.pgs = make([]Physpg_t, n)
	phys.pages = make([]Bytepg_t, n)
	phys.startn = pgn(PHYSBASE)
	phys.freei = ^uint32(0)
	phys.freelen = 0
	for i := range phys.pgs {
		phys.pgs[i].Refcnt = 1
		phys.pgs[i].nexti = ^uint32(0)
	}
	// free pool, built back to front so low frames come off first
	first := int(pgn(Ekernel) - phys.startn)
	for i := n - 1; i >= first; i-- {
		phys.pgs[i].Refcnt = 0
		phys.pgs[i].nexti = phys.freei
		phys.freei = uint32(i)
		phys.freelen++
	}
	fmt.Printf("[kernel] %v frames available (%vKB)\n", phys.freelen,
		int(phys.freelen)*PGSIZE>>10)
	return phys
}

func (phys *Physmem_t) idx(p Pa_t) uint32 {
	i := pgn(p) - phys.startn
	if int(i) >= len(phys.pgs) {
		panic("pa out of range")
	}
	return i
}

/// Refup increments the reference count of a page.
func (phys *Physmem_t) Refup(p_pg Pa_t) {
	phys.Lock()
	defer phys.Unlock()
	c := &phys.pgs[phys.idx(p_pg)].Refcnt
	*c++
	if *c <= 0 {
		panic("wut")
	}
}

/// Refdown decrements the reference count of a page and returns it to
/// the free list when the count reaches zero. It reports whether the
/// page was freed.
func (phys *Physmem_t) Refdown(p_pg Pa_t) bool {
	phys.Lock()
	defer phys.Unlock()
	i := phys.idx(p_pg)
	c := &phys.pgs[i].Refcnt
	*c--
	if *c < 0 {
		panic("refcnt underflow")
	}
	if *c != 0 {
		return false
	}
	phys.pgs[i].nexti = phys.freei
	phys.freei = i
	phys.freelen++
	return true
}

/// Refcnt returns the current reference count of a page.
func (phys *Physmem_t) Refcnt(p_pg Pa_t) int {
	phys.Lock()
	defer phys.Unlock()
	return int(phys.pgs[phys.idx(p_pg)].Refcnt)
}

// pops a frame off the free list; zeroing is the caller's job
func (phys *Physmem_t) _phys_new() (Pa_t, bool) {
	phys.Lock()
	defer phys.Unlock()
	ff := phys.freei
	if ff == ^uint32(0) {
		return 0, false
	}
	if phys.pgs[ff].Refcnt != 0 {
		panic("free page with live refs")
	}
	phys.freei = phys.pgs[ff].nexti
	phys.freelen--
	if phys.freelen < 0 {
		panic("no")
	}
	phys.pgs[ff].Refcnt = 1
	return Pa_t(ff+phys.startn) << PGSHIFT, true
}

/// Dmap converts a physical address into its backing page.
func (phys *Physmem_t) Dmap(p Pa_t) *Bytepg_t {
	return &phys.pages[phys.idx(p&PGMASK)]
}

/// Dmap8 returns a byte slice starting at the physical address p and
/// running to the end of its page.
func (phys *Physmem_t) Dmap8(p Pa_t) []uint8 {
	pg := phys.Dmap(p)
	off := p & PGOFFSET
	return pg[off:]
}

/// Pgcount returns the number of free frames.
func (phys *Physmem_t) Pgcount() int {
	phys.Lock()
	defer phys.Unlock()
	return int(phys.freelen)
}
