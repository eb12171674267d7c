package vm

import "defs"
import "mem"
import "util"

// / Translated_bytes returns physical-memory-backed byte slices that
// / together cover the user range [va, va+length), crossing page
// / boundaries as needed. The whole range must be mapped; the syscall
// / layer uses May_translated_bytes first when the pointer is
// / user-controlled.
func Translated_bytes(phys *mem.Physmem_t, token uintptr, va uintptr, length int) [][]uint8 {
	ret, ok := May_translated_bytes(phys, token, va, length)
	if !ok {
		panic("translation of unmapped user range")
	}
	return ret
}

/// May_translated_bytes is Translated_bytes that reports failure
/// instead of panicking when any page in the range is unmapped.
func May_translated_bytes(phys *mem.Physmem_t, token uintptr, va uintptr, length int) ([][]uint8, bool) {
	pt := Ptfromtoken(phys, token)
	var ret [][]uint8
	end := va + uintptr(length)
	for va < end {
		vpn := Va_t(va).Vpn()
		pte, ok := pt.Translate(vpn)
		if !ok || !pte.Valid() {
			return nil, false
		}
		sz := uintptr((vpn + 1).Va()) - va
		if va+sz > end {
			sz = end - va
		}
		b := phys.Dmap8(pte.Pa() + mem.Pa_t(Va_t(va).Pgoff()))[:sz]
		ret = append(ret, b)
		va += sz
	}
	return ret, true
}

/// Translated_refw writes an sz byte little-endian value at the user
/// address va. The destination must be mapped and must not cross a
/// page boundary.
func Translated_refw(phys *mem.Physmem_t, token uintptr, va uintptr, sz, val int) {
	chunks := Translated_bytes(phys, token, va, sz)
	if len(chunks) != 1 {
		panic("unaligned user word")
	}
	util.Writen(chunks[0], sz, 0, val)
}

// / Userbuf_t assists reading and writing a translated user range. It
// / implements fdops.Userio_i over the chunk list produced by the
// / translation helpers.
type Userbuf_t struct {
	chunks [][]uint8
	// 0 <= off <= len
	off int
	len int
}

/// Mkuserbuf wraps a chunk list in a cursor.
func Mkuserbuf(chunks [][]uint8) *Userbuf_t {
	ub := &Userbuf_t{}
	ub.ub_init(chunks)
	return ub
}

func (ub *Userbuf_t) ub_init(chunks [][]uint8) {
	ub.chunks = chunks
	ub.off = 0
	ub.len = 0
	for _, c := range chunks {
		ub.len += len(c)
	}
}

/// Remain returns the number of unconsumed bytes left in the buffer.
func (ub *Userbuf_t) Remain() int {
	return ub.len - ub.off
}

/// Totalsz reports the total size of the buffer in bytes.
func (ub *Userbuf_t) Totalsz() int {
	return ub.len
}

// copies between the cursor position and buf; the cursor advances by
// the number of bytes copied.
func (ub *Userbuf_t) _tx(buf []uint8, write bool) (int, defs.Err_t) {
	ret := 0
	for len(buf) != 0 && ub.off != ub.len {
		skip := ub.off
		var cur []uint8
		for _, c := range ub.chunks {
			if skip < len(c) {
				cur = c[skip:]
				break
			}
			skip -= len(c)
		}
		var did int
		if write {
			did = copy(cur, buf)
		} else {
			did = copy(buf, cur)
		}
		buf = buf[did:]
		ub.off += did
		ret += did
	}
	return ret, 0
}

/// Uioread copies data from the user range into dst.
func (ub *Userbuf_t) Uioread(dst []uint8) (int, defs.Err_t) {
	return ub._tx(dst, false)
}

/// Uiowrite copies src into the user range.
func (ub *Userbuf_t) Uiowrite(src []uint8) (int, defs.Err_t) {
	return ub._tx(src, true)
}

// / Fakeubuf_t implements the same interface as Userbuf_t but operates
// / on a kernel buffer. It is used when the kernel needs to treat
// / internal memory like user memory.
type Fakeubuf_t struct {
	fbuf []uint8
	len  int
}

/// Fake_init sets up the fake buffer with the provided slice.
func (fb *Fakeubuf_t) Fake_init(buf []uint8) {
	fb.fbuf = buf
	fb.len = len(fb.fbuf)
}

/// Remain returns the number of bytes left in the fake buffer.
func (fb *Fakeubuf_t) Remain() int {
	return len(fb.fbuf)
}

/// Totalsz returns the total length of the fake buffer.
func (fb *Fakeubuf_t) Totalsz() int {
	return fb.len
}

func (fb *Fakeubuf_t) _tx(buf []uint8, tofbuf bool) (int, defs.Err_t) {
	var c int
	if tofbuf {
		c = copy(fb.fbuf, buf)
	} else {
		c = copy(buf, fb.fbuf)
	}
	fb.fbuf = fb.fbuf[c:]
	return c, 0
}

/// Uioread copies from the fake buffer into dst.
func (fb *Fakeubuf_t) Uioread(dst []uint8) (int, defs.Err_t) {
	return fb._tx(dst, false)
}

/// Uiowrite copies src into the fake buffer.
func (fb *Fakeubuf_t) Uiowrite(src []uint8) (int, defs.Err_t) {
	return fb._tx(src, true)
}
