package fdops

import "defs"

/// Userio_i is a cursor over a byte range, usually user memory. Uioread
/// copies out of the range, Uiowrite copies into it; both advance the
/// cursor and may transfer fewer bytes than requested.
type Userio_i interface {
	Uioread(dst []uint8) (int, defs.Err_t)
	Uiowrite(src []uint8) (int, defs.Err_t)
	Remain() int
	Totalsz() int
}

/// Fdops_i is the uniform file endpoint used by the fd table: console
/// devices, pipe ends and mailboxes all implement it.
type Fdops_i interface {
	Readable() bool
	Writable() bool
	Read(dst Userio_i) (int, defs.Err_t)
	Write(src Userio_i) (int, defs.Err_t)
	Reopen() defs.Err_t
	Close() defs.Err_t
}
