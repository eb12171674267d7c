package fs

import "sync"

import "circbuf"
import "defs"
import "fd"
import "fdops"
import "util"

// Yieldfn is installed by the scheduler at boot. Pipe endpoints call it
// to give up the CPU while waiting for the peer endpoint to make
// progress.
var Yieldfn = func() {}

type pipe_t struct {
	sync.Mutex
	cb      *circbuf.Circbuf_t
	readers int
	writers int
}

/// Mkpipe returns the read and write descriptors of a fresh anonymous
/// pipe sharing one ring buffer.
func Mkpipe() (*fd.Fd_t, *fd.Fd_t) {
	p := &pipe_t{
		cb:      circbuf.Mkcb(defs.PIPE_CAP),
		readers: 1,
		writers: 1,
	}
	r := &fd.Fd_t{Fops: &piperead_t{p: p}, Perms: fd.FD_READ}
	w := &fd.Fd_t{Fops: &pipewrite_t{p: p}, Perms: fd.FD_WRITE}
	return r, w
}

/// piperead_t is the read end of a pipe.
type piperead_t struct {
	p *pipe_t
}

func (pr *piperead_t) Readable() bool { return true }
func (pr *piperead_t) Writable() bool { return false }

// returns a short count when the buffer holds less than requested; EOF
// (0 bytes) once all write ends are closed and the buffer is drained.
func (pr *piperead_t) Read(dst fdops.Userio_i) (int, defs.Err_t) {
	p := pr.p
	if dst.Totalsz() == 0 {
		return 0, 0
	}
	for {
		p.Lock()
		if n := p.cb.Available_read(); n > 0 {
			want := util.Min(n, dst.Remain())
			tmp := make([]uint8, want)
			for i := range tmp {
				tmp[i] = p.cb.Read_byte()
			}
			p.Unlock()
			return dst.Uiowrite(tmp)
		}
		if p.writers == 0 {
			p.Unlock()
			return 0, 0
		}
		p.Unlock()
		Yieldfn()
	}
}

func (pr *piperead_t) Write(src fdops.Userio_i) (int, defs.Err_t) {
	return 0, -defs.EBADF
}

func (pr *piperead_t) Reopen() defs.Err_t {
	p := pr.p
	p.Lock()
	p.readers++
	p.Unlock()
	return 0
}

func (pr *piperead_t) Close() defs.Err_t {
	p := pr.p
	p.Lock()
	p.readers--
	if p.readers < 0 {
		panic("pipe reader underflow")
	}
	p.Unlock()
	return 0
}

/// pipewrite_t is the write end of a pipe.
type pipewrite_t struct {
	p *pipe_t
}

func (pw *pipewrite_t) Readable() bool { return false }
func (pw *pipewrite_t) Writable() bool { return true }

func (pw *pipewrite_t) Read(dst fdops.Userio_i) (int, defs.Err_t) {
	return 0, -defs.EBADF
}

// yields while the buffer is full and readers remain; stops short once
// every read end is closed.
func (pw *pipewrite_t) Write(src fdops.Userio_i) (int, defs.Err_t) {
	p := pw.p
	wrote := 0
	for {
		p.Lock()
		if p.readers == 0 {
			p.Unlock()
			return wrote, 0
		}
		if a := p.cb.Available_write(); a > 0 {
			want := util.Min(a, src.Remain())
			tmp := make([]uint8, want)
			did, err := src.Uioread(tmp)
			if err != 0 {
				p.Unlock()
				return wrote, err
			}
			for _, c := range tmp[:did] {
				p.cb.Write_byte(c)
			}
			wrote += did
		}
		done := src.Remain() == 0
		p.Unlock()
		if done {
			return wrote, 0
		}
		Yieldfn()
	}
}

func (pw *pipewrite_t) Reopen() defs.Err_t {
	p := pw.p
	p.Lock()
	p.writers++
	p.Unlock()
	return 0
}

func (pw *pipewrite_t) Close() defs.Err_t {
	p := pw.p
	p.Lock()
	p.writers--
	if p.writers < 0 {
		panic("pipe writer underflow")
	}
	p.Unlock()
	return 0
}
