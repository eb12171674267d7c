package fs

import "sync"

import "circbuf"
import "defs"
import "fdops"

// / Mails_t is a task's mailbox: a ring of MAX_MAIL_NUM independent
// / ring buffers. Each slot holds one message; a message is read whole
// / or its tail is discarded. The read and write cursors advance
// / independently and mail operations never block.
type Mails_t struct {
	sync.Mutex
	mails      [defs.MAX_MAIL_NUM]*circbuf.Circbuf_t
	prev_read  int
	prev_write int
}

/// Mkmails returns an empty mailbox.
func Mkmails() *Mails_t {
	m := &Mails_t{}
	for i := range m.mails {
		m.mails[i] = circbuf.Mkcb(defs.MAIL_CAP)
	}
	return m
}

func (m *Mails_t) Readable() bool { return true }
func (m *Mails_t) Writable() bool { return true }

// / Read consumes the slot after the read cursor. A zero length dst is
// / a probe: 1 if a message is waiting, else 0, cursors untouched. A
// / dst shorter than the message drains the rest of the slot. Returns
// / the number of bytes copied out, 0 when no message is waiting.
func (m *Mails_t) Read(dst fdops.Userio_i) (int, defs.Err_t) {
	m.Lock()
	defer m.Unlock()

	next := (m.prev_read + 1) % defs.MAX_MAIL_NUM
	avail := m.mails[next].Available_read()
	if dst.Totalsz() == 0 {
		if avail == 0 {
			return 0, 0
		}
		return 1, 0
	}
	if avail == 0 {
		return 0, 0
	}
	tmp := make([]uint8, avail)
	for i := range tmp {
		tmp[i] = m.mails[next].Read_byte()
	}
	did, err := dst.Uiowrite(tmp)
	if err != 0 {
		return did, err
	}
	if m.mails[next].Available_read() != 0 {
		panic("mail slot not drained")
	}
	m.prev_read = next
	return did, 0
}

// / Write produces into the slot after the write cursor. A zero length
// / src is a probe: 1 if the slot is free, else 0. A nonempty slot
// / fails with 0; a message is never split across slots. Returns the
// / number of bytes stored.
func (m *Mails_t) Write(src fdops.Userio_i) (int, defs.Err_t) {
	m.Lock()
	defer m.Unlock()

	next := (m.prev_write + 1) % defs.MAX_MAIL_NUM
	if src.Totalsz() == 0 {
		if m.mails[next].Available_read() != 0 {
			return 0, 0
		}
		return 1, 0
	}
	if m.mails[next].Available_read() != 0 {
		// unread message still in the slot
		return 0, 0
	}
	tmp := make([]uint8, m.mails[next].Available_write())
	did, err := src.Uioread(tmp)
	if err != 0 {
		return 0, err
	}
	for _, c := range tmp[:did] {
		m.mails[next].Write_byte(c)
	}
	m.prev_write = next
	return did, 0
}

func (m *Mails_t) Reopen() defs.Err_t { return 0 }
func (m *Mails_t) Close() defs.Err_t  { return 0 }
