package fs

import "testing"

import "defs"

// kernel-buffer stand-in for a translated user buffer
type kbuf_t struct {
	fbuf []uint8
	len  int
}

func mkkbuf(b []uint8) *kbuf_t {
	return &kbuf_t{fbuf: b, len: len(b)}
}

func (kb *kbuf_t) Remain() int  { return len(kb.fbuf) }
func (kb *kbuf_t) Totalsz() int { return kb.len }

func (kb *kbuf_t) Uioread(dst []uint8) (int, defs.Err_t) {
	c := copy(dst, kb.fbuf)
	kb.fbuf = kb.fbuf[c:]
	return c, 0
}

func (kb *kbuf_t) Uiowrite(src []uint8) (int, defs.Err_t) {
	c := copy(kb.fbuf, src)
	kb.fbuf = kb.fbuf[c:]
	return c, 0
}

func TestPipeFifo(t *testing.T) {
	r, w := Mkpipe()
	if n, err := w.Fops.Write(mkkbuf([]uint8("hello"))); n != 5 || err != 0 {
		t.Fatalf("write returned %v %v", n, err)
	}
	// two short reads drain the buffer in order
	b := make([]uint8, 3)
	if n, _ := r.Fops.Read(mkkbuf(b)); n != 3 || string(b[:n]) != "hel" {
		t.Fatalf("first read %v %q", n, b[:n])
	}
	if n, _ := r.Fops.Read(mkkbuf(b)); n != 2 || string(b[:n]) != "lo" {
		t.Fatalf("second read %v %q", n, b[:n])
	}
	// writer closes; the drained pipe reports eof
	if w.Fops.Close() != 0 {
		t.Fatal("close failed")
	}
	if n, err := r.Fops.Read(mkkbuf(b)); n != 0 || err != 0 {
		t.Fatalf("read after close %v %v, want eof", n, err)
	}
}

func TestPipeShortRead(t *testing.T) {
	r, w := Mkpipe()
	w.Fops.Write(mkkbuf([]uint8("ab")))
	b := make([]uint8, 10)
	// a read returns what is buffered, not the full request
	if n, _ := r.Fops.Read(mkkbuf(b)); n != 2 || string(b[:n]) != "ab" {
		t.Fatalf("read %v %q", n, b[:n])
	}
}

func TestPipeWriterStopsWithoutReaders(t *testing.T) {
	r, w := Mkpipe()
	if r.Fops.Close() != 0 {
		t.Fatal("close failed")
	}
	big := make([]uint8, defs.PIPE_CAP*2)
	// with no read ends the writer must not wait forever
	if n, _ := w.Fops.Write(mkkbuf(big)); n != 0 {
		t.Fatalf("write to readerless pipe returned %v", n)
	}
}

func TestPipeWrapAround(t *testing.T) {
	r, w := Mkpipe()
	b := make([]uint8, defs.PIPE_CAP)
	for round := 0; round < 3; round++ {
		msg := make([]uint8, defs.PIPE_CAP)
		for i := range msg {
			msg[i] = uint8(round*defs.PIPE_CAP + i)
		}
		if n, _ := w.Fops.Write(mkkbuf(msg)); n != defs.PIPE_CAP {
			t.Fatalf("round %v write %v", round, n)
		}
		if n, _ := r.Fops.Read(mkkbuf(b)); n != defs.PIPE_CAP {
			t.Fatalf("round %v read %v", round, n)
		}
		for i := range b {
			if b[i] != uint8(round*defs.PIPE_CAP+i) {
				t.Fatalf("round %v byte %v corrupt", round, i)
			}
		}
	}
}

func TestMailShortReadDrains(t *testing.T) {
	m := Mkmails()
	if n, _ := m.Write(mkkbuf([]uint8("msg1"))); n != 4 {
		t.Fatalf("first write %v", n)
	}
	if n, _ := m.Write(mkkbuf([]uint8("msg2"))); n != 4 {
		t.Fatalf("second write %v", n)
	}
	// short buffer: "msg" comes out, "1" is discarded with the slot
	b := make([]uint8, 3)
	if n, _ := m.Read(mkkbuf(b)); n != 3 || string(b) != "msg" {
		t.Fatalf("short read %v %q", n, b)
	}
	big := make([]uint8, 16)
	if n, _ := m.Read(mkkbuf(big)); n != 4 || string(big[:n]) != "msg2" {
		t.Fatalf("next read %v %q", n, big[:n])
	}
	// empty mailbox: plain read fails with 0, probe reports unavailable
	if n, _ := m.Read(mkkbuf(big)); n != 0 {
		t.Fatalf("read from empty returned %v", n)
	}
	if n, _ := m.Read(mkkbuf(nil)); n != 0 {
		t.Fatalf("probe of empty returned %v", n)
	}
}

func TestMailFull(t *testing.T) {
	m := Mkmails()
	for i := 0; i < defs.MAX_MAIL_NUM; i++ {
		if n, _ := m.Write(mkkbuf([]uint8{uint8(i)})); n != 1 {
			t.Fatalf("write %v returned %v", i, n)
		}
	}
	// all 16 slots hold unread messages; the 17th write fails
	if n, _ := m.Write(mkkbuf([]uint8{0xff})); n != 0 {
		t.Fatalf("write to full mailbox returned %v", n)
	}
	// messages come back in write order
	b := make([]uint8, 1)
	for i := 0; i < defs.MAX_MAIL_NUM; i++ {
		if n, _ := m.Read(mkkbuf(b)); n != 1 || b[0] != uint8(i) {
			t.Fatalf("read %v got %v bytes %v", i, n, b[0])
		}
	}
}

func TestMailProbe(t *testing.T) {
	m := Mkmails()
	// empty: read probe 0, write probe 1
	if n, _ := m.Read(mkkbuf(nil)); n != 0 {
		t.Fatalf("read probe on empty: %v", n)
	}
	if n, _ := m.Write(mkkbuf(nil)); n != 1 {
		t.Fatalf("write probe on empty: %v", n)
	}
	m.Write(mkkbuf([]uint8("ping")))
	if n, _ := m.Read(mkkbuf(nil)); n != 1 {
		t.Fatalf("read probe with mail: %v", n)
	}
	// probes must not move the cursors
	b := make([]uint8, 8)
	if n, _ := m.Read(mkkbuf(b)); n != 4 || string(b[:n]) != "ping" {
		t.Fatalf("read after probes %v %q", n, b[:n])
	}
}

func TestMailLongMessageTruncated(t *testing.T) {
	m := Mkmails()
	big := make([]uint8, defs.MAIL_CAP+100)
	// a message larger than a slot stores only the slot's capacity
	if n, _ := m.Write(mkkbuf(big)); n != defs.MAIL_CAP {
		t.Fatalf("oversize write stored %v", n)
	}
	out := make([]uint8, defs.MAIL_CAP+100)
	if n, _ := m.Read(mkkbuf(out)); n != defs.MAIL_CAP {
		t.Fatalf("oversize read returned %v", n)
	}
}
