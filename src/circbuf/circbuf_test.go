package circbuf

import "testing"

func TestCircbufCounts(t *testing.T) {
	cb := Mkcb(8)
	if !cb.Empty() || cb.Full() {
		t.Fatal("fresh buffer not empty")
	}
	if cb.Available_read() != 0 || cb.Available_write() != 8 {
		t.Fatalf("bad counts: %v %v", cb.Available_read(), cb.Available_write())
	}
	for i := 0; i < 8; i++ {
		cb.Write_byte(uint8(i))
	}
	if !cb.Full() {
		t.Fatal("buffer should be full")
	}
	if cb.Available_write() != 0 {
		t.Fatalf("full buffer has %v writable", cb.Available_write())
	}
	for i := 0; i < 8; i++ {
		if c := cb.Read_byte(); c != uint8(i) {
			t.Fatalf("read %v, want %v", c, i)
		}
	}
	if !cb.Empty() {
		t.Fatal("drained buffer not empty")
	}
}

// the two availability counters must always sum to the capacity
func TestCircbufInvariant(t *testing.T) {
	cb := Mkcb(5)
	check := func() {
		if cb.Available_read()+cb.Available_write() != 5 {
			t.Fatalf("invariant broken: %v + %v != 5",
				cb.Available_read(), cb.Available_write())
		}
	}
	// drive the buffer through a few wraps with a 3-in 2-out pattern
	var wrote, read uint8
	for step := 0; step < 40; step++ {
		for i := 0; i < 3 && !cb.Full(); i++ {
			cb.Write_byte(wrote)
			wrote++
			check()
		}
		for i := 0; i < 2 && !cb.Empty(); i++ {
			if c := cb.Read_byte(); c != read {
				t.Fatalf("fifo order broken: got %v, want %v", c, read)
			}
			read++
			check()
		}
	}
}

func TestCircbufPanics(t *testing.T) {
	for _, tc := range []struct {
		name string
		op   func(*Circbuf_t)
	}{
		{"read empty", func(cb *Circbuf_t) { cb.Read_byte() }},
		{"write full", func(cb *Circbuf_t) {
			for i := 0; i <= 4; i++ {
				cb.Write_byte(0)
			}
		}},
	} {
		cb := Mkcb(4)
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: expected panic", tc.name)
				}
			}()
			tc.op(cb)
		}()
	}
}
