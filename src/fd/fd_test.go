package fd

import "testing"

import "defs"
import "fdops"

// countfops_t counts endpoint references for the duplication tests
type countfops_t struct {
	refs    int
	reopens int
	fail    bool
}

func (c *countfops_t) Readable() bool { return true }
func (c *countfops_t) Writable() bool { return true }

func (c *countfops_t) Read(dst fdops.Userio_i) (int, defs.Err_t) {
	return 0, 0
}

func (c *countfops_t) Write(src fdops.Userio_i) (int, defs.Err_t) {
	return 0, 0
}

func (c *countfops_t) Reopen() defs.Err_t {
	c.reopens++
	if c.fail {
		return -defs.ENOMEM
	}
	c.refs++
	return 0
}

func (c *countfops_t) Close() defs.Err_t {
	c.refs--
	return 0
}

func TestDupfd(t *testing.T) {
	ops := &countfops_t{refs: 1}
	f := &Fd_t{Fops: ops, Perms: FD_READ | FD_WRITE}
	nf, err := Dupfd(f)
	if err != 0 {
		t.Fatalf("dup failed: %v", err)
	}
	if nf == f {
		t.Fatal("dup returned the same slot")
	}
	if nf.Fops != f.Fops || nf.Perms != f.Perms {
		t.Fatal("dup changed endpoint or mode")
	}
	if ops.refs != 2 {
		t.Fatalf("endpoint holds %v refs, want 2", ops.refs)
	}
}

func TestDupfdFailure(t *testing.T) {
	ops := &countfops_t{refs: 1, fail: true}
	f := &Fd_t{Fops: ops, Perms: FD_READ}
	if nf, err := Dupfd(f); err == 0 || nf != nil {
		t.Fatalf("dup of a dying endpoint succeeded: %v %v", nf, err)
	}
	if ops.refs != 1 {
		t.Fatalf("failed dup leaked a reference: %v", ops.refs)
	}
}
