package task

import "sync"
import "sync/atomic"

import "defs"

// A pid table with a lock-free Get(). Get is the hot path: every
// cross-task mail write resolves its target here.

type pelem_t struct {
	pid  defs.Pid_t
	task *Task_t
	next atomic.Pointer[pelem_t]
}

type pbucket_t struct {
	sync.Mutex
	first atomic.Pointer[pelem_t]
}

type pidtab_t struct {
	table []pbucket_t
}

func mkpidtab(size int) *pidtab_t {
	return &pidtab_t{table: make([]pbucket_t, size)}
}

func (pt *pidtab_t) bucket(pid defs.Pid_t) *pbucket_t {
	h := uint32(pid) * 2654435761
	return &pt.table[h%uint32(len(pt.table))]
}

/// Get looks the pid up without taking any lock.
func (pt *pidtab_t) Get(pid defs.Pid_t) (*Task_t, bool) {
	for e := pt.bucket(pid).first.Load(); e != nil; e = e.next.Load() {
		if e.pid == pid {
			return e.task, true
		}
	}
	return nil, false
}

/// Set inserts a pid; inserting a live pid twice is a bug.
func (pt *pidtab_t) Set(pid defs.Pid_t, t *Task_t) {
	b := pt.bucket(pid)
	b.Lock()
	defer b.Unlock()
	for e := b.first.Load(); e != nil; e = e.next.Load() {
		if e.pid == pid {
			panic("pid registered twice")
		}
	}
	n := &pelem_t{pid: pid, task: t}
	n.next.Store(b.first.Load())
	b.first.Store(n)
}

/// Del removes a pid; the pid must be present.
func (pt *pidtab_t) Del(pid defs.Pid_t) {
	b := pt.bucket(pid)
	b.Lock()
	defer b.Unlock()
	var last *pelem_t
	for e := b.first.Load(); e != nil; e = e.next.Load() {
		if e.pid == pid {
			if last == nil {
				b.first.Store(e.next.Load())
			} else {
				last.next.Store(e.next.Load())
			}
			return
		}
		last = e
	}
	panic("del of non-existing pid")
}
