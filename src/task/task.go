package task

import "sync"

import "defs"
import "fd"
import "fs"
import "mem"
import "vm"

/// Status_t is the lifecycle state of a task.
type Status_t int

const (
	UNINIT Status_t = iota
	READY
	RUNNING
	EXITED
)

// / Context_t is the register-save area handed to the switch primitive.
// / The trap trampoline fills and drains it; the kernel only passes the
// / pointer around.
type Context_t struct {
	Ra uintptr
	Sp uintptr
	S  [12]uintptr
}

// / Task_t is a task control block. The embedded mutex is the task
// / inner lock; it guards every mutable field and is released before
// / any file I/O or context switch (see the lock order in sys).
type Task_t struct {
	Pid defs.Pid_t

	sync.Mutex
	status   Status_t
	stride   uint64
	Ctx      *Context_t
	As       *vm.Vm_t
	Fds      []*fd.Fd_t
	usersp   uintptr
	entry    uintptr
	parent   *Task_t
	children []*Task_t
	exitcode int
}

/// Status returns the task's state.
func (t *Task_t) Status() Status_t {
	t.Lock()
	defer t.Unlock()
	return t.status
}

func (t *Task_t) setstatus(s Status_t) {
	t.Lock()
	t.status = s
	t.Unlock()
}

/// Token returns the satp token of the task's address space.
func (t *Task_t) Token() uintptr {
	t.Lock()
	defer t.Unlock()
	return t.As.Token()
}

/// Fd_alloc returns the lowest free slot in the fd table, growing it
/// up to NFDS. The caller holds the task lock. Returns -1 when the
/// table is full.
func (t *Task_t) Fd_alloc() int {
	for i, f := range t.Fds {
		if f == nil {
			return i
		}
	}
	if len(t.Fds) >= defs.NFDS {
		return -1
	}
	t.Fds = append(t.Fds, nil)
	return len(t.Fds) - 1
}

// fd table layout: stdin, stdout, stderr, then the mailbox at MAIL_FD.
func mkfds() []*fd.Fd_t {
	fds := make([]*fd.Fd_t, defs.MAIL_FD+1)
	fds[0] = fd.Mkstdin()
	fds[1] = fd.Mkstdout()
	fds[2] = fd.Mkstdout()
	fds[defs.MAIL_FD] = &fd.Fd_t{Fops: fs.Mkmails(), Perms: fd.FD_READ | fd.FD_WRITE}
	return fds
}

// / Mktask loads an ELF image into a fresh address space and registers
// / the resulting Ready task with the scheduler.
func Mktask(phys *mem.Physmem_t, img []uint8, parent *Task_t) *Task_t {
	as, usersp, entry := vm.From_elf(phys, img)
	t := &Task_t{
		status: READY,
		stride: defs.BIG_STRIDE / defs.DEFAULT_PRIORITY,
		Ctx:    &Context_t{},
		As:     as,
		Fds:    mkfds(),
		usersp: usersp,
		entry:  entry,
		parent: parent,
	}
	if parent != nil {
		parent.Lock()
		parent.children = append(parent.children, t)
		parent.Unlock()
	}
	Tmgr.Add_task(t)
	return t
}
