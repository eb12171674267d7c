package sys

import "fmt"

import "defs"
import "fs"
import "mem"
import "task"
import "util"
import "vm"

// / Syscall dispatches a trap from user mode. Every recoverable
// / condition becomes an integer return; nothing unwinds back into
// / user mode.
func Syscall(id int, a0, a1, a2 uintptr) int {
	switch id {
	case defs.SYS_WRITE:
		return sys_write(int(a0), a1, int(a2))
	case defs.SYS_READ:
		return sys_read(int(a0), a1, int(a2))
	case defs.SYS_EXIT:
		sys_exit(int(a0))
		panic("unreachable in sys_exit")
	case defs.SYS_YIELD:
		return sys_yield()
	case defs.SYS_SET_PRIORITY:
		return sys_set_priority(int(a0))
	case defs.SYS_GET_TIME:
		return sys_get_time(a0)
	case defs.SYS_MMAP:
		return sys_mmap(a0, int(a1), int(a2))
	case defs.SYS_MUNMAP:
		return sys_munmap(a0, int(a1))
	case defs.SYS_PIPE:
		return sys_pipe(a0)
	case defs.SYS_MAILREAD:
		return sys_mailread(a0, int(a1))
	case defs.SYS_MAILWRITE:
		return sys_mailwrite(defs.Pid_t(a0), a1, int(a2))
	default:
		panic(fmt.Sprintf("unsupported syscall id: %v", id))
	}
}

func sys_write(fdn int, buf uintptr, n int) int {
	t := task.Tmgr.Current()
	token := t.Token()
	t.Lock()
	if fdn < 0 || fdn >= len(t.Fds) || t.Fds[fdn] == nil {
		t.Unlock()
		return -1
	}
	fops := t.Fds[fdn].Fops
	// release the task lock before the potentially blocking I/O
	t.Unlock()
	chunks, ok := vm.May_translated_bytes(mem.Physmem, token, buf, n)
	if !ok {
		return -1
	}
	did, err := fops.Write(vm.Mkuserbuf(chunks))
	if err != 0 {
		return -1
	}
	return did
}

func sys_read(fdn int, buf uintptr, n int) int {
	t := task.Tmgr.Current()
	token := t.Token()
	t.Lock()
	if fdn < 0 || fdn >= len(t.Fds) || t.Fds[fdn] == nil {
		t.Unlock()
		return -1
	}
	fops := t.Fds[fdn].Fops
	t.Unlock()
	chunks, ok := vm.May_translated_bytes(mem.Physmem, token, buf, n)
	if !ok {
		return -1
	}
	did, err := fops.Read(vm.Mkuserbuf(chunks))
	if err != 0 {
		return -1
	}
	return did
}

func sys_pipe(uptr uintptr) int {
	t := task.Tmgr.Current()
	token := t.Token()
	if _, ok := vm.May_translated_bytes(mem.Physmem, token, uptr, 16); !ok {
		return -1
	}
	r, w := fs.Mkpipe()
	t.Lock()
	rfd := t.Fd_alloc()
	if rfd < 0 {
		t.Unlock()
		return -1
	}
	t.Fds[rfd] = r
	wfd := t.Fd_alloc()
	if wfd < 0 {
		t.Fds[rfd] = nil
		t.Unlock()
		return -1
	}
	t.Fds[wfd] = w
	t.Unlock()
	vm.Translated_refw(mem.Physmem, token, uptr, 8, rfd)
	vm.Translated_refw(mem.Physmem, token, uptr+8, 8, wfd)
	return 0
}

// a zero length is an availability probe: 0 means a message is
// waiting, -1 means none. a real read returns the byte count, or -1
// when the mailbox is empty or the buffer address is unmapped.
func sys_mailread(buf uintptr, n int) int {
	t := task.Tmgr.Current()
	token := t.Token()
	t.Lock()
	mails := t.Fds[defs.MAIL_FD].Fops
	t.Unlock()
	chunks, ok := vm.May_translated_bytes(mem.Physmem, token, buf, n)
	if !ok {
		return -1
	}
	did, err := mails.Read(vm.Mkuserbuf(chunks))
	if err != 0 {
		return -1
	}
	if did == 0 {
		return -1
	}
	if n == 0 {
		return 0
	}
	return did
}

// writes into the target task's mailbox; the buffer is translated
// through the sender's address space.
func sys_mailwrite(pid defs.Pid_t, buf uintptr, n int) int {
	cur := task.Tmgr.Current()
	token := cur.Token()
	t := cur
	if pid != cur.Pid {
		if t = task.Tmgr.Find_task(pid); t == nil {
			return -1
		}
	}
	t.Lock()
	mails := t.Fds[defs.MAIL_FD].Fops
	// drop the target's lock before the copy
	t.Unlock()
	chunks, ok := vm.May_translated_bytes(mem.Physmem, token, buf, n)
	if !ok {
		return -1
	}
	did, err := mails.Write(vm.Mkuserbuf(chunks))
	if err != 0 {
		return -1
	}
	if did == 0 {
		return -1
	}
	if n == 0 {
		return 0
	}
	return did
}

func sys_mmap(start uintptr, length int, port int) int {
	if port&^0x7 != 0 || port&0x7 == 0 {
		return -1
	}
	if start%uintptr(mem.PGSIZE) != 0 {
		return -1
	}
	if length == 0 {
		return 0
	}
	length = util.Roundup(length, mem.PGSIZE)
	perm := vm.PTE_U
	if port&defs.PORT_R != 0 {
		perm |= vm.PTE_R
	}
	if port&defs.PORT_W != 0 {
		perm |= vm.PTE_W
	}
	if port&defs.PORT_X != 0 {
		perm |= vm.PTE_X
	}
	t := task.Tmgr.Current()
	t.Lock()
	defer t.Unlock()
	return t.As.Map_region(vm.Va_t(start), length, perm)
}

func sys_munmap(start uintptr, length int) int {
	if start%uintptr(mem.PGSIZE) != 0 {
		return -1
	}
	length = util.Roundup(length, mem.PGSIZE)
	t := task.Tmgr.Current()
	t.Lock()
	defer t.Unlock()
	return t.As.Unmap_region(vm.Va_t(start), length)
}

func sys_exit(code int) {
	fmt.Printf("[kernel] Application exited with code %v\n", code)
	task.Exit_current_and_run_next(code)
}

func sys_yield() int {
	task.Suspend_current_and_run_next()
	return 0
}

func sys_set_priority(prio int) int {
	return task.Set_current_priority(prio)
}

// writes {secs, usecs} through the current page table.
func sys_get_time(uptr uintptr) int {
	us := Get_time_us()
	t := task.Tmgr.Current()
	token := t.Token()
	if _, ok := vm.May_translated_bytes(mem.Physmem, token, uptr, 16); !ok {
		return -1
	}
	vm.Translated_refw(mem.Physmem, token, uptr, 8, us/USEC_PER_SEC)
	vm.Translated_refw(mem.Physmem, token, uptr+8, 8, us%USEC_PER_SEC)
	return 0
}
