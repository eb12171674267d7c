package task

import "container/heap"
import "sync"

import "defs"
import "fs"

// Stride scheduling. Each task accumulates a pass value; the runnable
// task with the minimum pass runs next. pass arithmetic wraps, so the
// comparison uses a BIG_STRIDE/2 window: live passes never spread
// wider than that because every stride is at most BIG_STRIDE/2.

type ent_t struct {
	pass uint64
	pid  defs.Pid_t
}

// passcmp orders two pass values inside the wrap window: a distance
// above BIG_STRIDE/2 means the numerically larger value is actually
// the older one.
func passcmp(a, b uint64) int {
	if a == b {
		return 0
	}
	if a < b {
		if b-a > defs.BIG_STRIDE/2 {
			return 1
		}
		return -1
	}
	if a-b > defs.BIG_STRIDE/2 {
		return -1
	}
	return 1
}

// min-heap of (pass, pid); ties on pass break on pid so the order is
// total even though the heap holds duplicates by design.
type passheap_t []ent_t

func (h passheap_t) Len() int { return len(h) }

func (h passheap_t) Less(i, j int) bool {
	if c := passcmp(h[i].pass, h[j].pass); c != 0 {
		return c < 0
	}
	return h[i].pid < h[j].pid
}

func (h passheap_t) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *passheap_t) Push(x any) { *h = append(*h, x.(ent_t)) }

func (h *passheap_t) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// / Taskmgr_t is the scheduler: the task array, the current task and
// / the pass heap, all under one lock. The lock is released before any
// / context switch.
type Taskmgr_t struct {
	sync.Mutex
	tasks []*Task_t
	curr  defs.Pid_t
	heap  passheap_t
	pids  *pidtab_t
}

/// Tmgr is the global scheduler instance.
var Tmgr = &Taskmgr_t{pids: mkpidtab(defs.MAX_APP_NUM)}

func init() {
	fs.Yieldfn = Suspend_current_and_run_next
}

/// Add_task assigns a pid, registers the task and seeds its heap entry
/// with an initial pass of one stride.
func (tm *Taskmgr_t) Add_task(t *Task_t) {
	tm.Lock()
	defer tm.Unlock()
	t.Pid = defs.Pid_t(len(tm.tasks))
	tm.tasks = append(tm.tasks, t)
	tm.pids.Set(t.Pid, t)
	heap.Push(&tm.heap, ent_t{pass: t.stride, pid: t.Pid})
}

/// Current returns the running task.
func (tm *Taskmgr_t) Current() *Task_t {
	tm.Lock()
	defer tm.Unlock()
	return tm.tasks[tm.curr]
}

/// Find_task resolves a pid, returning nil for unknown pids.
func (tm *Taskmgr_t) Find_task(pid defs.Pid_t) *Task_t {
	t, ok := tm.pids.Get(pid)
	if !ok {
		return nil
	}
	return t
}

// pops the minimum pass entry, skipping entries whose task is no
// longer Ready (exited tasks leave stale entries behind; they are
// filtered here rather than removed eagerly). The chosen task is
// reinserted with pass advanced by its stride.
func (tm *Taskmgr_t) find_next_task() (defs.Pid_t, bool) {
	for tm.heap.Len() > 0 {
		e := heap.Pop(&tm.heap).(ent_t)
		t := tm.tasks[e.pid]
		if t.Status() != READY {
			continue
		}
		t.Lock()
		stride := t.stride
		t.Unlock()
		heap.Push(&tm.heap, ent_t{pass: e.pass + stride, pid: e.pid})
		return e.pid, true
	}
	return 0, false
}

// / Switchfn is the context switch primitive. The port installs the
// / real trampoline; the default is a no-op so hosted runs treat the
// / switch as pure scheduler bookkeeping.
var Switchfn = func(from, to *Context_t) {}

func (tm *Taskmgr_t) run_next_task() {
	tm.Lock()
	next, ok := tm.find_next_task()
	if !ok {
		panic("all applications completed")
	}
	from := tm.tasks[tm.curr]
	to := tm.tasks[next]
	to.setstatus(RUNNING)
	tm.curr = next
	fromctx, toctx := from.Ctx, to.Ctx
	as := to.As
	// drop the scheduler lock before touching satp or switching
	tm.Unlock()
	if as != nil {
		as.Activate()
	}
	Switchfn(fromctx, toctx)
}

/// Run_first_task starts the scheduler; it never returns control to a
/// non-task context.
func (tm *Taskmgr_t) Run_first_task() {
	tm.Lock()
	next, ok := tm.find_next_task()
	if !ok {
		panic("no applications to run")
	}
	to := tm.tasks[next]
	to.setstatus(RUNNING)
	tm.curr = next
	toctx := to.Ctx
	as := to.As
	tm.Unlock()
	if as != nil {
		as.Activate()
	}
	Switchfn(&Context_t{}, toctx)
}

/// Suspend_current_and_run_next marks the current task Ready and picks
/// the next one. Called on voluntary yield and on timer tick.
func Suspend_current_and_run_next() {
	Tmgr.Current().setstatus(READY)
	Tmgr.run_next_task()
}

/// Exit_current_and_run_next marks the current task Exited and picks
/// the next one. Stale heap entries of the exited task are filtered at
/// pop time.
func Exit_current_and_run_next(code int) {
	t := Tmgr.Current()
	t.Lock()
	t.status = EXITED
	t.exitcode = code
	t.Unlock()
	Tmgr.run_next_task()
}

/// Set_current_priority sets the current task's stride from the given
/// priority. Priorities below 2 are rejected with -1.
func Set_current_priority(prio int) int {
	if prio < 2 {
		return -1
	}
	t := Tmgr.Current()
	t.Lock()
	t.stride = defs.BIG_STRIDE / uint64(prio)
	t.Unlock()
	return prio
}
