package main

import "sys"
import "task"

// The trap entry/exit trampoline lives in assembly and is an external
// collaborator; it lands here with the saved syscall arguments.

/// Usertrap services an environment call from user mode and returns
/// the value to place in a0.
func Usertrap(id int, a0, a1, a2 uintptr) int {
	return sys.Syscall(id, a0, a1, a2)
}

/// Timertick is called by the trap handler on a timer interrupt taken
/// from user mode; the current task gives up the CPU.
func Timertick() {
	task.Suspend_current_and_run_next()
}
