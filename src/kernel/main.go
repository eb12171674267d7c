// Command kernel boots the modeled machine: physical memory, the
// kernel address space, the initial tasks, then the scheduler. The
// trap trampoline, SBI timer and application loader are external
// collaborators; the loader hands in ELF images through Apps.
package main

import "fmt"
import "sync"

import "mem"
import "task"
import "vm"

// / Kernel_space is the single long-lived kernel address space,
// / created once at boot and activated on each transition into kernel
// / mode.
var Kernel_space = struct {
	sync.Mutex
	As *vm.Vm_t
}{}

// / Apps holds the ELF images of the initial user programs. The
// / external loader populates it before Kmain runs.
var Apps [][]uint8

/// Kmain brings the kernel up and starts the first task.
func Kmain() {
	fmt.Printf("[kernel] hello\n")
	mem.Phys_init()

	Kernel_space.Lock()
	Kernel_space.As = vm.Mkkernel(mem.Physmem)
	Kernel_space.As.Activate()
	Kernel_space.Unlock()

	for _, img := range Apps {
		task.Mktask(mem.Physmem, img, nil)
	}
	if len(Apps) == 0 {
		fmt.Printf("[kernel] no applications, halting\n")
		return
	}
	task.Tmgr.Run_first_task()
}

func main() {
	Kmain()
}
