package fd

import "fmt"

import "defs"
import "fdops"

/// Access modes recorded in a descriptor. A pipe read end carries
/// FD_READ only; the mailbox carries both.
const (
	FD_READ  = 0x1
	FD_WRITE = 0x2
)

/// Fd_t is one slot of a task's descriptor table: the endpoint it
/// names and the access mode it was opened with. Endpoints are shared
/// between slots; the mode is per slot.
type Fd_t struct {
	Fops  fdops.Fdops_i
	Perms int
}

/// Dupfd returns a second descriptor for the same endpoint, taking a
/// new reference on it via Reopen.
func Dupfd(f *Fd_t) (*Fd_t, defs.Err_t) {
	if err := f.Fops.Reopen(); err != 0 {
		return nil, err
	}
	return &Fd_t{Fops: f.Fops, Perms: f.Perms}, 0
}

/// stdin_t is the console input device. Console input is driven by an
/// external collaborator; reads return 0 bytes here.
type stdin_t struct {
}

func (s *stdin_t) Readable() bool { return true }
func (s *stdin_t) Writable() bool { return false }

func (s *stdin_t) Read(dst fdops.Userio_i) (int, defs.Err_t) {
	return 0, 0
}

func (s *stdin_t) Write(src fdops.Userio_i) (int, defs.Err_t) {
	return 0, -defs.EBADF
}

func (s *stdin_t) Reopen() defs.Err_t { return 0 }
func (s *stdin_t) Close() defs.Err_t  { return 0 }

/// stdout_t is the console output device.
type stdout_t struct {
}

func (s *stdout_t) Readable() bool { return false }
func (s *stdout_t) Writable() bool { return true }

func (s *stdout_t) Read(dst fdops.Userio_i) (int, defs.Err_t) {
	return 0, -defs.EBADF
}

func (s *stdout_t) Write(src fdops.Userio_i) (int, defs.Err_t) {
	buf := make([]uint8, src.Totalsz())
	did, err := src.Uioread(buf)
	if err != 0 {
		return 0, err
	}
	fmt.Printf("%s", buf[:did])
	return did, 0
}

func (s *stdout_t) Reopen() defs.Err_t { return 0 }
func (s *stdout_t) Close() defs.Err_t  { return 0 }

/// Mkstdin returns the console input descriptor.
func Mkstdin() *Fd_t {
	return &Fd_t{Fops: &stdin_t{}, Perms: FD_READ}
}

/// Mkstdout returns a console output descriptor, used for both stdout
/// and stderr.
func Mkstdout() *Fd_t {
	return &Fd_t{Fops: &stdout_t{}, Perms: FD_WRITE}
}
