package defs

/// Err_t is the kernel-internal error type. Errors are negative errno
/// values; 0 means success.
type Err_t int

/// Errno values used by the file and VM layers.
const (
	ENOENT Err_t = 2
	EBADF  Err_t = 9
	EAGAIN Err_t = 11
	ENOMEM Err_t = 12
	EFAULT Err_t = 14
	EINVAL Err_t = 22
	ENOSPC Err_t = 28
)

/// Pid_t identifies a task.
type Pid_t int32

/// Syscall numbers.
const (
	SYS_READ         = 63
	SYS_WRITE        = 64
	SYS_EXIT         = 93
	SYS_YIELD        = 124
	SYS_SET_PRIORITY = 140
	SYS_GET_TIME     = 169
	SYS_MUNMAP       = 215
	SYS_MMAP         = 222
	SYS_PIPE         = 59
	SYS_MAILREAD     = 401
	SYS_MAILWRITE    = 402
)

/// Scheduler constants. BIG_STRIDE must stay well above the largest
/// stride times the number of quanta between wraps (see task.passcmp).
const (
	MAX_APP_NUM      = 16
	BIG_STRIDE       = 1 << 20
	DEFAULT_PRIORITY = 2
)

/// File descriptor table layout. Slots 0-2 are stdin/stdout/stderr; the
/// task's mailbox always lives at MAIL_FD.
const (
	MAIL_FD = 3
	NFDS    = 16
)

/// Mail and pipe geometry.
const (
	MAX_MAIL_NUM = 16
	MAIL_CAP     = 256
	PIPE_CAP     = 32
)

/// mmap port bits (syscall ABI; bit 0=R, 1=W, 2=X).
const (
	PORT_R = 1 << 0
	PORT_W = 1 << 1
	PORT_X = 1 << 2
)
