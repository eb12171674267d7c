package vm

// Hardware seams. The port installs the real satp write and sfence.vma
// here; the defaults model the CSR so hosted runs and tests can observe
// which space is active.
var (
	cursatp uintptr

	Satpwritefn = func(token uintptr) {
		cursatp = token
	}

	Sfencevmafn = func() {}
)

/// Curtoken returns the token most recently written to satp.
func Curtoken() uintptr {
	return cursatp
}
