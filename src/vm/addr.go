package vm

import "mem"

/// Va_t is a virtual address.
type Va_t uintptr

/// Vpn_t is a virtual page number. Sv39 VPNs have 27 significant bits
/// split 9/9/9 across the three page table levels.
type Vpn_t uintptr

/// Vpn returns the page number containing the address (floor).
func (va Va_t) Vpn() Vpn_t {
	return Vpn_t(va >> mem.PGSHIFT)
}

/// Vpn_ceil returns the page number of the first page boundary at or
/// above the address.
func (va Va_t) Vpn_ceil() Vpn_t {
	return Vpn_t((uintptr(va) + uintptr(mem.PGSIZE) - 1) >> mem.PGSHIFT)
}

/// Pgoff returns the offset of the address within its page.
func (va Va_t) Pgoff() int {
	return int(uintptr(va) & uintptr(mem.PGOFFSET))
}

/// Va returns the first address of the page.
func (vpn Vpn_t) Va() Va_t {
	return Va_t(uintptr(vpn) << mem.PGSHIFT)
}

/// Indexes splits the VPN into its three 9-bit page table indexes, root
/// level first.
func (vpn Vpn_t) Indexes() [3]int {
	v := uintptr(vpn) & (1<<27 - 1)
	return [3]int{
		int(v >> 18 & 0x1ff),
		int(v >> 9 & 0x1ff),
		int(v & 0x1ff),
	}
}
