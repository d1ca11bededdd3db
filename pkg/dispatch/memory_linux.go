//go:build linux

package dispatch

import "golang.org/x/sys/unix"

// readMemoryUsedPercent returns system memory utilization on Linux using
// sysinfo. Buffer memory counts as reclaimable, so it is treated as free.
func readMemoryUsedPercent() (float64, bool) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, false
	}

	total := uint64(info.Totalram) * uint64(info.Unit)
	if total == 0 {
		return 0, false
	}
	available := (uint64(info.Freeram) + uint64(info.Bufferram)) * uint64(info.Unit)
	if available > total {
		available = total
	}

	return 100 * float64(total-available) / float64(total), true
}
