//go:build !linux

package dispatch

// readMemoryUsedPercent has no system-wide utilization source on non-Linux
// platforms; reporting not-ok disables memory throttling there.
func readMemoryUsedPercent() (float64, bool) {
	return 0, false
}
