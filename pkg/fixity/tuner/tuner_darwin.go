//go:build darwin

package tuner

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect reads hw.memsize through sysctl. macOS has no cheap free-memory
// figure, so half of physical memory is reported as available.
func Detect() (Resources, error) {
	r := Resources{CPUCores: runtime.NumCPU()}

	memsize, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return r, fmt.Errorf("sysctl hw.memsize: %w", err)
	}

	r.TotalRAM = int64(memsize)
	r.AvailableRAM = r.TotalRAM / 2
	return r, nil
}
