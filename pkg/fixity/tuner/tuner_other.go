//go:build !darwin && !linux

package tuner

import "runtime"

const fallbackTotalRAM = 8 * 1024 * 1024 * 1024

// Detect reports the CPU count and assumes 8GiB of memory, half free.
func Detect() (Resources, error) {
	return Resources{
		CPUCores:     runtime.NumCPU(),
		TotalRAM:     fallbackTotalRAM,
		AvailableRAM: fallbackTotalRAM / 2,
	}, nil
}
