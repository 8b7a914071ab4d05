// Package tuner sizes the hashing worker pool from the CPU count and memory
// of the host.
package tuner

// Resources describes the host.
type Resources struct {
	// CPUCores is the number of logical CPUs.
	CPUCores int

	// TotalRAM is physical memory in bytes.
	TotalRAM int64

	// AvailableRAM is an estimate of free memory in bytes.
	AvailableRAM int64
}

const (
	maxWorkers     = 64
	minWalkWorkers = 4
	minHashWorkers = 2

	minQueueSize = 64
	maxQueueSize = 65536

	// Each queued file holds a path and its stat data.
	bytesPerQueueEntry  = 512
	queueMemoryFraction = 0.02
)

// Plan is the tuned concurrency for a walk.
type Plan struct {
	// WalkWorkers is the fastwalk traversal concurrency.
	WalkWorkers int

	// HashWorkers is the number of goroutines computing digests.
	HashWorkers int

	// QueueSize buffers files between traversal and hashing.
	QueueSize int
}

// Calculate derives a plan from r. Traversal is metadata bound and gets
// one worker per CPU; hashing mixes reads and CPU work and gets two.
func Calculate(r Resources) Plan {
	cores := max(r.CPUCores, 1)

	return Plan{
		WalkWorkers: min(max(cores, minWalkWorkers), maxWorkers),
		HashWorkers: min(max(cores*2, minHashWorkers), maxWorkers),
		QueueSize:   queueSize(r.AvailableRAM),
	}
}

// CalculateWithOverride applies a positive hash worker override, capped
// at the maximum. Zero or negative keeps the calculated value.
func CalculateWithOverride(r Resources, workers int) Plan {
	p := Calculate(r)
	if workers > 0 {
		p.HashWorkers = min(workers, maxWorkers)
	}
	return p
}

func queueSize(availableRAM int64) int {
	entries := int(float64(availableRAM) * queueMemoryFraction / bytesPerQueueEntry)
	return min(max(entries, minQueueSize), maxQueueSize)
}
