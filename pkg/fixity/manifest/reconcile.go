package manifest

import "github.com/jamesainslie/fixity/pkg/fixity/logging"

var logger = logging.Get("reconcile")

// Stats summarises one Reconcile call.
type Stats struct {
	// KeysCompared counts checksums present in both manifests.
	KeysCompared int
	// Matched counts reference pairs cancelled, one unit from each side.
	Matched int
	// RemovedA and RemovedB count keys whose buckets emptied.
	RemovedA int
	RemovedB int
}

// Reconcile removes every entry a and b agree on, leaving in each only the
// references with no counterpart in the other. Both manifests are modified.
//
// For each checksum present in both, every reference in a's bucket is tried
// in order against b's bucket and cancels the first unconsumed reference it
// Matches. Multiplicity is respected: three matching names in a against two
// in b leave one in a. Keys present on one side only are untouched, as are
// key and bucket orders of the survivors. The match relation is symmetric,
// so one forward pass suffices and a second call changes nothing.
//
// Reconcile assumes exclusive access to both manifests for its duration.
func Reconcile(a, b *Manifest) Stats {
	var stats Stats

	for _, key := range a.Keys() {
		bb, ok := b.buckets[key]
		if !ok {
			continue
		}
		stats.KeysCompared++

		ab := a.buckets[key]
		keptA, keptB, matched := cancel(ab.refs, bb.refs)
		stats.Matched += matched
		if matched == 0 {
			continue
		}

		if len(keptA) == 0 {
			stats.RemovedA++
		}
		if len(keptB) == 0 {
			stats.RemovedB++
		}
		a.replace(key, keptA)
		b.replace(key, keptB)
	}

	logger.Debug("reconciled manifests",
		"keys_compared", stats.KeysCompared,
		"matched", stats.Matched,
		"residual_a", a.Len(),
		"residual_b", b.Len(),
	)

	return stats
}

// cancel pairs refs in as with their first unconsumed match in bs and
// returns the unmatched remainder of each side as fresh slices.
func cancel(as, bs []FileRef) (keptA, keptB []FileRef, matched int) {
	used := make([]bool, len(bs))

	for _, ra := range as {
		hit := false
		for j, rb := range bs {
			if !used[j] && ra.Matches(rb) {
				used[j] = true
				hit = true
				break
			}
		}
		if hit {
			matched++
			continue
		}
		keptA = append(keptA, ra)
	}

	if matched == 0 {
		return as, bs, 0
	}

	for j, rb := range bs {
		if !used[j] {
			keptB = append(keptB, rb)
		}
	}
	return keptA, keptB, matched
}
