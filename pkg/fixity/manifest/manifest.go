// Package manifest holds checksum inventories and reconciles pairs of them.
//
// A Manifest maps a checksum to the ordered bucket of files that produced
// it. Loaders fill manifests with Add; Reconcile then removes everything the
// two sides agree on, leaving only the genuine differences in place.
package manifest

// Manifest is an ordered mapping from checksum to an ordered multiset of
// file references. Keys iterate in first-insertion order.
//
// A Manifest is not safe for concurrent mutation.
type Manifest struct {
	order   []slot
	buckets map[string]*bucket
	seq     uint64
	stale   int
}

type slot struct {
	key string
	seq uint64
}

type bucket struct {
	seq  uint64
	refs []FileRef
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{buckets: make(map[string]*bucket)}
}

// Add appends ref to the bucket for checksum, creating the bucket if needed.
// Nothing is merged or normalised: N files sharing a checksum give a bucket
// of N.
func (m *Manifest) Add(checksum string, ref FileRef) {
	if b, ok := m.buckets[checksum]; ok {
		b.refs = append(b.refs, ref)
		return
	}

	m.seq++
	m.buckets[checksum] = &bucket{seq: m.seq, refs: []FileRef{ref}}
	m.order = append(m.order, slot{key: checksum, seq: m.seq})
}

// AddChecksum is Add in free-function form.
func AddChecksum(m *Manifest, checksum string, ref FileRef) {
	m.Add(checksum, ref)
}

// Get returns a copy of the bucket for checksum, or nil.
func (m *Manifest) Get(checksum string) []FileRef {
	b, ok := m.buckets[checksum]
	if !ok {
		return nil
	}
	return append([]FileRef(nil), b.refs...)
}

// Has reports whether checksum is a key.
func (m *Manifest) Has(checksum string) bool {
	_, ok := m.buckets[checksum]
	return ok
}

// Len returns the number of distinct checksums.
func (m *Manifest) Len() int {
	return len(m.buckets)
}

// Size returns the total number of file references across all buckets.
func (m *Manifest) Size() int {
	n := 0
	for _, b := range m.buckets {
		n += len(b.refs)
	}
	return n
}

// Keys returns the checksums in first-insertion order.
func (m *Manifest) Keys() []string {
	m.compact()

	keys := make([]string, len(m.order))
	for i, s := range m.order {
		keys[i] = s.key
	}
	return keys
}

// Entries returns every key with a copy of its bucket, in key order.
func (m *Manifest) Entries() []Entry {
	keys := m.Keys()
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Checksum: k, Refs: m.Get(k)}
	}
	return entries
}

// Delete removes checksum and its bucket. It reports whether the key existed.
func (m *Manifest) Delete(checksum string) bool {
	if _, ok := m.buckets[checksum]; !ok {
		return false
	}
	delete(m.buckets, checksum)
	m.stale++
	if m.stale > len(m.order)/2 {
		m.compact()
	}
	return true
}

// replace swaps the bucket contents for an existing key, or deletes the key
// when refs is empty.
func (m *Manifest) replace(checksum string, refs []FileRef) {
	if len(refs) == 0 {
		m.Delete(checksum)
		return
	}
	m.buckets[checksum].refs = refs
}

// compact drops order slots whose key was deleted. A slot is live only if
// its key still maps to the bucket created with the same sequence number,
// so a key deleted and re-added keeps just its newer position.
func (m *Manifest) compact() {
	if m.stale == 0 {
		return
	}

	live := m.order[:0]
	for _, s := range m.order {
		if b, ok := m.buckets[s.key]; ok && b.seq == s.seq {
			live = append(live, s)
		}
	}
	clear(m.order[len(live):])
	m.order = live
	m.stale = 0
}

// Clone returns a deep copy.
func (m *Manifest) Clone() *Manifest {
	c := New()
	for _, k := range m.Keys() {
		for _, ref := range m.buckets[k].refs {
			c.Add(k, ref)
		}
	}
	return c
}

// Equal reports whether m and o hold the same keys with identical buckets.
// Key order is ignored; bucket order is not.
func (m *Manifest) Equal(o *Manifest) bool {
	if m.Len() != o.Len() {
		return false
	}
	for k, b := range m.buckets {
		ob, ok := o.buckets[k]
		if !ok || len(b.refs) != len(ob.refs) {
			return false
		}
		for i := range b.refs {
			if b.refs[i] != ob.refs[i] {
				return false
			}
		}
	}
	return true
}
