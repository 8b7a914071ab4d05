package manifest

import "strings"

// FileRef identifies the file that produced a checksum. The zero value is
// the absent marker used when a source inventory carries no filename.
type FileRef struct {
	path string
}

// Name returns a reference to path. An empty path yields the absent marker.
func Name(path string) FileRef {
	return FileRef{path: path}
}

// NoName returns the absent marker.
func NoName() FileRef {
	return FileRef{}
}

// IsAbsent reports whether the reference carries no filename.
func (r FileRef) IsAbsent() bool {
	return r.path == ""
}

// Path returns the name as supplied by the source, or "" when absent.
func (r FileRef) Path() string {
	return r.path
}

// Basename returns the final path component. Both '/' and '\' separate
// components since inventories come from tools on either platform.
// Trailing separators are ignored, so "photos/" has basename "photos".
func (r FileRef) Basename() string {
	p := strings.TrimRight(r.path, `/\`)
	if p == "" {
		return r.path
	}
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// Matches reports whether r and o identify the same file: both absent, or
// both present with case-insensitively equal basenames.
func (r FileRef) Matches(o FileRef) bool {
	if r.IsAbsent() || o.IsAbsent() {
		return r.IsAbsent() && o.IsAbsent()
	}
	return strings.EqualFold(r.Basename(), o.Basename())
}

// String returns the path, or "<no name>" for the absent marker.
func (r FileRef) String() string {
	if r.IsAbsent() {
		return "<no name>"
	}
	return r.path
}

// Entry is one checksum key and its bucket of references.
type Entry struct {
	Checksum string
	Refs     []FileRef
}
