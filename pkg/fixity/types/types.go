// Package types holds the data passed between the walker, the cache and
// the command layer, plus size parsing shared by configuration and reports.
package types

import "time"

// FileDigest is the outcome of hashing one file.
type FileDigest struct {
	// Path is the absolute path to the file.
	Path string `json:"path"`

	// RelPath is Path relative to the walk root, with '/' separators.
	RelPath string `json:"rel_path"`

	// Size is the file size in bytes when it was hashed.
	Size int64 `json:"size"`

	// ModTime is the modification time when it was hashed.
	ModTime time.Time `json:"mod_time"`

	// Digests maps algorithm name to uppercase hex digest.
	Digests map[string]string `json:"digests"`

	// Cached is true when the digests came from the cache.
	Cached bool `json:"cached,omitempty"`
}

// WalkError pairs a path with the failure that excluded it from a walk.
type WalkError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// WalkProgress is a snapshot of an in-flight walk.
type WalkProgress struct {
	DirsWalked  int64  `json:"dirs_walked"`
	FilesHashed int64  `json:"files_hashed"`
	BytesHashed int64  `json:"bytes_hashed"`
	CacheHits   int64  `json:"cache_hits"`
	Errors      int64  `json:"errors"`
	CurrentPath string `json:"current_path"`
}

// WalkResult is the aggregate of a completed walk.
type WalkResult struct {
	// Root is the absolute directory that was walked.
	Root string `json:"root"`

	// Files holds one digest per regular file, sorted by RelPath.
	Files []FileDigest `json:"files"`

	DirsWalked  int64         `json:"dirs_walked"`
	BytesHashed int64         `json:"bytes_hashed"`
	CacheHits   int64         `json:"cache_hits"`
	Elapsed     time.Duration `json:"elapsed"`

	// Errors lists files that could not be read. They are absent from Files.
	Errors []WalkError `json:"errors,omitempty"`
}
