package cache

import (
	"bytes"
	"encoding/gob"
)

// Version is stored in every entry; entries of another version are misses.
const Version = 1

// KeySeparator separates the walk root from the relative path in keys.
const KeySeparator = '\x00'

// Entry is the cached digest state of one file.
type Entry struct {
	Version int
	Size    int64
	Mtime   int64 // UnixNano
	Digests map[string]string
}

// Encode serialises the entry with gob.
func (e *Entry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserialises data into the entry.
func (e *Entry) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// Covers reports whether the entry still describes a file of the given
// size and mtime and holds a digest for every named algorithm.
func (e *Entry) Covers(size, mtime int64, algorithms []string) bool {
	if e.Version != Version || e.Size != size || e.Mtime != mtime {
		return false
	}
	for _, a := range algorithms {
		if _, ok := e.Digests[a]; !ok {
			return false
		}
	}
	return true
}

// MakeKey builds "<root>\x00<relPath>".
func MakeKey(root, relPath string) []byte {
	return []byte(root + string(KeySeparator) + relPath)
}

// ParseKey splits a key built by MakeKey.
func ParseKey(key []byte) (root, relPath string) {
	idx := bytes.IndexByte(key, KeySeparator)
	if idx == -1 {
		return string(key), ""
	}
	return string(key[:idx]), string(key[idx+1:])
}

// MakeKeyPrefix returns the prefix shared by every key under root. An
// empty root matches every key.
func MakeKeyPrefix(root string) []byte {
	if root == "" {
		return nil
	}
	return []byte(root + string(KeySeparator))
}
