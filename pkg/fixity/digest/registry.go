// Package digest computes content fingerprints for the fixity auditor.
//
// A Registry maps algorithm names to hash constructors. An Engine drives a
// set of algorithms over one stream in a single pass:
//
//	reg := digest.NewRegistry()
//	eng, err := digest.NewEngine(reg, []string{digest.CRC32, digest.Cksum, digest.SHA256})
//	if err != nil {
//	    return err
//	}
//	res, err := eng.ComputeFile("/data/archive.tar")
//	fmt.Println(res[digest.Cksum])
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Algorithm names. Lookup is case-insensitive; results always use these
// canonical spellings.
const (
	CRC32  = "CRC32"
	Cksum  = "cksum"
	MD5    = "MD5"
	SHA1   = "SHA-1"
	SHA256 = "SHA-256"
	SHA512 = "SHA-512"
	XXH64  = "XXH64"
)

// DefaultAlgorithms is the set computed when a caller does not choose one.
var DefaultAlgorithms = []string{CRC32, Cksum, MD5, SHA1, SHA256}

// ErrUnknownAlgorithm is returned when an algorithm name is not registered.
var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// Factory creates a fresh hash for one computation.
type Factory func() hash.Hash

// Registry holds the named digest algorithms available to engines.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	names     map[string]string // lowercased -> canonical
}

// NewRegistry returns a registry holding the standard algorithms and the
// POSIX cksum algorithm.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		names:     make(map[string]string),
	}
	r.Register(MD5, md5.New)
	r.Register(SHA1, sha1.New)
	r.Register(SHA256, sha256.New)
	r.Register(SHA512, sha512.New)
	r.Register(XXH64, func() hash.Hash { return xxhash.New() })
	r.Register(Cksum, func() hash.Hash { return NewCksum() })
	return r
}

// Register installs an algorithm under name. Only the first registration of
// a name takes effect; later calls are no-ops and return false.
func (r *Registry) Register(name string, factory Factory) bool {
	key := strings.ToLower(name)
	if key == "" || factory == nil || key == strings.ToLower(CRC32) {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[key]; ok {
		return false
	}
	r.names[key] = name
	r.factories[name] = factory
	return true
}

// Canonical returns the registered spelling of name.
// CRC32 is always known since the engine computes it itself.
func (r *Registry) Canonical(name string) (string, error) {
	key := strings.ToLower(name)
	if key == strings.ToLower(CRC32) {
		return CRC32, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	canonical, ok := r.names[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return canonical, nil
}

// New returns a fresh hash for the named algorithm.
func (r *Registry) New(name string) (hash.Hash, error) {
	canonical, err := r.Canonical(name)
	if err != nil {
		return nil, err
	}
	if canonical == CRC32 {
		return nil, fmt.Errorf("%w: %s is computed by the engine", ErrUnknownAlgorithm, CRC32)
	}

	r.mu.RLock()
	factory := r.factories[canonical]
	r.mu.RUnlock()

	return factory(), nil
}

// Available returns a sorted list of registered algorithm names, CRC32 included.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories)+1)
	names = append(names, CRC32)
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
