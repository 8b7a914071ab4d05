package digest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jamesainslie/fixity/pkg/fixity/logging"
)

// DefaultBufferSize is the chunk size used to drain a stream.
const DefaultBufferSize = 32 * 1024

// maxConsecutiveEmptyReads bounds how long a reader may return (0, nil)
// before the engine gives up with io.ErrNoProgress.
const maxConsecutiveEmptyReads = 100

// ErrRead is wrapped by every error caused by the input stream failing.
var ErrRead = errors.New("digest read failed")

var logger = logging.Get("digest")

// Result maps algorithm names to uppercase hexadecimal digests.
type Result map[string]string

// Names returns the algorithm names present in the result, sorted.
func (r Result) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether every one of names is present.
func (r Result) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := r[name]; !ok {
			return false
		}
	}
	return true
}

// Option configures an Engine.
type Option func(*Engine)

// WithBufferSize sets the chunk size used to read streams.
// Values below 1 keep the default.
func WithBufferSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.bufSize = n
		}
	}
}

// Engine computes several digests over a stream in one pass.
// It is immutable after construction and safe for concurrent use.
type Engine struct {
	reg     *Registry
	names   []string // canonical, deduplicated, request order
	hashed  []string // names served by the registry
	crc     bool
	bufSize int
}

// NewEngine returns an engine computing the named algorithms.
// An empty list selects DefaultAlgorithms. Every name must be known to reg
// (or be CRC32); otherwise ErrUnknownAlgorithm is returned.
func NewEngine(reg *Registry, names []string, opts ...Option) (*Engine, error) {
	if reg == nil {
		return nil, errors.New("digest registry cannot be nil")
	}
	if len(names) == 0 {
		names = DefaultAlgorithms
	}

	e := &Engine{
		reg:     reg,
		bufSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(e)
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		canonical, err := reg.Canonical(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		e.names = append(e.names, canonical)

		if canonical == CRC32 {
			e.crc = true
		} else {
			e.hashed = append(e.hashed, canonical)
		}
	}

	return e, nil
}

// Algorithms returns the canonical algorithm names this engine computes.
func (e *Engine) Algorithms() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Compute reads r until EOF and returns one digest per algorithm.
// If reading fails the whole computation is abandoned and the returned
// error wraps ErrRead; no partial result is ever returned.
func (e *Engine) Compute(r io.Reader) (Result, error) {
	hashes := make([]hash.Hash, len(e.hashed))

	// Each layer feeds its own hash and forwards the bytes outward.
	src := r
	for i, name := range e.hashed {
		h, err := e.reg.New(name)
		if err != nil {
			return nil, err
		}
		hashes[i] = h
		src = io.TeeReader(src, h)
	}

	var crc uint32
	buf := make([]byte, e.bufSize)
	empty := 0
	for {
		n, err := src.Read(buf)
		if n > 0 {
			empty = 0
			if e.crc {
				crc = crc32.Update(crc, crc32.IEEETable, buf[:n])
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Debug("stream read failed", "err", err)
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
		if n == 0 {
			empty++
			if empty >= maxConsecutiveEmptyReads {
				return nil, fmt.Errorf("%w: %w", ErrRead, io.ErrNoProgress)
			}
		}
	}

	result := make(Result, len(e.names))
	if e.crc {
		result[CRC32] = strings.ToUpper(strconv.FormatUint(uint64(crc), 16))
	}
	for i, name := range e.hashed {
		result[name] = strings.ToUpper(hex.EncodeToString(hashes[i].Sum(nil)))
	}
	return result, nil
}

// ComputeFile opens path and computes its digests.
func (e *Engine) ComputeFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()

	adviseSequential(f)

	res, err := e.Compute(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}
