// Package report renders the residue of a reconciliation in various
// formats (plain, pretty, json, yaml).
//
// Formatters are looked up by name from a registry:
//
//	f, err := report.Get("plain")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := f.Format(&buf, res); err != nil {
//	    return err
//	}
package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/fixity/pkg/fixity/logging"
	"github.com/jamesainslie/fixity/pkg/fixity/manifest"
)

var logger = logging.Get("report")

// Side describes one input of a comparison and what is left of it.
type Side struct {
	// Label names the input in headings, usually its base name.
	Label string

	// Source is the path the input was read from.
	Source string

	// Entries is the number of (checksum, file) pairs loaded.
	Entries int

	// Checksums is the number of distinct checksums loaded.
	Checksums int

	// Residual holds the unmatched entries in manifest order.
	Residual []manifest.Entry
}

// NewSide captures the residue of m after reconciliation. entries and
// checksums are the counts observed before reconciling.
func NewSide(label, source string, m *manifest.Manifest, entries, checksums int) Side {
	return Side{
		Label:     label,
		Source:    source,
		Entries:   entries,
		Checksums: checksums,
		Residual:  m.Entries(),
	}
}

// UniqueChecksums is the number of checksums left unmatched.
func (s Side) UniqueChecksums() int {
	return len(s.Residual)
}

// UniqueFiles is the number of file references left unmatched.
func (s Side) UniqueFiles() int {
	n := 0
	for _, e := range s.Residual {
		n += len(e.Refs)
	}
	return n
}

// Result is everything a formatter needs to describe one comparison.
type Result struct {
	// RunID identifies the comparison across stdout, report file and log.
	RunID string

	// Created is when the comparison finished.
	Created time.Time

	// Algorithm names the digest used when a side was computed from a
	// directory. Empty when both sides were loaded from manifests.
	Algorithm string

	A Side
	B Side

	Stats manifest.Stats

	// Elapsed is the time spent loading and reconciling.
	Elapsed time.Duration
}

// NewResult returns a Result with a fresh run ID.
func NewResult(a, b Side, stats manifest.Stats) *Result {
	return &Result{
		RunID:   uuid.NewString(),
		Created: time.Now(),
		A:       a,
		B:       b,
		Stats:   stats,
	}
}

// Identical reports whether nothing was left on either side.
func (r *Result) Identical() bool {
	return len(r.A.Residual) == 0 && len(r.B.Residual) == 0
}

// Formatter renders a Result.
type Formatter interface {
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory creates a Formatter.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates an empty formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory, replacing any with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown report format: %s", name)
	}
	return factory(), nil
}

// Available returns the registered formatter names, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns the names in the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// Write renders r with the named formatter and copies it to w.
func Write(w io.Writer, format string, r *Result) error {
	f, err := Get(format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := f.Format(&buf, r); err != nil {
		return fmt.Errorf("formatting %s report: %w", format, err)
	}

	logger.Debug("report rendered", "run_id", r.RunID, "format", format, "bytes", buf.Len())

	_, err = w.Write(buf.Bytes())
	return err
}

// refNames returns the paths of refs with nil for the absent marker.
func refNames(refs []manifest.FileRef) []*string {
	names := make([]*string, len(refs))
	for i, ref := range refs {
		if ref.IsAbsent() {
			continue
		}
		p := ref.Path()
		names[i] = &p
	}
	return names
}
