// Package loader turns checksum inventories produced by other tools into
// manifests, and writes manifests back out as flat text.
//
// Parsing is split from population: ParseText and ParseXML are pure
// functions returning entries in source order, and Populate feeds those
// entries to a manifest through Add without deduplicating anything.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/fixity/pkg/fixity/logging"
	"github.com/jamesainslie/fixity/pkg/fixity/manifest"
)

var logger = logging.Get("loader")

// ErrMalformed marks manifest content that cannot be parsed.
var ErrMalformed = errors.New("malformed manifest")

// DefaultXMLDigestPrefix selects the cksum values in crawler XML reports.
const DefaultXMLDigestPrefix = "cksum"

// Entry is one (checksum, file) pair read from a source.
type Entry struct {
	Checksum string
	Ref      manifest.FileRef
}

// Format identifies a manifest source format.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatXML  Format = "xml"
)

// DetectFormat returns FormatXML for paths ending in .xml (any case) and
// FormatText otherwise.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return FormatXML
	}
	return FormatText
}

// Options controls how sources are read into manifests.
type Options struct {
	// Layout is the column order of text manifests.
	Layout Layout
	// XMLDigestPrefix selects checksum elements in XML sources.
	XMLDigestPrefix string
	// Normalize upper-cases checksums so hex from different tools compares
	// equal.
	Normalize bool
}

// DefaultOptions returns checksum-first text, cksum XML values and
// normalisation on.
func DefaultOptions() Options {
	return Options{
		Layout:          ChecksumFirst,
		XMLDigestPrefix: DefaultXMLDigestPrefix,
		Normalize:       true,
	}
}

// Parse reads entries from r in the given format.
func Parse(r io.Reader, format Format, opts Options) ([]Entry, error) {
	switch format {
	case FormatXML:
		return ParseXML(r, opts.XMLDigestPrefix)
	case FormatText:
		return ParseText(r, opts.Layout)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
}

// Populate adds entries to m in order and returns how many were added.
func Populate(m *manifest.Manifest, entries []Entry, normalize bool) int {
	for _, e := range entries {
		checksum := e.Checksum
		if normalize {
			checksum = strings.ToUpper(checksum)
		}
		m.Add(checksum, e.Ref)
	}
	return len(entries)
}

// Load parses r and returns a new manifest holding its entries.
func Load(r io.Reader, format Format, opts Options) (*manifest.Manifest, error) {
	entries, err := Parse(r, format, opts)
	if err != nil {
		return nil, err
	}

	m := manifest.New()
	Populate(m, entries, opts.Normalize)
	return m, nil
}

// LoadFile loads the manifest at path, choosing the format by extension.
func LoadFile(path string, opts Options) (*manifest.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	format := DetectFormat(path)
	m, err := Load(f, format, opts)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	logger.Info("manifest loaded",
		"path", path,
		"format", format,
		"checksums", m.Len(),
		"entries", m.Size(),
	)
	return m, nil
}
