package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jamesainslie/fixity/pkg/fixity/manifest"
)

// Layout is the column order of a flat text manifest.
type Layout int

const (
	// ChecksumFirst lines read "checksum,filename".
	ChecksumFirst Layout = iota
	// FilenameFirst lines read "filename,checksum", as written by OS CRC
	// exporters.
	FilenameFirst
)

// ErrInvalidLayout is returned by ParseLayout for unknown names.
var ErrInvalidLayout = errors.New("invalid manifest layout")

// ParseLayout parses "checksum-first" or "filename-first".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "checksum-first", "checksum", "":
		return ChecksumFirst, nil
	case "filename-first", "filename":
		return FilenameFirst, nil
	default:
		return ChecksumFirst, fmt.Errorf("%w: %q", ErrInvalidLayout, s)
	}
}

func (l Layout) String() string {
	if l == FilenameFirst {
		return "filename-first"
	}
	return "checksum-first"
}

// maxLineSize bounds a single manifest line.
const maxLineSize = 1 << 20

// byteOrderMark is written at the start of text files by some Windows tools.
const byteOrderMark = "\uFEFF"

// ParseText reads one entry per non-blank line. The checksum column is
// split off at the comma nearest to it, so filenames may contain commas.
// An empty filename column yields an absent reference.
func ParseText(r io.Reader, layout Layout) ([]Entry, error) {
	var entries []Entry

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := sc.Text()
		if lineNo == 1 {
			text = strings.TrimPrefix(text, byteOrderMark)
		}
		line := strings.TrimSpace(text)
		if line == "" {
			continue
		}

		var checksum, name string
		var ok bool
		if layout == FilenameFirst {
			i := strings.LastIndexByte(line, ',')
			ok = i >= 0
			if ok {
				name, checksum = line[:i], line[i+1:]
			}
		} else {
			checksum, name, ok = strings.Cut(line, ",")
		}
		if !ok {
			return nil, fmt.Errorf("%w: line %d: no comma separator", ErrMalformed, lineNo)
		}

		checksum = strings.TrimSpace(checksum)
		if checksum == "" {
			return nil, fmt.Errorf("%w: line %d: empty checksum", ErrMalformed, lineNo)
		}

		entries = append(entries, Entry{
			Checksum: checksum,
			Ref:      manifest.Name(strings.TrimSpace(name)),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest after line %d: %w", lineNo, err)
	}

	return entries, nil
}

// WriteText writes m as a flat text manifest in key then bucket order.
// Absent references are written as an empty filename column.
func WriteText(w io.Writer, m *manifest.Manifest, layout Layout) error {
	bw := bufio.NewWriter(w)

	for _, e := range m.Entries() {
		for _, ref := range e.Refs {
			var err error
			if layout == FilenameFirst {
				_, err = fmt.Fprintf(bw, "%s,%s\n", ref.Path(), e.Checksum)
			} else {
				_, err = fmt.Fprintf(bw, "%s,%s\n", e.Checksum, ref.Path())
			}
			if err != nil {
				return fmt.Errorf("writing manifest: %w", err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
