package loader

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/jamesainslie/fixity/pkg/fixity/manifest"
)

const (
	fileElement     = "file"
	checksumElement = "checksum"
	digestAttr      = "digest"
)

// ParseXML extracts entries from a crawler report made of sibling <file>
// and <checksum digest="..."> elements, at any depth. Only checksums whose
// digest attribute starts with prefix are taken; an empty prefix takes all.
//
// Documents declaring a legacy encoding such as ISO-8859-1 or windows-1252
// are decoded to UTF-8.
//
// A taken checksum consumes the most recent filename. A second taken
// checksum with no <file> in between therefore gets an absent reference.
func ParseXML(r io.Reader, prefix string) ([]Entry, error) {
	var (
		entries []Entry
		pending string
	)

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: offset %d: %w", ErrMalformed, dec.InputOffset(), err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case fileElement:
			var name string
			if err := dec.DecodeElement(&name, &start); err != nil {
				return nil, fmt.Errorf("%w: offset %d: %w", ErrMalformed, dec.InputOffset(), err)
			}
			pending = strings.TrimSpace(name)

		case checksumElement:
			digest, found := attr(start, digestAttr)
			if !found || !strings.HasPrefix(digest, prefix) {
				continue
			}

			var value string
			if err := dec.DecodeElement(&value, &start); err != nil {
				return nil, fmt.Errorf("%w: offset %d: %w", ErrMalformed, dec.InputOffset(), err)
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return nil, fmt.Errorf("%w: offset %d: empty %s value", ErrMalformed, dec.InputOffset(), digest)
			}

			if pending == "" {
				logger.Warn("checksum without filename", "digest", digest, "checksum", value)
			}
			entries = append(entries, Entry{Checksum: value, Ref: manifest.Name(pending)})
			pending = ""
		}
	}

	return entries, nil
}

func attr(start xml.StartElement, name string) (string, bool) {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
