package report

import (
	"bytes"
	"fmt"
	"strings"
)

// PlainFormatter writes, for each side, a "Unique files in" count line
// followed by one "checksum: [files]" line per residual checksum. It
// carries no styling and is stable for scripts.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, side := range []Side{r.A, r.B} {
		fmt.Fprintf(w, "Unique files in %s: %d\n", side.Label, side.UniqueChecksums())
		for _, e := range side.Residual {
			names := make([]string, len(e.Refs))
			for i, ref := range e.Refs {
				names[i] = ref.String()
			}
			fmt.Fprintf(w, "%s: [%s]\n", e.Checksum, strings.Join(names, ", "))
		}
	}
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
