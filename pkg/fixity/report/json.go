package report

import (
	"bytes"
	"encoding/json"
	"time"
)

type jsonOutput struct {
	RunID     string     `json:"run_id"`
	Created   time.Time  `json:"created"`
	Algorithm string     `json:"algorithm,omitempty"`
	Identical bool       `json:"identical"`
	Stats     jsonStats  `json:"stats"`
	Sides     []jsonSide `json:"sides"`
}

type jsonStats struct {
	KeysCompared int    `json:"keys_compared"`
	Matched      int    `json:"matched"`
	RemovedA     int    `json:"removed_a"`
	RemovedB     int    `json:"removed_b"`
	Elapsed      string `json:"elapsed,omitempty"`
}

type jsonSide struct {
	Label           string      `json:"label"`
	Source          string      `json:"source"`
	Entries         int         `json:"entries"`
	Checksums       int         `json:"checksums"`
	UniqueChecksums int         `json:"unique_checksums"`
	UniqueFiles     int         `json:"unique_files"`
	Residual        []jsonEntry `json:"residual"`
}

// jsonEntry lists absent file names as null.
type jsonEntry struct {
	Checksum string    `json:"checksum"`
	Files    []*string `json:"files"`
}

// JSONFormatter formats the report as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(f.buildOutput(r))
}

func (f *JSONFormatter) buildOutput(r *Result) jsonOutput {
	out := jsonOutput{
		RunID:     r.RunID,
		Created:   r.Created,
		Algorithm: r.Algorithm,
		Identical: r.Identical(),
		Stats: jsonStats{
			KeysCompared: r.Stats.KeysCompared,
			Matched:      r.Stats.Matched,
			RemovedA:     r.Stats.RemovedA,
			RemovedB:     r.Stats.RemovedB,
			Elapsed:      formatDurationString(r.Elapsed),
		},
	}

	for _, side := range []Side{r.A, r.B} {
		js := jsonSide{
			Label:           side.Label,
			Source:          side.Source,
			Entries:         side.Entries,
			Checksums:       side.Checksums,
			UniqueChecksums: side.UniqueChecksums(),
			UniqueFiles:     side.UniqueFiles(),
			Residual:        make([]jsonEntry, len(side.Residual)),
		}
		for i, e := range side.Residual {
			js.Residual[i] = jsonEntry{Checksum: e.Checksum, Files: refNames(e.Refs)}
		}
		out.Sides = append(out.Sides, js)
	}
	return out
}

// formatDurationString formats a duration for machine-readable output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

var _ Formatter = (*JSONFormatter)(nil)
