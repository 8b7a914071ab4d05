package report

import (
	"bytes"
	"time"

	"gopkg.in/yaml.v3"
)

type yamlOutput struct {
	RunID     string     `yaml:"run_id"`
	Created   time.Time  `yaml:"created"`
	Algorithm string     `yaml:"algorithm,omitempty"`
	Identical bool       `yaml:"identical"`
	Stats     yamlStats  `yaml:"stats"`
	Sides     []yamlSide `yaml:"sides"`
}

type yamlStats struct {
	KeysCompared int    `yaml:"keys_compared"`
	Matched      int    `yaml:"matched"`
	RemovedA     int    `yaml:"removed_a"`
	RemovedB     int    `yaml:"removed_b"`
	Elapsed      string `yaml:"elapsed,omitempty"`
}

type yamlSide struct {
	Label           string      `yaml:"label"`
	Source          string      `yaml:"source"`
	Entries         int         `yaml:"entries"`
	Checksums       int         `yaml:"checksums"`
	UniqueChecksums int         `yaml:"unique_checksums"`
	UniqueFiles     int         `yaml:"unique_files"`
	Residual        []yamlEntry `yaml:"residual"`
}

type yamlEntry struct {
	Checksum string    `yaml:"checksum"`
	Files    []*string `yaml:"files"`
}

// YAMLFormatter formats the report as YAML with the same structure as
// JSONFormatter.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(f.buildOutput(r)); err != nil {
		return err
	}
	return encoder.Close()
}

func (f *YAMLFormatter) buildOutput(r *Result) yamlOutput {
	out := yamlOutput{
		RunID:     r.RunID,
		Created:   r.Created,
		Algorithm: r.Algorithm,
		Identical: r.Identical(),
		Stats: yamlStats{
			KeysCompared: r.Stats.KeysCompared,
			Matched:      r.Stats.Matched,
			RemovedA:     r.Stats.RemovedA,
			RemovedB:     r.Stats.RemovedB,
			Elapsed:      formatDurationString(r.Elapsed),
		},
	}

	for _, side := range []Side{r.A, r.B} {
		ys := yamlSide{
			Label:           side.Label,
			Source:          side.Source,
			Entries:         side.Entries,
			Checksums:       side.Checksums,
			UniqueChecksums: side.UniqueChecksums(),
			UniqueFiles:     side.UniqueFiles(),
			Residual:        make([]yamlEntry, len(side.Residual)),
		}
		for i, e := range side.Residual {
			ys.Residual[i] = yamlEntry{Checksum: e.Checksum, Files: refNames(e.Refs)}
		}
		out.Sides = append(out.Sides, ys)
	}
	return out
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

var _ Formatter = (*YAMLFormatter)(nil)
