package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/fixity/pkg/fixity/manifest"
)

// sampleResult reconciles two small inventories that share one file and
// differ in two others, one of them nameless.
func sampleResult(t *testing.T) *Result {
	t.Helper()

	a := manifest.New()
	a.Add("8E01A4B3", manifest.Name("docs/test.txt"))
	a.Add("12345678", manifest.Name("only-a.bin"))
	a.Add("12345678", manifest.Name("copy/only-a.bin"))

	b := manifest.New()
	b.Add("8E01A4B3", manifest.Name(`C:\archive\TEST.TXT`))
	b.Add("00000000", manifest.NoName())

	aEntries, aKeys := a.Size(), a.Len()
	bEntries, bKeys := b.Size(), b.Len()
	stats := manifest.Reconcile(a, b)

	return NewResult(
		NewSide("a.txt", "/tmp/a.txt", a, aEntries, aKeys),
		NewSide("crawl.xml", "/tmp/crawl.xml", b, bEntries, bKeys),
		stats,
	)
}

func TestNewResult(t *testing.T) {
	r := sampleResult(t)

	_, err := uuid.Parse(r.RunID)
	require.NoError(t, err)
	assert.False(t, r.Created.IsZero())
	assert.False(t, r.Identical())

	assert.Equal(t, manifest.Stats{KeysCompared: 1, Matched: 1, RemovedA: 1, RemovedB: 1}, r.Stats)
	assert.Equal(t, 3, r.A.Entries)
	assert.Equal(t, 2, r.A.Checksums)
	assert.Equal(t, 1, r.A.UniqueChecksums())
	assert.Equal(t, 2, r.A.UniqueFiles())
	assert.Equal(t, 1, r.B.UniqueChecksums())
	assert.Equal(t, 1, r.B.UniqueFiles())
}

func TestNewResult_RunIDsDiffer(t *testing.T) {
	assert.NotEqual(t, sampleResult(t).RunID, sampleResult(t).RunID)
}

func TestPlainFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, sampleResult(t)))

	want := strings.Join([]string{
		"Unique files in a.txt: 1",
		"12345678: [only-a.bin, copy/only-a.bin]",
		"Unique files in crawl.xml: 1",
		"00000000: [<no name>]",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestPlainFormatter_Identical(t *testing.T) {
	a := manifest.New()
	a.Add("AA", manifest.Name("x"))
	b := a.Clone()
	stats := manifest.Reconcile(a, b)

	r := NewResult(NewSide("a", "a", a, 1, 1), NewSide("b", "b", b, 1, 1), stats)
	assert.True(t, r.Identical())

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, r))
	assert.Equal(t, "Unique files in a: 0\nUnique files in b: 0\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	r := sampleResult(t)
	r.Algorithm = "cksum"

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, r))

	var got struct {
		RunID     string `json:"run_id"`
		Algorithm string `json:"algorithm"`
		Identical bool   `json:"identical"`
		Stats     struct {
			Matched int `json:"matched"`
		} `json:"stats"`
		Sides []struct {
			Label       string `json:"label"`
			UniqueFiles int    `json:"unique_files"`
			Residual    []struct {
				Checksum string    `json:"checksum"`
				Files    []*string `json:"files"`
			} `json:"residual"`
		} `json:"sides"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, r.RunID, got.RunID)
	assert.Equal(t, "cksum", got.Algorithm)
	assert.False(t, got.Identical)
	assert.Equal(t, 1, got.Stats.Matched)
	require.Len(t, got.Sides, 2)
	assert.Equal(t, "a.txt", got.Sides[0].Label)
	assert.Equal(t, 2, got.Sides[0].UniqueFiles)
	require.Len(t, got.Sides[1].Residual, 1)
	assert.Equal(t, "00000000", got.Sides[1].Residual[0].Checksum)
	assert.Equal(t, []*string{nil}, got.Sides[1].Residual[0].Files, "absent names are null")
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, sampleResult(t)))

	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))

	assert.Contains(t, got, "run_id")
	sides, ok := got["sides"].([]interface{})
	require.True(t, ok)
	require.Len(t, sides, 2)
	assert.Contains(t, buf.String(), "- null")
	assert.Contains(t, buf.String(), "copy/only-a.bin")
}

func TestPrettyFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, sampleResult(t)))

	out := buf.String()
	assert.Contains(t, out, "Unique files in a.txt: 1")
	assert.Contains(t, out, "12345678")
	assert.Contains(t, out, "copy/only-a.bin")
	assert.Contains(t, out, "<no name>")
	assert.Contains(t, out, "unmatched in crawl.xml")
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"json", "plain", "pretty", "yaml"}, Available())

	_, err := Get("xml")
	assert.Error(t, err)

	reg := NewRegistry()
	reg.Register("plain", func() Formatter { return &PlainFormatter{} })
	f, err := reg.Get("plain")
	require.NoError(t, err)
	assert.IsType(t, &PlainFormatter{}, f)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "plain", sampleResult(t)))
	assert.True(t, strings.HasPrefix(buf.String(), "Unique files in a.txt: 1\n"))

	assert.Error(t, Write(&buf, "nope", sampleResult(t)))
}
