package loader

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/fixity/pkg/fixity/manifest"
)

func TestParseLayout(t *testing.T) {
	tests := []struct {
		in      string
		want    Layout
		wantErr bool
	}{
		{"", ChecksumFirst, false},
		{"checksum-first", ChecksumFirst, false},
		{"Filename-First", FilenameFirst, false},
		{"filename", FilenameFirst, false},
		{"sideways", ChecksumFirst, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLayout(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLayout)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "filename-first", FilenameFirst.String())
}

func TestParseText(t *testing.T) {
	t.Run("checksum first", func(t *testing.T) {
		in := "ABC,dir/a.txt\r\n\n  DEF , name, with, commas \nABC,\n"
		got, err := ParseText(strings.NewReader(in), ChecksumFirst)
		require.NoError(t, err)
		assert.Equal(t, []Entry{
			{Checksum: "ABC", Ref: manifest.Name("dir/a.txt")},
			{Checksum: "DEF", Ref: manifest.Name("name, with, commas")},
			{Checksum: "ABC", Ref: manifest.NoName()},
		}, got)
	})

	t.Run("filename first", func(t *testing.T) {
		in := "a,b.txt,CAFEBABE\n,FFFFFFFF\n"
		got, err := ParseText(strings.NewReader(in), FilenameFirst)
		require.NoError(t, err)
		assert.Equal(t, []Entry{
			{Checksum: "CAFEBABE", Ref: manifest.Name("a,b.txt")},
			{Checksum: "FFFFFFFF", Ref: manifest.NoName()},
		}, got)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := ParseText(strings.NewReader("ABC,a\nnocomma\n"), ChecksumFirst)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("empty checksum", func(t *testing.T) {
		_, err := ParseText(strings.NewReader(" ,a.txt\n"), ChecksumFirst)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("leading byte order mark", func(t *testing.T) {
		got, err := ParseText(strings.NewReader("\uFEFFDEADBEEF,a.txt\n\uFEFFX,b\n"), ChecksumFirst)
		require.NoError(t, err)
		assert.Equal(t, "DEADBEEF", got[0].Checksum)
		assert.Equal(t, "\uFEFFX", got[1].Checksum, "only the first line carries a mark")

		got, err = ParseText(strings.NewReader("\uFEFFa.txt,DEADBEEF\n"), FilenameFirst)
		require.NoError(t, err)
		assert.Equal(t, manifest.Name("a.txt"), got[0].Ref)
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := ParseText(strings.NewReader(""), ChecksumFirst)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestParseXML(t *testing.T) {
	t.Run("prefix selects checksums", func(t *testing.T) {
		in := `<r>
			<file>a.txt</file><checksum digest="MD5">11</checksum><checksum digest="SHA-256">22</checksum>
			<file>b.txt</file><checksum digest="SHA-256">33</checksum>
		</r>`
		got, err := ParseXML(strings.NewReader(in), "SHA-256")
		require.NoError(t, err)
		assert.Equal(t, []Entry{
			{Checksum: "22", Ref: manifest.Name("a.txt")},
			{Checksum: "33", Ref: manifest.Name("b.txt")},
		}, got)
	})

	t.Run("second checksum consumes no name", func(t *testing.T) {
		in := `<r><file>a.txt</file><checksum digest="cksum">1</checksum><checksum digest="cksum-2">2</checksum></r>`
		got, err := ParseXML(strings.NewReader(in), "cksum")
		require.NoError(t, err)
		assert.Equal(t, []Entry{
			{Checksum: "1", Ref: manifest.Name("a.txt")},
			{Checksum: "2", Ref: manifest.NoName()},
		}, got)
	})

	t.Run("checksum without digest attribute is skipped", func(t *testing.T) {
		in := `<r><file>a</file><checksum>1</checksum></r>`
		got, err := ParseXML(strings.NewReader(in), "")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("latin-1 document", func(t *testing.T) {
		in := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
			"<crawl><file>caf\xe9.txt</file><checksum digest=\"cksum\">FFFFFFFF</checksum></crawl>"
		got, err := ParseXML(strings.NewReader(in), "cksum")
		require.NoError(t, err)
		assert.Equal(t, []Entry{
			{Checksum: "FFFFFFFF", Ref: manifest.Name("café.txt")},
		}, got)
	})

	t.Run("windows-1252 document", func(t *testing.T) {
		in := "<?xml version=\"1.0\" encoding=\"windows-1252\"?>" +
			"<crawl><file>\x93quoted\x94.txt</file><checksum digest=\"cksum\">1</checksum></crawl>"
		got, err := ParseXML(strings.NewReader(in), "cksum")
		require.NoError(t, err)
		assert.Equal(t, "\u201cquoted\u201d.txt", got[0].Ref.Path())
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := ParseXML(strings.NewReader(`<r><file>a</r>`), "cksum")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("empty value", func(t *testing.T) {
		_, err := ParseXML(strings.NewReader(`<r><file>a</file><checksum digest="cksum"> </checksum></r>`), "cksum")
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestPopulate(t *testing.T) {
	entries := []Entry{
		{Checksum: "abc", Ref: manifest.Name("x")},
		{Checksum: "ABC", Ref: manifest.Name("x")},
	}

	t.Run("normalised keys share a bucket", func(t *testing.T) {
		m := manifest.New()
		n := Populate(m, entries, true)
		assert.Equal(t, 2, n)
		assert.Equal(t, []string{"ABC"}, m.Keys())
		assert.Len(t, m.Get("ABC"), 2)
	})

	t.Run("raw keys stay distinct", func(t *testing.T) {
		m := manifest.New()
		Populate(m, entries, false)
		assert.Equal(t, []string{"abc", "ABC"}, m.Keys())
	})
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatXML, DetectFormat("crawl.XML"))
	assert.Equal(t, FormatXML, DetectFormat("/a/b/report.xml"))
	assert.Equal(t, FormatText, DetectFormat("export.txt"))
	assert.Equal(t, FormatText, DetectFormat("crc"))
}

func TestLoadFile(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		m, err := LoadFile(filepath.Join("testdata", "source.txt"), DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, []string{"8E01A4B3", "FFFFFFFF", "12345678"}, m.Keys())
		assert.Equal(t, []manifest.FileRef{manifest.Name("docs/test.txt"), manifest.Name("copy of test.txt")}, m.Get("8E01A4B3"))
		assert.Equal(t, []manifest.FileRef{manifest.NoName()}, m.Get("12345678"))
	})

	t.Run("os crc layout", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Layout = FilenameFirst
		m, err := LoadFile(filepath.Join("testdata", "oscrc.txt"), opts)
		require.NoError(t, err)
		assert.Equal(t, []manifest.FileRef{manifest.Name(`C:\export\a,b.txt`)}, m.Get("CAFEBABE"))
	})

	t.Run("xml", func(t *testing.T) {
		m, err := LoadFile(filepath.Join("testdata", "crawl.xml"), DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, []string{"8E01A4B3", "FFFFFFFF", "00000000"}, m.Keys())
		assert.Equal(t, []manifest.FileRef{manifest.Name("/data/test.txt")}, m.Get("8E01A4B3"))
		assert.Equal(t, []manifest.FileRef{manifest.NoName()}, m.Get("00000000"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"), DefaultOptions())
		assert.Error(t, err)
	})
}

func TestCrossFormatReconcile(t *testing.T) {
	text, err := LoadFile(filepath.Join("testdata", "source.txt"), DefaultOptions())
	require.NoError(t, err)
	crawl, err := LoadFile(filepath.Join("testdata", "crawl.xml"), DefaultOptions())
	require.NoError(t, err)

	manifest.Reconcile(text, crawl)

	assert.Equal(t, []string{"8E01A4B3", "12345678"}, text.Keys())
	assert.Equal(t, []manifest.FileRef{manifest.Name("copy of test.txt")}, text.Get("8E01A4B3"))
	assert.Equal(t, []string{"00000000"}, crawl.Keys())
}

func TestWriteText_RoundTrip(t *testing.T) {
	for _, layout := range []Layout{ChecksumFirst, FilenameFirst} {
		t.Run(layout.String(), func(t *testing.T) {
			m := manifest.New()
			m.Add("8E01A4B3", manifest.Name("a/test.txt"))
			m.Add("FFFFFFFF", manifest.NoName())
			m.Add("8E01A4B3", manifest.Name("b/test.txt"))

			var buf bytes.Buffer
			require.NoError(t, WriteText(&buf, m, layout))

			back, err := Load(&buf, FormatText, Options{Layout: layout})
			require.NoError(t, err)
			assert.True(t, m.Equal(back), "got %v", back.Entries())
		})
	}
}
