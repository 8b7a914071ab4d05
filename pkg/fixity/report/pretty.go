package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter renders the report for a terminal with lipgloss styling.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	for _, side := range []Side{r.A, r.B} {
		w.WriteString(f.formatSide(side))
	}

	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) formatHeader(r *Result) string {
	lines := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("A:"), ValueStyle.Render(r.A.Source)),
		fmt.Sprintf("%s %s", LabelStyle.Render("B:"), ValueStyle.Render(r.B.Source)),
	}

	info := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Compared:"),
			ValueStyle.Render(fmt.Sprintf("%s checksums", humanize.Comma(int64(r.Stats.KeysCompared))))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Matched:"),
			ValueStyle.Render(humanize.Comma(int64(r.Stats.Matched)))),
	}
	if r.Algorithm != "" {
		info = append(info, fmt.Sprintf("%s %s", LabelStyle.Render("Digest:"), ValueStyle.Render(r.Algorithm)))
	}
	if r.Elapsed > 0 {
		info = append(info, fmt.Sprintf("%s %s", LabelStyle.Render("Took:"), ValueStyle.Render(formatDuration(r.Elapsed))))
	}
	lines = append(lines, strings.Join(info, "  "))
	lines = append(lines, MutedStyle.Render("run "+r.RunID))

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatSide(s Side) string {
	var sb strings.Builder

	title := fmt.Sprintf("Unique files in %s: %d", s.Label, s.UniqueChecksums())
	sb.WriteString(TitleStyle.Render(title))
	sb.WriteString(MutedStyle.Render(fmt.Sprintf("  (%s of %s entries)",
		humanize.Comma(int64(s.UniqueFiles())), humanize.Comma(int64(s.Entries)))))
	sb.WriteString("\n")

	if len(s.Residual) == 0 {
		sb.WriteString(MutedStyle.Render("  nothing left"))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, e := range s.Residual {
		sb.WriteString("  ")
		sb.WriteString(ChecksumStyle.Render(e.Checksum))
		sb.WriteString("\n")
		for _, ref := range e.Refs {
			if ref.IsAbsent() {
				sb.WriteString("    " + MutedStyle.Render(ref.String()))
			} else {
				sb.WriteString("    " + PathStyle.Render(ref.Path()))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFooter(r *Result) string {
	if r.Identical() {
		return FooterBox.Render(SuccessStyle.Render("Inventories agree"))
	}
	summary := fmt.Sprintf("%s unmatched in %s, %s unmatched in %s",
		humanize.Comma(int64(r.A.UniqueFiles())), r.A.Label,
		humanize.Comma(int64(r.B.UniqueFiles())), r.B.Label)
	return FooterBox.Render(WarningStyle.Render(summary))
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
