package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/types"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display:
// changed entries are listed with per-kind coloring, unchanged entries are
// summarized in the footer.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	w.WriteString(f.formatTable(r))

	w.WriteString(f.formatFooter(r))

	return nil
}

// formatHeader builds the header box naming the two snapshots.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	beforeLabel := LabelStyle.Render("Before:")
	beforeValue := ValueStyle.Render(r.Before)
	lines = append(lines, fmt.Sprintf("%s %s", beforeLabel, beforeValue))

	afterLabel := LabelStyle.Render("After: ")
	afterValue := ValueStyle.Render(r.After)
	lines = append(lines, fmt.Sprintf("%s %s", afterLabel, afterValue))

	comparedLabel := LabelStyle.Render("Compared:")
	comparedValue := MutedStyle.Render(r.Report.DateTime)
	lines = append(lines, fmt.Sprintf("%s %s", comparedLabel, comparedValue))

	content := strings.Join(lines, "\n")
	return HeaderBox.Render(content)
}

// formatTable lists the changed entries, one styled row per difference.
func (f *PrettyFormatter) formatTable(r *Result) string {
	changed := r.Changed()
	if len(changed) == 0 {
		return MutedStyle.Render("No changes.") + "\n"
	}

	var b strings.Builder
	for _, e := range changed {
		b.WriteString(f.formatRow(e))
		b.WriteString("\n")
	}
	return b.String()
}

// formatRow renders one difference with a marker and per-kind coloring.
func (f *PrettyFormatter) formatRow(e types.EntryDifference) string {
	var marker string
	var style lipgloss.Style

	switch e.Difference {
	case types.DiffNew:
		marker = "+"
		style = NewStyle
	case types.DiffRemoved:
		marker = "-"
		style = RemovedStyle
	case types.DiffSizeChange:
		marker = "~"
		style = SizeChangeStyle
	default:
		marker = "="
		style = MutedStyle
	}

	row := fmt.Sprintf("%s %-10s %s", marker, e.Kind, e.Path)
	if e.Difference == types.DiffSizeChange {
		row += " (" + types.FormatSize(e.OctetsDifference) + ")"
	}
	return style.Render(row)
}

// formatFooter builds the footer box with the per-kind summary.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	s := r.Summarize()

	parts := []string{
		NewStyle.Render(fmt.Sprintf("%d new", s.New)),
		RemovedStyle.Render(fmt.Sprintf("%d removed", s.Removed)),
		SizeChangeStyle.Render(fmt.Sprintf("%d resized", s.SizeChanged)),
		MutedStyle.Render(fmt.Sprintf("%d unchanged", s.Unchanged)),
	}
	if s.OctetsChanged > 0 {
		parts = append(parts, ValueStyle.Render(types.FormatSize(s.OctetsChanged)+" of size change"))
	}

	return FooterBox.Render(strings.Join(parts, "  "))
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
