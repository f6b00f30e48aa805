package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/snapdiff/pkg/snapdiff/types"
)

// PlainFormatter formats output as a simple tab-separated table.
// It produces plain text output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	// Use tabwriter for aligned columns
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	// Write header
	if _, err := tw.Write([]byte("DIFFERENCE\tTYPE\tDELTA\tPATH\n")); err != nil {
		return err
	}

	// Write data rows
	for _, e := range r.Report.Entries {
		delta := "-"
		if e.Difference == types.DiffSizeChange {
			delta = types.FormatSize(e.OctetsDifference)
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s\n", e.Difference, e.Kind, delta, e.Path)
		if _, err := tw.Write([]byte(row)); err != nil {
			return err
		}
	}

	// Flush tabwriter to buffer
	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
