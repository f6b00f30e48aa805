package output

import "github.com/charmbracelet/lipgloss"

// Color constants using ANSI 256-color palette.
// These provide a consistent color scheme across all formatters.
const (
	// ColorPrimary is used for primary elements like headers (bright blue).
	ColorPrimary = lipgloss.Color("39")

	// ColorSuccess is used for new entries (green).
	ColorSuccess = lipgloss.Color("42")

	// ColorWarning is used for size changes (orange/yellow).
	ColorWarning = lipgloss.Color("214")

	// ColorDanger is used for removed entries (red).
	ColorDanger = lipgloss.Color("196")

	// ColorMuted is used for less important or secondary text (gray).
	ColorMuted = lipgloss.Color("245")
)

// Box styles for containing grouped content.
var (
	// HeaderBox is the style for the header section naming the two snapshots.
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	// FooterBox is the style for the footer section containing the summary.
	FooterBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1).
			MarginTop(1)
)

// Text styles for various content types.
var (
	// TitleStyle is used for major section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// LabelStyle is used for field labels (e.g., "Before:", "After:").
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// ValueStyle is used for field values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	// MutedStyle is used for de-emphasized text.
	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// NewStyle is used for New difference rows.
	NewStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// RemovedStyle is used for Removed difference rows.
	RemovedStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	// SizeChangeStyle is used for SizeChange difference rows.
	SizeChangeStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)
)
