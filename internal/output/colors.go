package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Severity color palette for audit output
var severityStyles = map[string]lipgloss.Style{
	"LOW":      lipgloss.NewStyle().Foreground(lipgloss.Color("#4dca7d")), // green
	"MEDIUM":   lipgloss.NewStyle().Foreground(lipgloss.Color("#f5c800")), // yellow
	"HIGH":     lipgloss.NewStyle().Foreground(lipgloss.Color("#f89048")), // orange
	"CRITICAL": lipgloss.NewStyle().Foreground(lipgloss.Color("#f46251")), // red
}

// ColorsEnabled reports whether colored output should be produced.
// Colors are suppressed when stdout is not a terminal, when NO_COLOR is
// set, or when the terminal reports no color support.
func ColorsEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// ColorizeSeverity returns the severity name styled with its palette color
func ColorizeSeverity(severity string) string {
	if !ColorsEnabled() {
		return severity
	}
	style, ok := severityStyles[severity]
	if !ok {
		return severity
	}
	return style.Render(severity)
}
