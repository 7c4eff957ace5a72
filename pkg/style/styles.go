// Package style renders homestead's terminal output: warnings, errors and the
// end-of-run summary of backups.
package style

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	PathStyle = lipgloss.NewStyle().
			Foreground(PathColor)

	HostStyle = lipgloss.NewStyle().
			Foreground(HostColor).
			Bold(true)
)

// Indicators are rendered on use so they follow the active color profile
func SuccessIndicator() string { return SuccessStyle.Render("✓") }
func ErrorIndicator() string   { return ErrorStyle.Render("✗") }
func KeptIndicator() string    { return WarningStyle.Render("↺") }

// Warn writes a warning line to w
func Warn(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf(format, args...)))
}

// Error writes an error line to w
func Error(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, ErrorIndicator()+" "+ErrorStyle.Render(err.Error()))
}
