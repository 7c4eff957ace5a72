package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Colorful reports whether output should carry ANSI styling
func Colorful(output *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// Configure switches lipgloss to plain text when output is not a color terminal
func Configure(output *os.File) {
	if !Colorful(output) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
