package style

import "github.com/charmbracelet/lipgloss"

// Palette colors adapt to light and dark terminal backgrounds
var (
	HostColor    = lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#5FAFFF"}
	SuccessColor = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF5350"}
	// WarningColor stays close to terminal yellow, readable on white
	WarningColor = lipgloss.AdaptiveColor{Light: "#A66F00", Dark: "#FFD54F"}
	HeadingColor = lipgloss.AdaptiveColor{Light: "#1B1B1B", Dark: "#EEEEEE"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}
	PathColor    = lipgloss.AdaptiveColor{Light: "#00838F", Dark: "#4DD0E1"}
)
