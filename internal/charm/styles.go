package charm

import "github.com/charmbracelet/lipgloss"

var (
	HeavilyEmphasized = lipgloss.
				NewStyle().
				Foreground(Colors.Yellow).
				Bold(true)

	Emphasized = HeavilyEmphasized.Foreground(Colors.White)

	Info    = Emphasized.Foreground(Colors.Blue)
	Warning = Emphasized.Foreground(Colors.Yellow)
	Error   = Emphasized.Foreground(Colors.Red)
	Success = Emphasized.Foreground(Colors.Green)

	Dimmed       = lipgloss.NewStyle().Foreground(Colors.Grey)
	DimmedItalic = Dimmed.Italic(true)

	Added   = lipgloss.NewStyle().Foreground(Colors.Green)
	Removed = lipgloss.NewStyle().Foreground(Colors.Red)

	None = lipgloss.NewStyle()

	Colors = struct {
		Yellow, Red, Green, Grey, White, Blue lipgloss.AdaptiveColor
	}{
		Yellow: lipgloss.AdaptiveColor{Dark: "#FBE331", Light: "#AF9A04"},
		White:  lipgloss.AdaptiveColor{Dark: "#F3F0E3", Light: "#16150E"},
		Red:    lipgloss.AdaptiveColor{Dark: "#D93337", Light: "#54121B"},
		Green:  lipgloss.AdaptiveColor{Dark: "#63AC67", Light: "#293D2A"},
		Grey:   lipgloss.AdaptiveColor{Dark: "#8A887D", Light: "#BAB8AA"},
		Blue:   lipgloss.AdaptiveColor{Dark: "#679FE1", Light: "#1D2A3A"},
	}
)
