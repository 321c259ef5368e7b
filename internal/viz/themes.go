package viz

import "github.com/charmbracelet/lipgloss"

// Theme assigns colors to the plot layers and the side panel.
type Theme struct {
	Name   string
	Curve  lipgloss.Color
	Cobweb lipgloss.Color
	Axes   lipgloss.Color
	Cloud  lipgloss.Color
	Accent lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Error  lipgloss.Color
}

var (
	// ThemeClassic mirrors the usual plot colors: blue curve, green cobweb.
	ThemeClassic = Theme{
		Name:   "classic",
		Curve:  lipgloss.Color("#3b82f6"),
		Cobweb: lipgloss.Color("#22c55e"),
		Axes:   lipgloss.Color("#9ca3af"),
		Cloud:  lipgloss.Color("#e5e7eb"),
		Accent: lipgloss.Color("#facc15"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#6b7280"),
		Error:  lipgloss.Color("#ef4444"),
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Curve:  lipgloss.Color("#00ff00"), // Green phosphor
		Cobweb: lipgloss.Color("#88ff88"),
		Axes:   lipgloss.Color("#005500"),
		Cloud:  lipgloss.Color("#00cc00"),
		Accent: lipgloss.Color("#ffff00"),
		Text:   lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#005500"),
		Error:  lipgloss.Color("#ff0000"),
	}

	ThemeCyberpunk = Theme{
		Name:   "cyberpunk",
		Curve:  lipgloss.Color("#00ffff"),
		Cobweb: lipgloss.Color("#ff00ff"),
		Axes:   lipgloss.Color("#444466"),
		Cloud:  lipgloss.Color("#00ccff"),
		Accent: lipgloss.Color("#ffff00"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#666688"),
		Error:  lipgloss.Color("#ff4444"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Curve:  lipgloss.Color("#00a8cc"),
		Cobweb: lipgloss.Color("#ffd700"),
		Axes:   lipgloss.Color("#4488aa"),
		Cloud:  lipgloss.Color("#e0f0ff"),
		Accent: lipgloss.Color("#00ff88"),
		Text:   lipgloss.Color("#e0f0ff"),
		Muted:  lipgloss.Color("#4488aa"),
		Error:  lipgloss.Color("#ff4444"),
	}

	Themes = []Theme{
		ThemeClassic,
		ThemeRetroGreen,
		ThemeCyberpunk,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to the classic theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func themeIndex(name string) int {
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return 0
}
