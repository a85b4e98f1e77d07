package ui

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// ThemeType represents different UI themes.
type ThemeType string

const (
	ThemeDark  ThemeType = "dark"  // Default dark theme (emerald on slate)
	ThemeMacOS ThemeType = "macos" // Apple-inspired theme
)

// ThemeColorScheme defines the color palette for a theme.
type ThemeColorScheme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	Border    lipgloss.Color
	Accent    lipgloss.Color
	Info      lipgloss.Color
	// Markdown is the glamour standard style used for descriptions.
	Markdown string
}

func predefinedThemes() map[ThemeType]ThemeColorScheme {
	return map[ThemeType]ThemeColorScheme{
		ThemeDark: {
			Name:      "Dark (Default)",
			Primary:   lipgloss.Color("#10B981"), // Emerald 500, the spotlight color
			Secondary: lipgloss.Color("#22D3EE"), // Cyan 400
			Success:   lipgloss.Color("#34D399"), // Emerald 400
			Warning:   lipgloss.Color("#FBBF24"), // Amber 400
			Error:     lipgloss.Color("#F87171"), // Red 400
			Muted:     lipgloss.Color("#9CA3AF"), // Gray 400
			Text:      lipgloss.Color("#F1F5F9"), // Slate 100
			Border:    lipgloss.Color("#334155"), // Slate 700
			Accent:    lipgloss.Color("#A78BFA"), // Violet 400
			Info:      lipgloss.Color("#2DD4BF"), // Teal 400
			Markdown:  "dark",
		},
		ThemeMacOS: {
			Name:      "Apple (MacOS)",
			Primary:   lipgloss.Color("#34C759"), // SF Green
			Secondary: lipgloss.Color("#007AFF"), // SF Blue
			Success:   lipgloss.Color("#34C759"),
			Warning:   lipgloss.Color("#FF9500"), // SF Orange
			Error:     lipgloss.Color("#FF3B30"), // SF Red
			Muted:     lipgloss.Color("#8E8E93"), // SF Gray
			Text:      lipgloss.Color("#FFFFFF"),
			Border:    lipgloss.Color("#3A3A3C"),
			Accent:    lipgloss.Color("#5856D6"), // SF Purple
			Info:      lipgloss.Color("#00C7BE"), // SF Mint
			Markdown:  "dark",
		},
	}
}

// GetTheme returns the color scheme for a given theme type.
func GetTheme(themeType ThemeType) ThemeColorScheme {
	themes := predefinedThemes()
	if theme, ok := themes[themeType]; ok {
		return theme
	}
	return themes[ThemeDark]
}

// ApplyTheme sets the palette and rebuilds every style from it.
func (s *Styles) ApplyTheme(theme ThemeType) {
	colors := GetTheme(theme)

	ColorPrimary = colors.Primary
	ColorSecondary = colors.Secondary
	ColorSuccess = colors.Success
	ColorWarning = colors.Warning
	ColorError = colors.Error
	ColorMuted = colors.Muted
	ColorText = colors.Text
	ColorBorder = colors.Border
	ColorAccent = colors.Accent
	ColorInfo = colors.Info

	*s = *DefaultStyles()
	s.Markdown = colors.Markdown
}

// AvailableThemes lists the theme ids, sorted.
func AvailableThemes() []ThemeType {
	var ids []ThemeType
	for id := range predefinedThemes() {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
