package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors for the UI theme. ApplyTheme replaces them.
var (
	ColorPrimary   = lipgloss.Color("#10B981") // Emerald 500
	ColorSecondary = lipgloss.Color("#22D3EE") // Cyan 400
	ColorSuccess   = lipgloss.Color("#34D399") // Emerald 400
	ColorWarning   = lipgloss.Color("#FBBF24") // Amber 400
	ColorError     = lipgloss.Color("#F87171") // Red 400
	ColorMuted     = lipgloss.Color("#9CA3AF") // Gray 400
	ColorText      = lipgloss.Color("#F1F5F9") // Slate 100
	ColorBorder    = lipgloss.Color("#334155") // Slate 700
	ColorAccent    = lipgloss.Color("#A78BFA") // Violet 400
	ColorInfo      = lipgloss.Color("#2DD4BF") // Teal 400
	ColorDim       = lipgloss.Color("#6B7280") // Gray 500
)

// Icons used across the shell.
var Icons = map[string]string{
	"play":     "▶",
	"pause":    "⏸",
	"skip":     "⏭",
	"muted":    "🔇",
	"sound":    "🔊",
	"minimize": "▁",
	"expand":   "▢",
	"close":    "✕",
	"replay":   "↺",
	"done":     "✓",
	"target":   "◎",
}

// Styles contains all UI styles.
type Styles struct {
	App      lipgloss.Style
	Header   lipgloss.Style
	Subtle   lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Spinner  lipgloss.Style
	KeyHint  lipgloss.Style
	KeyLabel lipgloss.Style

	// Hub
	CardTitle    lipgloss.Style
	CardRole     lipgloss.Style
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	Duration     lipgloss.Style

	// Overlay
	Overlay     lipgloss.Style
	Avatar      lipgloss.Style
	Presenter   lipgloss.Style
	StepCounter lipgloss.Style
	StepTitle   lipgloss.Style
	Narration   lipgloss.Style
	Pill        lipgloss.Style
	Control     lipgloss.Style
	ControlOn   lipgloss.Style
	BarFilled   lipgloss.Style
	BarEmpty    lipgloss.Style
	Spotlight   lipgloss.Style

	// Completion
	Complete      lipgloss.Style
	CompleteTitle lipgloss.Style

	// Markdown is the glamour standard style for rendered descriptions.
	Markdown string
}

// DefaultStyles returns the default UI styles.
func DefaultStyles() *Styles {
	return &Styles{
		App: lipgloss.NewStyle().Padding(1, 2),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1),

		Subtle: lipgloss.NewStyle().
			Foreground(ColorMuted),

		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(ColorPrimary),

		KeyHint: lipgloss.NewStyle().
			Foreground(ColorDim),

		KeyLabel: lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true),

		CardTitle: lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true),

		CardRole: lipgloss.NewStyle().
			Foreground(ColorPrimary),

		Card: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1),

		CardSelected: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1),

		Duration: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true),

		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2),

		Avatar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0F172A")).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 1),

		Presenter: lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true),

		StepCounter: lipgloss.NewStyle().
			Foreground(ColorMuted),

		StepTitle: lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true),

		Narration: lipgloss.NewStyle().
			Foreground(ColorText),

		Pill: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1),

		Control: lipgloss.NewStyle().
			Foreground(ColorMuted),

		ControlOn: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),

		BarFilled: lipgloss.NewStyle().
			Foreground(ColorPrimary),

		BarEmpty: lipgloss.NewStyle().
			Foreground(ColorBorder),

		Spotlight: lipgloss.NewStyle().
			Foreground(ColorInfo),

		Complete: lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(ColorSuccess).
			Padding(1, 3).
			Align(lipgloss.Center),

		CompleteTitle: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),

		Markdown: "dark",
	}
}

// FormatKey renders a key binding hint such as "space play".
func (s *Styles) FormatKey(key, label string) string {
	return s.KeyLabel.Render(key) + " " + s.KeyHint.Render(label)
}
