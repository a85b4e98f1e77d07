package highlight

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// Highlighter renders scenario sources with terminal syntax colors.
type Highlighter struct {
	style     string
	formatter chroma.Formatter
}

// New creates a new Highlighter with the specified style.
// Supported styles include "monokai", "dracula", "github-dark" and "native".
func New(style string) *Highlighter {
	if style == "" {
		style = "monokai"
	}

	return &Highlighter{
		style:     style,
		formatter: formatters.Get("terminal256"),
	}
}

// StyleFor maps a UI theme name to a chroma style.
func StyleFor(theme string) string {
	switch theme {
	case "light":
		return "github"
	case "dark", "":
		return "monokai"
	default:
		return theme
	}
}

// Highlight applies syntax highlighting to code based on language.
func (h *Highlighter) Highlight(code, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(h.style)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, style, iterator); err != nil {
		return code
	}

	return buf.String()
}

// HighlightWithLineNumbers highlights code with a line-number gutter.
func (h *Highlighter) HighlightWithLineNumbers(code, lang string, startLine int) string {
	highlighted := strings.TrimSuffix(h.Highlight(code, lang), "\n")
	lines := strings.Split(highlighted, "\n")

	lineNumStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lineNumStyle.Render(padLeft(startLine+i, 4)))
		result.WriteString(" │ ")
		result.WriteString(line)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}

	return result.String()
}

// DetectLanguage picks a lexer name from a file path, defaulting to yaml
// since scenarios are stored as YAML.
func DetectLanguage(path string) string {
	if path == "" {
		return "yaml"
	}
	if lexer := lexers.Match(filepath.Base(path)); lexer != nil {
		return lexer.Config().Name
	}
	return "yaml"
}

func padLeft(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
