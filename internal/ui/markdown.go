package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"tracetour/internal/tour"
)

// RenderMarkdown renders md for the terminal with a glamour standard style.
// On renderer failure the source is returned unchanged.
func RenderMarkdown(md, style string, width int) string {
	if style == "" {
		style = "dark"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// ScenarioMarkdown describes a scenario for the hub detail pane.
func ScenarioMarkdown(sc *tour.Scenario) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", sc.Title)
	fmt.Fprintf(&b, "*%s* · %d min · %d steps\n\n", sc.Role, sc.Minutes(), sc.Len())
	if sc.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", sc.Description)
	}
	if p := sc.Presenter; p.Name != "" {
		fmt.Fprintf(&b, "Presented by **%s**", p.Name)
		if p.Company != "" {
			fmt.Fprintf(&b, ", %s", p.Company)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// CatalogMarkdown lists scenarios as a markdown table.
func CatalogMarkdown(scenarios []*tour.Scenario) string {
	var b strings.Builder
	b.WriteString("# Demo scenarios\n\n")
	b.WriteString("| ID | Title | Role | Presenter | Steps | Minutes |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, sc := range scenarios {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %d | %d |\n",
			sc.ID, cell(sc.Title), cell(sc.Role), cell(sc.Presenter.Name), sc.Len(), sc.Minutes())
	}
	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
