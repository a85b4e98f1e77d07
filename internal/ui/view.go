package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tracetour/internal/tour"
)

// View renders the visible screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.screen {
	case screenOverlay:
		if m.state.Minimized {
			body = m.viewPill()
		} else {
			body = m.viewOverlay()
		}
	case screenComplete:
		body = m.viewComplete()
	default:
		body = m.viewHub()
	}

	if toasts := m.toasts.View(m.contentWidth()); toasts != "" {
		body += "\n\n" + toasts
	}
	return m.styles.App.Render(body)
}

func (m Model) viewHub() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Traceability demo tours"))
	b.WriteString("\n")

	if len(m.scenarios) == 0 {
		b.WriteString(m.styles.Subtle.Render("No scenarios loaded."))
		b.WriteString("\n")
	}
	for i, sc := range m.scenarios {
		b.WriteString(m.renderCard(sc, i == m.cursor))
		b.WriteString("\n")
	}

	if m.detail != "" {
		b.WriteString("\n")
		b.WriteString(m.detail)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.hints(m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Close))
	return b.String()
}

func (m Model) renderCard(sc *tour.Scenario, selected bool) string {
	style := m.styles.Card
	if selected {
		style = m.styles.CardSelected
	}
	title := m.styles.CardTitle.Render(sc.Title)
	meta := m.styles.CardRole.Render(sc.Role)
	if sc.Presenter.Name != "" {
		meta += m.styles.Subtle.Render(" · " + sc.Presenter.Name)
	}
	duration := m.styles.Duration.Render(fmt.Sprintf("%d min", sc.Minutes()))
	return style.Width(m.contentWidth()).Render(title + "  " + duration + "\n" + meta)
}

func (m Model) viewOverlay() string {
	sc := m.state.Scenario
	step, ok := m.state.Step()
	if sc == nil || !ok {
		return ""
	}

	var b strings.Builder

	avatar := m.styles.Avatar.Render(initials(sc))
	name := sc.Presenter.Name
	if name == "" {
		name = sc.Title
	}
	who := m.styles.Presenter.Render(name) + "\n" + m.styles.CardRole.Render(sc.Role)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, avatar, " ", who))
	b.WriteString("\n\n")

	b.WriteString(m.styles.StepCounter.Render(StepCounter(m.state.Index, m.state.Total())))
	b.WriteString("  ")
	b.WriteString(m.styles.StepTitle.Render(step.Title))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	b.WriteString(m.styles.RenderProgressBar(m.state.Progress(), m.contentWidth()-8))
	b.WriteString("\n")
	b.WriteString(m.controlsLine())

	if m.opts.ShowSpotlightInfo {
		b.WriteString("\n")
		b.WriteString(m.spotlightLine(step))
	}

	b.WriteString("\n\n")
	b.WriteString(m.styles.hints(m.keys.Play, m.keys.Skip, m.keys.Mute, m.keys.Minimize, m.keys.Copy, m.keys.Close))

	return m.styles.Overlay.Width(m.contentWidth()).Render(b.String())
}

func (m Model) controlsLine() string {
	var parts []string
	if m.state.Playing {
		parts = append(parts, m.spinner.View()+m.styles.ControlOn.Render(Icons["play"]+" playing"))
	} else {
		parts = append(parts, m.styles.Control.Render(Icons["pause"]+" paused"))
	}
	if m.state.Muted {
		parts = append(parts, m.styles.Control.Render(Icons["muted"]+" muted"))
	} else {
		parts = append(parts, m.styles.ControlOn.Render(Icons["sound"]+" narrating"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) spotlightLine(step tour.Step) string {
	switch {
	case m.state.Spotlight != nil:
		return m.styles.Spotlight.Render(fmt.Sprintf("%s %s %s", Icons["target"], step.Target, m.state.Spotlight))
	case step.Target != "":
		return m.styles.Subtle.Render(fmt.Sprintf("%s %s (not lit)", Icons["target"], step.Target))
	default:
		return m.styles.Subtle.Render(Icons["target"] + " no target")
	}
}

func (m Model) viewPill() string {
	sc := m.state.Scenario
	if sc == nil {
		return ""
	}
	play := Icons["pause"]
	if !m.state.Playing {
		play = Icons["play"]
	}
	line := strings.Join([]string{
		m.styles.Avatar.Render(initials(sc)),
		m.styles.StepCounter.Render(fmt.Sprintf("%d/%d", m.state.Index+1, m.state.Total())),
		m.styles.ControlOn.Render(play),
		m.styles.Control.Render(Icons["skip"]),
		m.styles.Control.Render(Icons["expand"]),
	}, " ")
	return m.styles.Pill.Render(line) + "\n" + m.styles.hints(m.keys.Play, m.keys.Skip, m.keys.Minimize)
}

func (m Model) viewComplete() string {
	sc := m.state.Scenario
	title := ""
	if sc != nil {
		title = sc.Title
	}

	var b strings.Builder
	b.WriteString(m.styles.CompleteTitle.Render(Icons["done"] + " Demo Complete"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("You've finished the %s demo.", title))
	b.WriteString("\n\n")
	b.WriteString(m.styles.FormatKey("enter", "Select another demo"))
	b.WriteString("\n")
	b.WriteString(m.styles.FormatKey("r", Icons["replay"]+" Replay"))
	b.WriteString("\n")
	b.WriteString(m.styles.FormatKey("q", "Close"))
	return m.styles.Complete.Width(m.contentWidth()).Render(b.String())
}

func initials(sc *tour.Scenario) string {
	if sc.Presenter.AvatarInitials != "" {
		return sc.Presenter.AvatarInitials
	}
	var out []rune
	for _, word := range strings.Fields(sc.Presenter.Name) {
		out = append(out, []rune(word)[0])
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return strings.ToUpper(string(out))
}
