package tour

import (
	"strings"
	"time"
)

// Scenario is one guided workflow: an ordered sequence of narrated steps.
// Scenarios are immutable once loaded.
type Scenario struct {
	ID              string    `yaml:"id"`
	Title           string    `yaml:"title"`
	Role            string    `yaml:"role"`
	Description     string    `yaml:"description"`
	DurationSeconds int       `yaml:"duration_seconds"`
	Presenter       Presenter `yaml:"presenter"`
	Steps           []Step    `yaml:"steps"`

	// Source is the file the scenario was read from, empty for built-ins.
	Source string `yaml:"-"`
}

// Presenter is the persona narrating a scenario.
type Presenter struct {
	Name           string `yaml:"name"`
	AvatarInitials string `yaml:"avatar_initials"`
	Company        string `yaml:"company"`
}

// Step is one unit of scripted demo behavior.
type Step struct {
	// Sequence is the 1-based position of the step within its scenario.
	Sequence   int        `yaml:"id"`
	Title      string     `yaml:"title"`
	Narration  string     `yaml:"narration"`
	Target     string     `yaml:"target,omitempty"`
	NavigateTo string     `yaml:"navigate_to,omitempty"`
	Actions    ActionList `yaml:"actions,omitempty"`
}

// EstimatedDuration returns the declared running time of the scenario.
func (s *Scenario) EstimatedDuration() time.Duration {
	return time.Duration(s.DurationSeconds) * time.Second
}

// Minutes returns the running time rounded up to whole minutes, as shown on
// the hub cards.
func (s *Scenario) Minutes() int {
	if s.DurationSeconds <= 0 {
		return 0
	}
	return (s.DurationSeconds + 59) / 60
}

// Len returns the number of steps.
func (s *Scenario) Len() int {
	return len(s.Steps)
}

// Step returns the step at index i (0-based).
func (s *Scenario) Step(i int) (Step, bool) {
	if i < 0 || i >= len(s.Steps) {
		return Step{}, false
	}
	return s.Steps[i], true
}

// Selectors returns every selector referenced by the scenario, in first-use
// order and without duplicates.
func (s *Scenario) Selectors() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(sel string) {
		if sel == "" || seen[sel] {
			return
		}
		seen[sel] = true
		out = append(out, sel)
	}
	for _, step := range s.Steps {
		for _, a := range step.Actions {
			switch a := a.(type) {
			case ClickAction:
				add(a.Selector)
			case FillAction:
				add(a.Selector)
			}
		}
		add(step.Target)
	}
	return out
}

// Views returns every view the scenario navigates to, in first-use order.
func (s *Scenario) Views() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(v string) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}
	for _, step := range s.Steps {
		add(step.NavigateTo)
		for _, a := range step.Actions {
			if nav, ok := a.(NavigateAction); ok {
				add(nav.View)
			}
		}
	}
	return out
}

// WordCount returns the number of whitespace-separated words in the narration.
func (s Step) WordCount() int {
	return len(strings.Fields(s.Narration))
}
