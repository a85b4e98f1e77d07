package tour

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Action is a single simulated user interaction within a step. The set of
// actions is closed: NavigateAction, ClickAction and FillAction.
type Action interface {
	// Delay is how long to wait before the action is applied.
	Delay() time.Duration
	// Kind returns the action's wire name.
	Kind() string

	isAction()
}

// NavigateAction switches the application to another view.
type NavigateAction struct {
	View string
	Wait time.Duration
}

// ClickAction activates the element matching Selector.
type ClickAction struct {
	Selector string
	Wait     time.Duration
}

// FillAction types Value into the input matching Selector.
type FillAction struct {
	Selector string
	Value    string
	Wait     time.Duration
}

func (a NavigateAction) Delay() time.Duration { return a.Wait }
func (a ClickAction) Delay() time.Duration    { return a.Wait }
func (a FillAction) Delay() time.Duration     { return a.Wait }

func (NavigateAction) Kind() string { return "navigate" }
func (ClickAction) Kind() string    { return "click" }
func (FillAction) Kind() string     { return "fill" }

func (NavigateAction) isAction() {}
func (ClickAction) isAction()    {}
func (FillAction) isAction()     {}

// rawAction is the YAML form of an action.
type rawAction struct {
	Type   string `yaml:"type"`
	Target string `yaml:"target"`
	Value  string `yaml:"value,omitempty"`
	// Delay is in milliseconds.
	Delay int `yaml:"delay,omitempty"`
}

// ActionList is an ordered list of actions with a tagged YAML encoding.
type ActionList []Action

// UnmarshalYAML decodes `{type, target, value, delay}` mappings into the
// matching Action variant. Unknown types are rejected.
func (l *ActionList) UnmarshalYAML(node *yaml.Node) error {
	var raws []rawAction
	if err := node.Decode(&raws); err != nil {
		return err
	}

	out := make(ActionList, 0, len(raws))
	for i, raw := range raws {
		if raw.Delay < 0 {
			return fmt.Errorf("action %d: negative delay %dms", i+1, raw.Delay)
		}
		wait := time.Duration(raw.Delay) * time.Millisecond

		switch raw.Type {
		case "navigate":
			out = append(out, NavigateAction{View: raw.Target, Wait: wait})
		case "click":
			out = append(out, ClickAction{Selector: raw.Target, Wait: wait})
		case "fill", "typing":
			out = append(out, FillAction{Selector: raw.Target, Value: raw.Value, Wait: wait})
		default:
			return fmt.Errorf("action %d: unknown action type %q", i+1, raw.Type)
		}
	}
	*l = out
	return nil
}

// MarshalYAML encodes the list back into its tagged mapping form.
func (l ActionList) MarshalYAML() (any, error) {
	raws := make([]rawAction, 0, len(l))
	for _, a := range l {
		switch a := a.(type) {
		case NavigateAction:
			raws = append(raws, rawAction{Type: a.Kind(), Target: a.View, Delay: int(a.Wait.Milliseconds())})
		case ClickAction:
			raws = append(raws, rawAction{Type: a.Kind(), Target: a.Selector, Delay: int(a.Wait.Milliseconds())})
		case FillAction:
			raws = append(raws, rawAction{Type: a.Kind(), Target: a.Selector, Value: a.Value, Delay: int(a.Wait.Milliseconds())})
		default:
			return nil, fmt.Errorf("unsupported action %T", a)
		}
	}
	return raws, nil
}
