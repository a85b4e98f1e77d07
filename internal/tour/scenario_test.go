package tour

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScenario = `
id: sample
title: Sample Tour
role: Tester
duration_seconds: 61
presenter:
  name: Dana
  avatar_initials: DT
  company: Example Co.
steps:
  - id: 1
    title: Open
    narration: Welcome to the sample tour.
    target: "#sidebar"
    navigate_to: dashboard
  - id: 2
    title: Type
    narration: Type the lot code.
    target: "#input-tlc"
    actions:
      - { type: click, target: "#btn-step-2", delay: 500 }
      - { type: typing, target: "#input-tlc", value: TH-MG-2024-1234 }
      - { type: navigate, target: receiving, delay: 300 }
`

func TestDecodeScenario(t *testing.T) {
	sc, err := Decode(strings.NewReader(sampleScenario))
	require.NoError(t, err)

	assert.Equal(t, "sample", sc.ID)
	assert.Equal(t, "DT", sc.Presenter.AvatarInitials)
	assert.Equal(t, 2, sc.Len())
	assert.Equal(t, 2, sc.Minutes())
	assert.Equal(t, 61*time.Second, sc.EstimatedDuration())

	step, ok := sc.Step(1)
	require.True(t, ok)
	require.Len(t, step.Actions, 3)
	assert.Equal(t, ClickAction{Selector: "#btn-step-2", Wait: 500 * time.Millisecond}, step.Actions[0])
	assert.Equal(t, FillAction{Selector: "#input-tlc", Value: "TH-MG-2024-1234"}, step.Actions[1])
	assert.Equal(t, NavigateAction{View: "receiving", Wait: 300 * time.Millisecond}, step.Actions[2])
	assert.Equal(t, 300*time.Millisecond, step.Actions[2].Delay())
	assert.Equal(t, "fill", step.Actions[1].Kind())

	_, ok = sc.Step(2)
	assert.False(t, ok)
}

func TestDecodeRejectsUnknownActionType(t *testing.T) {
	doc := strings.Replace(sampleScenario, "type: typing", "type: hover", 1)
	_, err := Decode(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown action type "hover"`)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	doc := strings.Replace(sampleScenario, "role: Tester", "role: Tester\nsoundtrack: jazz", 1)
	_, err := Decode(strings.NewReader(doc))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Scenario {
		return &Scenario{
			ID:    "x",
			Title: "X",
			Steps: []Step{
				{Sequence: 1, Narration: "one"},
				{Sequence: 2, Narration: "two", Actions: ActionList{ClickAction{Selector: "#a"}}},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Scenario)
		field  string
	}{
		{"empty id", func(s *Scenario) { s.ID = " " }, "id"},
		{"empty title", func(s *Scenario) { s.Title = "" }, "title"},
		{"negative duration", func(s *Scenario) { s.DurationSeconds = -1 }, "duration_seconds"},
		{"no steps", func(s *Scenario) { s.Steps = nil }, "steps"},
		{"gap in ids", func(s *Scenario) { s.Steps[1].Sequence = 3 }, "steps[1].id"},
		{"empty narration", func(s *Scenario) { s.Steps[0].Narration = "\n" }, "steps[0].narration"},
		{"click without selector", func(s *Scenario) { s.Steps[1].Actions = ActionList{ClickAction{}} }, "steps[1].actions[0].target"},
		{"navigate without view", func(s *Scenario) { s.Steps[1].Actions = ActionList{NavigateAction{}} }, "steps[1].actions[0].target"},
		{"negative navigate delay", func(s *Scenario) {
			s.Steps[1].Actions = ActionList{NavigateAction{View: "reports", Wait: -time.Second}}
		}, "steps[1].actions[0].delay"},
		{"nil action", func(s *Scenario) { s.Steps[1].Actions = ActionList{nil} }, "steps[1].actions[0]"},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := valid()
			tt.mutate(sc)
			err := sc.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidScenario))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSelectorsAndViews(t *testing.T) {
	sc, err := Decode(strings.NewReader(sampleScenario))
	require.NoError(t, err)

	assert.Equal(t, []string{"#sidebar", "#btn-step-2", "#input-tlc"}, sc.Selectors())
	assert.Equal(t, []string{"dashboard", "receiving"}, sc.Views())
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 6, Step{Narration: "one two  three\tfour\nfive six"}.WordCount())
	assert.Zero(t, Step{}.WordCount())
}

func TestEncodeRoundTripsActions(t *testing.T) {
	sc, err := Decode(strings.NewReader(sampleScenario))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sc))
	assert.Contains(t, buf.String(), "type: fill")
	assert.Contains(t, buf.String(), "delay: 500")

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, sc.Steps, again.Steps)
}
