package page

import (
	"strings"

	"tracetour/internal/timing"
	"tracetour/internal/tour"
)

// Rehearsal layout of mounted nodes, in viewport pixels.
const (
	rehearsalLeft   = 24
	rehearsalTop    = 72
	rehearsalWidth  = 360
	rehearsalHeight = 40
	rehearsalGap    = 16
)

// Rehearsal builds a document in which every selector a scenario touches is
// mounted, so the scenario can be played without the real application.
// Selectors of the form #nav-<view> navigate to <view> when clicked.
func Rehearsal(sc *tour.Scenario, clock timing.Clock) *Document {
	start := "dashboard"
	if views := sc.Views(); len(views) > 0 {
		start = views[0]
	}
	doc := NewDocument(start, clock)

	for i, sel := range sc.Selectors() {
		rect := Rect{
			X:      rehearsalLeft,
			Y:      float64(rehearsalTop + i*(rehearsalHeight+rehearsalGap)),
			Width:  rehearsalWidth,
			Height: rehearsalHeight,
		}
		node := doc.Mount(sel, "", tagFor(sel), rect)

		if view, ok := strings.CutPrefix(sel, "#nav-"); ok {
			node.AddEventListener(EventClick, func(Event) { doc.Navigate(view) })
		}
	}
	return doc
}

func tagFor(selector string) string {
	switch {
	case strings.HasPrefix(selector, "#input-"):
		return "input"
	case strings.HasPrefix(selector, "#btn-"), strings.HasPrefix(selector, "#nav-"):
		return "button"
	case strings.HasPrefix(selector, "#link-"):
		return "a"
	default:
		return "div"
	}
}
