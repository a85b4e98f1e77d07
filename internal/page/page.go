// Package page defines how playback reaches into the demo application: it
// locates elements by selector, acts on them and switches views.
package page

import "fmt"

// Rect is a rectangle in viewport coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Pad grows the rectangle by n on every side.
func (r Rect) Pad(n float64) Rect {
	return Rect{X: r.X - n, Y: r.Y - n, Width: r.Width + 2*n, Height: r.Height + 2*n}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) String() string {
	return fmt.Sprintf("%.0fx%.0f@%.0f,%.0f", r.Width, r.Height, r.X, r.Y)
}

// Element is a live element resolved from a selector.
type Element interface {
	Selector() string
	// Bounds measures the element now. ok is false once the element is
	// no longer attached.
	Bounds() (r Rect, ok bool)
}

// Locator resolves selectors and simulates user input. Implementations never
// panic and never report errors: a missing element is a normal outcome and
// failed actions are dropped.
type Locator interface {
	Locate(selector string) (Element, bool)
	// Click activates the element with a brief press affordance.
	Click(el Element)
	// FillValue sets an input's value the way typing would, so value-change
	// subscribers are notified, then dispatches a bubbling input event.
	FillValue(el Element, value string)
	// ScrollIntoView smooth-scrolls the element to the viewport center.
	ScrollIntoView(el Element)
}

// Navigator switches the application's current view. The visual effect is
// asynchronous; callers wait a settle delay instead of inspecting a result.
type Navigator interface {
	Navigate(view string)
}
