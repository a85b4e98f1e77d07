// Package spotlight highlights the element a step is talking about.
package spotlight

import (
	"sync"

	"tracetour/internal/page"
)

// DefaultPadding is added around the target on every side, in pixels.
const DefaultPadding = 4

// Surface draws the highlight. Show renders a border around r with the rest
// of the viewport dimmed; Hide removes it.
type Surface interface {
	Show(r page.Rect)
	Hide()
}

// NopSurface draws nothing. The terminal shell shows the rectangle instead.
type NopSurface struct{}

func (NopSurface) Show(page.Rect) {}
func (NopSurface) Hide()          {}

// Renderer keeps at most one element highlighted.
type Renderer struct {
	locator page.Locator
	surface Surface
	padding float64

	mu       sync.Mutex
	selector string
	rect     *page.Rect
	// gen changes whenever the target is replaced or hidden.
	gen uint64
}

// New creates a renderer. A nil surface draws nothing; a negative padding
// uses DefaultPadding.
func New(locator page.Locator, surface Surface, padding float64) *Renderer {
	if surface == nil {
		surface = NopSurface{}
	}
	if padding < 0 {
		padding = DefaultPadding
	}
	return &Renderer{locator: locator, surface: surface, padding: padding}
}

// Spotlight locates selector, scrolls it into view and highlights its padded
// bounds. It hides the spotlight instead when the element is missing or has
// no size.
func (r *Renderer) Spotlight(selector string) (page.Rect, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selector = selector
	r.gen++
	el, ok := r.locator.Locate(selector)
	if !ok {
		r.hideLocked()
		return page.Rect{}, false
	}
	r.locator.ScrollIntoView(el)
	return r.measureLocked(el)
}

// Refresh re-measures the current target so the highlight follows layout
// changes. It hides the spotlight if the target went away. The page is
// measured without holding the renderer lock; a measurement overtaken by
// Spotlight or Hide is dropped.
func (r *Renderer) Refresh() (page.Rect, bool) {
	r.mu.Lock()
	selector, gen := r.selector, r.gen
	r.mu.Unlock()

	if selector == "" {
		return page.Rect{}, false
	}
	bounds, found := r.measure(selector)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		if r.rect == nil {
			return page.Rect{}, false
		}
		return *r.rect, true
	}
	if !found {
		r.hideLocked()
		return page.Rect{}, false
	}
	padded := bounds.Pad(r.padding)
	r.showLocked(padded)
	return padded, true
}

func (r *Renderer) measure(selector string) (page.Rect, bool) {
	el, ok := r.locator.Locate(selector)
	if !ok {
		return page.Rect{}, false
	}
	bounds, ok := el.Bounds()
	if !ok || bounds.Empty() {
		return page.Rect{}, false
	}
	return bounds, true
}

func (r *Renderer) measureLocked(el page.Element) (page.Rect, bool) {
	bounds, ok := el.Bounds()
	if !ok || bounds.Empty() {
		r.hideLocked()
		return page.Rect{}, false
	}
	padded := bounds.Pad(r.padding)
	r.showLocked(padded)
	return padded, true
}

// Show highlights rect as given. An empty rect hides instead.
func (r *Renderer) Show(rect page.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rect.Empty() {
		r.hideLocked()
		return
	}
	r.showLocked(rect)
}

func (r *Renderer) showLocked(rect page.Rect) {
	if r.rect != nil && *r.rect == rect {
		return
	}
	r.rect = &rect
	r.surface.Show(rect)
}

// Hide removes the highlight and forgets the target.
func (r *Renderer) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selector = ""
	r.gen++
	r.hideLocked()
}

func (r *Renderer) hideLocked() {
	if r.rect == nil {
		return
	}
	r.rect = nil
	r.surface.Hide()
}

// Current returns the highlighted rectangle.
func (r *Renderer) Current() (page.Rect, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rect == nil {
		return page.Rect{}, false
	}
	return *r.rect, true
}
