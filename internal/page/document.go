package page

import (
	"sync"
	"time"

	"tracetour/internal/timing"
)

// Event types dispatched by a Document.
const (
	EventInput    = "input"
	EventClick    = "click"
	EventNavigate = "navigate"
)

// PressDuration is how long a click keeps its pressed scale.
const PressDuration = 100 * time.Millisecond

// Event is delivered to listeners. Target is nil for navigation events.
type Event struct {
	Type   string
	Target *Node
	Value  string
}

// Listener receives events.
type Listener func(Event)

// Node is an element of a Document.
type Node struct {
	doc      *Document
	selector string
	view     string
	tag      string
	rect     Rect
	mounted  bool

	value   string
	tracked string
	scale   float64
	clicks  int

	listeners map[string][]Listener
	onChange  []func(string)
}

// Document is an in-memory stand-in for the demo application's DOM. Nodes
// belong to a view (or to every view when their view is empty) and are only
// locatable while that view is current.
//
// Inputs keep a value tracker the way reactive UI frameworks do: assigning
// the value property directly updates the tracker, so a later input event
// does not look like a change. FillValue bypasses the tracker.
type Document struct {
	clock timing.Clock

	mu        sync.Mutex
	view      string
	nodes     map[string]*Node
	order     []string
	listeners map[string][]Listener
	visited   []string
	scrolled  []string
}

// NewDocument creates an empty document showing view.
func NewDocument(view string, clock timing.Clock) *Document {
	return &Document{
		clock:     timing.OrSystem(clock),
		view:      view,
		nodes:     make(map[string]*Node),
		listeners: make(map[string][]Listener),
	}
}

// Mount adds (or replaces) the node for selector. An empty view makes the
// node visible in every view.
func (d *Document) Mount(selector, view, tag string, rect Rect) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.nodes[selector]; !exists {
		d.order = append(d.order, selector)
	}
	n := &Node{
		doc:       d,
		selector:  selector,
		view:      view,
		tag:       tag,
		rect:      rect,
		mounted:   true,
		scale:     1,
		listeners: make(map[string][]Listener),
	}
	d.nodes[selector] = n
	return n
}

// Unmount detaches the node for selector.
func (d *Document) Unmount(selector string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, ok := d.nodes[selector]; ok {
		n.mounted = false
		delete(d.nodes, selector)
		for i, s := range d.order {
			if s == selector {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// Node returns the node for selector regardless of the current view.
func (d *Document) Node(selector string) (*Node, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.nodes[selector]
	return n, ok
}

// Selectors returns the mounted selectors in mount order.
func (d *Document) Selectors() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.order...)
}

// AddEventListener subscribes to events of type bubbling up to the document.
func (d *Document) AddEventListener(typ string, fn Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[typ] = append(d.listeners[typ], fn)
}

// View returns the current view.
func (d *Document) View() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}

// Visited returns every view passed to Navigate, in order.
func (d *Document) Visited() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.visited...)
}

// Scrolled returns the selectors scrolled into view, in order.
func (d *Document) Scrolled() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.scrolled...)
}

// Navigate switches the current view.
func (d *Document) Navigate(view string) {
	d.mu.Lock()
	d.view = view
	d.visited = append(d.visited, view)
	listeners := append([]Listener(nil), d.listeners[EventNavigate]...)
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(Event{Type: EventNavigate, Value: view})
	}
}

// Locate returns the node for selector if it is attached to the current view.
func (d *Document) Locate(selector string) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, ok := d.nodes[selector]
	if !ok || !d.visibleLocked(n) {
		return nil, false
	}
	return n, true
}

func (d *Document) visibleLocked(n *Node) bool {
	return n.mounted && (n.view == "" || n.view == d.view)
}

// own returns el as a node of this document, or nil.
func (d *Document) own(el Element) *Node {
	n, ok := el.(*Node)
	if !ok || n == nil || n.doc != d {
		return nil
	}
	return n
}

// Click presses the node for PressDuration and dispatches a click event.
func (d *Document) Click(el Element) {
	n := d.own(el)
	if n == nil {
		return
	}

	d.mu.Lock()
	if !d.visibleLocked(n) {
		d.mu.Unlock()
		return
	}
	n.clicks++
	n.scale = 0.95
	d.mu.Unlock()

	d.clock.AfterFunc(PressDuration, func() {
		d.mu.Lock()
		n.scale = 1
		d.mu.Unlock()
	})
	d.dispatch(n, Event{Type: EventClick, Target: n})
}

// FillValue sets the value through the native setter, leaving the tracker
// behind, then dispatches a bubbling input event.
func (d *Document) FillValue(el Element, value string) {
	n := d.own(el)
	if n == nil {
		return
	}

	d.mu.Lock()
	if !d.visibleLocked(n) {
		d.mu.Unlock()
		return
	}
	n.value = value
	d.mu.Unlock()

	d.dispatch(n, Event{Type: EventInput, Target: n, Value: value})
}

// ScrollIntoView records the scroll.
func (d *Document) ScrollIntoView(el Element) {
	n := d.own(el)
	if n == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.visibleLocked(n) {
		d.scrolled = append(d.scrolled, n.selector)
	}
}

// dispatch runs node listeners, then change subscribers if the value moved
// past the tracker, then document listeners. Listeners run without the lock.
func (d *Document) dispatch(n *Node, ev Event) {
	d.mu.Lock()
	nodeListeners := append([]Listener(nil), n.listeners[ev.Type]...)
	docListeners := append([]Listener(nil), d.listeners[ev.Type]...)
	var changed []func(string)
	if ev.Type == EventInput && n.value != n.tracked {
		n.tracked = n.value
		changed = append(changed, n.onChange...)
	}
	d.mu.Unlock()

	for _, fn := range nodeListeners {
		fn(ev)
	}
	for _, fn := range changed {
		fn(ev.Value)
	}
	for _, fn := range docListeners {
		fn(ev)
	}
}

// Selector implements Element.
func (n *Node) Selector() string { return n.selector }

// Bounds implements Element.
func (n *Node) Bounds() (Rect, bool) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	if !n.doc.visibleLocked(n) {
		return Rect{}, false
	}
	return n.rect, true
}

// Tag returns the node's tag name.
func (n *Node) Tag() string { return n.tag }

// Value returns the current value.
func (n *Node) Value() string {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return n.value
}

// SetValue assigns the value property directly. The tracker follows, so
// change subscribers are not notified by a subsequent input event.
func (n *Node) SetValue(v string) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.value = v
	n.tracked = v
}

// Resize changes the node's layout box.
func (n *Node) Resize(r Rect) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.rect = r
}

// Clicks returns how often the node was clicked.
func (n *Node) Clicks() int {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return n.clicks
}

// Scale returns the current press scale, 1 when at rest.
func (n *Node) Scale() float64 {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return n.scale
}

// AddEventListener subscribes to events targeting this node.
func (n *Node) AddEventListener(typ string, fn Listener) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.listeners[typ] = append(n.listeners[typ], fn)
}

// OnChange subscribes the way a controlled input does: fn runs only when an
// input event carries a value the tracker has not seen.
func (n *Node) OnChange(fn func(string)) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.onChange = append(n.onChange, fn)
}
