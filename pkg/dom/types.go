// Package dom describes the slice of the browser document the zoom
// controller needs. Implementations live in jsdom (syscall/js) and memdom
// (an in-memory tree used by tests and headless simulation).
package dom

// Size is a width/height pair in CSS pixels
type Size struct {
	Width  float64
	Height float64
}

// Point is a position in CSS pixels
type Point struct {
	X float64
	Y float64
}

// EventKind identifies the DOM events the zoom controller listens to
type EventKind int

const (
	EventClick EventKind = iota
	EventKeyUp
	EventScroll
	EventTouchStart
	EventTouchMove
	EventTransitionEnd
)

// Name returns the DOM event type string
func (k EventKind) Name() string {
	switch k {
	case EventClick:
		return "click"
	case EventKeyUp:
		return "keyup"
	case EventScroll:
		return "scroll"
	case EventTouchStart:
		return "touchstart"
	case EventTouchMove:
		return "touchmove"
	case EventTransitionEnd:
		return "transitionend"
	default:
		return "unknown"
	}
}

func (k EventKind) String() string { return k.Name() }

// Touch is a single touch point
type Touch struct {
	PageX float64
	PageY float64
}

// Event is the subset of a DOM event consumed by listeners
type Event struct {
	Kind    EventKind
	Target  Element
	KeyCode int
	MetaKey bool
	CtrlKey bool
	Touches []Touch
}

// FirstTouch returns the first touch point, if any
func (e Event) FirstTouch() (Touch, bool) {
	if len(e.Touches) == 0 {
		return Touch{}, false
	}
	return e.Touches[0], true
}

// Listener handles a dispatched event
type Listener func(Event)

// Remove detaches a previously added listener. Calling it more than once
// is a no-op.
type Remove func()

// EventTarget is anything listeners can be attached to
type EventTarget interface {
	AddEventListener(kind EventKind, fn Listener, capture bool) Remove
}

// Element is a DOM element
type Element interface {
	EventTarget

	// NaturalSize is the intrinsic size of an image element
	NaturalSize() Size
	// DisplayedSize is the rendered (pre-transform) size
	DisplayedSize() Size
	// Offset is the element's position relative to the document
	Offset() Point

	Attribute(name string) (string, bool)
	SetAttribute(name, value string)
	RemoveAttribute(name string)

	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool

	// Transform returns the inline style transform value
	Transform() string
	SetTransform(value string)
	// StyleLength is the number of inline style declarations
	StyleLength() int

	// Parent returns nil when the element is detached
	Parent() Element
	InsertBefore(child, ref Element)
	AppendChild(child Element)
	RemoveChild(child Element)

	// Reflow forces a synchronous layout flush
	Reflow()
	Src() string
}

// Document is the host document
type Document interface {
	EventTarget

	Body() Element
	CreateElement(tag string) Element
	// Viewport is the client size of the document element
	Viewport() Size
	ScrollTop() float64
	QuerySelectorAll(selector string) []Element
	// Open opens url in a browsing context named target
	Open(url, target string)
}
