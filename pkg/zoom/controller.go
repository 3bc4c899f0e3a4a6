// Package zoom enlarges a single image in place with a scale/translate
// transition over a darkened overlay, and restores it when the user
// scrolls, presses Escape, clicks, or drags a touch vertically.
//
// The Controller owns the single active Session and is the only writer of
// the zoom state. Close triggers are registered while a session is open
// and removed as soon as a close begins.
package zoom

import (
	"math"

	"github.com/recera/zoom/pkg/dom"
	"github.com/recera/zoom/pkg/reactive"
)

// State is the controller's position in the zoom lifecycle
type State int

const (
	Idle State = iota
	Opening
	Open
	Closing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Controller mediates the zoom lifecycle for one document
type Controller struct {
	doc  dom.Document
	opts Options

	state   *reactive.State[State]
	markers *reactive.Computed[State, Markers]
	session *Session

	closeListeners []dom.Remove
	removeTouch    dom.Remove

	initialScroll float64
	scrollTracked bool
	initialTouchY float64

	unwatchMarkers func()
}

// NewController creates a controller for doc. Nothing is attached to the
// document until a session opens.
func NewController(doc dom.Document, opts *Options) *Controller {
	c := &Controller{
		doc:   doc,
		opts:  opts.withDefaults(),
		state: reactive.NewState(Idle),
	}
	c.markers = reactive.NewComputed[State, Markers](c.state, markersFor)
	c.unwatchMarkers = c.markers.Watch(c.syncMarkers)
	return c
}

// Markers are the body classes derived from the state
type Markers struct {
	OverlayOpen   bool
	Transitioning bool
}

func markersFor(s State) Markers {
	return Markers{
		OverlayOpen:   s == Open || s == Closing,
		Transitioning: s == Closing,
	}
}

// Options returns the effective options
func (c *Controller) Options() Options { return c.opts }

// State returns the current lifecycle state
func (c *Controller) State() State { return c.state.Get() }

// Watch calls fn after every state transition
func (c *Controller) Watch(fn func(State)) (cancel func()) { return c.state.Watch(fn) }

// Session returns the active session, nil when idle
func (c *Controller) Session() *Session { return c.session }

// OverlayOpen reports whether the overlay is shown, including while the
// close transition runs
func (c *Controller) OverlayOpen() bool { return c.markers.Get().OverlayOpen }

// Transitioning reports whether an animated close is in progress
func (c *Controller) Transitioning() bool { return c.markers.Get().Transitioning }

// PrepareZoom handles a click on an eligible image
func (c *Controller) PrepareZoom(ev dom.Event, img dom.Element) {
	if img == nil {
		return
	}
	if c.state.Get() != Idle {
		trace("[Zoom] Rejected open while", c.state.Get().String())
		return
	}

	if ev.MetaKey || ev.CtrlKey {
		url, ok := img.Attribute(OriginalAttr)
		if !ok || url == "" {
			url = img.Src()
		}
		trace("[Zoom] Opening original in new window:", url)
		c.doc.Open(url, "_blank")
		return
	}

	if img.DisplayedSize().Width >= c.doc.Viewport().Width-c.opts.Offset {
		trace("[Zoom] Image already fills the viewport, not zooming")
		return
	}

	c.Close(true)

	c.session = newSession(c.doc, img, c.opts)
	c.scrollTracked = false
	c.setState(Opening)
	c.session.open()
	c.setState(Open)
	trace("[Zoom] Opened session, scale", c.session.scale)

	c.addCloseListeners()
}

// Close ends the current session. A forced close tears down immediately
// and also cancels an animated close in progress; otherwise the image
// animates back and is detached when its transition ends.
func (c *Controller) Close(force bool) {
	s := c.session
	if s == nil {
		return
	}
	c.removeCloseListeners()

	if force {
		s.cancelTransitionEnd()
		s.dispose()
		c.session = nil
		c.setState(Idle)
		trace("[Zoom] Session force-closed")
		return
	}

	if c.state.Get() == Closing {
		return
	}
	c.setState(Closing)
	s.close(func() { c.finishClose(s) })
	trace("[Zoom] Closing session")
}

// finishClose runs when s reports the end of its close transition. The
// open state is left only after dispose, so a click arriving mid-close
// cannot create a second session for the same image.
func (c *Controller) finishClose(s *Session) {
	s.dispose()
	if c.session != s {
		return
	}
	c.session = nil
	c.setState(Idle)
	trace("[Zoom] Session closed")
}

// HandleScroll closes once the page scrolled ScrollThreshold away from
// the offset seen by the first scroll event of the session
func (c *Controller) HandleScroll(dom.Event) {
	if !c.scrollTracked {
		c.initialScroll = c.doc.ScrollTop()
		c.scrollTracked = true
	}
	if math.Abs(c.initialScroll-c.doc.ScrollTop()) >= c.opts.ScrollThreshold {
		c.Close(false)
	}
}

// HandleKeyUp closes on Escape
func (c *Controller) HandleKeyUp(ev dom.Event) {
	if ev.KeyCode == EscapeKeyCode {
		c.Close(false)
	}
}

// HandleTouchStart records where the touch began and starts following
// it on the touched element
func (c *Controller) HandleTouchStart(ev dom.Event) {
	t, ok := ev.FirstTouch()
	if !ok {
		return
	}
	c.initialTouchY = t.PageY

	c.detachTouchMove()
	var target dom.EventTarget = c.doc
	if ev.Target != nil {
		target = ev.Target
	}
	c.removeTouch = target.AddEventListener(dom.EventTouchMove, c.HandleTouchMove, false)
}

// HandleTouchMove closes after a vertical drag of more than TouchThreshold
func (c *Controller) HandleTouchMove(ev dom.Event) {
	t, ok := ev.FirstTouch()
	if !ok {
		return
	}
	if math.Abs(t.PageY-c.initialTouchY) > c.opts.TouchThreshold {
		c.Close(false)
		c.detachTouchMove()
	}
}

// HandleClick closes on any click while open
func (c *Controller) HandleClick(dom.Event) {
	c.Close(false)
}

func (c *Controller) addCloseListeners() {
	c.removeCloseListeners()
	c.closeListeners = []dom.Remove{
		c.doc.AddEventListener(dom.EventScroll, c.HandleScroll, false),
		c.doc.AddEventListener(dom.EventKeyUp, c.HandleKeyUp, false),
		c.doc.AddEventListener(dom.EventTouchStart, c.HandleTouchStart, false),
		// Capture so the click is seen before it reaches the image
		c.doc.AddEventListener(dom.EventClick, c.HandleClick, true),
	}
}

func (c *Controller) removeCloseListeners() {
	for _, remove := range c.closeListeners {
		remove()
	}
	c.closeListeners = nil
	c.detachTouchMove()
}

func (c *Controller) detachTouchMove() {
	if c.removeTouch != nil {
		c.removeTouch()
		c.removeTouch = nil
	}
}

func (c *Controller) setState(s State) {
	if c.state.Get() == s {
		return
	}
	trace("[Zoom] State", c.state.Get().String(), "->", s.String())
	c.state.Set(s)
}

// syncMarkers projects the state onto the body classes the stylesheet
// keys off
func (c *Controller) syncMarkers(m Markers) {
	body := c.doc.Body()
	if body == nil {
		return
	}
	if m.Transitioning {
		body.AddClass(ClassTransitioning)
	} else {
		body.RemoveClass(ClassTransitioning)
	}
	if m.OverlayOpen {
		body.AddClass(ClassOverlayOpen)
	} else {
		body.RemoveClass(ClassOverlayOpen)
	}
}
