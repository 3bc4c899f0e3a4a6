// Package memdom is an in-memory implementation of the dom interfaces.
// Geometry is not computed: tests set natural size, displayed size,
// offsets, viewport and scroll position explicitly, then drive the
// document with the simulators (Click, ScrollTo, KeyUp, TouchStart,
// TouchMove, EndTransition).
package memdom

import (
	"sort"
	"strings"

	"github.com/recera/zoom/pkg/dom"
)

// Opened records a call to Document.Open
type Opened struct {
	URL    string
	Target string
}

type listener struct {
	kind    dom.EventKind
	fn      dom.Listener
	capture bool
	removed bool
}

type listenerSet struct {
	entries []*listener
}

func (s *listenerSet) add(kind dom.EventKind, fn dom.Listener, capture bool) dom.Remove {
	l := &listener{kind: kind, fn: fn, capture: capture}
	s.entries = append(s.entries, l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		for i, e := range s.entries {
			if e == l {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				break
			}
		}
	}
}

// snapshot returns the listeners for kind matching the phase filter
func (s *listenerSet) snapshot(kind dom.EventKind, match func(*listener) bool) []*listener {
	var out []*listener
	for _, l := range s.entries {
		if l.kind == kind && match(l) {
			out = append(out, l)
		}
	}
	return out
}

func (s *listenerSet) count(kind dom.EventKind) int {
	n := 0
	for _, l := range s.entries {
		if l.kind == kind {
			n++
		}
	}
	return n
}

func invoke(ls []*listener, ev dom.Event) {
	for _, l := range ls {
		if l.removed {
			continue
		}
		l.fn(ev)
	}
}

func anyPhase(*listener) bool      { return true }
func capturePhase(l *listener) bool { return l.capture }
func bubblePhase(l *listener) bool  { return !l.capture }

// Document is an in-memory document
type Document struct {
	root      *Element
	body      *Element
	viewport  dom.Size
	scrollTop float64
	listeners listenerSet
	opened    []Opened
	onReflow  func(*Element)
}

// New creates a document with an <html><body> skeleton and the given
// viewport size
func New(viewport dom.Size) *Document {
	d := &Document{viewport: viewport}
	d.root = d.newElement("html")
	d.body = d.newElement("body")
	d.root.AppendChild(d.body)
	return d
}

func (d *Document) newElement(tag string) *Element {
	return &Element{
		doc:   d,
		tag:   strings.ToLower(tag),
		attrs: make(map[string]string),
		style: make(map[string]string),
	}
}

// Root returns the <html> element
func (d *Document) Root() *Element { return d.root }

// BodyElement returns the concrete <body> element
func (d *Document) BodyElement() *Element { return d.body }

// Body implements dom.Document
func (d *Document) Body() dom.Element { return d.body }

// CreateElement implements dom.Document
func (d *Document) CreateElement(tag string) dom.Element { return d.newElement(tag) }

// NewElement creates a detached element and returns it concretely
func (d *Document) NewElement(tag string) *Element { return d.newElement(tag) }

// NewImage creates a detached <img> with the given intrinsic and
// displayed sizes and src
func (d *Document) NewImage(src string, natural, displayed dom.Size) *Element {
	img := d.newElement("img")
	img.natural = natural
	img.displayed = displayed
	if src != "" {
		img.attrs["src"] = src
	}
	return img
}

// Viewport implements dom.Document
func (d *Document) Viewport() dom.Size { return d.viewport }

// SetViewport changes the client size of the document element
func (d *Document) SetViewport(s dom.Size) { d.viewport = s }

// ScrollTop implements dom.Document
func (d *Document) ScrollTop() float64 { return d.scrollTop }

// SetScrollTop changes the scroll offset without dispatching an event
func (d *Document) SetScrollTop(y float64) { d.scrollTop = y }

// Open implements dom.Document
func (d *Document) Open(url, target string) {
	d.opened = append(d.opened, Opened{URL: url, Target: target})
}

// OpenedWindows returns every Open call in order
func (d *Document) OpenedWindows() []Opened { return d.opened }

// AddEventListener implements dom.EventTarget
func (d *Document) AddEventListener(kind dom.EventKind, fn dom.Listener, capture bool) dom.Remove {
	return d.listeners.add(kind, fn, capture)
}

// ListenerCount returns the number of document listeners for kind
func (d *Document) ListenerCount(kind dom.EventKind) int { return d.listeners.count(kind) }

// SetReflowHook installs a callback invoked on every Element.Reflow
func (d *Document) SetReflowHook(fn func(*Element)) { d.onReflow = fn }

// QuerySelectorAll supports `tag`, `[attr]`, `[attr=value]` and
// `tag[attr='value']` selectors, matched in document order
func (d *Document) QuerySelectorAll(selector string) []dom.Element {
	sel, ok := parseSelector(selector)
	if !ok {
		return nil
	}
	var out []dom.Element
	d.root.walk(func(e *Element) {
		if sel.matches(e) {
			out = append(out, e)
		}
	})
	return out
}

// Dispatch delivers ev to target through capture, target and bubble
// phases. A nil target dispatches on the document only.
func (d *Document) Dispatch(target *Element, ev dom.Event) {
	if target == nil {
		ev.Target = nil
		invoke(d.listeners.snapshot(ev.Kind, anyPhase), ev)
		return
	}
	ev.Target = target

	var ancestors []*Element // parent first
	top := target
	for p := target.parent; p != nil; p = p.parent {
		ancestors = append(ancestors, p)
		top = p
	}
	connected := top == d.root

	if connected {
		invoke(d.listeners.snapshot(ev.Kind, capturePhase), ev)
	}
	for i := len(ancestors) - 1; i >= 0; i-- {
		invoke(ancestors[i].listeners.snapshot(ev.Kind, capturePhase), ev)
	}
	invoke(target.listeners.snapshot(ev.Kind, anyPhase), ev)
	for _, a := range ancestors {
		invoke(a.listeners.snapshot(ev.Kind, bubblePhase), ev)
	}
	if connected {
		invoke(d.listeners.snapshot(ev.Kind, bubblePhase), ev)
	}
}

// Click dispatches a plain click on target
func (d *Document) Click(target *Element) {
	d.Dispatch(target, dom.Event{Kind: dom.EventClick})
}

// ModifierClick dispatches a click with the meta and/or ctrl key held
func (d *Document) ModifierClick(target *Element, meta, ctrl bool) {
	d.Dispatch(target, dom.Event{Kind: dom.EventClick, MetaKey: meta, CtrlKey: ctrl})
}

// ScrollTo moves the scroll offset and dispatches a scroll event
func (d *Document) ScrollTo(y float64) {
	d.scrollTop = y
	d.Dispatch(nil, dom.Event{Kind: dom.EventScroll})
}

// KeyUp dispatches a keyup with keyCode on the body
func (d *Document) KeyUp(keyCode int) {
	d.Dispatch(d.body, dom.Event{Kind: dom.EventKeyUp, KeyCode: keyCode})
}

// TouchStart dispatches a single-point touchstart on target
func (d *Document) TouchStart(target *Element, pageY float64) {
	d.Dispatch(target, dom.Event{Kind: dom.EventTouchStart, Touches: []dom.Touch{{PageY: pageY}}})
}

// TouchMove dispatches a single-point touchmove on target
func (d *Document) TouchMove(target *Element, pageY float64) {
	d.Dispatch(target, dom.Event{Kind: dom.EventTouchMove, Touches: []dom.Touch{{PageY: pageY}}})
}

// Element is an in-memory element
type Element struct {
	doc       *Document
	tag       string
	attrs     map[string]string
	classes   []string
	style     map[string]string
	parent    *Element
	children  []*Element
	natural   dom.Size
	displayed dom.Size
	offset    dom.Point
	reflows   int
	listeners listenerSet
}

var _ dom.Element = (*Element)(nil)
var _ dom.Document = (*Document)(nil)

// Tag returns the lower-case tag name
func (e *Element) Tag() string { return e.tag }

// NaturalSize implements dom.Element
func (e *Element) NaturalSize() dom.Size { return e.natural }

// DisplayedSize implements dom.Element
func (e *Element) DisplayedSize() dom.Size { return e.displayed }

// SetDisplayedSize changes the rendered size
func (e *Element) SetDisplayedSize(s dom.Size) { e.displayed = s }

// Offset implements dom.Element
func (e *Element) Offset() dom.Point { return e.offset }

// SetOffset sets the document-relative position
func (e *Element) SetOffset(p dom.Point) { e.offset = p }

// Attribute implements dom.Element
func (e *Element) Attribute(name string) (string, bool) {
	switch name {
	case "class":
		if len(e.classes) == 0 {
			return "", false
		}
		return strings.Join(e.classes, " "), true
	case "style":
		if len(e.style) == 0 {
			return "", false
		}
		return e.styleText(), true
	}
	v, ok := e.attrs[name]
	return v, ok
}

// SetAttribute implements dom.Element
func (e *Element) SetAttribute(name, value string) {
	switch name {
	case "class":
		e.classes = strings.Fields(value)
	case "style":
		e.style = parseStyle(value)
	default:
		e.attrs[name] = value
	}
}

// RemoveAttribute implements dom.Element
func (e *Element) RemoveAttribute(name string) {
	switch name {
	case "class":
		e.classes = nil
	case "style":
		e.style = make(map[string]string)
	default:
		delete(e.attrs, name)
	}
}

// AddClass implements dom.Element
func (e *Element) AddClass(name string) {
	if !e.HasClass(name) {
		e.classes = append(e.classes, name)
	}
}

// RemoveClass implements dom.Element
func (e *Element) RemoveClass(name string) {
	for i, c := range e.classes {
		if c == name {
			e.classes = append(e.classes[:i], e.classes[i+1:]...)
			return
		}
	}
}

// HasClass implements dom.Element
func (e *Element) HasClass(name string) bool {
	for _, c := range e.classes {
		if c == name {
			return true
		}
	}
	return false
}

// Transform implements dom.Element
func (e *Element) Transform() string { return e.style["transform"] }

// SetTransform implements dom.Element. An empty value removes the
// declaration, as assigning "" to style.transform does in a browser.
func (e *Element) SetTransform(value string) {
	if value == "" {
		delete(e.style, "transform")
		return
	}
	e.style["transform"] = value
}

// SetStyle sets an arbitrary inline declaration
func (e *Element) SetStyle(prop, value string) {
	if value == "" {
		delete(e.style, prop)
		return
	}
	e.style[prop] = value
}

// StyleLength implements dom.Element
func (e *Element) StyleLength() int { return len(e.style) }

// HasAttribute reports whether the named attribute is present
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.Attribute(name)
	return ok
}

// Parent implements dom.Element
func (e *Element) Parent() dom.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// ParentElement returns the concrete parent, nil when detached
func (e *Element) ParentElement() *Element { return e.parent }

// Children returns a copy of the child list
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// Index returns the position of e among its siblings, -1 when detached
func (e *Element) Index() int {
	if e.parent == nil {
		return -1
	}
	for i, c := range e.parent.children {
		if c == e {
			return i
		}
	}
	return -1
}

// InsertBefore implements dom.Element. A nil ref appends.
func (e *Element) InsertBefore(child, ref dom.Element) {
	c := asElement(child)
	if c == nil {
		return
	}
	r := asElement(ref)
	if r == nil {
		e.AppendChild(c)
		return
	}
	c.detach()
	for i, existing := range e.children {
		if existing == r {
			e.children = append(e.children[:i], append([]*Element{c}, e.children[i:]...)...)
			c.parent = e
			return
		}
	}
	// ref is not a child; the browser would throw, we append instead
	e.children = append(e.children, c)
	c.parent = e
}

// AppendChild implements dom.Element
func (e *Element) AppendChild(child dom.Element) {
	c := asElement(child)
	if c == nil {
		return
	}
	c.detach()
	e.children = append(e.children, c)
	c.parent = e
}

// RemoveChild implements dom.Element
func (e *Element) RemoveChild(child dom.Element) {
	c := asElement(child)
	if c == nil || c.parent != e {
		return
	}
	c.detach()
}

func (e *Element) detach() {
	if e.parent == nil {
		return
	}
	p := e.parent
	for i, c := range p.children {
		if c == e {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	e.parent = nil
}

// Reflow implements dom.Element
func (e *Element) Reflow() {
	e.reflows++
	if e.doc.onReflow != nil {
		e.doc.onReflow(e)
	}
}

// Reflows returns how many times Reflow was called on e
func (e *Element) Reflows() int { return e.reflows }

// Src implements dom.Element
func (e *Element) Src() string { return e.attrs["src"] }

// AddEventListener implements dom.EventTarget
func (e *Element) AddEventListener(kind dom.EventKind, fn dom.Listener, capture bool) dom.Remove {
	return e.listeners.add(kind, fn, capture)
}

// ListenerCount returns the number of listeners for kind on e
func (e *Element) ListenerCount(kind dom.EventKind) int { return e.listeners.count(kind) }

// EndTransition dispatches transitionend on e
func (e *Element) EndTransition() {
	e.doc.Dispatch(e, dom.Event{Kind: dom.EventTransitionEnd})
}

func (e *Element) walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children() {
		c.walk(fn)
	}
}

func (e *Element) styleText() string {
	keys := make([]string, 0, len(e.style))
	for k := range e.style {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.style[k])
	}
	return strings.Join(parts, "; ")
}

func parseStyle(s string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}

func asElement(el dom.Element) *Element {
	if el == nil {
		return nil
	}
	e, _ := el.(*Element)
	return e
}

type selector struct {
	tag      string
	attr     string
	value    string
	hasValue bool
}

func parseSelector(s string) (selector, bool) {
	s = strings.TrimSpace(s)
	var sel selector
	open := strings.IndexByte(s, '[')
	if open < 0 {
		sel.tag = strings.ToLower(s)
		return sel, sel.tag != ""
	}
	if !strings.HasSuffix(s, "]") {
		return sel, false
	}
	sel.tag = strings.ToLower(s[:open])
	inner := s[open+1 : len(s)-1]
	if name, value, ok := strings.Cut(inner, "="); ok {
		sel.attr = strings.TrimSpace(name)
		sel.value = strings.Trim(strings.TrimSpace(value), `'"`)
		sel.hasValue = true
	} else {
		sel.attr = strings.TrimSpace(inner)
	}
	return sel, sel.attr != ""
}

func (s selector) matches(e *Element) bool {
	if s.tag != "" && s.tag != "*" && e.tag != s.tag {
		return false
	}
	if s.attr == "" {
		return true
	}
	v, ok := e.Attribute(s.attr)
	if !ok {
		return false
	}
	return !s.hasValue || v == s.value
}
