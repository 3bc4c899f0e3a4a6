//go:build js && wasm
// +build js,wasm

// Package jsdom binds the dom interfaces to the browser through syscall/js
package jsdom

import (
	"syscall/js"

	"github.com/recera/zoom/pkg/dom"
)

// Document wraps the browser document
type Document struct {
	document js.Value
	window   js.Value
}

// NewDocument binds the global document and window
func NewDocument() (*Document, error) {
	return &Document{
		document: js.Global().Get("document"),
		window:   js.Global().Get("window"),
	}, nil
}

var _ dom.Document = (*Document)(nil)

// Body implements dom.Document
func (d *Document) Body() dom.Element {
	return wrap(d.document.Get("body"))
}

// CreateElement implements dom.Document
func (d *Document) CreateElement(tag string) dom.Element {
	return wrap(d.document.Call("createElement", tag))
}

// Viewport implements dom.Document
func (d *Document) Viewport() dom.Size {
	docElem := d.document.Get("documentElement")
	return dom.Size{
		Width:  docElem.Get("clientWidth").Float(),
		Height: docElem.Get("clientHeight").Float(),
	}
}

// ScrollTop implements dom.Document
func (d *Document) ScrollTop() float64 {
	return d.window.Get("pageYOffset").Float()
}

// QuerySelectorAll implements dom.Document
func (d *Document) QuerySelectorAll(selector string) []dom.Element {
	list := d.document.Call("querySelectorAll", selector)
	n := list.Get("length").Int()
	out := make([]dom.Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, wrap(list.Index(i)))
	}
	return out
}

// Open implements dom.Document
func (d *Document) Open(url, target string) {
	d.window.Call("open", url, target)
}

// AddEventListener implements dom.EventTarget
func (d *Document) AddEventListener(kind dom.EventKind, fn dom.Listener, capture bool) dom.Remove {
	return listen(d.document, kind, fn, capture)
}

// ReadyState returns document.readyState
func (d *Document) ReadyState() string {
	return d.document.Get("readyState").String()
}

// OnReady runs fn once the document has finished parsing
func (d *Document) OnReady(fn func()) {
	if d.ReadyState() != "loading" {
		fn()
		return
	}
	var cb js.Func
	cb = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		d.document.Call("removeEventListener", "DOMContentLoaded", cb)
		cb.Release()
		fn()
		return nil
	})
	d.document.Call("addEventListener", "DOMContentLoaded", cb)
}

// Element wraps a DOM element
type Element struct {
	v js.Value
}

var _ dom.Element = (*Element)(nil)

func wrap(v js.Value) dom.Element {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	return &Element{v: v}
}

func unwrap(el dom.Element) (js.Value, bool) {
	e, ok := el.(*Element)
	if !ok || e == nil {
		return js.Null(), false
	}
	return e.v, true
}

// Value exposes the underlying js.Value
func (e *Element) Value() js.Value { return e.v }

// NaturalSize implements dom.Element
func (e *Element) NaturalSize() dom.Size {
	return dom.Size{
		Width:  floatProp(e.v, "naturalWidth"),
		Height: floatProp(e.v, "naturalHeight"),
	}
}

// DisplayedSize implements dom.Element
func (e *Element) DisplayedSize() dom.Size {
	w, h := e.v.Get("width"), e.v.Get("height")
	if w.Type() == js.TypeNumber && h.Type() == js.TypeNumber {
		return dom.Size{Width: w.Float(), Height: h.Float()}
	}
	return dom.Size{
		Width:  floatProp(e.v, "offsetWidth"),
		Height: floatProp(e.v, "offsetHeight"),
	}
}

// Offset implements dom.Element
func (e *Element) Offset() dom.Point {
	rect := e.v.Call("getBoundingClientRect")
	win := js.Global().Get("window")
	docElem := js.Global().Get("document").Get("documentElement")
	return dom.Point{
		X: rect.Get("left").Float() + win.Get("pageXOffset").Float() - docElem.Get("clientLeft").Float(),
		Y: rect.Get("top").Float() + win.Get("pageYOffset").Float() - docElem.Get("clientTop").Float(),
	}
}

// Attribute implements dom.Element
func (e *Element) Attribute(name string) (string, bool) {
	v := e.v.Call("getAttribute", name)
	if v.IsNull() {
		return "", false
	}
	return v.String(), true
}

// SetAttribute implements dom.Element
func (e *Element) SetAttribute(name, value string) { e.v.Call("setAttribute", name, value) }

// RemoveAttribute implements dom.Element
func (e *Element) RemoveAttribute(name string) { e.v.Call("removeAttribute", name) }

// AddClass implements dom.Element
func (e *Element) AddClass(name string) { e.v.Get("classList").Call("add", name) }

// RemoveClass implements dom.Element
func (e *Element) RemoveClass(name string) { e.v.Get("classList").Call("remove", name) }

// HasClass implements dom.Element
func (e *Element) HasClass(name string) bool {
	return e.v.Get("classList").Call("contains", name).Bool()
}

// Transform implements dom.Element
func (e *Element) Transform() string { return e.v.Get("style").Get("transform").String() }

// SetTransform implements dom.Element
func (e *Element) SetTransform(value string) { e.v.Get("style").Set("transform", value) }

// StyleLength implements dom.Element
func (e *Element) StyleLength() int { return e.v.Get("style").Get("length").Int() }

// Parent implements dom.Element
func (e *Element) Parent() dom.Element { return wrap(e.v.Get("parentNode")) }

// InsertBefore implements dom.Element
func (e *Element) InsertBefore(child, ref dom.Element) {
	c, ok := unwrap(child)
	if !ok {
		return
	}
	r, ok := unwrap(ref)
	if !ok {
		e.v.Call("appendChild", c)
		return
	}
	e.v.Call("insertBefore", c, r)
}

// AppendChild implements dom.Element
func (e *Element) AppendChild(child dom.Element) {
	if c, ok := unwrap(child); ok {
		e.v.Call("appendChild", c)
	}
}

// RemoveChild implements dom.Element
func (e *Element) RemoveChild(child dom.Element) {
	if c, ok := unwrap(child); ok {
		e.v.Call("removeChild", c)
	}
}

// Reflow reads offsetWidth, which forces the browser to flush layout
func (e *Element) Reflow() { _ = e.v.Get("offsetWidth").Int() }

// Src implements dom.Element
func (e *Element) Src() string { return e.v.Get("src").String() }

// AddEventListener implements dom.EventTarget
func (e *Element) AddEventListener(kind dom.EventKind, fn dom.Listener, capture bool) dom.Remove {
	return listen(e.v, kind, fn, capture)
}

// listen wraps fn in a js.Func; the returned Remove detaches and releases it
func listen(target js.Value, kind dom.EventKind, fn dom.Listener, capture bool) dom.Remove {
	name := kind.Name()
	jsFunc := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		ev := dom.Event{Kind: kind}
		if len(args) > 0 {
			ev = convertEvent(kind, args[0])
		}
		fn(ev)
		return nil
	})
	target.Call("addEventListener", name, jsFunc, capture)

	removed := false
	return func() {
		if removed {
			return
		}
		removed = true
		target.Call("removeEventListener", name, jsFunc, capture)
		jsFunc.Release()
	}
}

func convertEvent(kind dom.EventKind, v js.Value) dom.Event {
	ev := dom.Event{Kind: kind}
	if t := v.Get("target"); t.Truthy() && t.Get("nodeType").Int() == 1 {
		ev.Target = &Element{v: t}
	}
	switch kind {
	case dom.EventKeyUp:
		ev.KeyCode = v.Get("keyCode").Int()
	case dom.EventClick:
		ev.MetaKey = v.Get("metaKey").Truthy()
		ev.CtrlKey = v.Get("ctrlKey").Truthy()
	case dom.EventTouchStart, dom.EventTouchMove:
		touches := v.Get("touches")
		if touches.Truthy() {
			n := touches.Get("length").Int()
			for i := 0; i < n; i++ {
				t := touches.Index(i)
				ev.Touches = append(ev.Touches, dom.Touch{
					PageX: t.Get("pageX").Float(),
					PageY: t.Get("pageY").Float(),
				})
			}
		}
	}
	return ev
}

func floatProp(v js.Value, name string) float64 {
	p := v.Get(name)
	if p.Type() != js.TypeNumber {
		return 0
	}
	return p.Float()
}
