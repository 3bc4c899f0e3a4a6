package memdom

import (
	"testing"

	"github.com/recera/zoom/pkg/dom"
)

func TestDispatchOrder(t *testing.T) {
	doc := New(dom.Size{Width: 800, Height: 600})
	parent := doc.NewElement("div")
	child := doc.NewElement("span")
	doc.BodyElement().AppendChild(parent)
	parent.AppendChild(child)

	var order []string
	record := func(name string) dom.Listener {
		return func(dom.Event) { order = append(order, name) }
	}
	doc.AddEventListener(dom.EventClick, record("doc-bubble"), false)
	doc.AddEventListener(dom.EventClick, record("doc-capture"), true)
	parent.AddEventListener(dom.EventClick, record("parent-bubble"), false)
	parent.AddEventListener(dom.EventClick, record("parent-capture"), true)
	child.AddEventListener(dom.EventClick, record("target"), false)

	doc.Click(child)

	want := []string{"doc-capture", "parent-capture", "target", "parent-bubble", "doc-bubble"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestDetachedTargetSkipsDocument(t *testing.T) {
	doc := New(dom.Size{Width: 800, Height: 600})
	el := doc.NewElement("div")

	var docCalls, elCalls int
	doc.AddEventListener(dom.EventClick, func(dom.Event) { docCalls++ }, true)
	el.AddEventListener(dom.EventClick, func(dom.Event) { elCalls++ }, false)

	doc.Click(el)
	if docCalls != 0 || elCalls != 1 {
		t.Errorf("doc calls = %d, element calls = %d", docCalls, elCalls)
	}
}

func TestRemoveListener(t *testing.T) {
	doc := New(dom.Size{Width: 800, Height: 600})
	calls := 0
	remove := doc.AddEventListener(dom.EventScroll, func(dom.Event) { calls++ }, false)

	doc.ScrollTo(10)
	remove()
	remove()
	doc.ScrollTo(20)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if doc.ListenerCount(dom.EventScroll) != 0 {
		t.Error("listener should be removed")
	}
	if doc.ScrollTop() != 20 {
		t.Errorf("ScrollTop() = %v, want 20", doc.ScrollTop())
	}
}

func TestListenerRemovedDuringDispatch(t *testing.T) {
	doc := New(dom.Size{Width: 800, Height: 600})
	var second int
	var removeSecond dom.Remove
	doc.AddEventListener(dom.EventKeyUp, func(dom.Event) { removeSecond() }, false)
	removeSecond = doc.AddEventListener(dom.EventKeyUp, func(dom.Event) { second++ }, false)

	doc.KeyUp(27)
	if second != 0 {
		t.Error("listener removed mid-dispatch should not run")
	}
}

func TestInsertBefore(t *testing.T) {
	doc := New(dom.Size{Width: 800, Height: 600})
	list := doc.NewElement("ul")
	a, b, c := doc.NewElement("li"), doc.NewElement("li"), doc.NewElement("li")
	list.AppendChild(a)
	list.AppendChild(b)

	list.InsertBefore(c, b)
	if c.Index() != 1 || b.Index() != 2 {
		t.Errorf("indexes a=%d c=%d b=%d", a.Index(), c.Index(), b.Index())
	}

	// Moving an attached node detaches it first
	list.InsertBefore(b, a)
	if b.Index() != 0 || len(list.Children()) != 3 {
		t.Errorf("b index = %d, children = %d", b.Index(), len(list.Children()))
	}

	list.RemoveChild(c)
	if c.Parent() != nil || c.Index() != -1 {
		t.Error("removed child should be detached")
	}
}

func TestStyleAndClasses(t *testing.T) {
	doc := New(dom.Size{Width: 800, Height: 600})
	el := doc.NewElement("img")
	el.SetAttribute("style", "transform: rotate(1deg); opacity: 0.5")
	el.SetAttribute("class", "a b")

	if el.Transform() != "rotate(1deg)" || el.StyleLength() != 2 {
		t.Errorf("transform = %q, length = %d", el.Transform(), el.StyleLength())
	}
	el.SetTransform("")
	if el.StyleLength() != 1 {
		t.Errorf("length after clearing transform = %d", el.StyleLength())
	}
	if v, _ := el.Attribute("style"); v != "opacity: 0.5" {
		t.Errorf("style = %q", v)
	}

	el.AddClass("b")
	el.AddClass("c")
	el.RemoveClass("a")
	if v, _ := el.Attribute("class"); v != "b c" {
		t.Errorf("class = %q", v)
	}
}

func TestQuerySelectorAll(t *testing.T) {
	doc := New(dom.Size{Width: 800, Height: 600})
	for i, action := range []string{"zoom", "none", "zoom"} {
		img := doc.NewImage("", dom.Size{}, dom.Size{})
		img.SetAttribute("data-action", action)
		img.SetAttribute("data-i", string(rune('0'+i)))
		doc.BodyElement().AppendChild(img)
	}
	doc.BodyElement().AppendChild(doc.NewElement("div"))

	got := doc.QuerySelectorAll("img[data-action='zoom']")
	if len(got) != 2 {
		t.Fatalf("matches = %d, want 2", len(got))
	}
	if v, _ := got[1].Attribute("data-i"); v != "2" {
		t.Errorf("second match data-i = %q, want 2", v)
	}
	if n := len(doc.QuerySelectorAll("img")); n != 3 {
		t.Errorf("img matches = %d, want 3", n)
	}
	if n := len(doc.QuerySelectorAll("[data-i]")); n != 3 {
		t.Errorf("[data-i] matches = %d, want 3", n)
	}
}

func TestReflowHookAndOpen(t *testing.T) {
	doc := New(dom.Size{Width: 800, Height: 600})
	el := doc.NewElement("img")
	hooked := 0
	doc.SetReflowHook(func(e *Element) {
		if e == el {
			hooked++
		}
	})
	el.Reflow()
	el.Reflow()
	if el.Reflows() != 2 || hooked != 2 {
		t.Errorf("reflows = %d, hooked = %d", el.Reflows(), hooked)
	}

	doc.Open("/x.jpg", "_blank")
	if got := doc.OpenedWindows(); len(got) != 1 || got[0].URL != "/x.jpg" {
		t.Errorf("opened = %+v", got)
	}
}
