package zoom

import (
	"github.com/recera/zoom/pkg/dom"
)

// Session is one enlarged image: the wrapper and overlay it created, and
// what it needs to put the image back exactly as it found it
type Session struct {
	doc  dom.Document
	opts Options

	img     dom.Element
	wrap    dom.Element
	overlay dom.Element

	preservedTransform string
	scale              float64
	translation        Translation

	removeTransitionEnd dom.Remove
}

func newSession(doc dom.Document, img dom.Element, opts Options) *Session {
	return &Session{
		doc:                doc,
		opts:               opts,
		img:                img,
		preservedTransform: img.Transform(),
	}
}

// Image returns the zoomed image
func (s *Session) Image() dom.Element { return s.img }

// Wrapper returns the container the image was moved into
func (s *Session) Wrapper() dom.Element { return s.wrap }

// Overlay returns the backdrop appended to the body
func (s *Session) Overlay() dom.Element { return s.overlay }

// Scale returns the scale factor applied to the image
func (s *Session) Scale() float64 { return s.scale }

// Translation returns the translation applied to the wrapper
func (s *Session) Translation() Translation { return s.translation }

// open wraps the image, adds the overlay and applies the zoom transforms.
// Layout is flushed before measuring and again before transforming so
// the transition starts from committed pre-zoom geometry.
func (s *Session) open() {
	natural := s.img.NaturalSize()

	s.wrap = s.doc.CreateElement("div")
	s.wrap.AddClass(ClassWrap)
	if parent := s.img.Parent(); parent != nil {
		parent.InsertBefore(s.wrap, s.img)
	}
	s.wrap.AppendChild(s.img)

	s.img.AddClass(ClassImage)
	s.img.SetAttribute(ActionAttr, ActionZoomOut)

	s.overlay = s.doc.CreateElement("div")
	s.overlay.AddClass(ClassOverlay)
	s.doc.Body().AppendChild(s.overlay)

	s.img.Reflow()
	viewport := s.doc.Viewport()
	displayed := s.img.DisplayedSize()
	s.scale = ComputeScale(natural, displayed.Width, viewport, s.opts.Offset)

	s.img.Reflow()
	s.translation = ComputeTranslation(s.img.Offset(), displayed, viewport, s.doc.ScrollTop())

	s.img.SetTransform(ScaleTransform(s.scale))
	s.wrap.SetTransform(s.translation.CSS())
}

// close reverses the transforms and calls done once the image reports
// its transition finished
func (s *Session) close(done func()) {
	s.img.SetTransform(s.preservedTransform)
	if s.img.StyleLength() == 0 {
		s.img.RemoveAttribute("style")
	}
	if s.wrap != nil {
		s.wrap.SetTransform("none")
	}

	s.removeTransitionEnd = s.img.AddEventListener(dom.EventTransitionEnd, func(dom.Event) {
		s.cancelTransitionEnd()
		done()
	}, false)
}

func (s *Session) cancelTransitionEnd() {
	if s.removeTransitionEnd != nil {
		s.removeTransitionEnd()
		s.removeTransitionEnd = nil
	}
}

// dispose puts the image back where the wrapper sits and removes the
// wrapper and overlay. Safe to call repeatedly.
func (s *Session) dispose() bool {
	if s.wrap == nil {
		return false
	}
	parent := s.wrap.Parent()
	if parent == nil {
		return false
	}

	s.img.RemoveClass(ClassImage)
	s.img.SetAttribute(ActionAttr, ActionZoom)

	parent.InsertBefore(s.img, s.wrap)
	parent.RemoveChild(s.wrap)

	if s.overlay != nil && s.overlay.Parent() != nil {
		s.doc.Body().RemoveChild(s.overlay)
	}
	return true
}

// disposed reports whether the wrapper has been detached
func (s *Session) disposed() bool {
	return s.wrap == nil || s.wrap.Parent() == nil
}
