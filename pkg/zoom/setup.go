package zoom

import (
	"github.com/recera/zoom/pkg/dom"
)

// Zoom is a controller bound to the eligible images of a document
type Zoom struct {
	*Controller
	removeImageListeners []dom.Remove
}

// Setup creates a controller for doc and attaches a click listener to
// every image matching Selector. Images added later are not picked up;
// call Setup again after Teardown to rescan.
func Setup(doc dom.Document, opts *Options) *Zoom {
	z := &Zoom{Controller: NewController(doc, opts)}
	images := doc.QuerySelectorAll(Selector)
	for _, img := range images {
		img := img
		remove := img.AddEventListener(dom.EventClick, func(ev dom.Event) {
			z.PrepareZoom(ev, img)
		}, false)
		z.removeImageListeners = append(z.removeImageListeners, remove)
	}
	trace("[Zoom] Attached to", len(images), "images")
	return z
}

// Images returns how many images Setup attached to
func (z *Zoom) Images() int { return len(z.removeImageListeners) }

// Teardown force-closes any open session and detaches every listener
func (z *Zoom) Teardown() {
	z.Close(true)
	for _, remove := range z.removeImageListeners {
		remove()
	}
	z.removeImageListeners = nil
	if z.unwatchMarkers != nil {
		z.unwatchMarkers()
		z.unwatchMarkers = nil
	}
	trace("[Zoom] Torn down")
}
