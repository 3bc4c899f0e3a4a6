package zoom

import (
	"strconv"
)

// Markup contract shared with the host page and its stylesheet
const (
	ActionAttr    = "data-action"
	ActionZoom    = "zoom"
	ActionZoomOut = "zoom-out"
	OriginalAttr  = "data-original"

	ClassImage         = "zoom-img"
	ClassWrap          = "zoom-img-wrap"
	ClassOverlay       = "zoom-overlay"
	ClassOverlayOpen   = "zoom-overlay-open"
	ClassTransitioning = "zoom-overlay-transitioning"

	// Selector matches every image eligible for zooming
	Selector = "img[data-action='zoom']"

	EscapeKeyCode = 27
)

// Body data attributes carrying Options from the server to the client
const (
	AttrOffset          = "data-zoom-offset"
	AttrScrollThreshold = "data-zoom-scroll-threshold"
	AttrTouchThreshold  = "data-zoom-touch-threshold"
	AttrDebug           = "data-zoom-debug"
)

// Options configures the controller
type Options struct {
	Offset          float64 // default 80, margin kept free around the zoomed image
	ScrollThreshold float64 // default 40
	TouchThreshold  float64 // default 10
	Debug           bool
}

// DefaultOptions returns the stock configuration
func DefaultOptions() Options {
	return Options{
		Offset:          80,
		ScrollThreshold: 40,
		TouchThreshold:  10,
	}
}

func (o *Options) withDefaults() Options {
	d := DefaultOptions()
	if o == nil {
		return d
	}
	if o.Offset > 0 {
		d.Offset = o.Offset
	}
	if o.ScrollThreshold > 0 {
		d.ScrollThreshold = o.ScrollThreshold
	}
	if o.TouchThreshold > 0 {
		d.TouchThreshold = o.TouchThreshold
	}
	d.Debug = o.Debug
	return d
}

// Attributes renders the options as body data attributes
func (o Options) Attributes() map[string]string {
	o = o.withDefaults()
	return map[string]string{
		AttrOffset:          strconv.FormatFloat(o.Offset, 'f', -1, 64),
		AttrScrollThreshold: strconv.FormatFloat(o.ScrollThreshold, 'f', -1, 64),
		AttrTouchThreshold:  strconv.FormatFloat(o.TouchThreshold, 'f', -1, 64),
		AttrDebug:           strconv.FormatBool(o.Debug),
	}
}

// OptionsFromAttributes reads options through lookup (typically an
// element's attribute getter). Missing or malformed values fall back to
// the defaults.
func OptionsFromAttributes(lookup func(name string) (string, bool)) Options {
	o := DefaultOptions()
	num := func(name string, dst *float64) {
		if v, ok := lookup(name); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				*dst = f
			}
		}
	}
	num(AttrOffset, &o.Offset)
	num(AttrScrollThreshold, &o.ScrollThreshold)
	num(AttrTouchThreshold, &o.TouchThreshold)
	if v, ok := lookup(AttrDebug); ok {
		o.Debug, _ = strconv.ParseBool(v)
	}
	return o
}
