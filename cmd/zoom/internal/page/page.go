// Package page renders the gallery demo page as templ components
package page

import (
	"context"
	"io"
	"sort"
	"strconv"

	"github.com/a-h/templ"

	"github.com/recera/zoom/cmd/zoom/internal/gallery"
	"github.com/recera/zoom/pkg/zoom"
)

// Data is everything the gallery page shows
type Data struct {
	Title      string
	Images     []gallery.Image
	Options    zoom.Options
	LiveReload bool
}

// DisplayURL is where the display rendition of id is served
func DisplayURL(id string) string { return "/images/display/" + id }

// OriginalURL is where the untouched original of id is served
func OriginalURL(id string) string { return "/images/original/" + id }

// Page is the complete gallery document
func Page(d Data) templ.Component {
	return Layout(d.Title, d.Options.Attributes(), d.LiveReload, Gallery(d.Title, d.Images))
}

// Layout wraps content in the HTML document. bodyAttrs become body
// attributes, sorted by name.
func Layout(title string, bodyAttrs map[string]string, liveReload bool, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		sw := &stickyWriter{w: w}
		sw.write(`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8">`)
		sw.write(`<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
		sw.write(`<title>` + templ.EscapeString(title) + `</title>`)
		sw.write(`<link rel="stylesheet" href="/assets/zoom.css">`)
		sw.write(`<script src="/assets/wasm_exec.js"></script>`)
		sw.write(`<script src="/assets/bootstrap.js" defer></script>`)
		if liveReload {
			sw.write(`<script src="/assets/livereload.js" defer></script>`)
		}
		sw.write(`</head><body`)

		names := make([]string, 0, len(bodyAttrs))
		for name := range bodyAttrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sw.write(` ` + name + `="` + templ.EscapeString(bodyAttrs[name]) + `"`)
		}
		sw.write(`>`)
		if sw.err != nil {
			return sw.err
		}

		if err := content.Render(ctx, w); err != nil {
			return err
		}

		sw.write(`</body></html>`)
		return sw.err
	})
}

// Gallery lists every image as a zoomable figure
func Gallery(title string, images []gallery.Image) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		sw := &stickyWriter{w: w}
		sw.write(`<main class="gallery"><h1>` + templ.EscapeString(title) + `</h1>`)
		if len(images) == 0 {
			sw.write(`<p class="empty">No images found.</p>`)
		}
		if sw.err != nil {
			return sw.err
		}
		for _, img := range images {
			if err := Figure(img).Render(ctx, w); err != nil {
				return err
			}
		}
		sw.write(`</main>`)
		return sw.err
	})
}

// Figure renders one image with the zoom markup contract
func Figure(img gallery.Image) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		sw := &stickyWriter{w: w}
		sw.write(`<figure id="` + templ.EscapeString(img.ID) + `">`)
		sw.write(`<img src="` + templ.EscapeString(DisplayURL(img.ID)) + `"`)
		sw.write(` ` + zoom.ActionAttr + `="` + zoom.ActionZoom + `"`)
		sw.write(` ` + zoom.OriginalAttr + `="` + templ.EscapeString(OriginalURL(img.ID)) + `"`)
		sw.write(` width="` + strconv.Itoa(img.DisplayWidth) + `" height="` + strconv.Itoa(img.DisplayHeight) + `"`)
		sw.write(` alt="` + templ.EscapeString(img.Name) + `">`)
		sw.write(`<figcaption>` + templ.EscapeString(img.Name) + ` <span>` +
			strconv.Itoa(img.Width) + `×` + strconv.Itoa(img.Height) + `</span></figcaption>`)
		sw.write(`</figure>`)
		return sw.err
	})
}

// stickyWriter keeps the first write error and drops later writes
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) write(str string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}
