package page

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/recera/zoom/cmd/zoom/internal/gallery"
	"github.com/recera/zoom/pkg/zoom"
)

func render(t *testing.T, d Data) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Page(d).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return buf.String()
}

func TestPageMarkup(t *testing.T) {
	html := render(t, Data{
		Title: "Harbor <photos>",
		Images: []gallery.Image{{
			ID: "harbor-at-dusk", Name: "Harbor at dusk",
			Width: 4000, Height: 2000, DisplayWidth: 640, DisplayHeight: 320,
		}},
		Options: zoom.Options{Offset: 60},
	})

	for _, want := range []string{
		`<title>Harbor &lt;photos&gt;</title>`,
		`<img src="/images/display/harbor-at-dusk" data-action="zoom" data-original="/images/original/harbor-at-dusk" width="640" height="320" alt="Harbor at dusk">`,
		`data-zoom-offset="60"`,
		`data-zoom-scroll-threshold="40"`,
		`data-zoom-debug="false"`,
		`<script src="/assets/bootstrap.js" defer></script>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %s", want)
		}
	}
	if strings.Contains(html, "livereload.js") {
		t.Error("live reload script should only be included in dev")
	}
	if !strings.HasSuffix(html, "</main></body></html>") {
		t.Error("document not closed")
	}
}

func TestPageLiveReloadAndEmpty(t *testing.T) {
	html := render(t, Data{Title: "Empty", LiveReload: true})
	if !strings.Contains(html, "/assets/livereload.js") {
		t.Error("dev page should include the live reload script")
	}
	if !strings.Contains(html, "No images found.") {
		t.Error("empty gallery message missing")
	}
}

func TestBodyAttributesSorted(t *testing.T) {
	html := render(t, Data{Title: "x"})
	debug := strings.Index(html, "data-zoom-debug")
	offset := strings.Index(html, "data-zoom-offset")
	touch := strings.Index(html, "data-zoom-touch-threshold")
	if !(debug < offset && offset < touch) {
		t.Errorf("body attributes out of order: %d %d %d", debug, offset, touch)
	}
}
