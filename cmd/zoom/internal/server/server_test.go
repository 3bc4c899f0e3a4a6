package server

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/recera/zoom/cmd/zoom/internal/gallery"
	"github.com/recera/zoom/pkg/live"
	"github.com/recera/zoom/pkg/zoom"
)

func newTestServer(t *testing.T, hub *live.Hub) (*Server, string) {
	t.Helper()
	imgDir := t.TempDir()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1200, 600))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(imgDir, "Harbor.png"), buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	g := gallery.New(imgDir, gallery.Options{DisplayWidth: 600, MaxWidth: 900}, nil, nil)
	if err := g.Scan(); err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outDir, "zoom.wasm"), []byte("\x00asm\x01\x00\x00\x00"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "wasm_exec.js"), []byte("// go support"), 0644); err != nil {
		t.Fatal(err)
	}

	return New(Config{
		Title:   "Test gallery",
		Options: zoom.DefaultOptions(),
		Gallery: g,
		OutDir:  outDir,
		Live:    hub,
	}), imgDir
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHome(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := get(t, s, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, `src="/images/display/harbor"`) {
		t.Error("page does not list the image")
	}
	if !strings.Contains(body, `width="600" height="300"`) {
		t.Error("display size missing")
	}
	if strings.Contains(body, "livereload.js") {
		t.Error("live reload script outside dev")
	}
}

func TestImages(t *testing.T) {
	s, imgDir := newTestServer(t, nil)

	w := get(t, s, "/images/display/harbor")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("display: %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	cfg, _, err := image.DecodeConfig(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 900 {
		t.Errorf("display width = %d, want 900", cfg.Width)
	}

	w = get(t, s, "/images/original/harbor")
	if w.Code != http.StatusOK {
		t.Fatalf("original status = %d", w.Code)
	}
	want, _ := os.ReadFile(filepath.Join(imgDir, "Harbor.png"))
	if !bytes.Equal(w.Body.Bytes(), want) {
		t.Error("original is not the untouched file")
	}

	for _, path := range []string{"/images/display/missing", "/images/original/missing"} {
		if w := get(t, s, path); w.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", path, w.Code)
		}
	}
}

func TestAssets(t *testing.T) {
	s, _ := newTestServer(t, nil)
	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/assets/zoom.css", "text/css; charset=utf-8", "zoom-overlay-open"},
		{"/assets/bootstrap.js", "application/javascript", "zoom.wasm"},
		{"/assets/wasm_exec.js", "application/javascript", "go support"},
		{"/assets/zoom.wasm", "application/wasm", "asm"},
	}
	for _, tt := range tests {
		w := get(t, s, tt.path)
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d", tt.path, w.Code)
			continue
		}
		if ct := w.Header().Get("Content-Type"); ct != tt.contentType {
			t.Errorf("%s Content-Type = %q, want %q", tt.path, ct, tt.contentType)
		}
		if !strings.Contains(w.Body.String(), tt.contains) {
			t.Errorf("%s body missing %q", tt.path, tt.contains)
		}
	}

	if w := get(t, s, "/assets/livereload.js"); w.Code != http.StatusNotFound {
		t.Errorf("livereload.js served outside dev: %d", w.Code)
	}
}

func TestMissingWasm(t *testing.T) {
	s := New(Config{OutDir: t.TempDir()})
	if w := get(t, s, "/assets/zoom.wasm"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if w := get(t, s, "/"); !strings.Contains(w.Body.String(), "No images found.") {
		t.Error("page without gallery should render empty")
	}
}

func TestLiveReload(t *testing.T) {
	hub := live.NewHub(nil)
	defer hub.Close()
	s, _ := newTestServer(t, hub)

	if w := get(t, s, "/"); !strings.Contains(w.Body.String(), "/assets/livereload.js") {
		t.Error("dev page missing live reload script")
	}
	if w := get(t, s, "/assets/livereload.js"); w.Code != http.StatusOK {
		t.Errorf("livereload.js status = %d", w.Code)
	}

	srv := httptest.NewServer(s)
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+LivePath, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(live.Message{Type: live.TypeHello}); err != nil {
		t.Fatal(err)
	}
	var ack live.Message
	if err := conn.ReadJSON(&ack); err != nil || ack.Type != live.TypeAck {
		t.Fatalf("handshake: %+v %v", ack, err)
	}
}
