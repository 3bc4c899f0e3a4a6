// Package gallery scans a directory of images for the demo page and
// serves a downscaled display rendition of each next to the untouched
// original, which is what the zoom opens on modifier-click.
package gallery

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gosimple/slug"
	"github.com/h2non/filetype"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/recera/zoom/internal/cache"
)

// ErrNotFound is returned for an unknown image ID
var ErrNotFound = errors.New("image not found")

const jpegQuality = 85

// supported maps detected MIME types to the rendition format
var supported = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/png":  imaging.PNG,
	"image/gif":  imaging.PNG,
	"image/webp": imaging.JPEG,
	"image/bmp":  imaging.JPEG,
	"image/tiff": imaging.JPEG,
}

// Image is one gallery entry
type Image struct {
	ID          string
	Name        string
	Path        string
	ContentType string

	// Intrinsic size of the original
	Width  int
	Height int

	// Layout size on the page
	DisplayWidth  int
	DisplayHeight int
}

// Options controls renditions and layout
type Options struct {
	DisplayWidth int
	MaxWidth     int
}

// Gallery is the set of images found in a directory. It is safe for
// concurrent use; Scan swaps the whole set atomically.
type Gallery struct {
	dir   string
	opts  Options
	cache *cache.Cache
	log   *zap.Logger

	mu     sync.RWMutex
	images []Image
	byID   map[string]int
}

// New creates a gallery over dir. The cache may be nil, then renditions
// are produced on every request.
func New(dir string, opts Options, c *cache.Cache, log *zap.Logger) *Gallery {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gallery{
		dir:   dir,
		opts:  opts,
		cache: c,
		log:   log.Named("gallery"),
		byID:  make(map[string]int),
	}
}

// Dir returns the scanned directory
func (g *Gallery) Dir() string { return g.dir }

// Scan rereads the directory. Files that are not supported images are
// skipped silently; files that look like images but cannot be read are
// skipped and reported in the returned error. The gallery is updated
// even when an error is returned.
func (g *Gallery) Scan() error {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return fmt.Errorf("failed to read gallery directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(natural.StringSlice(names))

	var (
		errs   error
		images []Image
		byID   = make(map[string]int)
		used   = make(map[string]int)
	)
	for _, name := range names {
		img, ok, err := g.probe(name)
		if err != nil {
			g.log.Warn("Skipping image", zap.String("file", name), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if !ok {
			g.log.Debug("Ignoring non-image file", zap.String("file", name))
			continue
		}
		img.ID = uniqueID(img.Name, used)
		byID[img.ID] = len(images)
		images = append(images, img)
	}

	g.mu.Lock()
	g.images = images
	g.byID = byID
	g.mu.Unlock()

	g.log.Info("Gallery scanned", zap.String("dir", g.dir), zap.Int("images", len(images)))
	return errs
}

// probe detects the type of name by content and reads its dimensions
func (g *Gallery) probe(name string) (Image, bool, error) {
	path := filepath.Join(g.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return Image{}, false, err
	}
	defer f.Close()

	head := make([]byte, 261)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return Image{}, false, nil
	}
	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return Image{}, false, nil
	}
	if _, ok := supported[kind.MIME.Value]; !ok {
		return Image{}, false, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Image{}, false, err
	}
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Image{}, false, fmt.Errorf("unreadable %s: %w", kind.MIME.Value, err)
	}

	img := Image{
		Name:        strings.TrimSuffix(name, filepath.Ext(name)),
		Path:        path,
		ContentType: kind.MIME.Value,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}
	img.DisplayWidth, img.DisplayHeight = fit(cfg.Width, cfg.Height, g.opts.DisplayWidth)
	return img, true, nil
}

// Images returns the current images in natural name order
func (g *Gallery) Images() []Image {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Image, len(g.images))
	copy(out, g.images)
	return out
}

// Lookup finds an image by ID
func (g *Gallery) Lookup(id string) (Image, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i, ok := g.byID[id]
	if !ok {
		return Image{}, false
	}
	return g.images[i], true
}

// Display returns the display rendition of the image with the given ID:
// no wider than MaxWidth, auto-oriented, re-encoded. Results are cached
// by source content.
func (g *Gallery) Display(id string) ([]byte, string, error) {
	img, ok := g.Lookup(id)
	if !ok {
		return nil, "", ErrNotFound
	}

	source, err := os.ReadFile(img.Path)
	if err != nil {
		return nil, "", err
	}

	key := cache.Key(source, g.opts.MaxWidth)
	if g.cache != nil {
		if data, entry, ok := g.cache.Get(key); ok {
			return data, entry.ContentType, nil
		}
	}

	data, contentType, w, h, err := render(source, img.ContentType, g.opts.MaxWidth)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render %s: %w", img.ID, err)
	}
	g.log.Debug("Rendered display image", zap.String("id", img.ID), zap.Int("width", w), zap.Int("height", h))

	if g.cache != nil {
		if err := g.cache.Put(key, data, contentType, w, h); err != nil {
			g.log.Warn("Failed to cache rendition", zap.String("id", img.ID), zap.Error(err))
		}
	}
	return data, contentType, nil
}

func render(source []byte, contentType string, maxWidth int) ([]byte, string, int, int, error) {
	src, err := imaging.Decode(bytes.NewReader(source), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", 0, 0, err
	}
	if maxWidth > 0 && src.Bounds().Dx() > maxWidth {
		src = imaging.Resize(src, maxWidth, 0, imaging.Lanczos)
	}

	format := supported[contentType]
	var buf bytes.Buffer
	switch format {
	case imaging.PNG:
		err = imaging.Encode(&buf, src, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed))
		contentType = "image/png"
	default:
		err = imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
		contentType = "image/jpeg"
	}
	if err != nil {
		return nil, "", 0, 0, err
	}
	b := src.Bounds()
	return buf.Bytes(), contentType, b.Dx(), b.Dy(), nil
}

// fit scales w x h down to width, never up
func fit(w, h, width int) (int, int) {
	if width <= 0 || w <= width || w == 0 {
		return w, h
	}
	return width, (h*width + w/2) / w
}

// uniqueID slugs name and appends a counter on collision
func uniqueID(name string, used map[string]int) string {
	base := slug.Make(name)
	if base == "" {
		base = "image"
	}
	id := base
	for n := 2; used[id] > 0; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	used[id]++
	return id
}
