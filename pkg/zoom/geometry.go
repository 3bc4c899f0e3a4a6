package zoom

import (
	"strconv"

	"github.com/recera/zoom/pkg/dom"
)

// Translation is a 3D translation in CSS pixels. Z is always 0; it is
// kept so the wrapper is composited on the GPU.
type Translation struct {
	X, Y, Z float64
}

// ComputeScale returns the factor that enlarges an image displayed at
// displayedWidth to fill the viewport minus offset on its constraining
// axis, never beyond native resolution when the image already fits.
func ComputeScale(natural dom.Size, displayedWidth float64, viewport dom.Size, offset float64) float64 {
	if displayedWidth <= 0 || natural.Width <= 0 || natural.Height <= 0 {
		return 1
	}
	maxScaleFactor := natural.Width / displayedWidth

	viewportWidth := viewport.Width - offset
	viewportHeight := viewport.Height - offset
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return maxScaleFactor
	}

	imageAspectRatio := natural.Width / natural.Height
	viewportAspectRatio := viewportWidth / viewportHeight

	switch {
	case natural.Width < viewportWidth && natural.Height < viewportHeight:
		return maxScaleFactor
	case imageAspectRatio < viewportAspectRatio:
		return (viewportHeight / natural.Height) * maxScaleFactor
	default:
		return (viewportWidth / natural.Width) * maxScaleFactor
	}
}

// ComputeTranslation moves an image at offset with the given displayed
// size so that its center sits at the center of the visible viewport
func ComputeTranslation(offset dom.Point, displayed dom.Size, viewport dom.Size, scrollTop float64) Translation {
	viewportX := viewport.Width / 2
	viewportY := scrollTop + viewport.Height/2

	imageCenterX := offset.X + displayed.Width/2
	imageCenterY := offset.Y + displayed.Height/2

	return Translation{
		X: viewportX - imageCenterX,
		Y: viewportY - imageCenterY,
		Z: 0,
	}
}

// ScaleTransform formats s as a CSS scale() function
func ScaleTransform(s float64) string {
	return "scale(" + formatNumber(s) + ")"
}

// CSS formats t as a CSS translate3d() function
func (t Translation) CSS() string {
	return "translate3d(" + formatNumber(t.X) + "px, " + formatNumber(t.Y) + "px, " + formatNumber(t.Z) + "px)"
}

// formatNumber avoids fmt so the client stays small under TinyGo
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
