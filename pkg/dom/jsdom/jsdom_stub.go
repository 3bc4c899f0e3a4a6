//go:build !js || !wasm
// +build !js !wasm

package jsdom

import (
	"fmt"

	"github.com/recera/zoom/pkg/dom"
)

// Document is the browser document (stub for non-WASM builds)
type Document struct {
	dom.Document
}

// NewDocument binds the browser document (stub)
func NewDocument() (*Document, error) {
	return nil, fmt.Errorf("browser document is only available in WASM builds")
}

// OnReady runs fn once the document has finished parsing (stub)
func (d *Document) OnReady(fn func()) {}
