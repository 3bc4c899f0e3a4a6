//go:build js && wasm
// +build js,wasm

package main

import (
	"github.com/recera/zoom/pkg/debug"
	"github.com/recera/zoom/pkg/dom/jsdom"
	"github.com/recera/zoom/pkg/zoom"
)

func main() {
	doc, err := jsdom.NewDocument()
	if err != nil {
		debug.Log("zoom: " + err.Error())
		return
	}

	doc.OnReady(func() {
		opts := zoom.OptionsFromAttributes(doc.Body().Attribute)
		if opts.Debug {
			debug.EnableLogging()
		}
		z := zoom.Setup(doc, &opts)
		debug.Logf("zoom: attached to %d images", z.Images())
	})

	// Keep the WASM runtime alive
	select {}
}
