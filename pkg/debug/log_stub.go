//go:build !js || !wasm
// +build !js !wasm

package debug

import (
	"log"

	"github.com/recera/zoom/pkg/reactive"
	"github.com/recera/zoom/pkg/zoom"
)

// EnableLogging routes zoom and reactive debug output to the standard
// logger when running outside the browser
func EnableLogging() {
	zoom.SetDebugLog(Log)
	reactive.SetDebugLog(Log)
}

// Log writes args to the standard logger
func Log(args ...interface{}) {
	log.Print(format(args...))
}

// Logf writes a formatted message to the standard logger
func Logf(format string, args ...interface{}) {
	log.Printf(format, args...)
}
