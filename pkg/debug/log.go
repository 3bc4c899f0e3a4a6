//go:build js && wasm
// +build js,wasm

package debug

import (
	"fmt"
	"syscall/js"

	"github.com/recera/zoom/pkg/reactive"
	"github.com/recera/zoom/pkg/zoom"
)

// EnableLogging routes zoom and reactive debug output to the console
func EnableLogging() {
	zoom.SetDebugLog(Log)
	reactive.SetDebugLog(Log)
}

// Log logs a message to the console
func Log(args ...interface{}) {
	js.Global().Get("console").Call("log", format(args...))
}

// Logf logs a formatted message to the console
func Logf(format string, args ...interface{}) {
	js.Global().Get("console").Call("log", fmt.Sprintf(format, args...))
}
