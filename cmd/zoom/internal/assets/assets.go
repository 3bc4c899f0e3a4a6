// Package assets embeds the stylesheet and scripts served next to the
// WASM client
package assets

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

//go:embed zoom.css
var ZoomCSS []byte

//go:embed bootstrap.js
var BootstrapJS []byte

//go:embed livereload.js
var LiveReloadJS []byte

// WasmExecJS returns the wasm_exec.js support script matching compiler,
// "go" or "tinygo". The script has to come from the toolchain that built
// the module.
func WasmExecJS(compiler string) ([]byte, error) {
	var candidates []string
	switch compiler {
	case "tinygo":
		root, err := toolEnv("tinygo", "TINYGOROOT")
		if err != nil {
			return nil, err
		}
		candidates = []string{filepath.Join(root, "targets", "wasm_exec.js")}
	default:
		root, err := toolEnv("go", "GOROOT")
		if err != nil {
			return nil, err
		}
		candidates = []string{
			filepath.Join(root, "lib", "wasm", "wasm_exec.js"),
			filepath.Join(root, "misc", "wasm", "wasm_exec.js"),
		}
	}

	for _, path := range candidates {
		if content, err := os.ReadFile(path); err == nil {
			return content, nil
		}
	}
	return nil, fmt.Errorf("wasm_exec.js not found in %s", strings.Join(candidates, ", "))
}

func toolEnv(tool, key string) (string, error) {
	out, err := exec.Command(tool, "env", key).Output()
	if err != nil {
		return "", fmt.Errorf("failed to get %s from %s: %w", key, tool, err)
	}
	return strings.TrimSpace(string(out)), nil
}
