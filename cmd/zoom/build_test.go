package main

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 << 20, "5.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.size); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestBuildCommand(t *testing.T) {
	out := filepath.Join("dist", "assets")
	wasm := filepath.Join(out, "zoom.wasm")

	tests := []struct {
		name     string
		build    wasmBuild
		wantName string
		wantArgs []string
		wantEnv  []string
	}{
		{
			name:     "go optimized",
			build:    wasmBuild{Compiler: "go", Client: "./app/client", Output: out, Optimize: true},
			wantName: "go",
			wantArgs: []string{"build", "-o", wasm, "-trimpath", "-ldflags", "-s -w", "./app/client"},
			wantEnv:  []string{"GOOS=js", "GOARCH=wasm"},
		},
		{
			name:     "go debug",
			build:    wasmBuild{Compiler: "go", Client: "./app/client", Output: out},
			wantName: "go",
			wantArgs: []string{"build", "-o", wasm, "./app/client"},
			wantEnv:  []string{"GOOS=js", "GOARCH=wasm"},
		},
		{
			name:     "tinygo optimized",
			build:    wasmBuild{Compiler: "tinygo", Client: "./app/client", Output: out, Optimize: true},
			wantName: "tinygo",
			wantArgs: []string{"build", "-o", wasm, "-target", "wasm", "-no-debug", "-opt", "z", "./app/client"},
		},
		{
			name:     "tinygo debug",
			build:    wasmBuild{Compiler: "tinygo", Client: "./app/client", Output: out},
			wantName: "tinygo",
			wantArgs: []string{"build", "-o", wasm, "-target", "wasm", "-opt", "2", "./app/client"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args, env := tt.build.command()
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %q, want %q", args, tt.wantArgs)
			}
			if !reflect.DeepEqual(env, tt.wantEnv) {
				t.Errorf("env = %q, want %q", env, tt.wantEnv)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	if got := resolve("site", "images"); got != filepath.Join("site", "images") {
		t.Errorf("relative: %q", got)
	}
	abs := filepath.Join(string(filepath.Separator), "srv", "images")
	if got := resolve("site", abs); got != abs {
		t.Errorf("absolute: %q", got)
	}
}
