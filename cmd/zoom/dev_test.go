package main

import (
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestClassifyChanges(t *testing.T) {
	s := &devServer{imageDir: filepath.Join("site", "images")}

	tests := []struct {
		name   string
		files  []string
		images bool
		source bool
	}{
		{"new image", []string{"site/images/harbor.jpg"}, true, false},
		{"client source", []string{"app/client/main.go"}, false, true},
		{"test file ignored", []string{"pkg/zoom/controller_test.go"}, false, false},
		{"hidden file ignored", []string{"site/images/.DS_Store"}, false, false},
		{"both", []string{"pkg/zoom/session.go", "site/images/a.png"}, true, true},
		{"unrelated", []string{"README.md"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []fsnotify.Event
			for _, f := range tt.files {
				events = append(events, fsnotify.Event{Name: filepath.FromSlash(f), Op: fsnotify.Write})
			}
			c := s.classify(events)
			if c.images != tt.images || c.source != tt.source {
				t.Errorf("classify = %+v, want images=%v source=%v", c, tt.images, tt.source)
			}
		})
	}
}
