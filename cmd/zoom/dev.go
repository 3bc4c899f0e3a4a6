package main

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recera/zoom/pkg/live"
)

const debounceDelay = 100 * time.Millisecond

type devServer struct {
	app     *app
	hub     *live.Hub
	watcher *fsnotify.Watcher
	build   wasmBuild

	buildMutex sync.Mutex
	imageDir   string
	sourceDirs []string
}

func newDevCommand() *cobra.Command {
	var flags serveFlags
	var noBuild bool

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Serves the gallery, rebuilds the WASM client when Go sources change,
rescans the gallery when images change, and reloads open pages.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(&flags)
			if err != nil {
				return err
			}
			defer a.close()
			return runDev(a, !noBuild)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&noBuild, "no-build", false, "Skip the initial client build")
	return cmd
}

func runDev(a *app, buildFirst bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	s := &devServer{
		app:     a,
		hub:     live.NewHub(a.log),
		watcher: watcher,
		build: wasmBuild{
			Compiler: a.cfg.Build.Compiler,
			Client:   a.cfg.Build.Client,
			Output:   a.outDir(),
			Dir:      a.dir,
		},
		imageDir: a.gallery.Dir(),
		sourceDirs: []string{
			resolve(a.dir, a.cfg.Build.Client),
			resolve(a.dir, "pkg"),
		},
	}

	if buildFirst {
		if err := s.buildWASM(); err != nil {
			a.log.Error("Initial client build failed", zap.Error(err))
		}
	}

	if err := s.setupWatcher(); err != nil {
		return err
	}
	go s.watchFiles()

	return a.listen(a.handler(s.hub), s.hub.Close)
}

func (s *devServer) setupWatcher() error {
	if err := s.watcher.Add(s.imageDir); err != nil {
		return err
	}
	for _, root := range s.sourceDirs {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() && strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			if info.IsDir() {
				return s.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *devServer) watchFiles() {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	var pendingEvents []fsnotify.Event

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			pendingEvents = append(pendingEvents, event)
			debounce.Reset(debounceDelay)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.app.log.Warn("Watcher error", zap.Error(err))

		case <-debounce.C:
			events := pendingEvents
			pendingEvents = nil
			if len(events) > 0 {
				s.handleFileChanges(events)
			}
		}
	}
}

// change summarises a batch of file events
type change struct {
	images bool
	source bool
}

func (s *devServer) classify(events []fsnotify.Event) change {
	var c change
	for _, event := range events {
		name := filepath.Base(event.Name)
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch {
		case filepath.Dir(event.Name) == filepath.Clean(s.imageDir):
			c.images = true
		case strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go"):
			c.source = true
		}
	}
	return c
}

func (s *devServer) handleFileChanges(events []fsnotify.Event) {
	c := s.classify(events)

	if c.images {
		if err := s.app.gallery.Scan(); err != nil {
			s.app.log.Warn("Gallery rescan reported errors", zap.Error(err))
		}
	}

	if c.source {
		if err := s.buildWASM(); err != nil {
			s.app.log.Error("Client build failed", zap.Error(err))
			s.hub.Error(err)
			return
		}
	}

	switch {
	case c.source:
		s.hub.Reload("client rebuilt")
	case c.images:
		s.hub.Reload("gallery changed")
	}
}

func (s *devServer) buildWASM() error {
	s.buildMutex.Lock()
	defer s.buildMutex.Unlock()

	start := time.Now()
	if err := s.build.run(s.app.log); err != nil {
		return err
	}
	s.app.log.Info("Client built", zap.Duration("took", time.Since(start)))
	return nil
}
