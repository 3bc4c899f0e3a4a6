package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recera/zoom/cmd/zoom/internal/config"
	"github.com/recera/zoom/cmd/zoom/internal/gallery"
	"github.com/recera/zoom/cmd/zoom/internal/server"
	"github.com/recera/zoom/internal/cache"
	"github.com/recera/zoom/pkg/live"
)

// serveFlags override zoom.yaml from the command line
type serveFlags struct {
	dir    string
	host   string
	port   int
	images string
	debug  bool
}

func (f *serveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "cwd", ".", "Project directory containing zoom.yaml")
	cmd.Flags().StringVarP(&f.host, "host", "H", "", "Host to bind to (overrides zoom.yaml)")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0, "Port to listen on (overrides zoom.yaml)")
	cmd.Flags().StringVarP(&f.images, "images", "i", "", "Image directory (overrides zoom.yaml)")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Enable client debug logging and verbose server logs")
}

func newServeCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gallery",
		Long:  `Serves the gallery page, the display renditions and the built WASM client.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(&flags)
			if err != nil {
				return err
			}
			defer a.close()
			return a.listen(a.handler(nil), nil)
		},
	}
	flags.register(cmd)
	return cmd
}

// app is the state shared by serve and dev
type app struct {
	dir     string
	cfg     *config.Config
	log     *zap.Logger
	cache   *cache.Cache
	gallery *gallery.Gallery
}

func newApp(flags *serveFlags) (*app, error) {
	cfg, err := config.Load(flags.dir)
	if err != nil {
		return nil, err
	}
	if flags.host != "" {
		cfg.Server.Host = flags.host
	}
	if flags.port != 0 {
		cfg.Server.Port = flags.port
	}
	if flags.images != "" {
		cfg.Gallery.Dir = flags.images
	}
	if flags.debug {
		cfg.Zoom.Debug = true
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.FileName, err)
	}

	log := cfg.Logging.Logger()

	cacheCfg := cache.DefaultConfig()
	if cfg.Gallery.CacheDir != "" {
		cacheCfg.Dir = resolve(flags.dir, cfg.Gallery.CacheDir)
	}
	cacheCfg.Logger = log
	c, err := cache.New(cacheCfg)
	if err != nil {
		log.Warn("Rendition cache disabled", zap.Error(err))
		c = nil
	}

	g := gallery.New(resolve(flags.dir, cfg.Gallery.Dir), gallery.Options{
		DisplayWidth: cfg.Gallery.DisplayWidth,
		MaxWidth:     cfg.Gallery.MaxWidth,
	}, c, log)
	if err := g.Scan(); err != nil {
		if _, statErr := os.Stat(g.Dir()); statErr != nil {
			return nil, err
		}
		// Unreadable files were skipped and logged
	}

	return &app{dir: flags.dir, cfg: cfg, log: log, cache: c, gallery: g}, nil
}

// resolve makes path relative to the project directory
func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func (a *app) outDir() string {
	return filepath.Join(resolve(a.dir, a.cfg.Build.Output), "assets")
}

func (a *app) handler(hub *live.Hub) http.Handler {
	return server.New(server.Config{
		Title:    a.cfg.Gallery.Title,
		Options:  a.cfg.Options(),
		Gallery:  a.gallery,
		OutDir:   a.outDir(),
		Compiler: a.cfg.Build.Compiler,
		Live:     hub,
		Logger:   a.log,
	})
}

// listen serves h until SIGINT or SIGTERM, then shuts down gracefully.
// onShutdown runs before the server stops accepting requests.
func (a *app) listen(h http.Handler, onShutdown func()) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		a.log.Info("Shutting down")
		if onShutdown != nil {
			onShutdown()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	a.log.Info("Serving gallery",
		zap.String("url", "http://"+a.cfg.Addr()),
		zap.String("images", a.gallery.Dir()),
		zap.Int("count", len(a.gallery.Images())))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("Failed to save cache index", zap.Error(err))
		}
	}
	a.log.Sync()
}
