package main

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recera/zoom/cmd/zoom/internal/assets"
	"github.com/recera/zoom/cmd/zoom/internal/config"
)

func newBuildCommand() *cobra.Command {
	var dir, output, compiler string
	var optimize bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the WASM client bundle",
		Long: `Compiles the zoom client to WebAssembly and writes it with wasm_exec.js,
zoom.css and bootstrap.js, ready to drop into any page.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Build.Output = output
			}
			if compiler != "" {
				cfg.Build.Compiler = compiler
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid %s: %w", config.FileName, err)
			}
			log := cfg.Logging.Logger()
			defer log.Sync()

			b := wasmBuild{
				Compiler: cfg.Build.Compiler,
				Client:   cfg.Build.Client,
				Output:   filepath.Join(resolve(dir, cfg.Build.Output), "assets"),
				Optimize: optimize,
				Dir:      dir,
			}
			if err := b.clean(); err != nil {
				return err
			}
			if err := b.run(log); err != nil {
				return err
			}
			if err := b.writeAssets(); err != nil {
				return err
			}
			b.report(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "cwd", ".", "Project directory containing zoom.yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (overrides zoom.yaml)")
	cmd.Flags().StringVar(&compiler, "compiler", "", "go or tinygo (overrides zoom.yaml)")
	cmd.Flags().BoolVar(&optimize, "optimize", true, "Optimize for size")

	return cmd
}

// wasmBuild compiles the client package to Output/zoom.wasm
type wasmBuild struct {
	Compiler string
	Client   string
	Output   string
	Optimize bool

	// Dir is the working directory of the compiler
	Dir string
}

func (b wasmBuild) wasmPath() string {
	return filepath.Join(b.Output, "zoom.wasm")
}

// command returns the compiler invocation and its extra environment
func (b wasmBuild) command() (string, []string, []string) {
	if b.Compiler == "tinygo" {
		args := []string{"build", "-o", b.wasmPath(), "-target", "wasm"}
		if b.Optimize {
			args = append(args, "-no-debug", "-opt", "z")
		} else {
			args = append(args, "-opt", "2")
		}
		return "tinygo", append(args, b.Client), nil
	}

	args := []string{"build", "-o", b.wasmPath()}
	if b.Optimize {
		args = append(args, "-trimpath", "-ldflags", "-s -w")
	}
	return "go", append(args, b.Client), []string{"GOOS=js", "GOARCH=wasm"}
}

func (b wasmBuild) clean() error {
	if err := os.RemoveAll(b.Output); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clean output directory: %w", err)
	}
	if err := os.MkdirAll(b.Output, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// run compiles the client. The compiler output is part of the error.
func (b wasmBuild) run(log *zap.Logger) error {
	if err := os.MkdirAll(b.Output, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	name, args, env := b.command()
	log.Info("Building WASM client", zap.String("compiler", name), zap.String("client", b.Client))

	cmd := exec.Command(name, args...)
	cmd.Dir = b.Dir
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s build failed: %w\n%s", name, err, bytes.TrimSpace(out))
	}
	return nil
}

// writeAssets writes the support files next to zoom.wasm
func (b wasmBuild) writeAssets() error {
	wasmExec, err := assets.WasmExecJS(b.Compiler)
	if err != nil {
		return fmt.Errorf("failed to copy wasm_exec.js: %w", err)
	}

	files := map[string][]byte{
		"wasm_exec.js": wasmExec,
		"zoom.css":     assets.ZoomCSS,
		"bootstrap.js": assets.BootstrapJS,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(b.Output, name), content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func (b wasmBuild) report(w io.Writer) {
	fmt.Fprintln(w, "Build complete")
	if info, err := os.Stat(b.wasmPath()); err == nil {
		fmt.Fprintf(w, "  WASM:        %s\n", formatSize(info.Size()))
		fmt.Fprintf(w, "  WASM (gzip): %s\n", formatSize(gzippedSize(b.wasmPath())))
	}

	var total int64
	filepath.Walk(b.Output, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	fmt.Fprintf(w, "  Total:       %s\n", formatSize(total))
	fmt.Fprintf(w, "  Output:      %s\n", b.Output)
}

func gzippedSize(path string) int64 {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write(content)
	gz.Close()

	return int64(buf.Len())
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
