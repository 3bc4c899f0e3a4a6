package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-preview"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "zoom",
		Short: "zoom - click-to-zoom images for the web, in Go",
		Long: `zoom serves an image gallery whose pages load a Go WebAssembly client
that zooms any image to fill the viewport on click, and closes again on
scroll, Escape, a touch drag or a second click.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newDevCommand())
	rootCmd.AddCommand(newBuildCommand())
	rootCmd.AddCommand(newInitCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
