package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recera/zoom/cmd/zoom/internal/config"
	"github.com/recera/zoom/cmd/zoom/internal/ui"
)

func newInitCommand() *cobra.Command {
	var noInteractive bool
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create zoom.yaml and the image directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, noInteractive, force)
		},
	}

	cmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "Write the defaults without the wizard")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing zoom.yaml")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, noInteractive, force bool) error {
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	if !noInteractive {
		if cfg, err = ui.Run(cfg); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := config.Save(cfg, dir); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.FileName, err)
	}
	if err := os.MkdirAll(resolve(dir, cfg.Gallery.Dir), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n  Put images in %s and run: zoom dev\n",
		path, resolve(dir, cfg.Gallery.Dir))
	return nil
}
