package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tidyfiles/chronosort/chronosort/config"
	"github.com/tidyfiles/chronosort/chronosort/filesystem"
	"github.com/tidyfiles/chronosort/chronosort/filesystem/options"
	"github.com/tidyfiles/chronosort/chronosort/filesystem/watcher"
)

func newWatchCommand(configFlag *string, dryRunFlag *bool, workersFlag *int, useExifFlag *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <directory>",
		Short: "Watch a directory and keep sorting new files as they appear",
		Long: `watch runs an initial organize pass, then watches the directory for
new files and re-runs the pass each time the directory settles. Only
files placed directly in the directory are picked up. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(*configFlag, *dryRunFlag, *workersFlag, *useExifFlag)
			if err != nil {
				return err
			}

			watchOpts := buildWatchOptions(config.AppConfig.Watch)
			watchOpts.Organize = opts

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			org := filesystem.New(opts)
			organize := func(ctx context.Context, rootDir string) error {
				_, err := org.Organize(ctx, rootDir)
				return err
			}

			if err := organize(ctx, args[0]); err != nil {
				return err
			}

			w, err := watcher.NewRootWatcher(args[0], watchOpts, organize)
			if err != nil {
				return err
			}
			defer w.Close()

			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

// buildWatchOptions maps the watch section of the config onto watch options,
// keeping defaults for anything unset.
func buildWatchOptions(cfg config.WatchConfig) options.WatchOptions {
	watchOpts := options.DefaultWatchOptions()
	if cfg.DebounceMs > 0 {
		watchOpts.DebounceDelay = cfg.DebounceDelay()
	}
	if cfg.MaxDebounceMs > 0 {
		watchOpts.MaxDebounceDelay = cfg.MaxDebounceDelay()
	}
	if cfg.QueueCapacity > 0 {
		watchOpts.QueueCapacity = cfg.QueueCapacity
	}
	return watchOpts
}
