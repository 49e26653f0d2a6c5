package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	internal "github.com/tidyfiles/chronosort/chronosort"
	"github.com/tidyfiles/chronosort/chronosort/config"
	"github.com/tidyfiles/chronosort/chronosort/filesystem"
	"github.com/tidyfiles/chronosort/chronosort/filesystem/options"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag  string
		reverseFlag bool
		dryRunFlag  bool
		workersFlag int
		useExifFlag bool
	)

	rootCmd := &cobra.Command{
		Use:   internal.DefaultAppName + " <directory>",
		Short: "Sort a directory's files into year/month/week folders by their timestamps",
		Long: `chronosort moves every file directly inside a directory into a
<year>/<month name>/week of <date> hierarchy derived from each file's
modification time, where weeks begin on Sunday. The reverse flag undoes
this by moving every nested file back into the directory root.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(configFlag, dryRunFlag, workersFlag, useExifFlag)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			org := filesystem.New(opts)
			if reverseFlag {
				_, err = org.ReverseOrganize(ctx, args[0])
			} else {
				_, err = org.Organize(ctx, args[0])
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Operation complete!")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&dryRunFlag, "dry-run", false, "Log planned moves without touching the filesystem")
	rootCmd.PersistentFlags().IntVar(&workersFlag, "workers", 0, "Number of concurrent workers (0 uses an automatic bound)")
	rootCmd.PersistentFlags().BoolVar(&useExifFlag, "use-exif", false, "Prefer EXIF capture dates over modification times for images")
	rootCmd.Flags().BoolVarP(&reverseFlag, "reverse", "r", false, "Flatten the organized hierarchy back into the directory root")

	rootCmd.AddCommand(newWatchCommand(&configFlag, &dryRunFlag, &workersFlag, &useExifFlag))

	return rootCmd
}

// buildOptions merges file or environment configuration with command flags.
// Flags win when set.
func buildOptions(configPath string, dryRun bool, workers int, useExif bool) (options.OrganizeOptions, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return options.OrganizeOptions{}, err
	}

	opts := options.DefaultOrganizeOptions()
	opts.DryRun = dryRun
	opts.UseEXIF = useExif || cfg.Organize.UseExifDates
	if cfg.Organize.IgnoreFile != "" {
		opts.IgnoreFile = cfg.Organize.IgnoreFile
	}
	if cfg.Organize.WorkerCount > 0 {
		opts.WorkerCount = cfg.Organize.WorkerCount
	}
	if workers > 0 {
		opts.WorkerCount = workers
	}

	return opts, nil
}
