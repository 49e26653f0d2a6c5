package main

import (
	"context"
	"errors"
	"os"

	internal "github.com/tidyfiles/chronosort/chronosort"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			logger := internal.GetLogger()
			logger.Error().Err(err).Msg("operation failed")
		}
		os.Exit(1)
	}
}
