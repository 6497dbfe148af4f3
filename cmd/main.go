package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/ffx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	app := &cli.Command{
		Name:     "ffx",
		Usage:    "Sync & browse Firefly portal tasks from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrSchoolNotFound):
			logger.Fatalf("school not found: %v", err)
		case errors.Is(err, shared.ErrInvalidSession):
			logger.Fatalf("session rejected, re-run 'ffx attach': %v", err)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
