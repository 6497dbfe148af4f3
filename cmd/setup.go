package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/ffx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	config := r.loadConfig(configPath)

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupCookie extracts the gateway session cookie from a browser "Copy as
// cURL" command so it can be placed in the config file.
func (r *Runner) SetupCookie(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrInvalidFlag)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidFlag)
	}

	var cookie string
	var err error
	if curlFile != "" {
		cookie, err = shared.SessionCookieFromCurlFile(curlFile)
	} else {
		cookie, err = shared.SessionCookieFromCurl([]byte(curlCmd))
	}
	if err != nil {
		return fmt.Errorf("failed to extract session cookie: %w", err)
	}

	r.writePlain("✓ Session cookie extracted\n")
	r.writePlain("Add to config.toml under [firefly]:\n")
	r.writePlain("session_cookie = %q\n", cookie)

	return nil
}
