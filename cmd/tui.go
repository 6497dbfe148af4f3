package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/ffx/internal/shared"
	"github.com/desertthunder/ffx/internal/ui"
	"github.com/urfave/cli/v3"
)

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// TUI launches the interactive terminal task browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering; the
	// engine captures the logger at construction, so swap before initDeps.
	fileLogger, err := shared.NewFileLogger("./tmp/ffx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := r.initDeps(cmd.String("config")); err != nil {
		return err
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	session, err := r.attach(ctx, cmd, nil)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.engine, session, filter)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
