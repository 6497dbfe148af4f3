package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ffx/internal/formatter"
	"github.com/desertthunder/ffx/internal/models"
	"github.com/urfave/cli/v3"
)

// filterFromFlags builds a task filter from the tasks fetch flags, leaving
// defaults in place for any flag not set.
func filterFromFlags(cmd *cli.Command) (models.TaskFilter, error) {
	filter := models.DefaultFilter()

	if v := cmd.String("completion"); v != "" {
		completion, err := models.ParseCompletionStatus(v)
		if err != nil {
			return filter, err
		}
		filter.Completion = completion
	}
	if v := cmd.String("read"); v != "" {
		read, err := models.ParseReadStatus(v)
		if err != nil {
			return filter, err
		}
		filter.Read = read
	}
	if v := cmd.String("sort-by"); v != "" {
		sortBy, err := models.ParseSortBy(v)
		if err != nil {
			return filter, err
		}
		filter.SortBy = sortBy
	}
	if v := cmd.String("order"); v != "" {
		order, err := models.ParseSortOrder(v)
		if err != nil {
			return filter, err
		}
		filter.SortOrder = order
	}

	source, err := models.ParseSource(cmd.String("source"))
	if err != nil {
		return filter, err
	}
	filter.Source = source

	return filter, nil
}

// Attach resolves the school portal and establishes a session for the user.
func (r *Runner) Attach(ctx context.Context, cmd *cli.Command) error {
	if err := r.initDeps(cmd.String("config")); err != nil {
		return err
	}

	progress, stop := r.watchProgress()
	session, err := r.attach(ctx, cmd, progress)
	stop()
	if err != nil {
		return err
	}

	r.writePlain("✓ Attached to %s\n", session.BaseURL)
	r.writePlain("  User: %s\n", session.Email)
	r.writePlain("  Device: %s\n", session.DeviceID)
	return nil
}

// TasksFetch pulls the user's tasks from the portal, persists the snapshot
// and prints or exports the results.
func (r *Runner) TasksFetch(ctx context.Context, cmd *cli.Command) error {
	if err := r.initDeps(cmd.String("config")); err != nil {
		return err
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	progress, stop := r.watchProgress()
	defer stop()

	session, err := r.attach(ctx, cmd, progress)
	if err != nil {
		return err
	}

	report, err := r.engine.Fetch(ctx, progress, session, filter)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		format := cmd.String("format")
		if err := formatter.WriteTasksFile(session.Email, report.Tasks, format, path); err != nil {
			return err
		}
		r.writePlain("✓ Wrote %d tasks to %s\n", len(report.Tasks), path)
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(report.Tasks, cmd.Bool("pretty"))
	}

	out, err := formatter.ExportToText(report.Tasks)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	r.writePlainln("%d of %d tasks shown", len(report.Tasks), report.TotalCount)
	if report.Dropped > 0 {
		r.writePlain("%d records dropped during conversion\n", report.Dropped)
	}
	if len(report.FailedPages) > 0 {
		r.writePlain("pages failed to decode: %v\n", report.FailedPages)
	}
	return nil
}

// TasksCached prints the last persisted task snapshot without contacting the
// portal.
func (r *Runner) TasksCached(ctx context.Context, cmd *cli.Command) error {
	if err := r.initDeps(cmd.String("config")); err != nil {
		return err
	}

	email, err := r.resolveEmail(cmd)
	if err != nil {
		return err
	}

	tasks, err := r.engine.Cached(ctx, email)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tasks, cmd.Bool("pretty"))
	}

	out, err := formatter.ExportToText(tasks)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
