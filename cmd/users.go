package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ffx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Users lists the portal accounts attached on this machine.
func (r *Runner) Users(ctx context.Context, cmd *cli.Command) error {
	if err := r.initDeps(cmd.String("config")); err != nil {
		return err
	}
	if r.store == nil {
		return fmt.Errorf("%w: no local database available", shared.ErrMissingConfig)
	}

	users, err := r.store.ListUsers(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(users, cmd.Bool("pretty"))
	}

	if len(users) == 0 {
		r.writePlain("No attached accounts. Run 'ffx attach' first.\n")
		return nil
	}

	for _, user := range users {
		r.writePlain("%s (device %s)\n", user.Email, user.DeviceID)
	}
	return nil
}

// Detach removes a portal account and its cached tasks.
func (r *Runner) Detach(ctx context.Context, cmd *cli.Command) error {
	if err := r.initDeps(cmd.String("config")); err != nil {
		return err
	}
	if r.store == nil {
		return fmt.Errorf("%w: no local database available", shared.ErrMissingConfig)
	}

	email, err := r.resolveEmail(cmd)
	if err != nil {
		return err
	}

	if err := r.store.DeleteUser(ctx, email); err != nil {
		return err
	}

	r.logger.Info("detached account", "email", email)
	r.writePlain("✓ Detached %s\n", email)
	return nil
}
