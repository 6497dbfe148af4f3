// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// sessionFlags identify the portal account a command operates on.
func sessionFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:  "school",
			Usage: "School code to resolve against the app gateway",
		},
		&cli.StringFlag{
			Name:  "email",
			Usage: "Portal account email",
		},
		&cli.StringFlag{
			Name:  "app-id",
			Usage: "Application identifier sent during token exchange",
		},
	}
}

// filterFlags control which tasks a fetch returns and in what order.
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "completion",
			Usage: "Completion filter: Todo, DoneOrArchived or All",
		},
		&cli.StringFlag{
			Name:  "read",
			Usage: "Read filter: All, OnlyRead or OnlyUnread",
		},
		&cli.StringFlag{
			Name:  "sort-by",
			Usage: "Sort column: DueDate or SetDate",
		},
		&cli.StringFlag{
			Name:  "order",
			Usage: "Sort order: Ascending or Descending",
		},
		&cli.StringFlag{
			Name:  "source",
			Usage: "Only include tasks from a source (FF or GC)",
		},
	}
}

// setupCommand initializes config and database state
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
		Commands: []*cli.Command{
			{
				Name:  "cookie",
				Usage: "Extract the gateway session cookie from a cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command copied from browser dev tools",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to a file containing the cURL command",
					},
				},
				Action: r.SetupCookie,
			},
		},
	}
}

// attachCommand resolves a school and establishes a session
func attachCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "attach",
		Usage:  "Resolve a school portal and authenticate",
		Flags:  sessionFlags(),
		Action: r.Attach,
	}
}

// detachCommand removes a stored account
func detachCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "detach",
		Usage: "Remove a stored account and its cached tasks",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "email",
				Usage: "Portal account email",
			},
		},
		Action: r.Detach,
	}
}

// usersCommand lists stored accounts
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "List attached portal accounts",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Users,
	}
}

// tasksCommand handles task retrieval operations
func tasksCommand(r *Runner) *cli.Command {
	outputFlags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}

	return &cli.Command{
		Name:    "tasks",
		Aliases: []string{"t"},
		Usage:   "Portal task operations",
		Commands: []*cli.Command{
			{
				Name:  "fetch",
				Usage: "Fetch tasks from the portal and cache them locally",
				Flags: append(append(append(sessionFlags(), filterFlags()...), outputFlags...),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write tasks to a file instead of stdout",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output file format: csv, markdown, txt or json",
						Value: "txt",
					},
				),
				Action: r.TasksFetch,
			},
			{
				Name:   "cached",
				Usage:  "Show the last fetched snapshot without contacting the portal",
				Flags:  append([]cli.Flag{configFlag(), &cli.StringFlag{Name: "email", Usage: "Portal account email"}}, outputFlags...),
				Action: r.TasksCached,
			},
		},
	}
}

// tuiCommand launches the interactive task browser
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse tasks in an interactive terminal UI",
		Flags:  append(sessionFlags(), filterFlags()...),
		Action: r.TUI,
	}
}
