package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ffx/internal/firefly"
	"github.com/desertthunder/ffx/internal/repositories"
	"github.com/desertthunder/ffx/internal/shared"
	"github.com/desertthunder/ffx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	client     *firefly.Client
	engine     tasks.Engine
	store      *repositories.Store
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner. Any
// pre-built dependency is used as-is, which lets tests inject doubles.
type RunnerOpts struct {
	Config     *shared.Config
	Client     *firefly.Client
	Engine     tasks.Engine
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		client:     opts.Client,
		engine:     opts.Engine,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// loadConfig populates r.config from the given path, falling back to the
// embedded defaults when the file is missing or unreadable.
func (r *Runner) loadConfig(path string) *shared.Config {
	if r.config != nil {
		return r.config
	}

	r.config = shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if loaded, err := shared.LoadConfig(path); err == nil {
			r.config = loaded
		} else {
			r.logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		}
	}
	return r.config
}

// initDeps builds the client, store and engine from the loaded config. It is
// a no-op for dependencies already injected through RunnerOpts.
func (r *Runner) initDeps(configPath string) error {
	config := r.loadConfig(configPath)

	if r.client == nil {
		httpClient := r.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: config.HTTP.Timeout()}
		}
		r.client = firefly.NewClient(firefly.ClientOpts{
			DirectoryURL:  config.Firefly.DirectoryURL,
			SessionCookie: config.Firefly.SessionCookie,
			HTTPClient:    httpClient,
			RateLimit:     config.HTTP.RateLimit,
			Logger:        r.logger,
		})
	}

	if r.engine == nil {
		db, err := shared.NewDatabase(config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

		r.db = db
		r.store = repositories.NewStore(db)
		r.engine = tasks.NewSyncEngine(r.client, r.store, r.logger)
	}

	return nil
}

// Close releases the database handle if the runner opened one.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// watchProgress logs engine progress updates until the returned stop function
// is called.
func (r *Runner) watchProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 8)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

// resolveEmail returns the --email flag value or the configured user email.
func (r *Runner) resolveEmail(cmd *cli.Command) (string, error) {
	email := cmd.String("email")
	if email == "" && r.config != nil {
		email = r.config.User.Email
	}
	if email == "" {
		return "", fmt.Errorf("%w: no email given (use --email or set user.email in config)", shared.ErrInvalidInput)
	}
	return email, nil
}

// attach establishes a session using flag values with config fallbacks.
func (r *Runner) attach(ctx context.Context, cmd *cli.Command, progress chan tasks.ProgressUpdate) (*firefly.Session, error) {
	email, err := r.resolveEmail(cmd)
	if err != nil {
		return nil, err
	}

	school := cmd.String("school")
	if school == "" {
		school = r.config.Firefly.SchoolCode
	}
	if school == "" {
		return nil, fmt.Errorf("%w: no school code given (use --school or set firefly.school_code in config)", shared.ErrInvalidInput)
	}

	appID := cmd.String("app-id")
	if appID == "" {
		appID = r.config.Firefly.AppID
	}

	return r.engine.Attach(ctx, progress, school, appID, email)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, attachCommand, detachCommand, usersCommand, tasksCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
