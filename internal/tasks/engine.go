// package tasks implements the sync engine for portal task retrieval.
//
// The core abstraction is SyncEngine, which sequences endpoint resolution,
// session management, paginated fetch and normalization, then hands the
// results to the persistence layer. Operations emit progress updates via
// channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ffx/internal/firefly"
	"github.com/desertthunder/ffx/internal/models"
	"github.com/desertthunder/ffx/internal/shared"
)

// Store is the persistence collaborator the engine relies on. Implementations
// must treat per-user updates as a critical section so concurrent fetches for
// one account cannot lose writes.
type Store interface {
	// LoadUser returns the stored record for an email, or an error wrapping
	// [shared.ErrUserNotFound] when no record exists.
	LoadUser(ctx context.Context, email string) (*models.StoredUser, error)

	// CreateUser inserts a new user record along with an empty task snapshot.
	CreateUser(ctx context.Context, user *models.StoredUser) error

	// UpdateSecret replaces the stored session secret for an email.
	UpdateSecret(ctx context.Context, email, secret string) error

	// SaveTasks replaces the cached task snapshot for an email.
	SaveTasks(ctx context.Context, email string, tasks []models.Task) error

	// LoadTasks returns the cached task snapshot for an email.
	LoadTasks(ctx context.Context, email string) ([]models.Task, error)
}

// Engine defines the sync operations exposed to CLI/UI layers.
type Engine interface {
	// Attach resolves a school and establishes a usable session for the user,
	// reusing persisted credentials when they exist.
	Attach(ctx context.Context, progress chan<- ProgressUpdate, schoolCode, appID, email string) (*firefly.Session, error)

	// Fetch retrieves, normalizes and caches the user's tasks for a filter.
	Fetch(ctx context.Context, progress chan<- ProgressUpdate, session *firefly.Session, filter models.TaskFilter) (*FetchReport, error)

	// Cached returns the last persisted task snapshot for an email.
	Cached(ctx context.Context, email string) ([]models.Task, error)
}

// FetchReport is the outcome of one fetch: the normalized tasks plus the
// partial-failure counters a caller may want to surface.
type FetchReport struct {
	Tasks       []models.Task
	TotalCount  int   // result count the portal reported for the filter
	Dropped     int   // raw records dropped during normalization
	FailedPages []int // page indices whose bodies failed to decode
}

// SyncEngine implements Engine against a Firefly portal.
type SyncEngine struct {
	client   *firefly.Client
	sessions *firefly.SessionManager
	fetcher  *firefly.Fetcher
	store    Store
	logger   *log.Logger
}

// NewSyncEngine creates a SyncEngine. Refreshed secrets are persisted through
// the store automatically.
func NewSyncEngine(client *firefly.Client, store Store, logger *log.Logger) *SyncEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	sessions := firefly.NewSessionManager(client, logger)
	sessions.OnRefresh = func(ctx context.Context, email, secret string) error {
		err := store.UpdateSecret(ctx, email, secret)
		// A brand-new user has no row yet during the initial acquire; the
		// secret lands with CreateUser immediately afterwards.
		if errors.Is(err, shared.ErrUserNotFound) {
			return nil
		}
		return err
	}

	return &SyncEngine{
		client:   client,
		sessions: sessions,
		fetcher:  firefly.NewFetcher(client, sessions, logger),
		store:    store,
		logger:   logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *SyncEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Attach resolves the school's portal endpoint and establishes a session.
//
// An existing user record supplies its stored secret and device id without
// re-authenticating; otherwise a device id is generated, a secret acquired
// and a new record created. Attaching twice with the same email yields the
// same device id and no duplicate record.
func (e *SyncEngine) Attach(ctx context.Context, progress chan<- ProgressUpdate, schoolCode, appID, email string) (*firefly.Session, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: empty email", shared.ErrInvalidInput)
	}

	e.sendProgress(progress, resolveSchoolUpdate(schoolCode))
	baseURL, err := e.client.Resolve(ctx, schoolCode)
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", schoolCode, err)
	}
	e.logger.Debug("resolved school", "school", schoolCode, "base_url", baseURL)

	stored, err := e.store.LoadUser(ctx, email)
	switch {
	case err == nil:
		session := firefly.NewSession(email, stored.DeviceID, appID, baseURL)
		session.Restore(stored.Secret)
		e.sendProgress(progress, sessionRestoredUpdate(email))
		return session, nil

	case errors.Is(err, shared.ErrUserNotFound):
		session := firefly.NewSession(email, shared.GenerateDeviceID(), appID, baseURL)

		e.sendProgress(progress, acquireSessionUpdate(email))
		secret, err := e.sessions.Acquire(ctx, session)
		if err != nil {
			return nil, fmt.Errorf("attach %s: %w", email, err)
		}

		user := &models.StoredUser{Email: email, Secret: secret, DeviceID: session.DeviceID}
		if err := e.store.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("attach %s: %w", email, err)
		}
		return session, nil

	default:
		return nil, fmt.Errorf("attach %s: %w", email, err)
	}
}

// Fetch retrieves the user's tasks for a filter, normalizes them and persists
// the snapshot.
//
// Partial failures (dropped records, undecodable pages) are reported on the
// FetchReport and logged; total conversion failure and every error in the
// session/transport taxonomy fail the fetch outright.
func (e *SyncEngine) Fetch(ctx context.Context, progress chan<- ProgressUpdate, session *firefly.Session, filter models.TaskFilter) (*FetchReport, error) {
	e.sendProgress(progress, fetchPagesUpdate(session.Email))
	raw, err := e.fetcher.Fetch(ctx, session, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch for %s: %w", session.Email, err)
	}

	e.sendProgress(progress, normalizeUpdate(len(raw.Items)))
	normalized, dropped, err := firefly.Normalize(raw.Items, filter.Source)
	if err != nil {
		return nil, fmt.Errorf("fetch for %s: %w", session.Email, err)
	}
	if dropped > 0 {
		e.logger.Warn("dropped records during normalization", "email", session.Email, "dropped", dropped)
	}
	if len(raw.FailedPages) > 0 {
		e.logger.Warn("pages failed to decode", "email", session.Email, "pages", raw.FailedPages)
	}

	e.sendProgress(progress, saveSnapshotUpdate(session.Email, len(normalized)))
	if err := e.store.SaveTasks(ctx, session.Email, normalized); err != nil {
		return nil, fmt.Errorf("fetch for %s: %w", session.Email, err)
	}

	return &FetchReport{
		Tasks:       normalized,
		TotalCount:  raw.TotalCount,
		Dropped:     dropped,
		FailedPages: raw.FailedPages,
	}, nil
}

// Cached returns the last persisted snapshot for an email.
func (e *SyncEngine) Cached(ctx context.Context, email string) ([]models.Task, error) {
	tasks, err := e.store.LoadTasks(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("cached tasks for %s: %w", email, err)
	}
	return tasks, nil
}
