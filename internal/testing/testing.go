// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/desertthunder/ffx/internal/models"
	"github.com/desertthunder/ffx/internal/shared"
)

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter allows a fixed number of Write calls before failing.
type LimitedWriter struct {
	calls int
	limit int
	w     io.Writer
}

func NewLimitedWriter(limit int, w io.Writer) *LimitedWriter {
	return &LimitedWriter{limit: limit, w: w}
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.calls >= l.limit {
		return 0, errors.New("write limit reached")
	}
	l.calls++
	return l.w.Write(p)
}

// MemStore is an in-memory test double for the sync engine's persistence
// interface. Safe for concurrent use.
type MemStore struct {
	mu            sync.Mutex
	users         map[string]models.StoredUser
	snapshots     map[string][]models.Task
	CreateCalls   int
	SecretUpdates int
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:     make(map[string]models.StoredUser),
		snapshots: make(map[string][]models.Task),
	}
}

func (m *MemStore) LoadUser(ctx context.Context, email string) (*models.StoredUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
	}
	return &user, nil
}

func (m *MemStore) CreateUser(ctx context.Context, user *models.StoredUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Email] = *user
	m.snapshots[user.Email] = []models.Task{}
	m.CreateCalls++
	return nil
}

func (m *MemStore) UpdateSecret(ctx context.Context, email, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
	}
	user.Secret = secret
	m.users[email] = user
	m.SecretUpdates++
	return nil
}

func (m *MemStore) SaveTasks(ctx context.Context, email string, tasks []models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
	}
	m.snapshots[email] = tasks
	return nil
}

func (m *MemStore) LoadTasks(ctx context.Context, email string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks, ok := m.snapshots[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
	}
	return tasks, nil
}

// User returns the stored record for an email, if any.
func (m *MemStore) User(email string) (models.StoredUser, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	return user, ok
}

// DirectoryXML builds an app gateway directory response whose second text
// node is the portal host.
func DirectoryXML(host string) string {
	return fmt.Sprintf(
		`<?xml version="1.0" encoding="utf-8"?><response><address>gateway</address><host>%s</host><installationId>0000</installationId></response>`,
		host,
	)
}

// TokenXML builds a gettoken response whose first text node is the secret.
func TokenXML(secret string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?><token><secret>%s</secret></token>`, secret)
}

// ListingPage builds one JSON page of the task listing response with
// sequentially numbered, fully populated task records.
func ListingPage(startID, count, totalCount int) string {
	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, TaskRecord(startID+i))
	}
	return fmt.Sprintf(`{"items":[%s],"totalCount":%d}`, strings.Join(items, ","), totalCount)
}

// TaskRecord builds one fully populated raw task record.
func TaskRecord(id int) string {
	return fmt.Sprintf(
		`{"id":"%d","title":"Task %d","isDone":false,"setDate":"2024-09-01","dueDate":"2024-09-14","taskSource":"FF"}`,
		id, id,
	)
}
