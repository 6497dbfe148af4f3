package firefly

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ffx/internal/shared"
	"golang.org/x/sync/singleflight"
)

// State is the lifecycle state of a session.
type State int

const (
	Unauthenticated State = iota
	Authenticated
	Expired
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	default:
		return ""
	}
}

// Session holds the per-user connection state for one portal account.
//
// Email, DeviceID, AppID and BaseURL are fixed at creation. The secret and
// lifecycle state change as the session is acquired, expires and is
// refreshed; both are guarded by an internal lock because fetches for the
// same user may run concurrently.
type Session struct {
	Email    string
	DeviceID string
	AppID    string
	BaseURL  string

	mu     sync.Mutex
	secret string
	state  State
}

// NewSession creates an unauthenticated session. It becomes usable after one
// successful acquire, or after Restore with a previously persisted secret.
func NewSession(email, deviceID, appID, baseURL string) *Session {
	return &Session{
		Email:    email,
		DeviceID: deviceID,
		AppID:    appID,
		BaseURL:  baseURL,
	}
}

// Secret returns the current session secret.
func (s *Session) Secret() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secret
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Restore installs a previously persisted secret, marking the session
// authenticated without a round trip. The secret may still turn out to be
// expired on first use.
func (s *Session) Restore(secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = secret
	s.state = Authenticated
}

func (s *Session) adopt(secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = secret
	s.state = Authenticated
}

func (s *Session) markExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Expired
}

// SessionManager owns the acquire/refresh protocol against the portal token
// endpoint. Refreshes are de-duplicated per user: when two fetches observe
// expiry concurrently, only one hits the token endpoint and both reuse the
// result.
type SessionManager struct {
	client *Client
	logger *log.Logger
	group  singleflight.Group

	// OnRefresh, when set, is invoked with the new secret after every
	// successful acquire so callers can persist it atomically with the
	// user's stored record.
	OnRefresh func(ctx context.Context, email, secret string) error
}

// NewSessionManager creates a SessionManager backed by the given client.
func NewSessionManager(client *Client, logger *log.Logger) *SessionManager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SessionManager{client: client, logger: logger}
}

// Acquire requests a fresh secret from the token endpoint and installs it on
// the session.
//
// The gateway requires the fixed ASP.NET session cookie and returns an XML
// document whose first text node is the new secret. The literal body
// "Invalid token" means the gateway rejected the exchange.
func (m *SessionManager) Acquire(ctx context.Context, s *Session) (string, error) {
	params := url.Values{}
	params.Set("ffauth_device_id", s.DeviceID)
	params.Set("ffauth_secret", "")
	params.Set("device_id", s.DeviceID)
	params.Set("app_id", s.AppID)

	body, err := m.client.get(ctx, s.BaseURL+tokenPath+"?"+params.Encode(), true)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}

	if IsExpired(body) {
		return "", fmt.Errorf("%w: token endpoint rejected device %s", shared.ErrInvalidSession, s.DeviceID)
	}

	nodes, err := xmlTextNodes(body)
	if err != nil {
		return "", fmt.Errorf("token response: %w", err)
	}
	if len(nodes) == 0 {
		return "", fmt.Errorf("%w: token response carried no secret", shared.ErrMalformedResponse)
	}

	secret := nodes[0]
	if secret == invalidToken {
		return "", fmt.Errorf("%w: token endpoint rejected device %s", shared.ErrInvalidSession, s.DeviceID)
	}

	s.adopt(secret)
	m.logger.Debug("acquired session secret", "email", s.Email)

	if m.OnRefresh != nil {
		if err := m.OnRefresh(ctx, s.Email, secret); err != nil {
			return "", fmt.Errorf("failed to persist refreshed secret: %w", err)
		}
	}

	return secret, nil
}

// Refresh replaces a stale secret with a fresh one, collapsing concurrent
// refreshes for the same user into a single token request.
//
// Callers pass the secret they observed as expired; if another refresh
// already replaced it, the current secret is returned without a round trip.
func (m *SessionManager) Refresh(ctx context.Context, s *Session, stale string) (string, error) {
	if current := s.Secret(); current != stale && s.State() == Authenticated {
		return current, nil
	}

	s.markExpired()

	v, err, joined := m.group.Do(s.Email, func() (any, error) {
		// A queued caller may arrive after the in-flight refresh finished.
		if current := s.Secret(); current != stale && s.State() == Authenticated {
			return current, nil
		}
		return m.Acquire(ctx, s)
	})
	if err != nil {
		return "", err
	}

	if joined {
		m.logger.Debug("reused in-flight refresh", "email", s.Email)
	}

	return v.(string), nil
}
