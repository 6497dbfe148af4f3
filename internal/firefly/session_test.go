package firefly

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/ffx/internal/shared"
	tu "github.com/desertthunder/ffx/internal/testing"
)

func newTestSession(baseURL string) *Session {
	return NewSession("student@example.org", "device-1", "test-app", baseURL+"/")
}

func TestSessionState(t *testing.T) {
	session := newTestSession("https://portal.example.org")

	if session.State() != Unauthenticated {
		t.Errorf("expected new session to be unauthenticated, got %v", session.State())
	}

	session.Restore("persisted-secret")
	if session.State() != Authenticated {
		t.Errorf("expected restored session to be authenticated, got %v", session.State())
	}
	if session.Secret() != "persisted-secret" {
		t.Errorf("expected restored secret, got %q", session.Secret())
	}

	session.markExpired()
	if session.State() != Expired {
		t.Errorf("expected expired state, got %v", session.State())
	}
}

func TestSessionManagerAcquire(t *testing.T) {
	ctx := context.Background()

	t.Run("acquires a secret from the token endpoint", func(t *testing.T) {
		var gotCookie, gotDeviceID, gotAppID string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCookie = r.Header.Get("Cookie")
			gotDeviceID = r.URL.Query().Get("ffauth_device_id")
			gotAppID = r.URL.Query().Get("app_id")
			w.Write([]byte(tu.TokenXML("fresh-secret")))
		}))
		defer server.Close()

		client := NewClient(ClientOpts{SessionCookie: "cookie-value"})
		manager := NewSessionManager(client, nil)
		session := newTestSession(server.URL)

		secret, err := manager.Acquire(ctx, session)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if secret != "fresh-secret" {
			t.Errorf("expected fresh-secret, got %q", secret)
		}
		if session.State() != Authenticated || session.Secret() != "fresh-secret" {
			t.Errorf("expected authenticated session with new secret, got %v/%q", session.State(), session.Secret())
		}
		if gotCookie != "ASP.NET_SessionId=cookie-value" {
			t.Errorf("expected fixed session cookie, got %q", gotCookie)
		}
		if gotDeviceID != "device-1" || gotAppID != "test-app" {
			t.Errorf("unexpected token query params: device=%q app=%q", gotDeviceID, gotAppID)
		}
	})

	t.Run("rejected exchange", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Invalid token"))
		}))
		defer server.Close()

		manager := NewSessionManager(NewClient(ClientOpts{}), nil)
		session := newTestSession(server.URL)

		_, err := manager.Acquire(ctx, session)
		if !errors.Is(err, shared.ErrInvalidSession) {
			t.Errorf("expected invalid session error, got %v", err)
		}
		if session.State() == Authenticated {
			t.Error("session must not become authenticated on rejection")
		}
	})

	t.Run("token response without a secret", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<token></token>`))
		}))
		defer server.Close()

		manager := NewSessionManager(NewClient(ClientOpts{}), nil)
		session := newTestSession(server.URL)

		_, err := manager.Acquire(ctx, session)
		if !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected malformed response error, got %v", err)
		}
	})

	t.Run("persists the new secret through OnRefresh", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tu.TokenXML("fresh-secret")))
		}))
		defer server.Close()

		manager := NewSessionManager(NewClient(ClientOpts{}), nil)

		var persistedEmail, persistedSecret string
		manager.OnRefresh = func(ctx context.Context, email, secret string) error {
			persistedEmail = email
			persistedSecret = secret
			return nil
		}

		session := newTestSession(server.URL)
		if _, err := manager.Acquire(ctx, session); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if persistedEmail != session.Email || persistedSecret != "fresh-secret" {
			t.Errorf("expected secret persisted for %s, got %s/%s", session.Email, persistedEmail, persistedSecret)
		}
	})
}

func TestSessionManagerRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces a stale secret", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tu.TokenXML("secret-2")))
		}))
		defer server.Close()

		manager := NewSessionManager(NewClient(ClientOpts{}), nil)
		session := newTestSession(server.URL)
		session.Restore("secret-1")

		secret, err := manager.Refresh(ctx, session, "secret-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if secret != "secret-2" {
			t.Errorf("expected secret-2, got %q", secret)
		}
	})

	t.Run("skips the round trip when the secret already changed", func(t *testing.T) {
		hits := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.Write([]byte(tu.TokenXML("secret-3")))
		}))
		defer server.Close()

		manager := NewSessionManager(NewClient(ClientOpts{}), nil)
		session := newTestSession(server.URL)
		session.Restore("secret-2")

		secret, err := manager.Refresh(ctx, session, "secret-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if secret != "secret-2" {
			t.Errorf("expected the already-refreshed secret, got %q", secret)
		}
		if hits != 0 {
			t.Errorf("expected no token requests, got %d", hits)
		}
	})

	t.Run("concurrent refreshes collapse into one token request", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			time.Sleep(50 * time.Millisecond)
			w.Write([]byte(tu.TokenXML("secret-2")))
		}))
		defer server.Close()

		manager := NewSessionManager(NewClient(ClientOpts{}), nil)
		session := newTestSession(server.URL)
		session.Restore("secret-1")

		const callers = 8
		secrets := make([]string, callers)
		errs := make([]error, callers)

		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				secrets[i], errs[i] = manager.Refresh(ctx, session, "secret-1")
			}()
		}
		wg.Wait()

		for i := 0; i < callers; i++ {
			if errs[i] != nil {
				t.Fatalf("caller %d: expected no error, got %v", i, errs[i])
			}
			if secrets[i] != "secret-2" {
				t.Errorf("caller %d: expected secret-2, got %q", i, secrets[i])
			}
		}
		if got := hits.Load(); got != 1 {
			t.Errorf("expected exactly one token request, got %d", got)
		}
	})
}
