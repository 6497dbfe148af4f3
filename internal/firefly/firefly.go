package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ffx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// DefaultDirectoryURL is the public Firefly app gateway used to resolve a
	// school code to its portal host.
	DefaultDirectoryURL = "https://appgateway.fireflysolutions.co.uk/appgateway/school/"

	tokenPath   = "Login/api/gettoken"
	listingPath = "api/v2/taskListing/view/student/tasks/all/filterBy"

	// invalidToken is the literal body the portal returns for any
	// authenticated request once the secret is no longer valid.
	invalidToken = "Invalid token"

	// maxPageSize is the portal's cap on tasks per listing request.
	maxPageSize = 100

	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 10.0
)

// IsExpired reports whether an authenticated response body signals session
// expiry. The portal returns the same literal for every endpoint.
func IsExpired(body []byte) bool {
	return string(body) == invalidToken
}

// Client performs all HTTP interaction with the Firefly gateway and a resolved
// portal host.
type Client struct {
	directoryURL  string
	sessionCookie string
	httpClient    *http.Client
	limiter       *rate.Limiter
	logger        *log.Logger
}

// ClientOpts contains configuration options for creating a Client.
type ClientOpts struct {
	DirectoryURL  string       // defaults to DefaultDirectoryURL
	SessionCookie string       // ASP.NET_SessionId value required by the gateway
	HTTPClient    *http.Client // defaults to a client with a 30s timeout
	RateLimit     float64      // page requests per second during fan-out
	Logger        *log.Logger
}

// NewClient creates a Client with the provided options, filling in defaults
// for anything unset.
func NewClient(opts ClientOpts) *Client {
	if opts.DirectoryURL == "" {
		opts.DirectoryURL = DefaultDirectoryURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Client{
		directoryURL:  opts.DirectoryURL,
		sessionCookie: opts.SessionCookie,
		httpClient:    opts.HTTPClient,
		limiter:       rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		logger:        opts.Logger,
	}
}

// get issues a GET to rawURL and returns the response body.
func (c *Client) get(ctx context.Context, rawURL string, withCookie bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if withCookie && c.sessionCookie != "" {
		req.Header.Set("Cookie", "ASP.NET_SessionId="+c.sessionCookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if IsExpired(body) {
			return body, nil
		}
		return nil, fmt.Errorf("%w: status %d", shared.ErrTransport, resp.StatusCode)
	}

	return body, nil
}

// postListing POSTs one page payload to the task listing endpoint, signing the
// request with the session's current credentials.
func (c *Client) postListing(ctx context.Context, s *Session, page QueryPage) ([]byte, error) {
	params := url.Values{}
	params.Set("ffauth_device_id", s.DeviceID)
	params.Set("ffauth_secret", s.Secret())

	payload, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page payload: %w", err)
	}

	endpoint := s.BaseURL + listingPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Expired secrets come back with an error status and the sentinel
		// body; let the caller handle those.
		if IsExpired(body) {
			return body, nil
		}
		return nil, fmt.Errorf("%w: status %d", shared.ErrTransport, resp.StatusCode)
	}

	return body, nil
}

// xmlTextNodes extracts all non-empty text nodes from an XML document in
// document order.
func xmlTextNodes(body []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	var nodes []string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
		}
		if text, ok := tok.(xml.CharData); ok {
			if trimmed := strings.TrimSpace(string(text)); trimmed != "" {
				nodes = append(nodes, trimmed)
			}
		}
	}

	return nodes, nil
}
