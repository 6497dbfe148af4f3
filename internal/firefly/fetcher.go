package firefly

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ffx/internal/models"
	"github.com/desertthunder/ffx/internal/shared"
	"golang.org/x/sync/errgroup"
)

// FetchResult carries the raw records of one listing fetch.
type FetchResult struct {
	Items       []models.RawTask // union of all pages, order unspecified
	TotalCount  int              // totalCount reported by the portal
	FailedPages []int            // page indices whose bodies failed to decode
}

// Fetcher executes filter-driven paginated retrieval against the task listing
// endpoint.
type Fetcher struct {
	client   *Client
	sessions *SessionManager
	logger   *log.Logger
}

// NewFetcher creates a Fetcher backed by the given client and session manager.
func NewFetcher(client *Client, sessions *SessionManager, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Fetcher{client: client, sessions: sessions, logger: logger}
}

// Fetch retrieves every raw task matching the filter.
//
// Page 0 is fetched first; if its body signals session expiry, exactly one
// refresh-then-retry cycle runs before the fetch is failed. When the reported
// totalCount exceeds one page, the remaining pages are fetched concurrently
// and cancelling ctx tears down all in-flight page requests; no partial
// result is returned on cancellation.
//
// A page whose body fails to decode drops only that page's items; the failed
// indices are reported on the result.
func (f *Fetcher) Fetch(ctx context.Context, s *Session, filter models.TaskFilter) (*FetchResult, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if s.State() == Unauthenticated {
		return nil, fmt.Errorf("%w: session for %s has no secret", shared.ErrNotAuthenticated, s.Email)
	}

	first, err := f.fetchFirstPage(ctx, s, filter)
	if err != nil {
		return nil, err
	}

	if first.TotalCount == nil {
		return nil, fmt.Errorf("%w: totalCount not present in listing response", shared.ErrMalformedResponse)
	}
	total := *first.TotalCount

	result := &FetchResult{Items: first.Items, TotalCount: total}
	if total <= maxPageSize {
		return result, nil
	}

	rest := Plan(filter, total)[1:]
	f.logger.Debug("fanning out page requests", "email", s.Email, "total", total, "pages", len(rest))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, page := range rest {
		g.Go(func() error {
			if err := f.client.limiter.Wait(gctx); err != nil {
				return err
			}

			body, err := f.client.postListing(gctx, s, page)
			if err != nil {
				return fmt.Errorf("page %d: %w", page.Page, err)
			}
			if IsExpired(body) {
				// The secret died between page 0 and the fan-out; the
				// single retry cycle already ran, so fail the fetch.
				return fmt.Errorf("%w: page %d rejected mid-fetch", shared.ErrSessionExpired, page.Page)
			}

			var decoded models.PageResponse
			if err := json.Unmarshal(body, &decoded); err != nil {
				f.logger.Warn("dropping undecodable page", "page", page.Page, "err", err)
				mu.Lock()
				result.FailedPages = append(result.FailedPages, page.Page)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			result.Items = append(result.Items, decoded.Items...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Ints(result.FailedPages)
	return result, nil
}

// fetchFirstPage POSTs page 0 and handles the one permitted refresh-then-retry
// cycle on session expiry.
func (f *Fetcher) fetchFirstPage(ctx context.Context, s *Session, filter models.TaskFilter) (*models.PageResponse, error) {
	page := FirstPage(filter)

	body, err := f.client.postListing(ctx, s, page)
	if err != nil {
		return nil, err
	}

	if IsExpired(body) {
		stale := s.Secret()
		f.logger.Info("session expired, refreshing", "email", s.Email)
		if _, err := f.sessions.Refresh(ctx, s, stale); err != nil {
			return nil, err
		}

		body, err = f.client.postListing(ctx, s, page)
		if err != nil {
			return nil, err
		}
		if IsExpired(body) {
			return nil, fmt.Errorf("%w: secret rejected immediately after refresh", shared.ErrInvalidSession)
		}
	}

	var decoded models.PageResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: listing response failed to parse: %v", shared.ErrMalformedResponse, err)
	}

	return &decoded, nil
}
