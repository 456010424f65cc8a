// apps/go-server/internal/steam/client.go
//
// Thin HTTP adapters for the two third-party sources:
//   - SteamSpy api.php (top lists, genre lists).
//   - Steam storefront appdetails (extended metadata, best-effort).
//
// Both go through a shared retry wrapper: fixed retry budget, fixed
// inter-attempt delay, bounded per-attempt timeout. Retries are sequential,
// never concurrent. Base URLs are configurable so tests can point at an
// httptest server.

package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultSpyBaseURL   = "https://steamspy.com/api.php"
	defaultStoreBaseURL = "https://store.steampowered.com/api/appdetails"

	defaultMaxAttempts  = 3
	defaultRetryDelay   = 2 * time.Second
	defaultFetchTimeout = 5 * time.Second
)

// Client talks to SteamSpy and the Steam storefront.
type Client struct {
	http         *http.Client
	spyBaseURL   string
	storeBaseURL string
	maxAttempts  int
	retryDelay   time.Duration
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURLs overrides the upstream endpoints (tests).
func WithBaseURLs(spy, store string) ClientOption {
	return func(c *Client) {
		if spy != "" {
			c.spyBaseURL = spy
		}
		if store != "" {
			c.storeBaseURL = store
		}
	}
}

// WithRetry overrides the retry budget and inter-attempt delay.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// NewClient constructs a Client with production defaults.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:         &http.Client{Timeout: defaultFetchTimeout},
		spyBaseURL:   defaultSpyBaseURL,
		storeBaseURL: defaultStoreBaseURL,
		maxAttempts:  defaultMaxAttempts,
		retryDelay:   defaultRetryDelay,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// fetchJSON GETs a URL with the retry budget and decodes the body into dst.
// Decode failures count as attempts like network failures, but are logged as
// parse errors and reported as ParseError when they exhaust the budget.
func (c *Client) fetchJSON(ctx context.Context, kind, rawURL string, dst any) error {
	var lastErr error
	parseFailed := false
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return &FetchError{Kind: kind, Err: ctx.Err()}
			}
		}
		lastErr, parseFailed = c.fetchOnce(ctx, kind, rawURL, dst)
		if lastErr == nil {
			return nil
		}
		log.Warn().Err(lastErr).Str("kind", kind).Int("attempt", attempt).Msg("steam fetch attempt failed")
	}
	if parseFailed {
		return &ParseError{Kind: kind, Err: lastErr}
	}
	return &FetchError{Kind: kind, Err: lastErr}
}

// fetchOnce performs a single GET+decode. The second return value reports
// whether the failure happened while decoding rather than fetching.
func (c *Client) fetchOnce(ctx context.Context, kind, rawURL string, dst any) (err error, parse bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err, false
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err, false
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, res.Body)
		return fmt.Errorf("unexpected status %d", res.StatusCode), false
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return err, true
	}
	return nil, false
}

// FetchTopList fetches one of the SteamSpy top-100 lists
// ("top100in2weeks" or "top100forever") and returns the raw records.
func (c *Client) FetchTopList(ctx context.Context, request string) (map[string]SpyRecord, error) {
	u := c.spyBaseURL + "?" + url.Values{"request": {request}}.Encode()
	var records map[string]SpyRecord
	if err := c.fetchJSON(ctx, request, u, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FetchGenreList fetches the SteamSpy genre listing for a genre name.
func (c *Client) FetchGenreList(ctx context.Context, genre string) (map[string]SpyRecord, error) {
	u := c.spyBaseURL + "?" + url.Values{"request": {"genre"}, "genre": {genre}}.Encode()
	var records map[string]SpyRecord
	if err := c.fetchJSON(ctx, "genre "+genre, u, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// storeEnvelope is the storefront appdetails wrapper, keyed by app id.
type storeEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// FetchExtendedDetails fetches storefront appdetails for one app.
// Best-effort: returns (nil, nil) on any failure so callers silently fall
// back to the basic hint ladder. Never an error surface for the pipeline.
func (c *Client) FetchExtendedDetails(ctx context.Context, appID int) *StoreDetails {
	id := strconv.Itoa(appID)
	u := c.storeBaseURL + "?" + url.Values{"appids": {id}, "cc": {"us"}, "l": {"english"}}.Encode()
	var envelope map[string]storeEnvelope
	if err := c.fetchJSON(ctx, "appdetails "+id, u, &envelope); err != nil {
		log.Warn().Err(err).Int("appId", appID).Msg("store details unavailable")
		return nil
	}
	e, ok := envelope[id]
	if !ok || !e.Success || len(e.Data) == 0 {
		log.Debug().Int("appId", appID).Msg("no store data for game")
		return nil
	}
	var d StoreDetails
	if err := json.Unmarshal(e.Data, &d); err != nil {
		log.Warn().Err(err).Int("appId", appID).Msg("malformed store details")
		return nil
	}
	return &d
}
