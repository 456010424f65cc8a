// apps/go-server/internal/steam/errors.go
//
// Typed error taxonomy for the acquisition pipeline.
// Defines:
//   - FetchError: network/HTTP failure against a live source.
//   - EmptyResultError: source answered but no record passed the filters.
//   - ParseError: malformed response body.
//
// Callers distinguish classes with errors.As; all three carry the request
// kind so the session layer can build a precise user notice.

package steam

import "fmt"

// FetchError wraps a network or HTTP-status failure after retries were
// exhausted.
type FetchError struct {
	Kind string // request kind, e.g. "top100forever" or "genre Action"
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("steam: fetch %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EmptyResultError means the source responded but yielded zero records that
// pass the validity filters. Treated like FetchError for retry/fallback.
type EmptyResultError struct {
	Kind string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("steam: no valid games for %s", e.Kind)
}

// ParseError means the response body did not decode. Retried the same as a
// fetch failure but logged distinctly.
type ParseError struct {
	Kind string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("steam: parse %s response: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
