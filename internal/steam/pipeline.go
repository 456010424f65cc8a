// apps/go-server/internal/steam/pipeline.go
//
// Data acquisition pipeline: orchestrates the adapters, the shared cache,
// and the static fallback into a single "get game pool for mode" operation.
//
// Tiering per request:
//   1. Non-expired cache entry → returned immediately, no network I/O.
//   2. Live SteamSpy fetch through the retry wrapper, filtered + normalized.
//   3. Top-list kinds degrade to the bundled fallback snapshot on exhaustion;
//      genre kinds surface the typed error (no fallback dataset for genres).
//
// The pipeline never notifies users itself; it returns typed errors and the
// session layer owns the user-visible notices.

package steam

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Pipeline resolves game pools for the session layer.
type Pipeline struct {
	client *Client
	cache  *Cache
}

// NewPipeline wires a pipeline from its injected collaborators.
func NewPipeline(client *Client, cache *Cache) *Pipeline {
	return &Pipeline{client: client, cache: cache}
}

// GamesByMode resolves the pool for a (mode, genre) selector.
// Guaranteed non-empty on success; returns a typed error on total failure.
func (p *Pipeline) GamesByMode(ctx context.Context, mode Mode, genre string) ([]Game, error) {
	switch mode {
	case ModeTopRecent, ModeTopForever:
		return p.topList(ctx, string(mode))
	case ModeGenre:
		if genre == "" {
			return nil, fmt.Errorf("steam: genre mode requires a genre")
		}
		return p.genreList(ctx, genre)
	default:
		return nil, fmt.Errorf("steam: unknown mode %q", mode)
	}
}

// topList resolves one of the two top-100 kinds, degrading to the embedded
// snapshot when retries are exhausted.
func (p *Pipeline) topList(ctx context.Context, request string) ([]Game, error) {
	if games, ok := p.cache.GetPool(request, ""); ok {
		return games, nil
	}
	records, err := p.client.FetchTopList(ctx, request)
	if err == nil {
		games := convertSpyRecords(records)
		if len(games) > 0 {
			p.cache.PutPool(request, "", games)
			return games, nil
		}
		err = &EmptyResultError{Kind: request}
	}
	log.Error().Err(err).Str("kind", request).Msg("live top list unavailable, using fallback")
	games, fbErr := fallbackPool()
	if fbErr != nil {
		log.Error().Err(fbErr).Msg("fallback dataset unavailable")
		return nil, err
	}
	return games, nil
}

// genreList resolves a genre-scoped pool. There is no fallback dataset for
// genres; exhausted retries surface the typed error to the caller.
func (p *Pipeline) genreList(ctx context.Context, genre string) ([]Game, error) {
	if games, ok := p.cache.GetPool("genre", genre); ok {
		return games, nil
	}
	records, err := p.client.FetchGenreList(ctx, genre)
	if err != nil {
		return nil, err
	}
	games := convertSpyRecords(records)
	if len(games) == 0 {
		return nil, &EmptyResultError{Kind: "genre " + genre}
	}
	p.cache.PutPool("genre", genre, games)
	return games, nil
}

// ExtendedDetails resolves storefront metadata for one game, best effort.
// Returns nil when the data is unavailable for any reason; callers downgrade
// to the basic hint ladder. Successful lookups are cached.
func (p *Pipeline) ExtendedDetails(ctx context.Context, appID int) *StoreDetails {
	if d, ok := p.cache.GetDetails(appID); ok {
		return d
	}
	d := p.client.FetchExtendedDetails(ctx, appID)
	if d != nil {
		p.cache.PutDetails(appID, d)
	}
	return d
}
