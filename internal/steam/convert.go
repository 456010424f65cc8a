// apps/go-server/internal/steam/convert.go
//
// Normalization boundary between raw SteamSpy records and the canonical Game
// type. One conversion function per source shape; records that fail the
// validity filter are dropped and logged, never propagated half-formed.

package steam

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// minTotalReviews is the service-level filter: games at or below this review
// count have too unstable a score to be playable and are excluded upstream.
const minTotalReviews = 500

// validSpy reports whether a raw record is playable: enough reviews to carry
// a meaningful score, a display name, and a positive app id.
func validSpy(r SpyRecord) bool {
	return r.Positive+r.Negative > minTotalReviews &&
		strings.TrimSpace(r.Name) != "" &&
		r.AppID > 0
}

// fromSpy converts one valid SteamSpy record into a canonical Game.
// Score is the positive share rounded to a whole percentage.
func fromSpy(r SpyRecord) Game {
	total := r.Positive + r.Negative
	score := 0
	if total > 0 {
		score = int(float64(r.Positive)/float64(total)*100 + 0.5)
	}
	var genres []string
	for _, g := range strings.Split(r.Genre, ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return Game{
		ID:           r.AppID,
		Name:         r.Name,
		CoverURL:     CoverURL(r.AppID),
		Score:        score,
		TotalReviews: total,
		Owners:       r.Owners,
		AvgPlayers2W: r.Average2Wks,
		Genres:       genres,
		Developer:    r.Developer,
		Publisher:    r.Publisher,
	}
}

// convertSpyRecords filters and converts a raw SteamSpy payload, deduplicated
// by app id. Returns the games in no particular order.
func convertSpyRecords(records map[string]SpyRecord) []Game {
	out := make([]Game, 0, len(records))
	seen := make(map[int]struct{}, len(records))
	dropped := 0
	for _, r := range records {
		if !validSpy(r) {
			dropped++
			continue
		}
		if _, dup := seen[r.AppID]; dup {
			continue
		}
		seen[r.AppID] = struct{}{}
		out = append(out, fromSpy(r))
	}
	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Int("kept", len(out)).Msg("filtered steamspy records")
	}
	return out
}
