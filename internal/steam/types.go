// apps/go-server/internal/steam/types.go
//
// Core type definitions for Steam game metadata.
// Defines:
//   - Mode: which game pool a session plays against.
//   - Game: the canonical, normalized game record both games consume.
//   - SpyRecord / StoreDetails: raw third-party response shapes.

package steam

import "fmt"

// Mode identifies which pool of games a session draws from.
type Mode string

const (
	ModeTopRecent  Mode = "top100in2weeks" // SteamSpy top 100 by recent players
	ModeTopForever Mode = "top100forever"  // SteamSpy top 100 all time
	ModeGenre      Mode = "genre"          // genre-scoped pool, needs a genre name
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeTopRecent, ModeTopForever, ModeGenre:
		return true
	}
	return false
}

// ModeKey builds the composite key identifying one independent session:
// the plain mode name, or "genre-<genre>" for genre-scoped play.
func ModeKey(m Mode, genre string) string {
	if m == ModeGenre {
		return "genre-" + genre
	}
	return string(m)
}

// Game is the canonical entity for both game modes. Constructed once by the
// acquisition pipeline from a raw source record and never mutated afterwards.
type Game struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	CoverURL       string   `json:"coverUrl"`
	Score          int      `json:"steamScore"` // review-score percentage 0–100
	TotalReviews   int      `json:"totalReviews"`
	Owners         string   `json:"owners"` // coarse ownership bucket, e.g. "10,000,000 .. 20,000,000"
	AvgPlayers2W   int      `json:"averagePlayers2Weeks"`
	Genres         []string `json:"genre,omitempty"`
	Developer      string   `json:"developer,omitempty"`
	Publisher      string   `json:"publisher,omitempty"`
}

// SpyRecord mirrors one entry of a SteamSpy api.php response. Fields we do
// not consume are omitted; unknown fields are ignored by encoding/json.
type SpyRecord struct {
	AppID       int    `json:"appid"`
	Name        string `json:"name"`
	Developer   string `json:"developer"`
	Publisher   string `json:"publisher"`
	Positive    int    `json:"positive"`
	Negative    int    `json:"negative"`
	Owners      string `json:"owners"`
	Average2Wks int    `json:"average_2weeks"`
	CCU         int    `json:"ccu"`
	Genre       string `json:"genre"`
}

// StoreDetails is the slice of the Steam storefront appdetails payload the
// Guess game uses for its enhanced hint ladder. Best-effort data: any field
// may be missing.
type StoreDetails struct {
	ReleaseDate struct {
		ComingSoon bool   `json:"coming_soon"`
		Date       string `json:"date"`
	} `json:"release_date"`
	Developers []string `json:"developers"`
	Genres     []struct {
		ID          string `json:"id"`
		Description string `json:"description"`
	} `json:"genres"`
	Metacritic struct {
		Score int `json:"score"`
	} `json:"metacritic"`
}

// CoverURL builds the Steam CDN library capsule URL for an app id.
func CoverURL(appID int) string {
	return fmt.Sprintf("https://cdn.cloudflare.steamstatic.com/steam/apps/%d/library_600x900.jpg", appID)
}
