// apps/go-server/internal/steam/fallback.go
//
// Static pre-baked top-100 dataset, used when live sources are exhausted.
// Loaded once from the embedded snapshot and filtered with exactly the same
// validity rules as live data.

package steam

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/robalobadob/steamgauge/apps/go-server/assets"
)

var (
	fallbackOnce  sync.Once
	fallbackGames []Game
	fallbackErr   error
)

// fallbackPool returns the bundled top-list snapshot as a filtered pool.
// The snapshot is decoded once; subsequent calls return the same slice.
func fallbackPool() ([]Game, error) {
	fallbackOnce.Do(func() {
		raw, err := assets.Top100Fallback()
		if err != nil {
			fallbackErr = fmt.Errorf("load fallback snapshot: %w", err)
			return
		}
		var records map[string]SpyRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			fallbackErr = fmt.Errorf("decode fallback snapshot: %w", err)
			return
		}
		games := convertSpyRecords(records)
		if len(games) == 0 {
			fallbackErr = fmt.Errorf("fallback snapshot has no valid games")
			return
		}
		fallbackGames = games
	})
	return fallbackGames, fallbackErr
}
