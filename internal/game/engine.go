// apps/go-server/internal/game/engine.go
//
// Selection engines for both game modes.
// Responsibilities:
//   - Draw unused games from a pool without repetition until exhaustion.
//   - Clear the rotation set wholesale (never partially) when a draw cannot
//     be satisfied, then draw from the full pool again.
//   - Evaluate the Gauge correctness rule (strict score inequality).
//
// The rotation set is externally owned: the session layer reads it back via
// Used() and restores it with SetUsed() so rotation survives across calls
// without the engines persisting anything themselves. Engines never do I/O.

package game

import (
	"errors"
	"math/rand"

	"github.com/robalobadob/steamgauge/apps/go-server/internal/steam"
)

// Position is a Gauge guess input: which card the player thinks is rated
// higher.
type Position string

const (
	PositionLeft  Position = "left"
	PositionRight Position = "right"
)

// Valid reports whether p is a known position.
func (p Position) Valid() bool { return p == PositionLeft || p == PositionRight }

// ErrPoolTooSmall is returned when the full pool cannot satisfy a draw.
var ErrPoolTooSmall = errors.New("game pool too small")

// PairEngine draws pairs of distinct games for the Gauge mode.
type PairEngine struct {
	pool []steam.Game
	used map[int]struct{}
}

// NewPairEngine constructs an engine over a fixed pool with an empty
// rotation set.
func NewPairEngine(pool []steam.Game) *PairEngine {
	return &PairEngine{pool: pool, used: make(map[int]struct{})}
}

// Used returns a copy of the rotation set.
func (e *PairEngine) Used() map[int]struct{} { return copyIDSet(e.used) }

// SetUsed replaces the rotation set with a copy of ids.
func (e *PairEngine) SetUsed(ids map[int]struct{}) { e.used = copyIDSet(ids) }

// SelectPair draws two distinct unused games and marks them used.
// When fewer than two unused games remain the rotation set is cleared first
// and the draw happens over the full pool.
func (e *PairEngine) SelectPair() (left, right steam.Game, err error) {
	if len(e.pool) < 2 {
		return steam.Game{}, steam.Game{}, ErrPoolTooSmall
	}
	avail := unusedGames(e.pool, e.used)
	if len(avail) < 2 {
		e.used = make(map[int]struct{})
		avail = e.pool
	}
	picks := drawN(avail, 2)
	left, right = picks[0], picks[1]
	e.used[left.ID] = struct{}{}
	e.used[right.ID] = struct{}{}
	return left, right, nil
}

// PoolSize returns the full pool size.
func (e *PairEngine) PoolSize() int { return len(e.pool) }

// AvailableCount returns how many games remain unused in this cycle.
func (e *PairEngine) AvailableCount() int { return len(e.pool) - len(e.used) }

// Reset clears the rotation set.
func (e *PairEngine) Reset() { e.used = make(map[int]struct{}) }

// CheckPosition evaluates a Gauge guess: correct iff the chosen side's score
// strictly exceeds the other side's. Exact ties are incorrect for both.
func CheckPosition(pos Position, left, right steam.Game) bool {
	switch pos {
	case PositionLeft:
		return left.Score > right.Score
	case PositionRight:
		return right.Score > left.Score
	}
	return false
}

// SingleEngine draws one game at a time for the Guess mode.
type SingleEngine struct {
	pool []steam.Game
	used map[int]struct{}
}

// NewSingleEngine constructs an engine over a fixed pool with an empty
// rotation set.
func NewSingleEngine(pool []steam.Game) *SingleEngine {
	return &SingleEngine{pool: pool, used: make(map[int]struct{})}
}

// Used returns a copy of the rotation set.
func (e *SingleEngine) Used() map[int]struct{} { return copyIDSet(e.used) }

// SetUsed replaces the rotation set with a copy of ids.
func (e *SingleEngine) SetUsed(ids map[int]struct{}) { e.used = copyIDSet(ids) }

// SelectNext draws one unused game and marks it used. When every game has
// been used the rotation set is cleared and the draw repeats over the full
// pool.
func (e *SingleEngine) SelectNext() (steam.Game, error) {
	if len(e.pool) == 0 {
		return steam.Game{}, ErrPoolTooSmall
	}
	avail := unusedGames(e.pool, e.used)
	if len(avail) == 0 {
		e.used = make(map[int]struct{})
		avail = e.pool
	}
	g := drawN(avail, 1)[0]
	e.used[g.ID] = struct{}{}
	return g, nil
}

// PoolSize returns the full pool size.
func (e *SingleEngine) PoolSize() int { return len(e.pool) }

// AvailableCount returns how many games remain unused in this cycle.
func (e *SingleEngine) AvailableCount() int { return len(e.pool) - len(e.used) }

// Reset clears the rotation set.
func (e *SingleEngine) Reset() { e.used = make(map[int]struct{}) }

// unusedGames filters pool down to games whose id is not in used.
func unusedGames(pool []steam.Game, used map[int]struct{}) []steam.Game {
	out := make([]steam.Game, 0, len(pool))
	for _, g := range pool {
		if _, ok := used[g.ID]; !ok {
			out = append(out, g)
		}
	}
	return out
}

// drawN shuffles a copy of games and takes the first n. Callers guarantee
// len(games) >= n.
func drawN(games []steam.Game, n int) []steam.Game {
	shuffled := make([]steam.Game, len(games))
	copy(shuffled, games)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

// copyIDSet clones an id set, tolerating nil.
func copyIDSet(ids map[int]struct{}) map[int]struct{} {
	out := make(map[int]struct{}, len(ids))
	for id := range ids {
		out[id] = struct{}{}
	}
	return out
}
