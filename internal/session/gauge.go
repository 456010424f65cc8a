// apps/go-server/internal/session/gauge.go
//
// Round state machine for the Gauge mode ("pick the higher-rated game").
// Lifecycle per mode key:
//
//   Selecting → Loading → Ready → Revealing → (back to Ready)
//
// A guess reveals both scores immediately, updates score/high score, then a
// fixed 1.5s timer draws the next pair. The timer is cancellable and bound
// to an epoch counter so a stale callback (mode switched, newer round
// started) is a no-op instead of firing against dead state.

package session

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/steamgauge/apps/go-server/internal/game"
	"github.com/robalobadob/steamgauge/apps/go-server/internal/steam"
)

// ErrNoActiveMode is returned for round operations before a mode was set.
var ErrNoActiveMode = errors.New("session: no active mode")

// ErrNotReady is returned when a guess arrives outside PhaseReady. The
// engine-level guard behind the UI's disabled input.
var ErrNotReady = errors.New("session: round not accepting input")

// GaugeRound is the currently displayed Gauge puzzle.
type GaugeRound struct {
	Left     steam.Game `json:"leftGame"`
	Right    steam.Game `json:"rightGame"`
	Revealed bool       `json:"revealed"`
}

// gaugeModeState is one (mode, genre) session of the Gauge game.
type gaugeModeState struct {
	mode  steam.Mode
	genre string

	pool  []steam.Game
	used  map[int]struct{}
	phase Phase
	round *GaugeRound

	score     int
	highScore int

	epoch   int // bumped on every transition that invalidates pending timers
	advance *time.Timer
}

// GaugeGame is the per-player Gauge session store, keyed by mode key.
type GaugeGame struct {
	player    *Player
	activeKey string
	modes     map[string]*gaugeModeState
}

// GaugeState is the read model exposed to the UI layer.
type GaugeState struct {
	ModeKey   string      `json:"modeKey,omitempty"`
	Phase     Phase       `json:"phase"`
	Round     *GaugeRound `json:"round,omitempty"`
	Score     int         `json:"score"`
	HighScore int         `json:"highScore"`
	PoolSize  int         `json:"poolSize"`
	Notices   []Notice    `json:"notices,omitempty"`
}

// SetMode selects the active (mode, genre). Re-entering the already active
// mode key is a no-op so duplicate navigation events never discard an
// in-progress pool or score.
func (g *GaugeGame) SetMode(ctx context.Context, mode steam.Mode, genre string) error {
	if !mode.Valid() {
		return errors.New("session: unknown mode")
	}
	p := g.player
	p.mu.Lock()
	defer p.mu.Unlock()

	key := steam.ModeKey(mode, genre)
	if g.activeKey == key {
		return nil
	}
	if prev := g.modes[g.activeKey]; prev != nil {
		prev.cancelAdvance()
	}
	g.activeKey = key
	if st := g.modes[key]; st != nil {
		// Resuming a mode parked mid-reveal: its timer was cancelled on
		// switch-away, so re-arm the advance.
		if st.phase == PhaseRevealing {
			g.scheduleAdvance(st)
		}
		return nil
	}
	high, current := p.loadScores(ctx, "gauge:"+key)
	g.modes[key] = &gaugeModeState{
		mode:      mode,
		genre:     genre,
		phase:     PhaseLoading,
		score:     current,
		highScore: high,
	}
	return nil
}

// LoadInitialGames fetches the pool and draws the first round if the active
// mode has neither. Idempotent when a pool is already loaded. On pipeline
// failure the mode stays in PhaseLoading (retryable) and the player gets an
// error notice.
func (g *GaugeGame) LoadInitialGames(ctx context.Context) error {
	p := g.player
	p.mu.Lock()
	st := g.modes[g.activeKey]
	if st == nil {
		p.mu.Unlock()
		return ErrNoActiveMode
	}
	if len(st.pool) > 0 {
		p.mu.Unlock()
		return nil
	}
	st.phase = PhaseLoading
	mode, genre := st.mode, st.genre
	p.mu.Unlock()

	// Fetch outside the lock; the pipeline may block on retries.
	pool, err := p.store.pipeline.GamesByMode(ctx, mode, genre)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.notify(fetchNotice(err))
		return err
	}
	engine := game.NewPairEngine(pool)
	left, right, err := engine.SelectPair()
	if err != nil {
		p.notify(Notice{Kind: "error", Title: "Failed to load games", Description: err.Error()})
		return err
	}
	st.pool = pool
	st.used = engine.Used()
	st.round = &GaugeRound{Left: left, Right: right}
	st.phase = PhaseReady
	st.epoch++
	return nil
}

// MakeGuess evaluates a position guess for the active round. Reveals the
// round synchronously, updates scores, and schedules the next pair after the
// reveal delay. Returns whether the guess was correct.
func (g *GaugeGame) MakeGuess(pos game.Position) (bool, error) {
	if !pos.Valid() {
		return false, errors.New("session: unknown position")
	}
	p := g.player
	p.mu.Lock()
	defer p.mu.Unlock()

	st := g.modes[g.activeKey]
	if st == nil {
		return false, ErrNoActiveMode
	}
	if st.phase != PhaseReady || st.round == nil {
		return false, ErrNotReady
	}

	correct := game.CheckPosition(pos, st.round.Left, st.round.Right)
	if correct {
		st.score++
		if st.score > st.highScore {
			st.highScore = st.score
		}
	} else {
		st.score = 0
	}
	st.round.Revealed = true
	st.phase = PhaseRevealing
	p.saveScores("gauge:"+g.activeKey, st.highScore, st.score)

	g.scheduleAdvance(st)
	return correct, nil
}

// State snapshots the active mode for the UI, including drained notices.
func (g *GaugeGame) State() GaugeState {
	p := g.player
	p.mu.Lock()
	notices := p.notices
	p.notices = nil

	st := g.modes[g.activeKey]
	if st == nil {
		p.mu.Unlock()
		return GaugeState{Phase: PhaseSelecting, Notices: notices}
	}
	out := GaugeState{
		ModeKey:   g.activeKey,
		Phase:     st.phase,
		Score:     st.score,
		HighScore: st.highScore,
		PoolSize:  len(st.pool),
		Notices:   notices,
	}
	if st.round != nil {
		round := *st.round
		out.Round = &round
	}
	p.mu.Unlock()
	return out
}

// scheduleAdvance arms the post-reveal timer for st. Caller holds p.mu.
func (g *GaugeGame) scheduleAdvance(st *gaugeModeState) {
	st.cancelAdvance()
	st.epoch++
	epoch := st.epoch
	key := g.activeKey
	st.advance = time.AfterFunc(g.player.store.gaugeDelay, func() {
		g.advanceRound(key, epoch)
	})
}

// advanceRound draws the next pair once the reveal delay elapses. Ignored
// when the epoch moved on or the mode is no longer active.
func (g *GaugeGame) advanceRound(key string, epoch int) {
	p := g.player
	p.mu.Lock()
	defer p.mu.Unlock()

	st := g.modes[key]
	if st == nil || st.epoch != epoch || g.activeKey != key || st.phase != PhaseRevealing {
		return
	}
	engine := game.NewPairEngine(st.pool)
	engine.SetUsed(st.used)
	left, right, err := engine.SelectPair()
	if err != nil {
		p.notify(Notice{Kind: "error", Title: "Failed to load games", Description: err.Error()})
		st.phase = PhaseLoading
		return
	}
	st.used = engine.Used()
	st.round = &GaugeRound{Left: left, Right: right}
	st.phase = PhaseReady
}

// cancelAdvance stops a pending advance timer, if any.
func (st *gaugeModeState) cancelAdvance() {
	if st.advance != nil {
		st.advance.Stop()
		st.advance = nil
	}
	st.epoch++
}

// fetchNotice maps a pipeline error to its user-visible notice class.
func fetchNotice(err error) Notice {
	var empty *steam.EmptyResultError
	var parse *steam.ParseError
	switch {
	case errors.As(err, &empty):
		return Notice{Kind: "error", Title: "No games found", Description: err.Error()}
	case errors.As(err, &parse):
		return Notice{Kind: "error", Title: "Bad response from Steam", Description: err.Error()}
	default:
		return Notice{Kind: "error", Title: "Failed to load games", Description: err.Error()}
	}
}
