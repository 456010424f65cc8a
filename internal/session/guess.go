// apps/go-server/internal/session/guess.go
//
// Round state machine for the Guess mode ("Artfuscation": identify a game
// from a progressively de-pixelated cover with escalating hints).
//
// Per round: pixelation starts at 1 (most obscured). Every wrong guess
// advances pixelation by exactly 1 and reveals exactly the next hint in rank
// order. Level 6 on a wrong guess is a terminal loss. Wins and losses reveal
// the cover, then a fixed 2s timer draws the next game. Skips are
// synchronous: no reveal wait, score reset, straight to a fresh round.
//
// The hint ladder is fixed once per round when the game is drawn: enhanced
// when storefront details resolve, basic otherwise.

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/steamgauge/apps/go-server/internal/game"
	"github.com/robalobadob/steamgauge/apps/go-server/internal/steam"
)

const (
	pixelationMin      = 1
	pixelationTerminal = 6
)

// GuessRound is the currently displayed Guess puzzle.
type GuessRound struct {
	Game       steam.Game
	Pixelation int
	Hints      []game.Hint
	Revealed   bool
	Enhanced   bool // storefront details resolved for this round
}

// guessModeState is one (mode, genre) session of the Guess game.
type guessModeState struct {
	mode  steam.Mode
	genre string

	pool  []steam.Game
	used  map[int]struct{}
	phase Phase
	round *GuessRound

	score     int
	highScore int

	epoch   int
	advance *time.Timer
}

// GuessGame is the per-player Guess session store, keyed by mode key.
type GuessGame struct {
	player    *Player
	activeKey string
	modes     map[string]*guessModeState
}

// GuessRoundView is the round as shown to the UI. The game name is withheld
// until the round is revealed; matching happens server-side.
type GuessRoundView struct {
	Name       string      `json:"name,omitempty"`
	CoverURL   string      `json:"coverUrl"`
	Pixelation int         `json:"pixelationLevel"`
	Hints      []game.Hint `json:"hints"`
	Revealed   bool        `json:"revealed"`
	Enhanced   bool        `json:"enhanced"`
}

// GuessState is the read model exposed to the UI layer.
type GuessState struct {
	ModeKey   string          `json:"modeKey,omitempty"`
	Phase     Phase           `json:"phase"`
	Round     *GuessRoundView `json:"round,omitempty"`
	Score     int             `json:"score"`
	HighScore int             `json:"highScore"`
	PoolSize  int             `json:"poolSize"`
	Notices   []Notice        `json:"notices,omitempty"`
}

// SetMode selects the active (mode, genre). No-op when the key is already
// active.
func (g *GuessGame) SetMode(ctx context.Context, mode steam.Mode, genre string) error {
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
	high, current := p.loadScores(ctx, "guess:"+key)
	g.modes[key] = &guessModeState{
		mode:      mode,
		genre:     genre,
		phase:     PhaseLoading,
		score:     current,
		highScore: high,
	}
	return nil
}

// LoadInitialGames fetches the pool and draws the first round if absent.
// Failures leave the mode in PhaseLoading (retryable) with an error notice.
// A pool stored by an earlier interrupted load is reused rather than
// refetched, so a retry always has a path to a round.
func (g *GuessGame) LoadInitialGames(ctx context.Context) error {
	p := g.player
	p.mu.Lock()
	st := g.modes[g.activeKey]
	if st == nil {
		p.mu.Unlock()
		return ErrNoActiveMode
	}
	if st.round != nil {
		p.mu.Unlock()
		return nil
	}
	st.phase = PhaseLoading
	mode, genre := st.mode, st.genre
	pool := st.pool
	p.mu.Unlock()

	if len(pool) == 0 {
		fetched, err := p.store.pipeline.GamesByMode(ctx, mode, genre)
		if err != nil {
			p.mu.Lock()
			p.notify(fetchNotice(err))
			p.mu.Unlock()
			return err
		}
		pool = fetched
	}

	p.mu.Lock()
	if st.round != nil {
		// A concurrent load finished first.
		p.mu.Unlock()
		return nil
	}
	st.pool = pool
	engine := game.NewSingleEngine(pool)
	engine.SetUsed(st.used)
	drawn, err := engine.SelectNext()
	if err != nil {
		p.notify(Notice{Kind: "error", Title: "Failed to load games", Description: err.Error()})
		p.mu.Unlock()
		return err
	}
	st.used = engine.Used()
	st.epoch++
	epoch := st.epoch
	p.mu.Unlock()

	round := g.buildRound(ctx, drawn)

	p.mu.Lock()
	defer p.mu.Unlock()
	if st.epoch != epoch {
		// Interrupted mid-build (mode switched away). Return the drawn game
		// to the rotation; the mode stays in PhaseLoading with its pool, so
		// the next load draws straight from it.
		delete(st.used, drawn.ID)
		return nil
	}
	st.round = round
	st.phase = PhaseReady
	return nil
}

// MakeGuess evaluates a title guess for the active round and returns whether
// it matched. Drives the full reveal/advance cycle for wins and terminal
// losses; intermediate wrong guesses only advance pixelation and reveal one
// hint.
func (g *GuessGame) MakeGuess(guess string) (bool, error) {
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

	if game.MatchTitle(guess, st.round.Game.Name) {
		st.score++
		if st.score > st.highScore {
			st.highScore = st.score
			p.notify(Notice{
				Kind:        "highScore",
				Title:       "New High Score!",
				Description: fmt.Sprintf("You've reached %d points!", st.score),
			})
		}
		st.round.Revealed = true
		st.phase = PhaseRevealing
		p.saveScores("guess:"+g.activeKey, st.highScore, st.score)
		g.scheduleAdvance(st)
		return true, nil
	}

	if st.round.Pixelation < pixelationTerminal {
		st.round.Pixelation++
	}
	game.RevealNext(st.round.Hints)

	if st.round.Pixelation >= pixelationTerminal {
		// Terminal loss: out of guesses.
		st.score = 0
		st.round.Revealed = true
		st.phase = PhaseRevealing
		p.notify(Notice{
			Kind:        "gameOver",
			Title:       "Game Over!",
			Description: fmt.Sprintf("The game was: %s. Your score has been reset.", st.round.Game.Name),
		})
		p.saveScores("guess:"+g.activeKey, st.highScore, 0)
		g.scheduleAdvance(st)
	}
	return false, nil
}

// SkipGame abandons the current round: score reset, skip notice naming the
// game, and an immediate fresh round with no reveal delay.
func (g *GuessGame) SkipGame(ctx context.Context) error {
	p := g.player
	p.mu.Lock()
	st := g.modes[g.activeKey]
	if st == nil {
		p.mu.Unlock()
		return ErrNoActiveMode
	}
	if st.round == nil || len(st.pool) == 0 {
		p.mu.Unlock()
		return ErrNotReady
	}
	st.cancelAdvance()
	st.score = 0
	p.notify(Notice{
		Kind:        "skip",
		Title:       "Game Skipped",
		Description: fmt.Sprintf("The game was: %s", st.round.Game.Name),
	})
	p.saveScores("guess:"+g.activeKey, st.highScore, 0)

	engine := game.NewSingleEngine(st.pool)
	engine.SetUsed(st.used)
	drawn, err := engine.SelectNext()
	if err != nil {
		p.mu.Unlock()
		return err
	}
	st.used = engine.Used()
	// The skipped round is gone as soon as the notice names it.
	st.round = nil
	st.phase = PhaseLoading
	st.epoch++
	epoch := st.epoch
	p.mu.Unlock()

	round := g.buildRound(ctx, drawn)

	p.mu.Lock()
	defer p.mu.Unlock()
	if st.epoch != epoch {
		// Interrupted mid-build (mode switched away). Return the drawn game
		// to the rotation; LoadInitialGames redraws from the stored pool on
		// re-entry.
		delete(st.used, drawn.ID)
		return nil
	}
	st.round = round
	st.phase = PhaseReady
	return nil
}

// RevealHint reveals the next unrevealed hint on request, outside the
// wrong-guess ladder. No-op once every hint is shown or mid-transition.
func (g *GuessGame) RevealHint() {
	p := g.player
	p.mu.Lock()
	defer p.mu.Unlock()
	st := g.modes[g.activeKey]
	if st == nil || st.phase != PhaseReady || st.round == nil {
		return
	}
	game.RevealNext(st.round.Hints)
}

// State snapshots the active mode for the UI, including drained notices.
func (g *GuessGame) State() GuessState {
	p := g.player
	p.mu.Lock()
	defer p.mu.Unlock()
	notices := p.notices
	p.notices = nil

	st := g.modes[g.activeKey]
	if st == nil {
		return GuessState{Phase: PhaseSelecting, Notices: notices}
	}
	out := GuessState{
		ModeKey:   g.activeKey,
		Phase:     st.phase,
		Score:     st.score,
		HighScore: st.highScore,
		PoolSize:  len(st.pool),
		Notices:   notices,
	}
	if st.round != nil {
		view := &GuessRoundView{
			CoverURL:   st.round.Game.CoverURL,
			Pixelation: st.round.Pixelation,
			Hints:      append([]game.Hint(nil), st.round.Hints...),
			Revealed:   st.round.Revealed,
			Enhanced:   st.round.Enhanced,
		}
		if st.round.Revealed {
			view.Name = st.round.Game.Name
		}
		out.Round = view
	}
	return out
}

// buildRound assembles a fresh round for a drawn game: pixelation 1 and the
// ladder picked by storefront-details availability. Called without p.mu held
// because the details fetch may block.
func (g *GuessGame) buildRound(ctx context.Context, drawn steam.Game) *GuessRound {
	details := g.player.store.pipeline.ExtendedDetails(ctx, drawn.ID)
	round := &GuessRound{Game: drawn, Pixelation: pixelationMin}
	if details != nil {
		round.Hints = game.EnhancedHints(drawn, details)
		round.Enhanced = true
	} else {
		round.Hints = game.BasicHints(drawn)
	}
	return round
}

// scheduleAdvance arms the post-reveal timer for st. Caller holds p.mu.
func (g *GuessGame) scheduleAdvance(st *guessModeState) {
	st.cancelAdvance()
	st.epoch++
	epoch := st.epoch
	key := g.activeKey
	st.advance = time.AfterFunc(g.player.store.guessDelay, func() {
		g.advanceRound(key, epoch)
	})
}

// advanceRound draws the next game once the reveal delay elapses. Ignored
// when the epoch moved on or the mode is no longer active.
func (g *GuessGame) advanceRound(key string, epoch int) {
	p := g.player
	p.mu.Lock()
	st := g.modes[key]
	if st == nil || st.epoch != epoch || g.activeKey != key || st.phase != PhaseRevealing {
		p.mu.Unlock()
		return
	}
	engine := game.NewSingleEngine(st.pool)
	engine.SetUsed(st.used)
	drawn, err := engine.SelectNext()
	if err != nil {
		p.notify(Notice{Kind: "error", Title: "Failed to load games", Description: err.Error()})
		st.phase = PhaseLoading
		p.mu.Unlock()
		return
	}
	st.used = engine.Used()
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	round := g.buildRound(ctx, drawn)

	p.mu.Lock()
	defer p.mu.Unlock()
	if st.epoch != epoch || g.activeKey != key || st.phase != PhaseRevealing {
		return
	}
	st.round = round
	st.phase = PhaseReady
}

// cancelAdvance stops a pending advance timer, if any.
func (st *guessModeState) cancelAdvance() {
	if st.advance != nil {
		st.advance.Stop()
		st.advance = nil
	}
	st.epoch++
}
