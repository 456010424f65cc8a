// apps/go-server/internal/session/store.go
//
// Session container for the two games.
// Responsibilities:
//   - Hold one Player per anonymous session id (lazily created).
//   - Wire each player's Gauge and Guess state machines to the acquisition
//     pipeline and the score store.
//   - Collect per-player notices (toasts) for the UI to drain.
//
// The container is explicitly constructed and injected by main — never a
// package global — so tests can run isolated instances.

package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/steamgauge/apps/go-server/internal/steam"
)

const (
	defaultGaugeRevealDelay = 1500 * time.Millisecond
	defaultGuessRevealDelay = 2 * time.Second
)

// Notice is a non-blocking, user-visible notification.
type Notice struct {
	Kind        string `json:"kind"` // "error" | "info" | "highScore" | "gameOver" | "skip"
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ScoreStore persists {high score, current score} per (session, mode key).
// Implemented by the sqlite-backed scores package; writes are best-effort.
type ScoreStore interface {
	Load(ctx context.Context, sessionID, modeKey string) (high, current int, err error)
	Save(ctx context.Context, sessionID, modeKey string, high, current int) error
}

// Store maps anonymous session ids to players.
type Store struct {
	mu      sync.RWMutex
	players map[string]*Player

	pipeline *steam.Pipeline
	scores   ScoreStore

	gaugeDelay time.Duration
	guessDelay time.Duration
}

// Option customizes a Store.
type Option func(*Store)

// WithRevealDelays overrides the post-reveal suspend durations (tests).
func WithRevealDelays(gauge, guess time.Duration) Option {
	return func(s *Store) {
		s.gaugeDelay = gauge
		s.guessDelay = guess
	}
}

// New constructs a session Store over its injected collaborators.
// scores may be nil; score persistence is then skipped entirely.
func New(pipeline *steam.Pipeline, scores ScoreStore, opts ...Option) *Store {
	s := &Store{
		players:    make(map[string]*Player),
		pipeline:   pipeline,
		scores:     scores,
		gaugeDelay: defaultGaugeRevealDelay,
		guessDelay: defaultGuessRevealDelay,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Player returns the player for a session id, creating it on first access.
func (s *Store) Player(id string) *Player {
	s.mu.RLock()
	p := s.players[id]
	s.mu.RUnlock()
	if p != nil {
		return p
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p = s.players[id]; p == nil {
		p = newPlayer(id, s)
		s.players[id] = p
	}
	return p
}

// Player bundles one browser session's state: both game machines plus the
// pending notice queue. All mutation goes through the player mutex; the two
// games interleave like the single event loop they replace.
type Player struct {
	mu      sync.Mutex
	id      string
	store   *Store
	notices []Notice

	Gauge *GaugeGame
	Guess *GuessGame
}

func newPlayer(id string, s *Store) *Player {
	p := &Player{id: id, store: s}
	p.Gauge = &GaugeGame{player: p, modes: make(map[string]*gaugeModeState)}
	p.Guess = &GuessGame{player: p, modes: make(map[string]*guessModeState)}
	return p
}

// notify appends a notice. Caller holds p.mu.
func (p *Player) notify(n Notice) {
	p.notices = append(p.notices, n)
}

// DrainNotices returns and clears the pending notices.
func (p *Player) DrainNotices() []Notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.notices
	p.notices = nil
	return out
}

// loadScores rehydrates persisted scores for a mode key. Caller holds p.mu.
func (p *Player) loadScores(ctx context.Context, modeKey string) (high, current int) {
	if p.store.scores == nil {
		return 0, 0
	}
	high, current, err := p.store.scores.Load(ctx, p.id, modeKey)
	if err != nil {
		return 0, 0
	}
	return high, current
}

// saveScores persists scores for a mode key, best effort. Caller holds p.mu.
func (p *Player) saveScores(modeKey string, high, current int) {
	if p.store.scores == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.store.scores.Save(ctx, p.id, modeKey, high, current); err != nil {
		log.Warn().Err(err).Str("session", p.id).Str("modeKey", modeKey).Msg("persist scores")
	}
}
