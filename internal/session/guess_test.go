package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robalobadob/steamgauge/apps/go-server/internal/steam"
)

// newBlockingDetailsStore wires a store whose storefront-details endpoint can
// be held open on demand, so tests can interrupt a round build mid-flight.
func newBlockingDetailsStore(t *testing.T) (*Store, *atomic.Bool, chan struct{}) {
	t.Helper()
	var block atomic.Bool
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("appids") != "" {
			if block.Load() {
				<-release
			}
			w.Write([]byte(`{}`))
			return
		}
		records := make(map[string]steam.SpyRecord, len(testGames))
		for _, g := range testGames {
			records[strconv.Itoa(g.id)] = steam.SpyRecord{AppID: g.id, Name: g.name, Positive: g.positive, Negative: 10_000}
		}
		json.NewEncoder(w).Encode(records)
	}))
	t.Cleanup(ts.Close)
	client := steam.NewClient(steam.WithBaseURLs(ts.URL, ts.URL), steam.WithRetry(1, 0))
	s := New(steam.NewPipeline(client, steam.NewCache(time.Hour)), nil,
		WithRevealDelays(10*time.Millisecond, 10*time.Millisecond))
	return s, &block, release
}

func TestGuessModeSwitchDuringInitialLoadStaysRecoverable(t *testing.T) {
	s, block, release := newBlockingDetailsStore(t)
	p := s.Player("p1")
	ctx := context.Background()
	if err := p.Guess.SetMode(ctx, steam.ModeTopForever, ""); err != nil {
		t.Fatalf("set mode: %v", err)
	}

	block.Store(true)
	done := make(chan error, 1)
	go func() { done <- p.Guess.LoadInitialGames(ctx) }()
	waitFor(t, func() bool { return p.Guess.State().PoolSize > 0 }, "pool stored by the in-flight load")

	// Switch away while the round build is blocked on the details fetch,
	// then come back.
	if err := p.Guess.SetMode(ctx, steam.ModeTopRecent, ""); err != nil {
		t.Fatalf("switch away: %v", err)
	}
	if err := p.Guess.SetMode(ctx, steam.ModeTopForever, ""); err != nil {
		t.Fatalf("switch back: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("interrupted load: %v", err)
	}

	state := p.Guess.State()
	if state.Round != nil {
		t.Fatal("interrupted build must not publish its round")
	}
	if state.Phase != PhaseLoading {
		t.Fatalf("expected retryable PhaseLoading, got %s", state.Phase)
	}

	// The next load must reach a playable round from the stored pool.
	block.Store(false)
	if err := p.Guess.LoadInitialGames(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	state = p.Guess.State()
	if state.Phase != PhaseReady || state.Round == nil {
		t.Fatalf("mode stuck after interrupted load: phase=%s", state.Phase)
	}

	p.mu.Lock()
	used := len(p.Guess.modes["top100forever"].used)
	p.mu.Unlock()
	if used != 1 {
		t.Fatalf("interrupted draw must return to the rotation set, got %d used", used)
	}
}

func TestGuessSkipInterruptedByModeSwitch(t *testing.T) {
	s, block, release := newBlockingDetailsStore(t)
	p := s.Player("p1")
	startGuess(t, p)

	block.Store(true)
	done := make(chan error, 1)
	go func() { done <- p.Guess.SkipGame(context.Background()) }()
	waitFor(t, func() bool { return p.Guess.State().Phase == PhaseLoading }, "skip build in flight")

	ctx := context.Background()
	if err := p.Guess.SetMode(ctx, steam.ModeTopRecent, ""); err != nil {
		t.Fatalf("switch away: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("interrupted skip: %v", err)
	}

	// Back on the skipped mode: the round the skip notice named is gone and
	// a fresh one can be drawn.
	if err := p.Guess.SetMode(ctx, steam.ModeTopForever, ""); err != nil {
		t.Fatalf("switch back: %v", err)
	}
	if state := p.Guess.State(); state.Round != nil {
		t.Fatal("skipped round must not linger after the notice named it")
	}
	block.Store(false)
	if err := p.Guess.LoadInitialGames(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	state := p.Guess.State()
	if state.Phase != PhaseReady || state.Round == nil {
		t.Fatalf("mode stuck after interrupted skip: phase=%s", state.Phase)
	}

	p.mu.Lock()
	used := len(p.Guess.modes["top100forever"].used)
	p.mu.Unlock()
	if used != 2 {
		t.Fatalf("expected the first round plus the redraw in the rotation set, got %d", used)
	}
}

func TestGuessCorrectFlow(t *testing.T) {
	s := newTestStore(t, nil, 10*time.Millisecond, 10*time.Millisecond)
	p := s.Player("p1")
	startGuess(t, p)

	state := p.Guess.State()
	if state.Phase != PhaseReady {
		t.Fatalf("expected PhaseReady after load, got %s", state.Phase)
	}
	if state.Round == nil {
		t.Fatal("expected an initial round")
	}
	if state.Round.Pixelation != 1 {
		t.Fatalf("fresh round must start at pixelation 1, got %d", state.Round.Pixelation)
	}
	if state.Round.Name != "" {
		t.Fatal("answer must be withheld until the round is revealed")
	}
	if state.Round.Enhanced {
		t.Fatal("expected basic ladder when storefront details are unavailable")
	}

	answer := currentGuessAnswer(p)
	correct, err := p.Guess.MakeGuess(strings.ToUpper(answer))
	if err != nil {
		t.Fatalf("guess failed: %v", err)
	}
	if !correct {
		t.Fatalf("exact title %q (case-folded) must match", answer)
	}

	state = p.Guess.State()
	if state.Phase != PhaseRevealing {
		t.Fatalf("expected PhaseRevealing after win, got %s", state.Phase)
	}
	if state.Round.Name != answer {
		t.Fatalf("revealed round must carry the answer, got %q", state.Round.Name)
	}
	if state.Score != 1 || state.HighScore != 1 {
		t.Fatalf("expected score 1/high 1, got %d/%d", state.Score, state.HighScore)
	}
	if !hasNotice(state.Notices, "highScore") {
		t.Fatalf("expected a highScore notice, got %+v", state.Notices)
	}

	waitFor(t, func() bool { return p.Guess.State().Phase == PhaseReady }, "next round after reveal delay")
	next := p.Guess.State()
	if next.Round.Pixelation != 1 || next.Round.Revealed {
		t.Fatal("advance must produce a fresh fully-obscured round")
	}
	if next.Score != 1 {
		t.Fatalf("score must survive the advance, got %d", next.Score)
	}
}

func TestGuessWrongAdvancesPixelationAndOneHint(t *testing.T) {
	s := newTestStore(t, nil, time.Hour, time.Hour)
	p := s.Player("p1")
	startGuess(t, p)

	before := p.Guess.State()
	baseRevealed := countRevealed(before)

	correct, err := p.Guess.MakeGuess("definitely not a real title")
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if correct {
		t.Fatal("nonsense guess must not match")
	}

	after := p.Guess.State()
	if after.Round.Pixelation != 2 {
		t.Fatalf("wrong guess must advance pixelation to 2, got %d", after.Round.Pixelation)
	}
	if got := countRevealed(after); got != baseRevealed+1 {
		t.Fatalf("wrong guess must reveal exactly one hint: %d → %d", baseRevealed, got)
	}
	if after.Round.Revealed {
		t.Fatal("round must stay hidden on an intermediate wrong guess")
	}
	if after.Phase != PhaseReady {
		t.Fatalf("intermediate wrong guess must keep PhaseReady, got %s", after.Phase)
	}

	if _, err := p.Guess.MakeGuess("still wrong"); err != nil {
		t.Fatalf("guess: %v", err)
	}
	if got := p.Guess.State().Round.Pixelation; got != 3 {
		t.Fatalf("second wrong guess must advance pixelation to 3, got %d", got)
	}
}

func TestGuessTerminalLossAtMaxPixelation(t *testing.T) {
	s := newTestStore(t, nil, time.Hour, time.Hour)
	p := s.Player("p1")
	startGuess(t, p)
	answer := currentGuessAnswer(p)

	// Pixelation walks 1→6 over five wrong guesses; the fifth is terminal.
	for i := 0; i < 5; i++ {
		if _, err := p.Guess.MakeGuess("wrong"); err != nil {
			t.Fatalf("wrong guess %d: %v", i+1, err)
		}
	}

	state := p.Guess.State()
	if state.Round.Pixelation != 6 {
		t.Fatalf("expected terminal pixelation 6, got %d", state.Round.Pixelation)
	}
	if state.Phase != PhaseRevealing {
		t.Fatalf("terminal loss must reveal the round, got %s", state.Phase)
	}
	if state.Round.Name != answer {
		t.Fatalf("terminal reveal must show the answer, got %q", state.Round.Name)
	}
	if state.Score != 0 {
		t.Fatalf("terminal loss must reset the score, got %d", state.Score)
	}
	var gameOver *Notice
	for i := range state.Notices {
		if state.Notices[i].Kind == "gameOver" {
			gameOver = &state.Notices[i]
		}
	}
	if gameOver == nil {
		t.Fatalf("expected a gameOver notice, got %+v", state.Notices)
	}
	if !strings.Contains(gameOver.Description, answer) {
		t.Fatalf("gameOver notice must name the game, got %q", gameOver.Description)
	}

	// Further guesses are rejected until the advance.
	if _, err := p.Guess.MakeGuess(answer); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady after terminal loss, got %v", err)
	}
}

func TestGuessTerminalLossKeepsHighScore(t *testing.T) {
	s := newTestStore(t, nil, 10*time.Millisecond, 10*time.Millisecond)
	p := s.Player("p1")
	startGuess(t, p)

	if _, err := p.Guess.MakeGuess(currentGuessAnswer(p)); err != nil {
		t.Fatalf("winning guess: %v", err)
	}
	waitFor(t, func() bool { return p.Guess.State().Phase == PhaseReady }, "round after win")

	for i := 0; i < 5; i++ {
		if _, err := p.Guess.MakeGuess("wrong"); err != nil {
			t.Fatalf("wrong guess %d: %v", i+1, err)
		}
	}
	state := p.Guess.State()
	if state.Score != 0 || state.HighScore != 1 {
		t.Fatalf("expected score 0 / high 1 after loss, got %d/%d", state.Score, state.HighScore)
	}
}

func TestGuessSkipIsSynchronous(t *testing.T) {
	s := newTestStore(t, nil, time.Hour, time.Hour)
	p := s.Player("p1")
	startGuess(t, p)
	skipped := currentGuessAnswer(p)

	if err := p.Guess.SkipGame(context.Background()); err != nil {
		t.Fatalf("skip: %v", err)
	}

	// No reveal delay: the fresh round is available immediately.
	state := p.Guess.State()
	if state.Phase != PhaseReady {
		t.Fatalf("skip must land directly in PhaseReady, got %s", state.Phase)
	}
	if state.Round.Revealed || state.Round.Pixelation != 1 {
		t.Fatal("skip must produce a fresh fully-obscured round")
	}
	if state.Score != 0 {
		t.Fatalf("skip must reset the score, got %d", state.Score)
	}
	if !hasNotice(state.Notices, "skip") {
		t.Fatalf("expected a skip notice, got %+v", state.Notices)
	}
	if got := currentGuessAnswer(p); got == skipped {
		t.Fatalf("skip must draw a different game while unused games remain, got %q again", got)
	}
}

func TestGuessRevealHintOnDemand(t *testing.T) {
	s := newTestStore(t, nil, time.Hour, time.Hour)
	p := s.Player("p1")
	startGuess(t, p)

	base := countRevealed(p.Guess.State())
	p.Guess.RevealHint()
	state := p.Guess.State()
	if got := countRevealed(state); got != base+1 {
		t.Fatalf("expected one extra revealed hint, got %d → %d", base, got)
	}
	if state.Round.Pixelation != 1 {
		t.Fatalf("on-demand hint must not change pixelation, got %d", state.Round.Pixelation)
	}

	// Exhausting the ladder is safe.
	for i := 0; i < 10; i++ {
		p.Guess.RevealHint()
	}
	state = p.Guess.State()
	if got := countRevealed(state); got != len(state.Round.Hints) {
		t.Fatalf("expected the whole ladder revealed, got %d of %d", got, len(state.Round.Hints))
	}
}

func TestGuessEnhancedHintsWhenDetailsResolve(t *testing.T) {
	s := newTestStoreWithDetails(t, nil, time.Hour, time.Hour, true)
	p := s.Player("p1")
	startGuess(t, p)

	state := p.Guess.State()
	if !state.Round.Enhanced {
		t.Fatal("expected the enhanced ladder when storefront details resolve")
	}
	kinds := make(map[string]bool, len(state.Round.Hints))
	for _, h := range state.Round.Hints {
		kinds[string(h.Kind)] = true
	}
	if !kinds["releaseDate"] || !kinds["genre"] {
		t.Fatalf("enhanced ladder missing storefront hints: %+v", state.Round.Hints)
	}
	if kinds["playerCount"] || kinds["secondLetter"] {
		t.Fatalf("enhanced ladder must not mix in basic-only hints: %+v", state.Round.Hints)
	}
}

// countRevealed counts revealed hints on a state's round.
func countRevealed(s GuessState) int {
	n := 0
	for _, h := range s.Round.Hints {
		if h.Revealed {
			n++
		}
	}
	return n
}

// hasNotice reports whether notices contains a notice of the given kind.
func hasNotice(notices []Notice, kind string) bool {
	for _, n := range notices {
		if n.Kind == kind {
			return true
		}
	}
	return false
}
