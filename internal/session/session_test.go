package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/steamgauge/apps/go-server/internal/steam"
)

// testGames is a fixed pool with distinct ids and distinct review scores so
// Gauge rounds never tie.
var testGames = []struct {
	id       int
	name     string
	positive int
}{
	{620, "Portal 2", 90_000},
	{570, "Dota 2", 40_000},
	{105600, "Terraria", 60_000},
	{413150, "Stardew Valley", 80_000},
	{1145360, "Hades", 70_000},
	{504230, "Celeste", 50_000},
}

// newUpstream serves a SteamSpy-shaped list for pool requests and, when
// withDetails is set, a successful storefront appdetails envelope.
func newUpstream(t *testing.T, withDetails bool) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.URL.Query().Get("appids"); id != "" {
			if !withDetails {
				w.Write([]byte(`{}`))
				return
			}
			w.Write([]byte(`{"` + id + `":{"success":true,"data":{"release_date":{"date":"18 Apr, 2011"},"genres":[{"id":"2","description":"Indie"}]}}}`))
			return
		}
		records := make(map[string]steam.SpyRecord, len(testGames))
		for _, g := range testGames {
			records[strconv.Itoa(g.id)] = steam.SpyRecord{
				AppID:    g.id,
				Name:     g.name,
				Positive: g.positive,
				Negative: 10_000,
			}
		}
		json.NewEncoder(w).Encode(records)
	}))
	t.Cleanup(ts.Close)
	return ts
}

// newTestStore wires a session store against a fake upstream with short
// reveal delays so tests can observe the post-reveal advance.
func newTestStore(t *testing.T, scores ScoreStore, gaugeDelay, guessDelay time.Duration) *Store {
	t.Helper()
	return newTestStoreWithDetails(t, scores, gaugeDelay, guessDelay, false)
}

func newTestStoreWithDetails(t *testing.T, scores ScoreStore, gaugeDelay, guessDelay time.Duration, withDetails bool) *Store {
	t.Helper()
	ts := newUpstream(t, withDetails)
	client := steam.NewClient(steam.WithBaseURLs(ts.URL, ts.URL), steam.WithRetry(1, 0))
	pipeline := steam.NewPipeline(client, steam.NewCache(time.Hour))
	return New(pipeline, scores, WithRevealDelays(gaugeDelay, guessDelay))
}

// memScores is an in-memory ScoreStore for persistence tests.
type memScores struct {
	mu   sync.Mutex
	rows map[string][2]int // "sessionID|modeKey" -> {high, current}
}

func newMemScores() *memScores {
	return &memScores{rows: make(map[string][2]int)}
}

func (m *memScores) Load(_ context.Context, sessionID, modeKey string) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.rows[sessionID+"|"+modeKey]
	return row[0], row[1], nil
}

func (m *memScores) Save(_ context.Context, sessionID, modeKey string, high, current int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[sessionID+"|"+modeKey] = [2]int{high, current}
	return nil
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

// currentGuessAnswer peeks at the hidden answer of the player's active Guess
// round.
func currentGuessAnswer(p *Player) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.Guess.modes[p.Guess.activeKey]
	if st == nil || st.round == nil {
		return ""
	}
	return st.round.Game.Name
}

// startGauge puts a player's Gauge game into PhaseReady on the top-forever
// pool.
func startGauge(t *testing.T, p *Player) {
	t.Helper()
	ctx := context.Background()
	if err := p.Gauge.SetMode(ctx, steam.ModeTopForever, ""); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	if err := p.Gauge.LoadInitialGames(ctx); err != nil {
		t.Fatalf("load initial games: %v", err)
	}
}

// startGuess puts a player's Guess game into PhaseReady on the top-forever
// pool.
func startGuess(t *testing.T, p *Player) {
	t.Helper()
	ctx := context.Background()
	if err := p.Guess.SetMode(ctx, steam.ModeTopForever, ""); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	if err := p.Guess.LoadInitialGames(ctx); err != nil {
		t.Fatalf("load initial games: %v", err)
	}
}
