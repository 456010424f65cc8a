// apps/go-server/internal/httpserver/routes_gauge.go
//
// HTTP routes for the Gauge game ("pick the higher-rated game").
// Endpoints under /gauge:
//   - POST /gauge/mode  → select mode (+genre), load pool and first round
//   - GET  /gauge/state → current round/score snapshot + pending notices
//   - POST /gauge/guess → submit a left/right guess

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/steamgauge/apps/go-server/internal/game"
	"github.com/robalobadob/steamgauge/apps/go-server/internal/session"
	"github.com/robalobadob/steamgauge/apps/go-server/internal/steam"
)

// modeReq selects a game mode for either game.
type modeReq struct {
	Mode  string `json:"mode"`            // "top100in2weeks" | "top100forever" | "genre"
	Genre string `json:"genre,omitempty"` // required when mode == "genre"
}

// gaugeGuessReq is the POST /gauge/guess payload.
type gaugeGuessReq struct {
	Position string `json:"position"` // "left" | "right"
}

// gaugeGuessRes reports correctness plus the refreshed state.
type gaugeGuessRes struct {
	Correct bool               `json:"correct"`
	State   session.GaugeState `json:"state"`
}

// mountGauge registers all /gauge routes.
func (s *Server) mountGauge(r chi.Router) {
	r.Route("/gauge", func(r chi.Router) {
		r.Post("/mode", s.handleGaugeMode)
		r.Get("/state", s.handleGaugeState)
		r.Post("/guess", s.handleGaugeGuess)
	})
}

// handleGaugeMode sets the mode and loads the pool + first round if needed.
// Setting the already-active mode is a no-op that just returns state.
func (s *Server) handleGaugeMode(w http.ResponseWriter, r *http.Request) {
	var req modeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	p := s.sessions.Player(sessionID(r))
	if err := p.Gauge.SetMode(r.Context(), steam.Mode(req.Mode), req.Genre); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if err := p.Gauge.LoadInitialGames(r.Context()); err != nil {
		// Notices already queued; state stays retryable.
		log.Warn().Err(err).Str("mode", req.Mode).Msg("gauge pool load failed")
	}
	_ = json.NewEncoder(w).Encode(p.Gauge.State())
}

// handleGaugeState returns the current snapshot and drains notices.
func (s *Server) handleGaugeState(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.Player(sessionID(r))
	_ = json.NewEncoder(w).Encode(p.Gauge.State())
}

// handleGaugeGuess evaluates a position guess.
func (s *Server) handleGaugeGuess(w http.ResponseWriter, r *http.Request) {
	var req gaugeGuessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	p := s.sessions.Player(sessionID(r))
	correct, err := p.Gauge.MakeGuess(game.Position(req.Position))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrNotReady) {
			status = http.StatusConflict
		}
		http.Error(w, `{"error":"`+err.Error()+`"}`, status)
		return
	}
	_ = json.NewEncoder(w).Encode(gaugeGuessRes{Correct: correct, State: p.Gauge.State()})
}
