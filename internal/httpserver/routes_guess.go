// apps/go-server/internal/httpserver/routes_guess.go
//
// HTTP routes for the Guess game ("Artfuscation").
// Endpoints under /guess:
//   - POST /guess/mode  → select mode (+genre), load pool and first round
//   - GET  /guess/state → current round/score snapshot + pending notices
//   - POST /guess/guess → submit a title guess
//   - POST /guess/skip  → abandon the round (score reset, immediate redraw)
//   - POST /guess/hint  → manually reveal the next hint

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/steamgauge/apps/go-server/internal/session"
	"github.com/robalobadob/steamgauge/apps/go-server/internal/steam"
)

// guessGuessReq is the POST /guess/guess payload.
type guessGuessReq struct {
	Guess string `json:"guess"`
}

// guessGuessRes reports correctness plus the refreshed state.
type guessGuessRes struct {
	Correct bool               `json:"correct"`
	State   session.GuessState `json:"state"`
}

// mountGuess registers all /guess routes.
func (s *Server) mountGuess(r chi.Router) {
	r.Route("/guess", func(r chi.Router) {
		r.Post("/mode", s.handleGuessMode)
		r.Get("/state", s.handleGuessState)
		r.Post("/guess", s.handleGuessGuess)
		r.Post("/skip", s.handleGuessSkip)
		r.Post("/hint", s.handleGuessHint)
	})
}

// handleGuessMode sets the mode and loads the pool + first round if needed.
func (s *Server) handleGuessMode(w http.ResponseWriter, r *http.Request) {
	var req modeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	p := s.sessions.Player(sessionID(r))
	if err := p.Guess.SetMode(r.Context(), steam.Mode(req.Mode), req.Genre); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if err := p.Guess.LoadInitialGames(r.Context()); err != nil {
		log.Warn().Err(err).Str("mode", req.Mode).Msg("guess pool load failed")
	}
	_ = json.NewEncoder(w).Encode(p.Guess.State())
}

// handleGuessState returns the current snapshot and drains notices.
func (s *Server) handleGuessState(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.Player(sessionID(r))
	_ = json.NewEncoder(w).Encode(p.Guess.State())
}

// handleGuessGuess evaluates a title guess.
func (s *Server) handleGuessGuess(w http.ResponseWriter, r *http.Request) {
	var req guessGuessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	p := s.sessions.Player(sessionID(r))
	correct, err := p.Guess.MakeGuess(req.Guess)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrNotReady) {
			status = http.StatusConflict
		}
		http.Error(w, `{"error":"`+err.Error()+`"}`, status)
		return
	}
	_ = json.NewEncoder(w).Encode(guessGuessRes{Correct: correct, State: p.Guess.State()})
}

// handleGuessSkip abandons the current round and draws the next one.
func (s *Server) handleGuessSkip(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.Player(sessionID(r))
	if err := p.Guess.SkipGame(r.Context()); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
		return
	}
	_ = json.NewEncoder(w).Encode(p.Guess.State())
}

// handleGuessHint reveals the next hint on demand.
func (s *Server) handleGuessHint(w http.ResponseWriter, r *http.Request) {
	p := s.sessions.Player(sessionID(r))
	p.Guess.RevealHint()
	_ = json.NewEncoder(w).Encode(p.Guess.State())
}
