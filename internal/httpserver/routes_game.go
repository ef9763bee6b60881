// internal/httpserver/routes_game.go
//
// Session endpoints under /api. Every call names its session explicitly:
// POST bodies carry "session_id", GETs take ?session_id=. An unknown id is
// a 404; sessions are never created implicitly.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordle/apps/go-engine/internal/engine"
	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
)

func (s *Server) mountGame(r chi.Router) {
	r.Post("/new_game", s.handleNewGame)
	r.Post("/make_guess", s.handleGuess(false))
	r.Post("/make_hard_guess", s.handleGuess(true))
	r.Post("/forfeit", s.handleForfeit)

	r.Get("/get_state", s.handleState)
	r.Get("/get_guesses", s.handleGuesses)
	r.Get("/get_remaining_guesses", s.handleRemaining)
	r.Get("/get_hint", s.handleHint)
	r.Get("/get_answer", s.handleAnswer)
}

type newGameReq struct {
	HardMode bool `json:"hard_mode"`
	Daily    bool `json:"daily"`
}

type newGameRes struct {
	Message   string      `json:"message"`
	SessionID string      `json:"session_id"`
	State     game.Status `json:"state"`
	DailyDate string      `json:"daily_date,omitempty"`
}

// handleNewGame starts a session owned by the caller. An empty body starts
// a normal random game.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "bad_json")
		return
	}
	res, err := s.eng.NewGame(r.Context(), engine.NewGameOptions{
		HardMode: req.HardMode,
		Daily:    req.Daily,
		OwnerID:  s.ownerID(w, r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameRes{
		Message:   "New game has started",
		SessionID: res.SessionID,
		State:     res.Status,
		DailyDate: res.DailyDate,
	})
}

type guessReq struct {
	SessionID string `json:"session_id"`
	Word      string `json:"word"`
}

type guessRes struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	engine.GuessResult
}

func (s *Server) handleGuess(hard bool) http.HandlerFunc {
	prefix := "Guess: "
	if hard {
		prefix = "Hard guess: "
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req guessReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad_json")
			return
		}
		if req.SessionID == "" {
			badRequest(w, "missing_session_id")
			return
		}
		res, err := s.eng.SubmitGuess(r.Context(), req.SessionID, req.Word, hard)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, guessRes{
			Message:     prefix + res.Word + " has been made",
			SessionID:   req.SessionID,
			GuessResult: res,
		})
	}
}

type sessionReq struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleForfeit(w http.ResponseWriter, r *http.Request) {
	var req sessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		badRequest(w, "missing_session_id")
		return
	}
	answer, err := s.eng.Forfeit(r.Context(), req.SessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": req.SessionID,
		"state":      game.StatusLost,
		"answer":     answer,
	})
}

// sessionParam reads ?session_id= or writes a 400.
func sessionParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		badRequest(w, "missing_session_id")
		return "", false
	}
	return id, true
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionParam(w, r)
	if !ok {
		return
	}
	st, err := s.eng.State(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "state": st})
}

func (s *Server) handleGuesses(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionParam(w, r)
	if !ok {
		return
	}
	gs, err := s.eng.Guesses(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if gs == nil {
		gs = []game.Guess{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "guesses": gs})
}

func (s *Server) handleRemaining(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionParam(w, r)
	if !ok {
		return
	}
	n, err := s.eng.Remaining(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "remaining_guesses": n})
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionParam(w, r)
	if !ok {
		return
	}
	h, err := s.eng.Hint(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "hint": h})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionParam(w, r)
	if !ok {
		return
	}
	a, err := s.eng.Answer(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "answer": a})
}
