// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
//   - POST /daily/new         → start today's daily session
//   - POST /daily/guess       → submit a guess to a daily session
//   - GET  /daily/leaderboard → top results for today (or ?date=YYYY-MM-DD)
//
// Daily sessions are ordinary engine sessions whose answer is derived from
// the date. The engine claims the player's slot for the day when the
// session starts and settles it when the session ends, so each player gets
// one attempt per day whatever its outcome.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordle/apps/go-engine/internal/daily"
	"github.com/robalobadob/wordle/apps/go-engine/internal/engine"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Post("/guess", s.handleDailyGuess)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	SessionID string `json:"session_id"`
	Date      string `json:"date"`
	Played    bool   `json:"played"`
	Resumed   bool   `json:"resumed,omitempty"`
}

// handleDailyNew starts today's session, returns the caller's live one, or
// reports played=true once today's session has been won, lost or forfeited.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	uid := s.ownerID(w, r)
	date := daily.DateKey(time.Now())

	played, err := s.opts.Daily.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	res, err := s.eng.NewGame(r.Context(), engine.NewGameOptions{Daily: true, OwnerID: uid})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dailyNewRes{SessionID: res.SessionID, Date: res.DailyDate, Resumed: res.Resumed})
}

// handleDailyGuess applies a normal guess. It is equivalent to
// /api/make_guess and kept for daily clients.
func (s *Server) handleDailyGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		badRequest(w, "bad_request")
		return
	}
	res, err := s.eng.SubmitGuess(r.Context(), req.SessionID, req.Word, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	rows, err := s.opts.Daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
