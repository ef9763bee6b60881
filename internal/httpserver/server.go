// internal/httpserver/server.go
//
// HTTP server wiring for the Wordle engine.
// Responsibilities:
//   - Router + middleware (request IDs, access log, panic recovery,
//     timeouts, JSON, CORS).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints under /api (optional auth): see routes_game.go.
//   - Daily Challenge endpoints under /daily: see routes_daily.go.
//   - Account endpoints: see routes_auth.go.
//   - Mapping engine error kinds to HTTP status codes.
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so cookies work).
//   - Optional auth decorates requests with the account identity when a
//     valid token is present; guests get a stable anonymous cookie id.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/go-engine/internal/auth"
	"github.com/robalobadob/wordle/apps/go-engine/internal/daily"
	"github.com/robalobadob/wordle/apps/go-engine/internal/engine"
	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
	"github.com/robalobadob/wordle/apps/go-engine/internal/history"
)

// Options configures a Server. Nil collaborators disable their routes.
type Options struct {
	ClientOrigin string
	CookieName   string
	Production   bool

	Auth    *auth.Service
	History *history.Store
	Daily   *daily.Store
}

// Server bundles router and engine.
type Server struct {
	r    *chi.Mux
	eng  *engine.Engine
	opts Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(eng *engine.Engine, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.CookieName == "" {
		opts.CookieName = "wordle_token"
	}
	s := &Server{r: chi.NewRouter(), eng: eng, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))     // request-scoped logger
	s.r.Use(accessLog)                       // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))         // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "wordle-engine",
			"endpoints": []string{
				"/health", "POST /api/new_game", "POST /api/make_guess", "POST /api/make_hard_guess",
				"/api/get_state", "/api/get_guesses", "/api/get_remaining_guesses",
				"/api/get_hint", "/api/get_answer", "POST /api/forfeit",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		a, g := s.eng.WordStats()
		writeJSON(w, http.StatusOK, map[string]int{"answers": a, "allowed": g})
	})

	// Game endpoints — OPTIONAL AUTH (guests can play)
	s.r.Route("/api", func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountGame(r)
	})

	if opts.Daily != nil {
		s.r.Group(func(r chi.Router) {
			r.Use(s.withOptionalAuth())
			s.mountDaily(r)
		})
	}
	if opts.Auth != nil {
		s.mountAuth(s.r)
	}

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Router exposes the internal router (also used by tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("req_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
})

// ------------------------------ responses ----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorRes is the body of every error response.
type errorRes struct {
	Error    game.Kind `json:"error"`
	Message  string    `json:"message"`
	Letter   string    `json:"letter,omitempty"`
	Position *int      `json:"position,omitempty"` // 0-based; absent for presence requirements
}

// statusFor maps an engine error kind to an HTTP status.
func statusFor(k game.Kind) int {
	switch k {
	case game.KindNotFound:
		return http.StatusNotFound
	case game.KindInvalidWord:
		return http.StatusBadRequest
	case game.KindHardModeViolation:
		return http.StatusUnprocessableEntity
	case game.KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders an engine error. Internal errors are logged and their
// details withheld.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := game.KindOf(err)
	res := errorRes{Error: kind, Message: err.Error()}

	var ge *game.Error
	if errors.As(err, &ge) && ge.Kind == game.KindHardModeViolation {
		res.Letter = ge.Letter
		if ge.Position >= 0 {
			p := ge.Position
			res.Position = &p
		}
	}
	if kind == game.KindInternal {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		res.Message = "internal error"
	}
	writeJSON(w, statusFor(kind), res)
}

func badRequest(w http.ResponseWriter, code string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": code})
}
