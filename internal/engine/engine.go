// internal/engine/engine.go
//
// Façade over the game-logic pieces. Every operation is keyed by an
// opaque session id; there is no process-wide "current game".
//
// Operations:
//   - NewGame:      create a session (random, fixed or daily answer).
//   - SubmitGuess:  normal or hard-mode guess.
//   - State, Guesses, Remaining: read-only views.
//   - Hint:         disclose one letter (stable between guesses).
//   - Answer:       reveal the answer of a finished session.
//   - Forfeit:      end a playing session as LOST and reveal the answer.
//
// A daily session claims its owner's slot for the day before it is handed
// out; a second request for the same day resumes the live session or is
// refused once that session has ended. Other side effects (history rows,
// settling the daily slot) are best effort: failures are logged and never
// fail the operation.

package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/go-engine/internal/daily"
	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
	"github.com/robalobadob/wordle/apps/go-engine/internal/store"
	"github.com/robalobadob/wordle/apps/go-engine/internal/words"
)

// Dictionary is the word source the engine consumes.
type Dictionary interface {
	IsValid(w string) bool
	RandomAnswer() (string, error)
	AnswerAt(i int) string
	Stats() (answersCount int, allowedCount int)
}

// Recorder receives session lifecycle events.
type Recorder interface {
	GameStarted(ctx context.Context, g *game.Game) error
	GameFinished(ctx context.Context, g *game.Game) error
}

// DailyResults holds one slot per owner and day. Begin claims it when a
// session starts; Finish settles it when that session ends.
type DailyResults interface {
	Begin(ctx context.Context, userID, date string, wordIndex int, sessionID string) (daily.Entry, error)
	Finish(ctx context.Context, r daily.Result) error
}

// Engine implements the session operations.
type Engine struct {
	dict       Dictionary
	store      store.Store
	maxGuesses int
	history    Recorder
	daily      DailyResults
	dailySalt  string
	now        func() time.Time
	newID      func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxGuesses sets the guess budget of new sessions.
func WithMaxGuesses(n int) Option { return func(e *Engine) { e.maxGuesses = n } }

// WithHistory records session start/finish.
func WithHistory(r Recorder) Option { return func(e *Engine) { e.history = r } }

// WithDaily enables daily sessions.
func WithDaily(results DailyResults, salt string) Option {
	return func(e *Engine) { e.daily, e.dailySalt = results, salt }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// New constructs an Engine.
func New(dict Dictionary, st store.Store, opts ...Option) *Engine {
	e := &Engine{
		dict:       dict,
		store:      st,
		maxGuesses: game.DefaultMaxGuesses,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// NewGameOptions selects how a session is created.
type NewGameOptions struct {
	HardMode bool   // validate every guess in hard mode
	Daily    bool   // use the answer of the day; requires OwnerID
	OwnerID  string // account or anonymous id, optional unless Daily
	Answer   string // fixed answer, for tests and tooling
}

// NewGameResult is returned by NewGame.
type NewGameResult struct {
	SessionID string      `json:"session_id"`
	Status    game.Status `json:"state"`
	DailyDate string      `json:"daily_date,omitempty"`
	Resumed   bool        `json:"resumed,omitempty"` // an existing daily session was returned
}

// GuessResult is returned by SubmitGuess.
type GuessResult struct {
	Word      string      `json:"word"`
	Clues     []game.Clue `json:"clues"`
	Status    game.Status `json:"state"`
	Remaining int         `json:"remaining_guesses"`
}

// NewGame creates and registers a session.
func (e *Engine) NewGame(ctx context.Context, opts NewGameOptions) (NewGameResult, error) {
	now := e.now()
	var (
		answer   string
		date     string
		dailyIdx int
	)

	switch {
	case opts.Answer != "":
		answer = words.Normalize(opts.Answer)
		if !words.IsWellFormed(answer) {
			return NewGameResult{}, game.Errorf(game.KindInvalidWord, "answer must be %d letters a-z", words.Length)
		}

	case opts.Daily:
		if e.daily == nil {
			return NewGameResult{}, game.Errorf(game.KindInvalidState, "daily challenge is not enabled")
		}
		if opts.OwnerID == "" {
			return NewGameResult{}, game.Errorf(game.KindInvalidState, "daily challenge requires a player id")
		}
		date = daily.DateKey(now)
		n, _ := e.dict.Stats()
		dailyIdx = daily.WordIndex(now, e.dailySalt, n)
		answer = e.dict.AnswerAt(dailyIdx)

	default:
		var err error
		if answer, err = e.dict.RandomAnswer(); err != nil {
			return NewGameResult{}, internalErr("pick answer", err)
		}
	}

	var g *game.Game
	for attempt := 0; ; attempt++ {
		g = game.New(e.newID(), answer, e.maxGuesses, now)
		g.HardMode = opts.HardMode
		g.OwnerID = opts.OwnerID
		g.DailyDate = date
		g.DailyIndex = dailyIdx

		err := e.store.Create(ctx, g)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrExists) || attempt == 2 {
			return NewGameResult{}, internalErr("create session", err)
		}
	}

	if opts.Daily {
		if res, done, err := e.claimDaily(ctx, g); done {
			return res, err
		}
	}

	log.Debug().Str("session", g.ID).Bool("hard", g.HardMode).Str("daily", date).Msg("session created")
	if e.history != nil {
		if err := e.history.GameStarted(ctx, g); err != nil {
			log.Warn().Err(err).Str("session", g.ID).Msg("record game start")
		}
	}
	return NewGameResult{SessionID: g.ID, Status: g.Status, DailyDate: date}, nil
}

// claimDaily takes the owner's slot for the day with the freshly created g.
// When the slot is already held, g is dropped and done is true: a live
// session is returned for resumption, a settled or vanished one is refused.
func (e *Engine) claimDaily(ctx context.Context, g *game.Game) (res NewGameResult, done bool, err error) {
	entry, err := e.daily.Begin(ctx, g.OwnerID, g.DailyDate, g.DailyIndex, g.ID)
	if err != nil {
		e.drop(ctx, g.ID)
		return NewGameResult{}, true, internalErr("daily claim", err)
	}
	if entry.SessionID == g.ID {
		return NewGameResult{}, false, nil
	}
	e.drop(ctx, g.ID)

	if entry.Outcome != daily.OutcomePlaying {
		return NewGameResult{}, true, game.Errorf(game.KindInvalidState, "daily challenge for %s already played", g.DailyDate)
	}
	prev, err := e.store.Get(ctx, entry.SessionID)
	if err != nil {
		if errors.Is(err, game.ErrNotFound) {
			return NewGameResult{}, true, game.Errorf(game.KindInvalidState, "daily challenge for %s already started", g.DailyDate)
		}
		return NewGameResult{}, true, err
	}
	if prev.Finished() {
		return NewGameResult{}, true, game.Errorf(game.KindInvalidState, "daily challenge for %s already played", g.DailyDate)
	}
	return NewGameResult{SessionID: prev.ID, Status: prev.Status, DailyDate: prev.DailyDate, Resumed: true}, true, nil
}

func (e *Engine) drop(ctx context.Context, id string) {
	if err := e.store.Delete(ctx, id); err != nil && !errors.Is(err, game.ErrNotFound) {
		log.Warn().Err(err).Str("session", id).Msg("drop unclaimed daily session")
	}
}

// SubmitGuess validates and applies a guess. Rejected guesses leave the
// session unchanged.
func (e *Engine) SubmitGuess(ctx context.Context, id, word string, hard bool) (GuessResult, error) {
	var guess game.Guess
	g, err := e.store.Update(ctx, id, func(g *game.Game) error {
		var err error
		guess, err = g.Apply(word, hard, e.dict, e.now())
		return err
	})
	if err != nil {
		return GuessResult{}, err
	}
	// Terminal sessions refuse Apply, so only the transitioning guess gets here finished.
	if g.Finished() {
		e.onFinished(ctx, g)
	}
	return GuessResult{
		Word:      guess.Word,
		Clues:     guess.Clues,
		Status:    g.Status,
		Remaining: g.Remaining(),
	}, nil
}

// State returns the session status.
func (e *Engine) State(ctx context.Context, id string) (game.Status, error) {
	g, err := e.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return g.Status, nil
}

// Guesses returns the accepted guesses in order.
func (e *Engine) Guesses(ctx context.Context, id string) ([]game.Guess, error) {
	g, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.Guesses, nil
}

// Remaining returns the number of guesses left.
func (e *Engine) Remaining(ctx context.Context, id string) (int, error) {
	g, err := e.store.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return g.Remaining(), nil
}

// Hint returns the disclosed letter. The position is not exposed.
func (e *Engine) Hint(ctx context.Context, id string) (string, error) {
	var h game.Hint
	_, err := e.store.Update(ctx, id, func(g *game.Game) error {
		var err error
		h, err = g.Hint()
		return err
	})
	if err != nil {
		return "", err
	}
	return h.Letter, nil
}

// Answer reveals the answer of a finished session.
func (e *Engine) Answer(ctx context.Context, id string) (string, error) {
	g, err := e.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return g.RevealAnswer()
}

// Forfeit ends a playing session as LOST and returns its answer.
func (e *Engine) Forfeit(ctx context.Context, id string) (string, error) {
	var answer string
	g, err := e.store.Update(ctx, id, func(g *game.Game) error {
		var err error
		answer, err = g.Forfeit(e.now())
		return err
	})
	if err != nil {
		return "", err
	}
	e.onFinished(ctx, g)
	return answer, nil
}

// WordStats reports dictionary sizes.
func (e *Engine) WordStats() (answers, allowed int) { return e.dict.Stats() }

// RunSweeper evicts idle sessions every interval until ctx is done. It is
// a no-op for stores that expire sessions themselves.
func (e *Engine) RunSweeper(ctx context.Context, interval, ttl time.Duration) {
	sw, ok := e.store.(store.Sweeper)
	if !ok || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sw.Sweep(ctx, ttl)
			if err != nil {
				log.Warn().Err(err).Msg("sweep sessions")
				continue
			}
			if n > 0 {
				log.Info().Int("removed", n).Msg("expired idle sessions")
			}
		}
	}
}

func (e *Engine) onFinished(ctx context.Context, g *game.Game) {
	log.Debug().Str("session", g.ID).Str("status", string(g.Status)).Int("guesses", len(g.Guesses)).Msg("session finished")
	if e.history != nil {
		if err := e.history.GameFinished(ctx, g); err != nil {
			log.Warn().Err(err).Str("session", g.ID).Msg("record game finish")
		}
	}
	if e.daily != nil && g.DailyDate != "" && g.OwnerID != "" {
		r := daily.Result{
			UserID:    g.OwnerID,
			Date:      g.DailyDate,
			SessionID: g.ID,
			WordIndex: g.DailyIndex,
			Outcome:   string(g.Status),
			Guesses:   len(g.Guesses),
			ElapsedMs: int(g.FinishedAt.Sub(g.StartedAt).Milliseconds()),
		}
		if err := e.daily.Finish(ctx, r); err != nil {
			log.Warn().Err(err).Str("session", g.ID).Msg("record daily result")
		}
	}
}

func internalErr(op string, err error) error {
	return &game.Error{Kind: game.KindInternal, Message: op + ": " + err.Error(), Position: -1}
}
