package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/go-engine/internal/daily"
	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
	"github.com/robalobadob/wordle/apps/go-engine/internal/store"
	"github.com/robalobadob/wordle/apps/go-engine/internal/words"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeRecorder struct {
	mu       sync.Mutex
	started  []string
	finished []*game.Game
	err      error
}

func (r *fakeRecorder) GameStarted(_ context.Context, g *game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, g.ID)
	return r.err
}

func (r *fakeRecorder) GameFinished(_ context.Context, g *game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, g)
	return r.err
}

type fakeDaily struct {
	mu    sync.Mutex
	slots map[string]*daily.Result // user|date
}

func (d *fakeDaily) Begin(_ context.Context, userID, date string, idx int, sessionID string) (daily.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.slots == nil {
		d.slots = make(map[string]*daily.Result)
	}
	k := userID + "|" + date
	if r, ok := d.slots[k]; ok {
		return daily.Entry{SessionID: r.SessionID, Outcome: r.Outcome}, nil
	}
	d.slots[k] = &daily.Result{UserID: userID, Date: date, SessionID: sessionID, WordIndex: idx, Outcome: daily.OutcomePlaying}
	return daily.Entry{SessionID: sessionID, Outcome: daily.OutcomePlaying}, nil
}

func (d *fakeDaily) Finish(_ context.Context, r daily.Result) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, ok := d.slots[r.UserID+"|"+r.Date]
	if ok && cur.SessionID == r.SessionID && cur.Outcome == daily.OutcomePlaying {
		*cur = r
	}
	return nil
}

func (d *fakeDaily) slot(userID, date string) daily.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.slots[userID+"|"+date]; ok {
		return *r
	}
	return daily.Result{}
}

func newDict(t *testing.T) *words.Dictionary {
	t.Helper()
	d, err := words.New(
		[]string{"crane", "level", "apple"},
		[]string{"slate", "crate", "trace", "eerie", "pouty", "paper"},
	)
	require.NoError(t, err)
	return d
}

func newEngine(t *testing.T, opts ...Option) (*Engine, *fakeRecorder) {
	t.Helper()
	rec := &fakeRecorder{}
	clock := t0
	opts = append([]Option{WithHistory(rec), WithClock(func() time.Time { return clock })}, opts...)
	return New(newDict(t), store.NewMemoryStore(), opts...), rec
}

func start(t *testing.T, e *Engine, answer string) string {
	t.Helper()
	res, err := e.NewGame(context.Background(), NewGameOptions{Answer: answer})
	require.NoError(t, err)
	require.Equal(t, game.StatusPlaying, res.Status)
	return res.SessionID
}

func TestNewGameRandomAnswer(t *testing.T) {
	ctx := context.Background()
	e, rec := newEngine(t)

	a, err := e.NewGame(ctx, NewGameOptions{})
	require.NoError(t, err)
	b, err := e.NewGame(ctx, NewGameOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, a.SessionID, b.SessionID)
	assert.Equal(t, []string{a.SessionID, b.SessionID}, rec.started)

	st, err := e.State(ctx, a.SessionID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusPlaying, st)

	rem, err := e.Remaining(ctx, a.SessionID)
	require.NoError(t, err)
	assert.Equal(t, game.DefaultMaxGuesses, rem)
}

func TestNewGameRetriesOnIDCollision(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	ids := []string{"same", "same", "other"}
	var n int32
	e.newID = func() string { return ids[atomic.AddInt32(&n, 1)-1] }

	a, err := e.NewGame(ctx, NewGameOptions{})
	require.NoError(t, err)
	b, err := e.NewGame(ctx, NewGameOptions{})
	require.NoError(t, err)
	assert.Equal(t, "same", a.SessionID)
	assert.Equal(t, "other", b.SessionID)
}

func TestNewGameRejectsBadFixedAnswer(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.NewGame(context.Background(), NewGameOptions{Answer: "toolong"})
	require.ErrorIs(t, err, game.ErrInvalidWord)
}

func TestSubmitGuessWin(t *testing.T) {
	ctx := context.Background()
	e, rec := newEngine(t)
	id := start(t, e, "crane")

	_, err := e.Answer(ctx, id)
	require.ErrorIs(t, err, game.ErrInvalidState, "answer is hidden during play")

	res, err := e.SubmitGuess(ctx, id, "slate", false)
	require.NoError(t, err)
	assert.Equal(t, []game.Clue{game.ClueGrey, game.ClueGrey, game.ClueGreen, game.ClueGrey, game.ClueGreen}, res.Clues)
	assert.Equal(t, 5, res.Remaining)

	res, err = e.SubmitGuess(ctx, id, "CRANE", false)
	require.NoError(t, err)
	assert.Equal(t, game.StatusWon, res.Status)
	assert.Equal(t, 4, res.Remaining)

	ans, err := e.Answer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "crane", ans)

	require.Len(t, rec.finished, 1)
	assert.Equal(t, game.StatusWon, rec.finished[0].Status)

	_, err = e.SubmitGuess(ctx, id, "crane", false)
	require.ErrorIs(t, err, game.ErrInvalidState)
	assert.Len(t, rec.finished, 1)
}

func TestSubmitGuessLoss(t *testing.T) {
	ctx := context.Background()
	e, rec := newEngine(t)
	id := start(t, e, "crane")

	for i := 0; i < game.DefaultMaxGuesses; i++ {
		res, err := e.SubmitGuess(ctx, id, "pouty", false)
		require.NoError(t, err)
		assert.Equal(t, game.DefaultMaxGuesses-i-1, res.Remaining)
	}
	st, err := e.State(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusLost, st)

	ans, err := e.Answer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "crane", ans)
	assert.Len(t, rec.finished, 1)
}

func TestRejectedGuessesDoNotConsumeTurns(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	id := start(t, e, "crane")

	for i := 0; i < 6; i++ {
		_, err := e.SubmitGuess(ctx, id, "zzzzz", false)
		require.ErrorIs(t, err, game.ErrInvalidWord)
	}
	rem, err := e.Remaining(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 6, rem)

	_, err = e.SubmitGuess(ctx, id, "crate", true)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		_, err := e.SubmitGuess(ctx, id, "slate", true)
		require.ErrorIs(t, err, game.ErrHardMode)
	}
	rem, err = e.Remaining(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, rem)

	gs, err := e.Guesses(ctx, id)
	require.NoError(t, err)
	require.Len(t, gs, 1)
	assert.Equal(t, "crate", gs[0].Word)

	st, err := e.State(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusPlaying, st)
}

func TestHardModeSession(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	res, err := e.NewGame(ctx, NewGameOptions{Answer: "crane", HardMode: true})
	require.NoError(t, err)

	_, err = e.SubmitGuess(ctx, res.SessionID, "crate", false)
	require.NoError(t, err)
	_, err = e.SubmitGuess(ctx, res.SessionID, "slate", false)
	require.ErrorIs(t, err, game.ErrHardMode)
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)

	_, err := e.SubmitGuess(ctx, "nope", "crane", false)
	assert.ErrorIs(t, err, game.ErrNotFound)
	_, err = e.State(ctx, "nope")
	assert.ErrorIs(t, err, game.ErrNotFound)
	_, err = e.Guesses(ctx, "nope")
	assert.ErrorIs(t, err, game.ErrNotFound)
	_, err = e.Remaining(ctx, "nope")
	assert.ErrorIs(t, err, game.ErrNotFound)
	_, err = e.Hint(ctx, "nope")
	assert.ErrorIs(t, err, game.ErrNotFound)
	_, err = e.Answer(ctx, "nope")
	assert.ErrorIs(t, err, game.ErrNotFound)
	_, err = e.Forfeit(ctx, "nope")
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestReadsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	id := start(t, e, "crane")
	_, err := e.SubmitGuess(ctx, id, "slate", false)
	require.NoError(t, err)

	h1, err := e.Hint(ctx, id)
	require.NoError(t, err)
	g1, err := e.Guesses(ctx, id)
	require.NoError(t, err)
	s1, err := e.State(ctx, id)
	require.NoError(t, err)

	h2, err := e.Hint(ctx, id)
	require.NoError(t, err)
	g2, err := e.Guesses(ctx, id)
	require.NoError(t, err)
	s2, err := e.State(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "c", h1)
	assert.Equal(t, h1, h2)
	assert.Equal(t, g1, g2)
	assert.Equal(t, s1, s2)
}

func TestForfeit(t *testing.T) {
	ctx := context.Background()
	e, rec := newEngine(t)
	id := start(t, e, "level")

	ans, err := e.Forfeit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "level", ans)

	st, err := e.State(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusLost, st)
	require.Len(t, rec.finished, 1)

	_, err = e.Forfeit(ctx, id)
	require.ErrorIs(t, err, game.ErrInvalidState)
}

func TestConcurrentGuessesOnOneSession(t *testing.T) {
	ctx := context.Background()
	e, rec := newEngine(t)
	id := start(t, e, "crane")

	const n = 30
	var ok, refused int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.SubmitGuess(ctx, id, "pouty", false)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, game.ErrInvalidState):
				atomic.AddInt32(&refused, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, game.DefaultMaxGuesses, ok)
	assert.EqualValues(t, n-game.DefaultMaxGuesses, refused)
	gs, err := e.Guesses(ctx, id)
	require.NoError(t, err)
	assert.Len(t, gs, game.DefaultMaxGuesses)
	assert.Len(t, rec.finished, 1, "exactly one guess transitions the session")
}

func TestHistoryFailureDoesNotFailGuess(t *testing.T) {
	ctx := context.Background()
	e, rec := newEngine(t)
	rec.err = errors.New("db down")

	id := start(t, e, "crane")
	res, err := e.SubmitGuess(ctx, id, "crane", false)
	require.NoError(t, err)
	assert.Equal(t, game.StatusWon, res.Status)
}

func TestDailyChallenge(t *testing.T) {
	ctx := context.Background()
	results := &fakeDaily{}
	e, _ := newEngine(t, WithDaily(results, "salt"))
	idx := daily.WordIndex(t0, "salt", 3)

	_, err := e.NewGame(ctx, NewGameOptions{Daily: true})
	require.ErrorIs(t, err, game.ErrInvalidState, "daily needs an owner")

	a, err := e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", a.DailyDate)
	b, err := e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u2"})
	require.NoError(t, err)

	ansA, err := e.Forfeit(ctx, a.SessionID)
	require.NoError(t, err)
	ansB, err := e.Forfeit(ctx, b.SessionID)
	require.NoError(t, err)
	assert.Equal(t, ansA, ansB, "everyone gets the same word on a day")
	assert.Equal(t, newDict(t).AnswerAt(idx), ansA)
	assert.Equal(t, daily.OutcomeLost, results.slot("u1", "2025-03-01").Outcome)

	c, err := e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u3"})
	require.NoError(t, err)
	res, err := e.SubmitGuess(ctx, c.SessionID, ansA, false)
	require.NoError(t, err)
	require.Equal(t, game.StatusWon, res.Status)

	assert.Equal(t, daily.Result{
		UserID: "u3", Date: "2025-03-01", SessionID: c.SessionID, WordIndex: idx,
		Outcome: daily.OutcomeWon, Guesses: 1,
	}, results.slot("u3", "2025-03-01"))

	_, err = e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u3"})
	require.ErrorIs(t, err, game.ErrInvalidState, "one daily per day")
}

func TestDailyForfeitCannotBeReplayed(t *testing.T) {
	ctx := context.Background()
	results := &fakeDaily{}
	e, rec := newEngine(t, WithDaily(results, "salt"))

	first, err := e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u1"})
	require.NoError(t, err)
	answer, err := e.Forfeit(ctx, first.SessionID)
	require.NoError(t, err)

	_, err = e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u1"})
	require.ErrorIs(t, err, game.ErrInvalidState)
	_, err = e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u1", HardMode: true})
	require.ErrorIs(t, err, game.ErrInvalidState)

	slot := results.slot("u1", "2025-03-01")
	assert.Equal(t, daily.OutcomeLost, slot.Outcome)
	assert.Equal(t, first.SessionID, slot.SessionID)
	assert.Len(t, rec.started, 1, "refused requests leave no session behind")

	// the revealed answer is still a valid guess elsewhere, just not a daily win
	other := start(t, e, answer)
	res, err := e.SubmitGuess(ctx, other, answer, false)
	require.NoError(t, err)
	assert.Equal(t, game.StatusWon, res.Status)
	assert.Equal(t, daily.OutcomeLost, results.slot("u1", "2025-03-01").Outcome)
}

func TestDailyLossCannotBeReplayed(t *testing.T) {
	ctx := context.Background()
	results := &fakeDaily{}
	e, _ := newEngine(t, WithDaily(results, "salt"))

	s, err := e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u1"})
	require.NoError(t, err)
	for i := 0; i < game.DefaultMaxGuesses; i++ {
		_, err := e.SubmitGuess(ctx, s.SessionID, "pouty", false) // never an answer
		require.NoError(t, err)
	}
	_, err = e.Answer(ctx, s.SessionID)
	require.NoError(t, err)

	_, err = e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u1"})
	require.ErrorIs(t, err, game.ErrInvalidState)
	assert.Equal(t, daily.OutcomeLost, results.slot("u1", "2025-03-01").Outcome)
}

func TestDailyResumesLiveSession(t *testing.T) {
	ctx := context.Background()
	results := &fakeDaily{}
	e, rec := newEngine(t, WithDaily(results, "salt"))

	a, err := e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u1"})
	require.NoError(t, err)
	_, err = e.SubmitGuess(ctx, a.SessionID, "slate", false)
	require.NoError(t, err)

	b, err := e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, a.SessionID, b.SessionID)
	assert.True(t, b.Resumed)
	assert.Len(t, rec.started, 1)

	rem, err := e.Remaining(ctx, b.SessionID)
	require.NoError(t, err)
	assert.Equal(t, game.DefaultMaxGuesses-1, rem, "progress carries over")
}

func TestDailyConcurrentStartsShareOneSession(t *testing.T) {
	ctx := context.Background()
	results := &fakeDaily{}
	e, _ := newEngine(t, WithDaily(results, "salt"))

	const n = 10
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u1"})
			assert.NoError(t, err)
			ids[i] = res.SessionID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, ids[0], results.slot("u1", "2025-03-01").SessionID)
}

func TestDailyExpiredSessionIsRefused(t *testing.T) {
	ctx := context.Background()
	results := &fakeDaily{}
	st := store.NewMemoryStore()
	e := New(newDict(t), st, WithDaily(results, "salt"), WithClock(func() time.Time { return t0 }))

	a, err := e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u1"})
	require.NoError(t, err)
	require.NoError(t, st.Delete(ctx, a.SessionID))

	_, err = e.NewGame(ctx, NewGameOptions{Daily: true, OwnerID: "u1"})
	require.ErrorIs(t, err, game.ErrInvalidState)
	assert.Equal(t, 0, st.Count(), "the rejected session is dropped")
}

func TestDailyDisabled(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.NewGame(context.Background(), NewGameOptions{Daily: true, OwnerID: "u1"})
	require.ErrorIs(t, err, game.ErrInvalidState)
}

func TestRunSweeperEvictsIdleSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := New(newDict(t), store.NewMemoryStore())
	id := start(t, e, "crane")

	done := make(chan struct{})
	go func() {
		e.RunSweeper(ctx, 5*time.Millisecond, time.Nanosecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, err := e.State(context.Background(), id)
		return errors.Is(err, game.ErrNotFound)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
