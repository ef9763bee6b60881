package game

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setDict map[string]bool

func (d setDict) IsValid(w string) bool { return d[w] }

var dict = setDict{
	"crane": true, "crate": true, "slate": true, "trace": true, "eerie": true,
	"pouty": true, "level": true, "apple": true, "paper": true, "stare": true,
	"tears": true,
}

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newGame(answer string) *Game {
	return New("g1", answer, 0, now)
}

func TestNewDefaults(t *testing.T) {
	g := New("id", "CRANE", 0, now)
	assert.Equal(t, "crane", g.Answer)
	assert.Equal(t, DefaultMaxGuesses, g.MaxGuesses)
	assert.Equal(t, StatusPlaying, g.Status)
	assert.Equal(t, DefaultMaxGuesses, g.Remaining())
	assert.Empty(t, g.Guesses)
}

func TestApplyWin(t *testing.T) {
	g := newGame("crane")

	guess, err := g.Apply("CRANE", false, dict, now)
	require.NoError(t, err)
	assert.Equal(t, []Clue{G, G, G, G, G}, guess.Clues)
	assert.Equal(t, StatusWon, g.Status)
	assert.Equal(t, 5, g.Remaining())
	assert.Equal(t, now, g.FinishedAt)

	_, err = g.Apply("slate", false, dict, now)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Len(t, g.Guesses, 1)
}

func TestApplyLoseAfterMaxGuesses(t *testing.T) {
	g := newGame("crane")
	for i := 0; i < DefaultMaxGuesses; i++ {
		require.Equal(t, StatusPlaying, g.Status)
		_, err := g.Apply("pouty", false, dict, now)
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxGuesses, len(g.Guesses)+g.Remaining())
	}
	assert.Equal(t, StatusLost, g.Status)
	assert.Equal(t, 0, g.Remaining())

	_, err := g.Apply("crane", false, dict, now)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 0, g.Remaining())
}

func TestApplyWinOnLastGuess(t *testing.T) {
	g := newGame("crane")
	for i := 0; i < DefaultMaxGuesses-1; i++ {
		_, err := g.Apply("pouty", false, dict, now)
		require.NoError(t, err)
	}
	_, err := g.Apply("crane", false, dict, now)
	require.NoError(t, err)
	assert.Equal(t, StatusWon, g.Status)
}

func TestApplyInvalidWordsDoNotConsumeTurns(t *testing.T) {
	g := newGame("crane")
	for _, w := range []string{"zzzzz", "abc", "cr4ne", "cranes", ""} {
		_, err := g.Apply(w, false, dict, now)
		require.ErrorIs(t, err, ErrInvalidWord, w)
		assert.Equal(t, KindInvalidWord, KindOf(err))
	}
	assert.Equal(t, DefaultMaxGuesses, g.Remaining())
	assert.Empty(t, g.Guesses)
	assert.Equal(t, StatusPlaying, g.Status)
}

func TestHardModeGreenViolation(t *testing.T) {
	g := newGame("crane")
	_, err := g.Apply("crate", false, dict, now)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		_, err = g.Apply("slate", true, dict, now)
		require.ErrorIs(t, err, ErrHardMode)

		var he *Error
		require.True(t, errors.As(err, &he))
		assert.Equal(t, "c", he.Letter)
		assert.Equal(t, 0, he.Position)
	}
	assert.Equal(t, DefaultMaxGuesses-1, g.Remaining())
	assert.Equal(t, StatusPlaying, g.Status)
	assert.False(t, g.HardMode, "rejected guesses leave the session untouched")

	// Normal mode is not constrained.
	_, err = g.Apply("slate", false, dict, now)
	require.NoError(t, err)
}

func TestHardModeYellowViolation(t *testing.T) {
	g := newGame("crane")
	guess, err := g.Apply("eerie", false, dict, now)
	require.NoError(t, err)
	require.Equal(t, []Clue{X, X, Y, X, G}, guess.Clues)

	_, err = g.Apply("slate", true, dict, now)
	var he *Error
	require.True(t, errors.As(err, &he))
	assert.Equal(t, KindHardModeViolation, he.Kind)
	assert.Equal(t, "r", he.Letter)
	assert.Equal(t, -1, he.Position)

	_, err = g.Apply("trace", true, dict, now)
	require.NoError(t, err)
	assert.True(t, g.HardMode)
}

func TestHardModeSessionValidatesEveryGuess(t *testing.T) {
	g := newGame("crane")
	g.HardMode = true
	_, err := g.Apply("crate", false, dict, now)
	require.NoError(t, err)

	_, err = g.Apply("slate", false, dict, now)
	require.ErrorIs(t, err, ErrHardMode)
}

func TestValidateHardFirstGuessAlwaysAllowed(t *testing.T) {
	assert.NoError(t, ValidateHard("pouty", nil))
}

func TestHintIsStableBetweenGuesses(t *testing.T) {
	g := newGame("crane")

	h1, err := g.Hint()
	require.NoError(t, err)
	h2, err := g.Hint()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, "c", h1.Letter)
	assert.Len(t, g.Hints, 1)

	// slate greens positions 2 and 4; position 0 was disclosed already.
	_, err = g.Apply("slate", false, dict, now)
	require.NoError(t, err)
	h3, err := g.Hint()
	require.NoError(t, err)
	assert.Equal(t, "r", h3.Letter)
	assert.Equal(t, 1, h3.Position)
}

func TestHintNeverRevealsLastUnknownPosition(t *testing.T) {
	g := newGame("crane")
	_, err := g.Hint() // discloses position 0
	require.NoError(t, err)

	// trace greens positions 1, 2 and 4; only position 3 stays unknown.
	_, err = g.Apply("trace", false, dict, now)
	require.NoError(t, err)

	_, err = g.Hint()
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestHintRefusedWhenFinished(t *testing.T) {
	g := newGame("crane")
	_, err := g.Apply("crane", false, dict, now)
	require.NoError(t, err)

	_, err = g.Hint()
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestRevealAnswer(t *testing.T) {
	g := newGame("crane")
	_, err := g.RevealAnswer()
	require.ErrorIs(t, err, ErrInvalidState)

	for i := 0; i < DefaultMaxGuesses; i++ {
		_, err := g.Apply("slate", false, dict, now)
		require.NoError(t, err)
	}
	ans, err := g.RevealAnswer()
	require.NoError(t, err)
	assert.Equal(t, "crane", ans)
}

func TestForfeit(t *testing.T) {
	g := newGame("crane")
	ans, err := g.Forfeit(now)
	require.NoError(t, err)
	assert.Equal(t, "crane", ans)
	assert.Equal(t, StatusLost, g.Status)

	_, err = g.Forfeit(now)
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = g.Apply("crane", false, dict, now)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCloneIsDeep(t *testing.T) {
	g := newGame("crane")
	_, err := g.Apply("slate", false, dict, now)
	require.NoError(t, err)

	c := g.Clone()
	c.Guesses[0].Clues[0] = ClueGreen
	_, err = c.Apply("crate", false, dict, now)
	require.NoError(t, err)

	assert.Equal(t, ClueGrey, g.Guesses[0].Clues[0])
	assert.Len(t, g.Guesses, 1)
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Errorf(KindInvalidWord, "bad %s", "word"))
	assert.ErrorIs(t, err, ErrInvalidWord)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindInvalidWord, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, "bad word", Errorf(KindInvalidWord, "bad %s", "word").Error())
}
