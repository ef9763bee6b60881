// internal/game/engine.go
//
// State machine for a single Wordle session.
// Responsibilities:
//   - Create sessions with a fixed answer and guess budget.
//   - Validate and apply guesses (state, length, alphabet, dictionary,
//     hard-mode constraints), in that order.
//   - Track state transitions: playing → won/lost.
//   - Disclose hints and the answer under the session's rules.
//
// Notes:
//   - A Game is not safe for concurrent use; the store serializes access.
//   - Every rejection happens before any field is touched, so a refused
//     guess never consumes a turn or changes status.

package game

import (
	"strings"
	"time"
)

// Dictionary is the word membership check a Game needs.
type Dictionary interface {
	IsValid(w string) bool
}

// New constructs a session in the PLAYING state.
// maxGuesses <= 0 selects DefaultMaxGuesses.
func New(id, answer string, maxGuesses int, now time.Time) *Game {
	if maxGuesses <= 0 {
		maxGuesses = DefaultMaxGuesses
	}
	return &Game{
		ID:         id,
		Answer:     strings.ToLower(answer),
		MaxGuesses: maxGuesses,
		Guesses:    []Guess{},
		Status:     StatusPlaying,
		Hints:      []Hint{},
		StartedAt:  now.UTC(),
	}
}

// Remaining is the number of guesses left. It is always
// MaxGuesses - len(Guesses) and never negative.
func (g *Game) Remaining() int {
	if r := g.MaxGuesses - len(g.Guesses); r > 0 {
		return r
	}
	return 0
}

// Finished reports whether the session is in a terminal state.
func (g *Game) Finished() bool { return g.Status != StatusPlaying }

// Apply validates and scores a guess, mutating the session on success.
// hard requests hard-mode validation for this guess; sessions created in
// hard mode validate every guess regardless.
//
// State transitions:
//   - All clues GREEN → WON.
//   - Else if no guesses remain → LOST.
func (g *Game) Apply(word string, hard bool, dict Dictionary, now time.Time) (Guess, error) {
	if g.Finished() {
		return Guess{}, Errorf(KindInvalidState, "game is over (%s)", g.Status)
	}
	w := strings.ToLower(strings.TrimSpace(word))
	if len(w) != len(g.Answer) || !isAlpha(w) {
		return Guess{}, Errorf(KindInvalidWord, "guess must be %d letters", len(g.Answer))
	}
	if !dict.IsValid(w) {
		return Guess{}, Errorf(KindInvalidWord, "%s is not in the word list", strings.ToUpper(w))
	}
	if hard || g.HardMode {
		if err := ValidateHard(w, g.Guesses); err != nil {
			return Guess{}, err
		}
	}

	guess := Guess{Word: w, Clues: Evaluate(w, g.Answer)}
	g.Guesses = append(g.Guesses, guess)
	if hard {
		g.HardMode = true
	}

	switch {
	case allGreen(guess.Clues):
		g.finish(StatusWon, now)
	case g.Remaining() == 0:
		g.finish(StatusLost, now)
	}
	return guess, nil
}

// Hint discloses one answer letter. Calls between two guesses return the
// same hint; after a new guess the next call moves on to the next unknown
// position. The last unknown position is never disclosed.
func (g *Game) Hint() (Hint, error) {
	if g.Finished() {
		return Hint{}, Errorf(KindInvalidState, "hints are only available while playing")
	}
	if n := len(g.Hints); n > 0 && g.Hints[n-1].AfterGuesses == len(g.Guesses) {
		return g.Hints[n-1], nil
	}
	h, ok := nextHint(g.Answer, g.Guesses, g.Hints)
	if !ok {
		return Hint{}, Errorf(KindInvalidState, "no further hints available")
	}
	g.Hints = append(g.Hints, h)
	return h, nil
}

// RevealAnswer returns the answer once the session is over.
func (g *Game) RevealAnswer() (string, error) {
	if !g.Finished() {
		return "", Errorf(KindInvalidState, "answer is only available after the game ends")
	}
	return g.Answer, nil
}

// Forfeit ends a playing session as LOST and returns the answer.
func (g *Game) Forfeit(now time.Time) (string, error) {
	if g.Finished() {
		return "", Errorf(KindInvalidState, "game is over (%s)", g.Status)
	}
	g.finish(StatusLost, now)
	return g.Answer, nil
}

// Clone returns a deep copy, so callers can mutate it and discard the
// result without affecting the original.
func (g *Game) Clone() *Game {
	c := *g
	c.Guesses = make([]Guess, len(g.Guesses))
	for i, gs := range g.Guesses {
		c.Guesses[i] = Guess{Word: gs.Word, Clues: append([]Clue(nil), gs.Clues...)}
	}
	c.Hints = append([]Hint{}, g.Hints...)
	return &c
}

func (g *Game) finish(s Status, now time.Time) {
	g.Status = s
	g.FinishedAt = now.UTC()
}

// isAlpha checks that a string consists only of lowercase a–z.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
