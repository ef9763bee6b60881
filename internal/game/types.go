// internal/game/types.go
//
// Core type definitions for the Wordle game engine.
// Defines:
//   - Clue: per-letter result of a guess (green/yellow/grey).
//   - Status: session state (playing/won/lost).
//   - Guess, Hint: immutable records appended to a session.
//   - Game: state for a single in-progress or finished session.

package game

import "time"

// DefaultMaxGuesses is the number of accepted guesses a session allows.
const DefaultMaxGuesses = 6

// Clue represents the evaluation result for a single letter in a guess.
//   - GREEN:  letter is correct and in the correct position.
//   - YELLOW: letter exists in the answer but in a different position.
//   - GREY:   letter is not in the answer, or all its occurrences are
//     already accounted for.
type Clue string

const (
	ClueGreen  Clue = "GREEN"
	ClueYellow Clue = "YELLOW"
	ClueGrey   Clue = "GREY"
)

// Status is the lifecycle state of a session. WON and LOST are terminal.
type Status string

const (
	StatusPlaying Status = "PLAYING"
	StatusWon     Status = "WON"
	StatusLost    Status = "LOST"
)

// Guess is one accepted submission and its clues.
type Guess struct {
	Word  string `json:"word"`
	Clues []Clue `json:"clues"`
}

// Hint records a disclosed answer letter. Position is kept for the
// disclosure policy and is never sent to clients.
type Hint struct {
	Position     int    `json:"position"`
	Letter       string `json:"letter"`
	AfterGuesses int    `json:"afterGuesses"` // len(Guesses) at disclosure
}

// Game holds the state of a single Wordle session.
type Game struct {
	ID         string    `json:"id"`
	Answer     string    `json:"answer"` // lowercase, fixed at creation
	MaxGuesses int       `json:"maxGuesses"`
	Guesses    []Guess   `json:"guesses"`
	Status     Status    `json:"status"`
	HardMode   bool      `json:"hardMode"` // every guess is validated against prior clues
	Hints      []Hint    `json:"hints"`
	OwnerID    string    `json:"ownerId,omitempty"`   // account or anonymous id, if known
	DailyDate  string    `json:"dailyDate,omitempty"` // YYYY-MM-DD for daily sessions
	DailyIndex int       `json:"dailyIndex,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}
