package daily

import (
	"context"
	"database/sql"
	"fmt"
)

// Outcomes of a daily row. A row is PLAYING from the moment the owner's
// session starts until it is settled.
const (
	OutcomePlaying = "PLAYING"
	OutcomeWon     = "WON"
	OutcomeLost    = "LOST"
)

// Result settles an owner's daily row. UNIQUE(user_id, date) in SQL.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	SessionID string `json:"sessionId"`
	WordIndex int    `json:"wordIndex"`
	Outcome   string `json:"outcome"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Entry is the claim that holds an owner's slot for a date.
type Entry struct {
	SessionID string
	Outcome   string
}

// LBRow is one leaderboard line.
type LBRow struct {
	UserID    string `json:"userId"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID finished the challenge for date,
// whether won, lost or forfeited.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=? AND outcome<>?`,
		userID, date, OutcomePlaying,
	).Scan(&cnt)
	if err != nil {
		return false, fmt.Errorf("daily played: %w", err)
	}
	return cnt > 0, nil
}

// Begin claims the (userID, date) slot for sessionID. If the slot is
// already taken the existing entry is returned unchanged, so the caller
// compares Entry.SessionID with its own.
func (s *Store) Begin(ctx context.Context, userID, date string, wordIndex int, sessionID string) (Entry, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, word_index, guesses, elapsed_ms, session_id, outcome)
		 VALUES(?,?,?,0,0,?,?)`,
		userID, date, wordIndex, sessionID, OutcomePlaying,
	); err != nil {
		return Entry{}, fmt.Errorf("daily claim: %w", err)
	}
	var e Entry
	if err := s.db.QueryRowContext(ctx,
		`SELECT session_id, outcome FROM daily_results WHERE user_id=? AND date=?`,
		userID, date,
	).Scan(&e.SessionID, &e.Outcome); err != nil {
		return Entry{}, fmt.Errorf("daily claim lookup: %w", err)
	}
	return e, nil
}

// Finish settles the row claimed by r.SessionID. A row that is already
// settled is left alone.
func (s *Store) Finish(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE daily_results SET outcome=?, guesses=?, elapsed_ms=?
		 WHERE user_id=? AND date=? AND session_id=? AND outcome=?`,
		r.Outcome, r.Guesses, r.ElapsedMs, r.UserID, r.Date, r.SessionID, OutcomePlaying,
	)
	if err != nil {
		return fmt.Errorf("daily finish: %w", err)
	}
	return nil
}

// Leaderboard returns the fastest wins for date (then fewest guesses).
// limit <= 0 selects 20.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, guesses, elapsed_ms
		 FROM daily_results
		 WHERE date=? AND outcome=?
		 ORDER BY elapsed_ms ASC, guesses ASC, created_at ASC
		 LIMIT ?`, date, OutcomeWon, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("daily leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
