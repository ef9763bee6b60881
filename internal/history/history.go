// internal/history/history.go
//
// SQLite history of sessions.
// Responsibilities:
//   - Insert a "games" row when a session starts (answer withheld).
//   - On finish, store status, guess count and answer, and bump the owning
//     account's games_played / wins / streak in the same transaction.
//   - List an owner's recent games.
//   - Move anonymous games to an account after signup/login.
//
// Rows for anonymous owners are kept too; the stats UPDATE simply matches
// no account for them.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
)

// Row is one entry of an owner's game list.
type Row struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Guesses    int    `json:"guesses"`
	HardMode   bool   `json:"hardMode"`
	DailyDate  string `json:"dailyDate,omitempty"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// GameStarted records a new session.
func (s *Store) GameStarted(ctx context.Context, g *game.Game) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, owner_id, status, guesses, hard_mode, daily_date, answer, started_at)
		 VALUES (?,?,?,?,?,?,'',?)`,
		g.ID, nullable(g.OwnerID), string(g.Status), len(g.Guesses), g.HardMode,
		nullable(g.DailyDate), g.StartedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// GameFinished stores the final state and updates the owner's stats.
func (s *Store) GameFinished(ctx context.Context, g *game.Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE games SET status=?, guesses=?, hard_mode=?, answer=?, finished_at=? WHERE id=?`,
		string(g.Status), len(g.Guesses), g.HardMode, g.Answer,
		g.FinishedAt.Format(time.RFC3339), g.ID,
	); err != nil {
		return fmt.Errorf("finish game: %w", err)
	}

	if g.OwnerID != "" {
		won := g.Status == game.StatusWon
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET games_played = games_played + 1,
			                  wins = wins + ?,
			                  streak = CASE WHEN ? THEN streak + 1 ELSE 0 END
			 WHERE id=?`,
			boolInt(won), won, g.OwnerID,
		); err != nil {
			return fmt.Errorf("bump stats: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListByOwner returns up to limit games, newest first. limit <= 0 selects 50.
func (s *Store) ListByOwner(ctx context.Context, ownerID string, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, guesses, hard_mode, COALESCE(daily_date,''), started_at, COALESCE(finished_at,'')
		 FROM games WHERE owner_id=? ORDER BY started_at DESC LIMIT ?`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Status, &r.Guesses, &r.HardMode, &r.DailyDate, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimOwner moves games from an anonymous owner to an account. Stats are
// not recomputed for moved games.
func (s *Store) ClaimOwner(ctx context.Context, fromID, toID string) (int64, error) {
	if fromID == "" || toID == "" || fromID == toID {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `UPDATE games SET owner_id=? WHERE owner_id=?`, toID, fromID)
	if err != nil {
		return 0, fmt.Errorf("claim games: %w", err)
	}
	return res.RowsAffected()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
