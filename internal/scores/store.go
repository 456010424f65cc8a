// apps/go-server/internal/scores/store.go
//
// SQLite-backed persistence for per-session, per-mode-key scores.
// Only {high_score, current_score} are persisted; pools and rotation sets
// are always rehydrated from the pipeline.

package scores

import (
	"context"
	"database/sql"
	"time"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Load returns the persisted scores for (sessionID, modeKey).
// Missing rows read as zero scores, not errors.
func (s *Store) Load(ctx context.Context, sessionID, modeKey string) (high, current int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT high_score, current_score FROM scores WHERE session_id=? AND mode_key=?`,
		sessionID, modeKey,
	).Scan(&high, &current)
	if err == sql.ErrNoRows {
		return 0, 0, nil
	}
	return high, current, err
}

// Save upserts the scores for (sessionID, modeKey).
func (s *Store) Save(ctx context.Context, sessionID, modeKey string, high, current int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores(session_id, mode_key, high_score, current_score, updated_at)
		 VALUES(?,?,?,?,?)
		 ON CONFLICT(session_id, mode_key)
		 DO UPDATE SET high_score=excluded.high_score,
		               current_score=excluded.current_score,
		               updated_at=excluded.updated_at`,
		sessionID, modeKey, high, current, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}
