package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Store persists sessions in a local SQLite database so that restarting the
// frontend does not log everyone out. The backend token inside each row stays
// opaque; the backend remains the authority on its validity.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Create stores a new session for the given backend token and returns it.
// Called exactly once per successful login.
func (s *Store) Create(ctx context.Context, token, userID string) (Session, error) {
	sess := Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token, user_id, created_at, last_seen) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.Token, sess.UserID, sess.CreatedAt, sess.CreatedAt)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}

	slog.InfoContext(ctx, "Session created", "session_id", sess.ID, "user_id", userID)
	return sess, nil
}

// Get loads a session by cookie value and touches its last_seen timestamp.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		`SELECT id, token, user_id, created_at FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.Token, &sess.UserID, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("select session: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_seen = ? WHERE id = ?`, time.Now().UTC(), id); err != nil {
		slog.WarnContext(ctx, "Failed to touch session", "session_id", id, "error", err)
	}

	return sess, nil
}

// Delete removes a session. Logout proceeds against local state only; the
// backend is never consulted here.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	slog.InfoContext(ctx, "Session deleted", "session_id", id)
	return nil
}

// DeleteStale removes sessions unused for longer than maxIdle.
func (s *Store) DeleteStale(ctx context.Context, maxIdle time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxIdle)
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE last_seen < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
