package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on Postgres with the full session record in
// a JSONB column. The durable option when extracted intelligence must
// outlive any single node; schema is created on demand by Init.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Init creates the sessions table if it does not exist.
func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS honeypot_sessions (
			session_id  TEXT PRIMARY KEY,
			state       JSONB NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("postgres init: %w", err)
	}
	return nil
}

// Get retrieves a session by id. Returns nil, nil if not found.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM honeypot_sessions WHERE session_id = $1`, id,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("postgres decode %s: %w", id, err)
	}
	return &sess, nil
}

// Save upserts a session.
func (s *PostgresStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.SessionID == "" {
		return fmt.Errorf("session id is required")
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("postgres encode %s: %w", sess.SessionID, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO honeypot_sessions (session_id, state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (session_id) DO UPDATE SET state = $2, updated_at = now()`,
		sess.SessionID, raw)
	if err != nil {
		return fmt.Errorf("postgres save %s: %w", sess.SessionID, err)
	}
	return nil
}

// Delete removes a session.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM honeypot_sessions WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("postgres delete %s: %w", id, err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)
