package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLStore keeps tokens in a single sessions table. The SQLite and Postgres
// stores differ only in driver and placeholder style.
type SQLStore struct {
	db *sql.DB

	getQuery    string
	putQuery    string
	deleteQuery string
}

const createSessionsTable = `CREATE TABLE IF NOT EXISTS sessions (
	browser_id TEXT PRIMARY KEY,
	token TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

func newSQLStore(db *sql.DB, placeholder func(n int) string) (*SQLStore, error) {
	if _, err := db.Exec(createSessionsTable); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	p1, p2, p3 := placeholder(1), placeholder(2), placeholder(3)
	return &SQLStore{
		db:       db,
		getQuery: `SELECT token FROM sessions WHERE browser_id = ` + p1,
		putQuery: `INSERT INTO sessions (browser_id, token, updated_at) VALUES (` + p1 + `, ` + p2 + `, ` + p3 + `)
			ON CONFLICT (browser_id) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		deleteQuery: `DELETE FROM sessions WHERE browser_id = ` + p1,
	}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var token string
	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session: %w", err)
	}
	return token, true, nil
}

func (s *SQLStore) Put(ctx context.Context, key, token string) error {
	if _, err := s.db.ExecContext(ctx, s.putQuery, key, token, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.deleteQuery, key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
