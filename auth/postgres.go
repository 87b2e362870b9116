package auth

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/lib/pq"
)

// NewPostgresStore connects to databaseURL and ensures the sessions table
// exists.
func NewPostgresStore(databaseURL string) (*SQLStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store, err := newSQLStore(db, func(n int) string { return "$" + strconv.Itoa(n) })
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
