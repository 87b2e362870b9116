// Package auth keeps the per-browser login session and the durable store
// its token lives in.
package auth

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/smallhorseman/SEM37/config"
)

// TokenStore is a durable key-value store mapping browser IDs to tokens.
type TokenStore interface {
	// Get returns the token stored for key; ok is false when there is none.
	Get(ctx context.Context, key string) (token string, ok bool, err error)
	Put(ctx context.Context, key, token string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// OpenStore opens the store selected by cfg.Store and seals its values when
// a seal key is configured.
func OpenStore(cfg config.AuthConfig) (TokenStore, error) {
	var (
		store TokenStore
		err   error
	)
	switch cfg.Store {
	case "file":
		store, err = NewFileStore(cfg.DataDir)
	case "sqlite":
		path := cfg.DSN
		if path == "" {
			path = filepath.Join(cfg.DataDir, "sessions.db")
		}
		store, err = NewSQLiteStore(path)
	case "postgres":
		store, err = NewPostgresStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.Store)
	}
	if err != nil {
		return nil, err
	}

	if cfg.SealKey == "" {
		return store, nil
	}
	key, err := ParseSealKey(cfg.SealKey)
	if err != nil {
		store.Close()
		return nil, err
	}
	return NewSealedStore(store, key), nil
}
