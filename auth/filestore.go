package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps all tokens in one JSON file. Every mutation is written
// through before it returns.
type FileStore struct {
	mutex    sync.RWMutex
	tokens   map[string]string
	filePath string
}

// NewFileStore opens (or creates) sessions.json under dataDir.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStore{
		tokens:   make(map[string]string),
		filePath: filepath.Join(dataDir, "sessions.json"),
	}
	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var loaded map[string]string
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tokens = make(map[string]string, len(loaded))
	for key, token := range loaded {
		if token != "" {
			s.tokens[key] = token
		}
	}
	return nil
}

// save must be called with the write lock held.
func (s *FileStore) save() error {
	data, err := json.Marshal(s.tokens)
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	token, ok := s.tokens[key]
	return token, ok, nil
}

func (s *FileStore) Put(_ context.Context, key, token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	prev, had := s.tokens[key]
	s.tokens[key] = token
	if err := s.save(); err != nil {
		if had {
			s.tokens[key] = prev
		} else {
			delete(s.tokens, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	prev, had := s.tokens[key]
	if !had {
		return nil
	}
	delete(s.tokens, key)
	if err := s.save(); err != nil {
		s.tokens[key] = prev
		return err
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
