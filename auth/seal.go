package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var errUnseal = errors.New("auth: stored token could not be unsealed")

// ParseSealKey decodes a 64 character hex key.
func ParseSealKey(s string) (*[32]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid seal key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("invalid seal key: want 32 bytes, got %d", len(raw))
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}

// SealedStore encrypts tokens before handing them to the underlying store.
type SealedStore struct {
	inner TokenStore
	key   *[32]byte
}

func NewSealedStore(inner TokenStore, key *[32]byte) *SealedStore {
	return &SealedStore{inner: inner, key: key}
}

func (s *SealedStore) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	token, err := s.open(sealed)
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

func (s *SealedStore) Put(ctx context.Context, key, token string) error {
	sealed, err := s.seal(token)
	if err != nil {
		return err
	}
	return s.inner.Put(ctx, key, sealed)
}

func (s *SealedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *SealedStore) Close() error {
	return s.inner.Close()
}

func (s *SealedStore) seal(token string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(token), &nonce, s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (s *SealedStore) open(sealed string) (string, error) {
	box, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", errUnseal
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, s.key)
	if !ok {
		return "", errUnseal
	}
	return string(plain), nil
}
