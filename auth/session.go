package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/smallhorseman/SEM37/analyzer"
)

// Poster sends a JSON request to the auth service.
type Poster interface {
	PostJSON(ctx context.Context, path string, in, out any, opts ...analyzer.CallOption) error
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Session is the login state of one browser. The token in memory always
// mirrors the durable entry under key.
type Session struct {
	key    string
	store  TokenStore
	client Poster
	logger *zap.Logger

	mu    sync.RWMutex
	token string
}

// OpenSession restores the session stored under key. A store read failure
// is returned; callers may still use the (logged out) session.
func OpenSession(ctx context.Context, store TokenStore, client Poster, key string, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		key:    key,
		store:  store,
		client: client,
		logger: logger.Named("auth"),
	}

	token, ok, err := store.Get(ctx, key)
	if err != nil {
		return s, err
	}
	if ok {
		s.token = token
	}
	return s, nil
}

// Token returns the current token or "" when logged out.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Login exchanges credentials for a token. Any failure is logged and
// reported as false; the previous state is kept in that case.
func (s *Session) Login(ctx context.Context, email, password string) bool {
	var resp loginResponse
	err := s.client.PostJSON(ctx, analyzer.EndpointLogin,
		loginRequest{Email: strings.TrimSpace(email), Password: password}, &resp)
	if err != nil {
		s.logger.Warn("login failed", zap.String("outcome", analyzer.Outcome(err)), zap.Error(err))
		return false
	}
	if resp.Token == "" {
		s.logger.Warn("login failed", zap.Error(errors.New("response carried no token")))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Put(ctx, s.key, resp.Token); err != nil {
		s.logger.Error("failed to persist session", zap.Error(err))
		return false
	}
	s.token = resp.Token
	s.logger.Info("logged in")
	return true
}

// Logout forgets the token. Memory is cleared even when the durable entry
// cannot be removed.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err := s.store.Delete(ctx, s.key); err != nil {
		s.logger.Error("failed to delete session", zap.Error(err))
		return err
	}
	return nil
}
