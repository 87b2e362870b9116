package shell

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/smallhorseman/SEM37/auth"
	"github.com/smallhorseman/SEM37/tool"
)

// Workspace is everything one browser owns.
type Workspace struct {
	ID    string
	Shell *Shell
	// Session is nil when authentication is disabled.
	Session *auth.Session
}

// Close tears down the controllers. The durable session entry is kept.
func (w *Workspace) Close() {
	w.Shell.Close()
}

// Factory builds the workspace for a browser ID seen for the first time.
type Factory func(ctx context.Context, id string) (*Workspace, error)

// Deps are the shared collaborators every workspace is built from.
type Deps struct {
	Backend     tool.Backend
	AuthClient  auth.Poster
	Store       auth.TokenStore
	AuthEnabled bool
	Options     tool.Options
	Logger      *zap.Logger
}

// NewFactory returns the Factory used in production. A session that cannot
// be restored from the store starts logged out.
func NewFactory(d Deps) Factory {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, id string) (*Workspace, error) {
		ws := &Workspace{ID: id}

		var tokens tool.TokenSource
		if d.AuthEnabled {
			session, err := auth.OpenSession(ctx, d.Store, d.AuthClient, id, logger)
			if err != nil {
				logger.Warn("failed to restore session", zap.String("workspace", id), zap.Error(err))
			}
			ws.Session = session
			tokens = session
		}

		opts := d.Options
		opts.Logger = logger.With(zap.String("workspace", id))
		ws.Shell = NewShell(d.Backend, tokens, opts)
		return ws, nil
	}
}

// Registry maps browser IDs to workspaces. Workspaces idle for longer than
// the TTL, or pushed out by the size bound, are closed.
type Registry struct {
	mu      sync.Mutex
	cache   *expirable.LRU[string, *Workspace]
	factory Factory
	logger  *zap.Logger
}

func NewRegistry(size int, ttl time.Duration, factory Factory, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{factory: factory, logger: logger.Named("workspaces")}
	r.cache = expirable.NewLRU[string, *Workspace](size, r.evicted, ttl)
	return r
}

func (r *Registry) evicted(id string, ws *Workspace) {
	r.logger.Debug("closing workspace", zap.String("workspace", id))
	ws.Close()
}

// Get returns the workspace of id, creating it on first use. Every access
// restarts the idle timer.
func (r *Registry) Get(ctx context.Context, id string) (*Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.cache.Get(id); ok {
		r.cache.Add(id, ws)
		return ws, nil
	}

	ws, err := r.factory(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Add(id, ws)
	r.logger.Debug("workspace created", zap.String("workspace", id), zap.Int("live", r.cache.Len()))
	return ws, nil
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

// Close tears down every workspace.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Purge()
}
