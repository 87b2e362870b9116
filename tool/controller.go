package tool

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smallhorseman/SEM37/analyzer"
)

// Fetch performs the single backend request behind a submission.
type Fetch[T any] func(ctx context.Context, input string) (T, error)

// Observer is told how every submission ended: "validation", "stale", or an
// analyzer.Outcome label.
type Observer interface {
	Observe(tool, outcome string)
}

// Observers fans every outcome out to each member.
type Observers []Observer

func (obs Observers) Observe(tool, outcome string) {
	for _, o := range obs {
		o.Observe(tool, outcome)
	}
}

// Options are shared by all controllers of a workspace.
type Options struct {
	Timeout  time.Duration
	Logger   *zap.Logger
	Observer Observer
}

// Messages are the user-facing strings of one tool.
type Messages struct {
	Empty    string // shown when the input is blank
	Fallback string // shown when a failure carries no server message
}

// Controller owns the request state of one tool. Each Submit runs its
// request in its own goroutine; responses to anything but the latest
// submission are dropped.
type Controller[T any] struct {
	kind     Kind
	fetch    Fetch[T]
	messages Messages
	opts     Options
	logger   *zap.Logger

	mu     sync.Mutex
	state  State[T]
	seq    uint64
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewController[T any](kind Kind, fetch Fetch[T], messages Messages, opts Options) *Controller[T] {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller[T]{
		kind:     kind,
		fetch:    fetch,
		messages: messages,
		opts:     opts,
		logger:   logger.With(zap.String("tool", string(kind))),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *Controller[T]) Kind() Kind { return c.kind }

// Submit starts a request for input and returns without waiting for it.
// A blank input is rejected with a *ValidationError and leaves everything
// but the error message untouched; while loading, not even that.
func (c *Controller[T]) Submit(input string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state.Input = input

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		// A request in flight owns the state until it settles.
		if !c.state.Loading {
			c.state.Error = c.messages.Empty
		}
		c.mu.Unlock()
		c.observe("validation")
		return &ValidationError{Message: c.messages.Empty}
	}

	c.seq++
	seq := c.seq
	c.state.Result = nil
	c.state.Error = ""
	c.state.Loading = true
	c.state.HasSubmitted = true
	c.state.Phase = PhaseLoading
	c.wg.Add(1)
	ctx := c.ctx
	c.mu.Unlock()

	c.logger.Debug("submitted", zap.Uint64("seq", seq), zap.String("input", trimmed))
	go c.run(ctx, seq, trimmed)
	return nil
}

func (c *Controller[T]) run(ctx context.Context, seq uint64, input string) {
	defer c.wg.Done()

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	result, err := c.fetch(ctx, input)

	c.mu.Lock()
	if seq != c.seq || c.closed {
		latest := c.seq
		c.mu.Unlock()
		c.logger.Debug("discarding stale response", zap.Uint64("seq", seq), zap.Uint64("latest", latest))
		c.observe("stale")
		return
	}
	c.state.Loading = false
	if err != nil {
		c.state.Result = nil
		c.state.Error = analyzer.Message(err, c.messages.Fallback)
		c.state.Phase = PhaseFailure
	} else {
		c.state.Result = &result
		c.state.Error = ""
		c.state.Phase = PhaseSuccess
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("request failed", zap.Uint64("seq", seq), zap.Error(err))
	}
	c.observe(analyzer.Outcome(err))
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading reports whether a request is in flight.
func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Loading
}

// Wait blocks until every request started so far has returned.
func (c *Controller[T]) Wait() {
	c.wg.Wait()
}

// Close tears the controller down: in-flight requests are cancelled, their
// responses ignored, and further submissions refused.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *Controller[T]) observe(outcome string) {
	if c.opts.Observer != nil {
		c.opts.Observer.Observe(string(c.kind), outcome)
	}
}
