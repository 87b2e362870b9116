// Package shell groups the three tool controllers of one browser behind a
// tab selector and keeps one such workspace per browser.
package shell

import (
	"errors"
	"fmt"
	"sync"

	"github.com/smallhorseman/SEM37/tool"
)

// ErrUnknownTool is returned for a tool name outside tool.Kinds.
var ErrUnknownTool = errors.New("shell: unknown tool")

// Shell holds the active tab and the controllers behind every tab.
// Switching tabs never touches controller state.
type Shell struct {
	Domain  *tool.DomainAnalysis
	OnPage  *tool.OnPageSeoChecker
	Keyword *tool.KeywordFinder

	mu     sync.RWMutex
	active tool.Kind
}

func NewShell(b tool.Backend, tokens tool.TokenSource, opts tool.Options) *Shell {
	return &Shell{
		Domain:  tool.NewDomainAnalysis(b, tokens, opts),
		OnPage:  tool.NewOnPageSeoChecker(b, tokens, opts),
		Keyword: tool.NewKeywordFinder(b, tokens, opts),
		active:  tool.Domain,
	}
}

// Select makes k the active tab.
func (s *Shell) Select(k tool.Kind) error {
	if _, ok := tool.ParseKind(string(k)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTool, k)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = k
	return nil
}

func (s *Shell) Active() tool.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Submit forwards input to the controller of k.
func (s *Shell) Submit(k tool.Kind, input string) error {
	switch k {
	case tool.Domain:
		return s.Domain.Submit(input)
	case tool.OnPage:
		return s.OnPage.Submit(input)
	case tool.Keyword:
		return s.Keyword.Submit(input)
	}
	return fmt.Errorf("%w: %q", ErrUnknownTool, k)
}

// Loading reports whether the controller of k has a request in flight.
func (s *Shell) Loading(k tool.Kind) bool {
	switch k {
	case tool.Domain:
		return s.Domain.Loading()
	case tool.OnPage:
		return s.OnPage.Loading()
	case tool.Keyword:
		return s.Keyword.Loading()
	}
	return false
}

// Snapshot returns the State of the controller behind k as a value ready
// for JSON encoding or rendering.
func (s *Shell) Snapshot(k tool.Kind) (any, error) {
	switch k {
	case tool.Domain:
		return s.Domain.Snapshot(), nil
	case tool.OnPage:
		return s.OnPage.Snapshot(), nil
	case tool.Keyword:
		return s.Keyword.Snapshot(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTool, k)
}

// Wait blocks until every controller is idle.
func (s *Shell) Wait() {
	s.Domain.Wait()
	s.OnPage.Wait()
	s.Keyword.Wait()
}

// Close tears every controller down.
func (s *Shell) Close() {
	s.Domain.Close()
	s.OnPage.Close()
	s.Keyword.Close()
}
