// Package tool holds the request lifecycle shared by every SEO tool: one
// text input, one backend request per submission, and the view state that
// follows from it.
package tool

import "errors"

// Phase is where a controller sits in its request lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailure
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a point-in-time copy of a controller's request state. Result is
// nil until a request succeeds and is never mutated afterwards.
type State[T any] struct {
	Input        string `json:"input"`
	Loading      bool   `json:"isLoading"`
	Result       *T     `json:"result"`
	Error        string `json:"error"`
	HasSubmitted bool   `json:"hasSubmitted"`
	Phase        Phase  `json:"phase"`
}

// ValidationError rejects a submission before any request is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrClosed is returned by Submit after the controller was torn down.
var ErrClosed = errors.New("tool: controller closed")
