package analyzer

import (
	"context"
	"errors"
	"fmt"
)

// NetworkError indicates the request could not be sent or its response
// could not be read.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Errorf("network: %s: %w", e.Op, e.Err).Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request ran out of time.
func (e *NetworkError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// ServerError indicates a non-2xx response. Message carries the backend's
// {"error": "..."} field when present.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server: status %d", e.StatusCode)
	}
	return fmt.Sprintf("server: status %d: %s", e.StatusCode, e.Message)
}

// ParseError indicates a 2xx response whose body was not the expected JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Errorf("parse: %w", e.Err).Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Message reduces err to the text shown to the user: the server-supplied
// message when there is one, the fallback otherwise.
func Message(err error, fallback string) string {
	var serverErr *ServerError
	if errors.As(err, &serverErr) && serverErr.Message != "" {
		return serverErr.Message
	}
	return fallback
}

// Outcome labels err for metrics and statistics.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var (
		netErr    *NetworkError
		serverErr *ServerError
		parseErr  *ParseError
	)
	switch {
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	case errors.As(err, &serverErr):
		return "server"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "other"
	}
}
