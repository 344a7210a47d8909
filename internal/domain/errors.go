package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrResolutionNotFound = errors.New("resolution not found")
	ErrDelegateNotFound   = errors.New("delegate not found")
	ErrCacheMiss          = errors.New("cache entry not found")
	ErrNoActiveSession    = errors.New("no active session")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrTimerRunning       = errors.New("timer is running")
	ErrTimerExpired       = errors.New("timer has expired")
	ErrVotingClosed       = errors.New("voting is not open")
	ErrNotEligible        = errors.New("delegate is not eligible to vote")
	ErrInvalidPassphrase  = errors.New("invalid passphrase")
	ErrValidation         = errors.New("validation failed")
)

// ValidationError collects field level problems found before a mutation is applied.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = message
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// Err returns nil when nothing was recorded.
func (e *ValidationError) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	if !e.HasErrors() {
		return ErrValidation.Error()
	}

	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", field, e.Fields[field]))
	}

	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func Required(field string) *ValidationError {
	v := NewValidationError()
	v.Add(field, "is required")
	return v
}

type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Key, e.Reason)
}

type RemoteWriteError struct {
	Collection string
	Op         string
	Err        error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("remote %s on %s: %v", e.Op, e.Collection, e.Err)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}

func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var remoteErr *RemoteWriteError
	var configErr *ConfigurationError
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.As(err, &remoteErr):
		return "remote_write"
	case errors.As(err, &configErr):
		return "configuration"
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrResolutionNotFound), errors.Is(err, ErrDelegateNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrTimerRunning), errors.Is(err, ErrTimerExpired):
		return "invalid_transition"
	}

	return "internal"
}
