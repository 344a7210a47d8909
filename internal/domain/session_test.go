package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageTransitions(t *testing.T) {
	tests := []struct {
		from    Stage
		to      Stage
		allowed bool
	}{
		{from: StageLoading, to: StageLocked, allowed: true},
		{from: StageLoading, to: StageAdmin, allowed: true},
		{from: StageLocked, to: StageAdmin, allowed: true},
		{from: StageLocked, to: StageDashboard},
		{from: StageNeedsSession, to: StageAdmin, allowed: true},
		{from: StageNeedsSession, to: StageSplash},
		{from: StageAdmin, to: StageSplash, allowed: true},
		{from: StageSplash, to: StageVideo, allowed: true},
		{from: StageVideo, to: StageDashboard, allowed: true},
		{from: StageDashboard, to: StageAdmin, allowed: true},
		{from: StageDashboard, to: StageLocked},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStageNext(t *testing.T) {
	stage := StageAdmin
	var path []Stage
	for {
		next, ok := stage.Next()
		if !ok {
			break
		}
		path = append(path, next)
		stage = next
	}

	assert.Equal(t, []Stage{StageSplash, StageVideo, StageDashboard}, path)
}

func TestSessionValidate(t *testing.T) {
	require.NoError(t, Session{Name: "GA Plenary"}.Validate())

	err := Session{Name: "   "}.Validate()
	require.ErrorIs(t, err, ErrValidation)

	err = Session{Name: strings.Repeat("x", MaxSessionNameLength+1)}.Validate()
	require.ErrorIs(t, err, ErrValidation)
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: Required("name"), want: "validation"},
		{err: &RemoteWriteError{Collection: "attendance", Op: "update", Err: errors.New("boom")}, want: "remote_write"},
		{err: &ConfigurationError{Key: "remote.url", Reason: "not https"}, want: "configuration"},
		{err: ErrSessionNotFound, want: "not_found"},
		{err: ErrTimerRunning, want: "invalid_transition"},
		{err: errors.New("disk full"), want: "internal"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err))
	}
}

func TestValidationErrorMessage(t *testing.T) {
	v := NewValidationError()
	require.NoError(t, v.Err())

	v.Add("title", "is too long")
	v.Add("code", "is required")

	assert.Equal(t, "code is required; title is too long", v.Error())
	assert.True(t, errors.Is(v, ErrValidation))
}
