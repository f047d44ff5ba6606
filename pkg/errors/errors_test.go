package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"rate limited", 429, ErrRateLimited},
		{"unauthorized", 401, ErrCredentialsInvalid},
		{"forbidden", 403, ErrCredentialsInvalid},
		{"server error", 500, ErrEnvironmentUnavailable},
		{"bad gateway", 502, ErrEnvironmentUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError("master", tt.status, "boom")
			assert.ErrorIs(t, err, tt.target)
		})
	}

	// A plain 404 maps to none of the sentinels.
	err := NewAPIError("local", 404, "missing")
	assert.NotErrorIs(t, err, ErrRateLimited)
	assert.NotErrorIs(t, err, ErrEnvironmentUnavailable)
}

func TestAuthenticationError(t *testing.T) {
	err := NewAuthenticationError("master", "client_credentials", "rejected", ErrCredentialsInvalid)
	assert.True(t, IsCredentialsError(err))
	assert.Contains(t, err.Error(), "master")
	assert.Contains(t, err.Error(), "client_credentials")
}

func TestSyncErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewSyncError("r1", "create", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "r1")
	assert.Contains(t, err.Error(), "create")
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("id", "", "cannot update unavailability without an ID")
	assert.True(t, IsValidationError(err))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "id", verr.Field)
}

func TestWrapHelpers(t *testing.T) {
	assert.NoError(t, WrapIO("read", "/tmp/x", nil))
	assert.NoError(t, WrapResource("list", "resource", "master", nil))
	assert.NoError(t, WrapParse("json", "response", nil))

	cause := fmt.Errorf("disk full")
	err := WrapIO("write", "/tmp/x", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "/tmp/x")
}
