package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "rate limit",
			err:  ErrRateLimit,
			want: true,
		},
		{
			name: "wrapped provider unavailable",
			err:  fmt.Errorf("%w: status 503", ErrProviderUnavailable),
			want: true,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: true,
		},
		{
			name: "retryable wrapper",
			err:  &RetryableError{Err: errors.New("transient"), Retryable: true},
			want: true,
		},
		{
			name: "non-retryable wrapper",
			err:  &RetryableError{Err: errors.New("fatal"), Retryable: false},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("something else"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	cause := ErrTaskCompleted
	err := NewUserError("Task was already completed", cause)

	var userErr *UserError
	assert.True(t, errors.As(err, &userErr))
	assert.Equal(t, "Task was already completed", userErr.UserMessage)
	assert.True(t, errors.Is(err, ErrTaskCompleted))
	assert.Contains(t, err.Error(), "Task was already completed")
}

func TestUserError_NoCause(t *testing.T) {
	err := &UserError{UserMessage: "Nothing to do"}
	assert.Equal(t, "Nothing to do", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
