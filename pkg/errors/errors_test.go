// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, remediation hints and code lookup

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "prerequisite_missing",
			code:    errors.ErrPrerequisiteMissing,
			message: "git not found",
			wantStr: "[PREREQUISITE_MISSING] git not found",
		},
		{
			name:    "layout_not_found",
			code:    errors.ErrLayoutNotFound,
			message: "no component tree",
			wantStr: "[LAYOUT_NOT_FOUND] no component tree",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrStepFailed, "step %q failed after %d attempts", "subtree", 2)
	assert.Equal(t, `step "subtree" failed after 2 attempts`, err.Message)
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrInternal, "internal error")

		assert.Equal(t, errors.ErrInternal, err.Code)
		assert.Same(t, baseErr, err.Wrapped)
		assert.Equal(t, "[INTERNAL] internal error: base error", err.Error())
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "internal error"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"))
	})
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrStepFailed, "error 1")
	err2 := errors.New(errors.ErrStepFailed, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	t.Run("same_code_is_equal", func(t *testing.T) {
		assert.True(t, err1.Is(err2))
	})

	t.Run("different_code_not_equal", func(t *testing.T) {
		assert.False(t, err1.Is(err3))
	})

	t.Run("works_with_errors_Is", func(t *testing.T) {
		assert.True(t, stderrors.Is(fmt.Errorf("outer: %w", err1), err2))
	})
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrLocked, "locked"),
			code:     errors.ErrLocked,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrLocked, "locked"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "wrapped_by_fmt",
			err:      fmt.Errorf("context: %w", errors.New(errors.ErrRolledBack, "rolled back")),
			code:     errors.ErrRolledBack,
			expected: true,
		},
		{
			name:     "standard_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrStepFailed,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrStepFailed,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrConfigInvalid, errors.GetErrorCode(errors.New(errors.ErrConfigInvalid, "bad")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(nil))
}

func TestRemediation(t *testing.T) {
	t.Run("direct_hint", func(t *testing.T) {
		err := errors.New(errors.ErrStepFailed, "dirty worktree").WithRemediation("git stash")
		assert.Equal(t, "git stash", errors.Remediation(err))
	})

	t.Run("hint_on_inner_error", func(t *testing.T) {
		inner := errors.New(errors.ErrPrerequisiteMissing, "git missing").WithRemediation("apt install git")
		outer := errors.Wrap(inner, errors.ErrRolledBack, "installation rolled back")
		assert.Equal(t, "apt install git", errors.Remediation(outer))
	})

	t.Run("no_hint", func(t *testing.T) {
		assert.Empty(t, errors.Remediation(stderrors.New("plain")))
		assert.Empty(t, errors.Remediation(errors.New(errors.ErrInternal, "x")))
	})
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	stepErr := errors.Wrap(rootCause, errors.ErrStepFailed, "settings write failed")
	rolledBack := errors.Wrap(stepErr, errors.ErrRolledBack, "installation rolled back")

	assert.True(t, errors.IsErrorCode(rolledBack, errors.ErrRolledBack))

	var middle *errors.InstallError
	require.True(t, stderrors.As(rolledBack.Unwrap(), &middle))
	assert.Equal(t, errors.ErrStepFailed, middle.Code)

	assert.True(t, stderrors.Is(rolledBack, rootCause))
}
