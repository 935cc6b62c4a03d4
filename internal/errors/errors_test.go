package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "job not found", NotFound("job not found").Error())

	wrapped := Wrap(errors.New("boom"), ErrCodeInternal, "insert distributions")
	assert.Equal(t, "insert distributions: boom", wrapped.Error())
}

func TestWrap_NilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "unused"))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("underlying")
	err := fmt.Errorf("service: %w", Wrapf(cause, ErrCodeValidation, "bad %s", "status"))

	require.ErrorIs(t, err, cause)
	assert.True(t, IsValidation(err))
	assert.Equal(t, ErrCodeValidation, GetCode(err))
}

func TestValidationField(t *testing.T) {
	err := ValidationField("job_id", "job_id is required")
	assert.Equal(t, "job_id", GetField(err))
	assert.Empty(t, GetField(errors.New("plain")))
}

func TestFormattedMessageWithoutArgs(t *testing.T) {
	assert.Equal(t, "100% allocated", Validation("100% allocated").Message)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("x"), http.StatusNotFound},
		{"validation", Validation("x"), http.StatusBadRequest},
		{"foreign key", Wrap(errors.New("fk"), ErrCodeForeignKey, "x"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("x"), http.StatusUnauthorized},
		{"conflict", Conflict("x"), http.StatusConflict},
		{"timeout", Wrap(errors.New("t"), ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{"wrapped not found", fmt.Errorf("get: %w", NotFound("x")), http.StatusNotFound},
		{"plain error", errors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
