package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindNotFound:       http.StatusNotFound,
		KindConflict:       http.StatusConflict,
		KindUnexpected:     http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, k.Status(), k.String())
	}
}

func TestIsAndKindOf(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NotFound("item not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
}

func TestRetryableConflict(t *testing.T) {
	cause := errors.New("duplicate key")
	err := RetryableConflict("vote changed concurrently", cause)
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusConflict, err.Status())
	assert.False(t, IsRetryable(Conflict("dup", nil)))
}
