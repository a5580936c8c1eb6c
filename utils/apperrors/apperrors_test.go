package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cause := errors.New("connection refused")

	cases := []struct {
		err  error
		want int
	}{
		{Validation("check_out must be after check_in"), http.StatusBadRequest},
		{Authentication("missing token"), http.StatusUnauthorized},
		{Forbidden("you do not own this property"), http.StatusForbidden},
		{NotFound("booking not found"), http.StatusNotFound},
		{Conflict("dates no longer available"), http.StatusConflict},
		{Upstream(cause, "payment provider unavailable"), http.StatusBadGateway},
		{Internal(cause, "failed to create booking"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), "error: %v", tc.err)
	}
}

func TestMessageHidesInternalDetail(t *testing.T) {
	cause := errors.New("pq: relation bookings does not exist")

	err := Internal(cause, "failed to create booking")
	assert.Equal(t, "failed to create booking", Message(err))
	// The cause stays visible to logs through Error().
	assert.Contains(t, err.Error(), "relation bookings")

	assert.Equal(t, "internal server error", Message(cause))
}

func TestUnwrapAndAs(t *testing.T) {
	cause := errors.New("timeout")
	err := Upstream(cause, "provider call failed")

	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("initiating payment: %w", err)
	assert.Equal(t, KindUpstream, KindOf(wrapped))
	assert.Equal(t, "provider call failed", Message(wrapped))
	assert.Equal(t, http.StatusBadGateway, Status(wrapped))
}

func TestConstructorFormatting(t *testing.T) {
	err := Conflict("cannot cancel booking with status %q", "completed")
	assert.Equal(t, `cannot cancel booking with status "completed"`, err.Message)
	assert.Equal(t, KindConflict, err.Kind)
	assert.Nil(t, err.Err)
}
