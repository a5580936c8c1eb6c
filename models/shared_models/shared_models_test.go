package shared_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusCancelled, BookingStatusPending, false},
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusConfirmed, BookingStatusCompleted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestBookingStatusCancellable(t *testing.T) {
	assert.True(t, BookingStatusPending.Cancellable())
	assert.True(t, BookingStatusConfirmed.Cancellable())
	assert.False(t, BookingStatusCancelled.Cancellable())
	assert.False(t, BookingStatusCompleted.Cancellable())
}

func TestStatusValid(t *testing.T) {
	for _, s := range []BookingStatus{
		BookingStatusPending, BookingStatusConfirmed,
		BookingStatusCancelled, BookingStatusCompleted,
	} {
		assert.True(t, s.Valid())
	}
	assert.False(t, BookingStatus("refunded").Valid())
	assert.False(t, BookingStatus("").Valid())

	for _, s := range []PaymentStatus{
		PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded,
	} {
		assert.True(t, s.Valid())
	}
	assert.False(t, PaymentStatus("pending").Valid())
}
