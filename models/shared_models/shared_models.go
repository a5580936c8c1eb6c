package shared_models

// BookingStatus is the lifecycle state of a booking. Values are stored
// verbatim in the bookings.status column.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	// BookingStatusCompleted is reachable only by time passage (check-out
	// elapsed); no operation in this service writes it. Review eligibility
	// checks the check-out date directly rather than this status.
	BookingStatusCompleted BookingStatus = "completed"
)

// Valid reports whether s is one of the known booking statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine permits moving from s to
// next. Cancellation is allowed from either active state; confirmed is only
// reachable from pending.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	case BookingStatusCancelled, BookingStatusCompleted:
		return false
	}
	return false
}

// Cancellable reports whether a booking in state s may still be cancelled.
func (s BookingStatus) Cancellable() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// PaymentStatus tracks the money side of a booking independently of its
// lifecycle status. A paid and cancelled booking is a valid terminal
// combination; refunds are handled by operational tooling, not this service.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Valid reports whether p is one of the known payment statuses.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}
