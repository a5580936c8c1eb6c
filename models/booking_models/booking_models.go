package booking_models

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlet-ng/backend/logger"
	"github.com/shortlet-ng/backend/models/shared_models"
	"github.com/shortlet-ng/backend/utils/apperrors"
)

// Booking is a guest's reservation of a property for [CheckInDate,
// CheckOutDate). TotalPrice is computed once at creation from the property's
// nightly price and never recomputed; PaymentReference is set at first
// payment attempt and replaced wholesale on retry, so at most one live
// reference ever points at a booking.
type Booking struct {
	ID               int64                       `json:"id"`
	GuestID          int64                       `json:"guest_id"`
	PropertyID       int64                       `json:"property_id"`
	CheckInDate      time.Time                   `json:"check_in_date"`
	CheckOutDate     time.Time                   `json:"check_out_date"`
	NumGuests        int                         `json:"num_guests"`
	TotalPrice       float64                     `json:"total_price"`
	Status           shared_models.BookingStatus `json:"status"`
	PaymentStatus    shared_models.PaymentStatus `json:"payment_status"`
	PaymentReference *string                     `json:"payment_reference,omitempty"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

const bookingColumns = `
	id, guest_id, property_id, check_in_date, check_out_date, num_guests,
	total_price, status, payment_status, payment_reference, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	err := row.Scan(
		&b.ID, &b.GuestID, &b.PropertyID, &b.CheckInDate, &b.CheckOutDate,
		&b.NumGuests, &b.TotalPrice, &b.Status, &b.PaymentStatus,
		&b.PaymentReference, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Payable reports whether a payment attempt may be started for the booking.
// Only confirmed, unpaid bookings accept payment.
func (b *Booking) Payable() bool {
	return b.Status == shared_models.BookingStatusConfirmed &&
		b.PaymentStatus == shared_models.PaymentStatusUnpaid
}

// Nights returns the number of nights between two dates.
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// TotalPrice computes the frozen booking total: nights times nightly price.
func TotalPrice(pricePerNight float64, checkIn, checkOut time.Time) float64 {
	return float64(Nights(checkIn, checkOut)) * pricePerNight
}

// KoboAmount converts a naira price to the provider's minor unit.
func KoboAmount(price float64) int64 {
	return int64(math.Round(price * 100))
}

// NewPaymentReference builds a per-attempt reference. The timestamp
// guarantees a retried payment for the same booking never collides with an
// earlier attempt.
func NewPaymentReference(bookingID int64, now time.Time) string {
	return fmt.Sprintf("booking_%d_%d", bookingID, now.Unix())
}

// Today returns the current date at UTC midnight, the granularity all
// booking date comparisons use.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateParams carries the validated input for CreateBooking.
type CreateParams struct {
	GuestID    int64
	PropertyID int64
	CheckIn    time.Time
	CheckOut   time.Time
	NumGuests  int
}

// CreateBooking creates a pending, unpaid booking. The property row is
// locked for the duration of the transaction so the confirmed-conflict check
// and the insert cannot interleave with a concurrent confirmation for the
// same property. Pending requests for the same dates are allowed to coexist;
// only confirmation resolves the race.
func CreateBooking(ctx context.Context, db *pgxpool.Pool, p CreateParams) (*Booking, error) {
	if !p.CheckOut.After(p.CheckIn) {
		return nil, apperrors.Validation("check-out date must be after check-in date")
	}
	if p.CheckIn.Before(Today()) {
		return nil, apperrors.Validation("check-in date cannot be in the past")
	}
	if p.NumGuests < 1 {
		return nil, apperrors.Validation("number of guests must be positive")
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to begin booking transaction: %v", err)
		return nil, apperrors.Internal(err, "failed to create booking")
	}
	defer tx.Rollback(ctx)

	var pricePerNight float64
	var maxGuests int
	err = tx.QueryRow(ctx,
		`SELECT price_per_night, max_guests FROM properties WHERE id = $1 FOR UPDATE`,
		p.PropertyID).Scan(&pricePerNight, &maxGuests)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("property not found")
		}
		logger.ErrorLogger.Errorf("Failed to lock property %d: %v", p.PropertyID, err)
		return nil, apperrors.Internal(err, "failed to create booking")
	}

	if p.NumGuests > maxGuests {
		return nil, apperrors.Validation("number of guests (%d) exceeds property capacity (%d)", p.NumGuests, maxGuests)
	}

	conflict, err := HasConflict(ctx, tx, p.PropertyID, p.CheckIn, p.CheckOut, 0)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperrors.Conflict("requested dates conflict with an existing booking for this property")
	}

	total := TotalPrice(pricePerNight, p.CheckIn, p.CheckOut)

	booking, err := scanBooking(tx.QueryRow(ctx, `
		INSERT INTO bookings (
			guest_id, property_id, check_in_date, check_out_date,
			num_guests, total_price, status, payment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+bookingColumns,
		p.GuestID, p.PropertyID, p.CheckIn, p.CheckOut, p.NumGuests, total,
		shared_models.BookingStatusPending, shared_models.PaymentStatusUnpaid,
	))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert booking for property %d: %v", p.PropertyID, err)
		return nil, apperrors.Internal(err, "failed to create booking")
	}

	if err := tx.Commit(ctx); err != nil {
		logger.ErrorLogger.Errorf("Failed to commit booking for property %d: %v", p.PropertyID, err)
		return nil, apperrors.Internal(err, "failed to create booking")
	}

	logger.InfoLogger.Infof("Booking %d created (pending) for property %d by guest %d", booking.ID, p.PropertyID, p.GuestID)
	return booking, nil
}

// GetBookingByID fetches a booking by its id.
func GetBookingByID(ctx context.Context, db *pgxpool.Pool, bookingID int64) (*Booking, error) {
	booking, err := scanBooking(db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("booking not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %d: %v", bookingID, err)
		return nil, apperrors.Internal(err, "database error fetching booking")
	}
	return booking, nil
}

// lockBookingAndProperty loads the booking row FOR UPDATE, then locks its
// property row and returns the property's host id. Locking the property
// serializes every state-changing operation per property, which is what
// keeps the confirmed set non-overlapping under concurrency.
func lockBookingAndProperty(ctx context.Context, tx pgx.Tx, bookingID int64) (*Booking, int64, error) {
	booking, err := scanBooking(tx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, apperrors.NotFound("booking not found")
		}
		return nil, 0, apperrors.Internal(err, "database error fetching booking")
	}

	var hostID int64
	err = tx.QueryRow(ctx,
		`SELECT host_id FROM properties WHERE id = $1 FOR UPDATE`,
		booking.PropertyID).Scan(&hostID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, apperrors.NotFound("property for booking not found")
		}
		return nil, 0, apperrors.Internal(err, "database error fetching property")
	}

	return booking, hostID, nil
}

// ConfirmBooking moves a pending booking to confirmed on behalf of the
// property's host. The conflict check is re-run here, excluding the booking
// itself: another pending request for overlapping dates may have been
// confirmed since creation, and confirming both would double-book.
func ConfirmBooking(ctx context.Context, db *pgxpool.Pool, bookingID, actingHostID int64) (*Booking, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to confirm booking")
	}
	defer tx.Rollback(ctx)

	booking, hostID, err := lockBookingAndProperty(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}

	// Ownership is derived from the locked property row, never from a
	// client-supplied claim.
	if hostID != actingHostID {
		return nil, apperrors.Forbidden("you do not own the property for this booking")
	}

	if booking.Status != shared_models.BookingStatusPending {
		return nil, apperrors.Conflict("booking is already %s, cannot confirm", booking.Status)
	}

	conflict, err := HasConflict(ctx, tx, booking.PropertyID, booking.CheckInDate, booking.CheckOutDate, booking.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperrors.Conflict("cannot confirm booking, dates now conflict with another confirmed booking")
	}

	updated, err := scanBooking(tx.QueryRow(ctx, `
		UPDATE bookings SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+bookingColumns,
		bookingID, shared_models.BookingStatusConfirmed))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to confirm booking %d: %v", bookingID, err)
		return nil, apperrors.Internal(err, "failed to confirm booking")
	}

	if err := tx.Commit(ctx); err != nil {
		logger.ErrorLogger.Errorf("Failed to commit confirmation of booking %d: %v", bookingID, err)
		return nil, apperrors.Internal(err, "failed to confirm booking")
	}

	logger.InfoLogger.Infof("Booking %d confirmed by host %d", bookingID, actingHostID)
	return updated, nil
}

// CancelBooking cancels a pending or confirmed booking on behalf of the
// property's host. Payment status is left untouched: a paid and cancelled
// booking is a valid terminal state handled by operational tooling.
func CancelBooking(ctx context.Context, db *pgxpool.Pool, bookingID, actingHostID int64) (*Booking, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to cancel booking")
	}
	defer tx.Rollback(ctx)

	booking, hostID, err := lockBookingAndProperty(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}

	if hostID != actingHostID {
		return nil, apperrors.Forbidden("you do not own the property for this booking")
	}

	if !booking.Status.Cancellable() {
		return nil, apperrors.Conflict("cannot cancel booking with status %q", booking.Status)
	}

	updated, err := scanBooking(tx.QueryRow(ctx, `
		UPDATE bookings SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+bookingColumns,
		bookingID, shared_models.BookingStatusCancelled))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to cancel booking %d: %v", bookingID, err)
		return nil, apperrors.Internal(err, "failed to cancel booking")
	}

	if err := tx.Commit(ctx); err != nil {
		logger.ErrorLogger.Errorf("Failed to commit cancellation of booking %d: %v", bookingID, err)
		return nil, apperrors.Internal(err, "failed to cancel booking")
	}

	logger.InfoLogger.Infof("Booking %d cancelled by host %d", bookingID, actingHostID)
	return updated, nil
}

// SetPaymentReference records the reference for a payment attempt, replacing
// any earlier attempt's reference. The booking must still be confirmed and
// unpaid: initiation state may have changed between the provider call and
// this commit.
func SetPaymentReference(ctx context.Context, db *pgxpool.Pool, bookingID int64, reference string) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return apperrors.Internal(err, "failed to record payment reference")
	}
	defer tx.Rollback(ctx)

	var status shared_models.BookingStatus
	var paymentStatus shared_models.PaymentStatus
	err = tx.QueryRow(ctx,
		`SELECT status, payment_status FROM bookings WHERE id = $1 FOR UPDATE`,
		bookingID).Scan(&status, &paymentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("booking not found")
		}
		return apperrors.Internal(err, "failed to record payment reference")
	}

	if status != shared_models.BookingStatusConfirmed || paymentStatus != shared_models.PaymentStatusUnpaid {
		return apperrors.Conflict("booking cannot be paid for in its current state (status: %s, payment: %s)", status, paymentStatus)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE bookings SET payment_reference = $2, updated_at = NOW() WHERE id = $1`,
		bookingID, reference); err != nil {
		logger.ErrorLogger.Errorf("Failed to store payment reference for booking %d: %v", bookingID, err)
		return apperrors.Internal(err, "failed to record payment reference")
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Internal(err, "failed to record payment reference")
	}

	logger.InfoLogger.Infof("Payment reference %s stored for booking %d", reference, bookingID)
	return nil
}

// PaidOutcome describes the effect of applying a charge-success event.
type PaidOutcome int

const (
	// PaidApplied means the booking was marked paid by this event.
	PaidApplied PaidOutcome = iota
	// PaidAlready means a previous delivery of this event already took
	// effect; the replay is a harmless no-op.
	PaidAlready
	// PaidUnknownReference means no booking carries the reference. The
	// event may be stale or belong to another system.
	PaidUnknownReference
	// PaidAmountMismatch means the notified amount does not equal the
	// booking's frozen total; the booking is left unpaid for manual review.
	PaidAmountMismatch
)

// ApplyChargeSuccess reconciles an authenticated charge-success event with
// local state. Deliveries are at-least-once, so the whole update is
// idempotent: replays of the same reference and amount land on PaidAlready
// without error. On success the booking is marked paid and, if it was
// pending or confirmed, forced to confirmed.
func ApplyChargeSuccess(ctx context.Context, db *pgxpool.Pool, reference string, amountKobo int64) (PaidOutcome, *Booking, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, nil, apperrors.Internal(err, "failed to apply payment event")
	}
	defer tx.Rollback(ctx)

	booking, err := scanBooking(tx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE payment_reference = $1 FOR UPDATE`,
		reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PaidUnknownReference, nil, nil
		}
		return 0, nil, apperrors.Internal(err, "failed to look up payment reference")
	}

	// Serialize with confirm/cancel on the same property.
	if _, err := tx.Exec(ctx,
		`SELECT id FROM properties WHERE id = $1 FOR UPDATE`, booking.PropertyID); err != nil {
		return 0, nil, apperrors.Internal(err, "failed to lock property for payment")
	}

	if KoboAmount(booking.TotalPrice) != amountKobo {
		return PaidAmountMismatch, booking, nil
	}

	if booking.PaymentStatus == shared_models.PaymentStatusPaid {
		return PaidAlready, booking, nil
	}

	updated, err := scanBooking(tx.QueryRow(ctx, `
		UPDATE bookings
		SET payment_status = $2,
		    status = CASE WHEN status IN ('pending', 'confirmed') THEN 'confirmed' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+bookingColumns,
		booking.ID, shared_models.PaymentStatusPaid))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark booking %d paid for reference %s: %v", booking.ID, reference, err)
		return 0, nil, apperrors.Internal(err, "failed to mark booking paid")
	}

	if err := tx.Commit(ctx); err != nil {
		logger.ErrorLogger.Errorf("Failed to commit payment for reference %s: %v", reference, err)
		return 0, nil, apperrors.Internal(err, "failed to mark booking paid")
	}

	logger.InfoLogger.Infof("Booking %d marked paid via reference %s", updated.ID, reference)
	return PaidApplied, updated, nil
}

// PropertySummary is the slice of property data joined into guest booking
// listings.
type PropertySummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	City  string `json:"city"`
	State string `json:"state"`
}

// GuestBooking is a booking with its property summary, for "my bookings".
type GuestBooking struct {
	Booking
	Property PropertySummary `json:"property"`
}

// GetBookingsByGuest returns the guest's bookings, most recent check-in
// first, each with a summary of the booked property.
func GetBookingsByGuest(ctx context.Context, db *pgxpool.Pool, guestID int64) ([]GuestBooking, error) {
	query := `
		SELECT b.id, b.guest_id, b.property_id, b.check_in_date, b.check_out_date,
		       b.num_guests, b.total_price, b.status, b.payment_status,
		       b.payment_reference, b.created_at, b.updated_at,
		       p.id, p.title, p.city, p.state
		FROM bookings b
		JOIN properties p ON p.id = b.property_id
		WHERE b.guest_id = $1
		ORDER BY b.check_in_date DESC`

	rows, err := db.Query(ctx, query, guestID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings for guest %d: %v", guestID, err)
		return nil, apperrors.Internal(err, "failed to fetch bookings")
	}
	defer rows.Close()

	bookings := []GuestBooking{}
	for rows.Next() {
		var gb GuestBooking
		err := rows.Scan(
			&gb.ID, &gb.GuestID, &gb.PropertyID, &gb.CheckInDate, &gb.CheckOutDate,
			&gb.NumGuests, &gb.TotalPrice, &gb.Status, &gb.PaymentStatus,
			&gb.PaymentReference, &gb.CreatedAt, &gb.UpdatedAt,
			&gb.Property.ID, &gb.Property.Title, &gb.Property.City, &gb.Property.State,
		)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to scan booking")
		}
		bookings = append(bookings, gb)
	}
	return bookings, rows.Err()
}

// GuestSummary is the slice of guest data joined into host booking listings.
type GuestSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// HostBooking is a booking with its guest summary, for the host dashboard.
type HostBooking struct {
	Booking
	Guest GuestSummary `json:"guest"`
}

// GetBookingsByHost returns all bookings across the host's properties, most
// recent check-in first, each with a summary of the booking guest.
func GetBookingsByHost(ctx context.Context, db *pgxpool.Pool, hostID int64) ([]HostBooking, error) {
	query := `
		SELECT b.id, b.guest_id, b.property_id, b.check_in_date, b.check_out_date,
		       b.num_guests, b.total_price, b.status, b.payment_status,
		       b.payment_reference, b.created_at, b.updated_at,
		       u.id, u.first_name, u.last_name
		FROM bookings b
		JOIN properties p ON p.id = b.property_id
		JOIN users u ON u.id = b.guest_id
		WHERE p.host_id = $1
		ORDER BY b.check_in_date DESC`

	rows, err := db.Query(ctx, query, hostID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings for host %d: %v", hostID, err)
		return nil, apperrors.Internal(err, "failed to fetch bookings")
	}
	defer rows.Close()

	bookings := []HostBooking{}
	for rows.Next() {
		var hb HostBooking
		err := rows.Scan(
			&hb.ID, &hb.GuestID, &hb.PropertyID, &hb.CheckInDate, &hb.CheckOutDate,
			&hb.NumGuests, &hb.TotalPrice, &hb.Status, &hb.PaymentStatus,
			&hb.PaymentReference, &hb.CreatedAt, &hb.UpdatedAt,
			&hb.Guest.ID, &hb.Guest.FirstName, &hb.Guest.LastName,
		)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to scan booking")
		}
		bookings = append(bookings, hb)
	}
	return bookings, rows.Err()
}
