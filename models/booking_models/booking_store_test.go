package booking_models

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlet-ng/backend/models/shared_models"
	"github.com/shortlet-ng/backend/utils/apperrors"
)

// testPool connects to TEST_DATABASE_URL, applies the schema, and truncates
// all tables. Tests that need a live database skip when it is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../scripts/schema.sql")
	require.NoError(t, err)
	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err, stmt)
	}

	_, err = pool.Exec(ctx,
		`TRUNCATE users, properties, bookings, reviews, webhook_events RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool, email string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (email, first_name, last_name) VALUES ($1, 'Ada', 'Okafor') RETURNING id`,
		email).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedProperty(t *testing.T, pool *pgxpool.Pool, hostID int64, price float64) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO properties (host_id, title, address, city, state, price_per_night, max_guests)
		VALUES ($1, 'Lekki Flat', '1 Admiralty Way', 'Lagos', 'Lagos', $2, 4)
		RETURNING id`,
		hostID, price).Scan(&id)
	require.NoError(t, err)
	return id
}

// seedBooking inserts a booking row directly, bypassing CreateBooking's
// date validation, for fixtures like past stays or pre-set references.
func seedBooking(t *testing.T, pool *pgxpool.Pool, guestID, propertyID int64,
	checkIn, checkOut time.Time, status shared_models.BookingStatus, total float64, reference *string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO bookings (guest_id, property_id, check_in_date, check_out_date,
		                      num_guests, total_price, status, payment_status, payment_reference)
		VALUES ($1, $2, $3, $4, 2, $5, $6, 'unpaid', $7)
		RETURNING id`,
		guestID, propertyID, checkIn, checkOut, total, status, reference).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestCreateBookingAgainstConfirmedSet(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	host := seedUser(t, pool, "host@example.com")
	guest := seedUser(t, pool, "guest@example.com")
	other := seedUser(t, pool, "other@example.com")
	property := seedProperty(t, pool, host, 100)

	base := Today().AddDate(0, 1, 0)
	seedBooking(t, pool, guest, property, base, base.AddDate(0, 0, 5),
		shared_models.BookingStatusConfirmed, 500, nil)

	t.Run("OverlapWithConfirmedConflicts", func(t *testing.T) {
		_, err := CreateBooking(ctx, pool, CreateParams{
			GuestID: other, PropertyID: property,
			CheckIn: base.AddDate(0, 0, 2), CheckOut: base.AddDate(0, 0, 7), NumGuests: 2,
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	})

	t.Run("BackToBackSucceeds", func(t *testing.T) {
		b, err := CreateBooking(ctx, pool, CreateParams{
			GuestID: other, PropertyID: property,
			CheckIn: base.AddDate(0, 0, 5), CheckOut: base.AddDate(0, 0, 8), NumGuests: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, shared_models.BookingStatusPending, b.Status)
		assert.InDelta(t, 300, b.TotalPrice, 1e-9)
	})

	t.Run("CompetingPendingsCoexist", func(t *testing.T) {
		start, end := base.AddDate(0, 0, 20), base.AddDate(0, 0, 23)
		first, err := CreateBooking(ctx, pool, CreateParams{
			GuestID: guest, PropertyID: property, CheckIn: start, CheckOut: end, NumGuests: 2,
		})
		require.NoError(t, err)
		second, err := CreateBooking(ctx, pool, CreateParams{
			GuestID: other, PropertyID: property, CheckIn: start, CheckOut: end, NumGuests: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, shared_models.BookingStatusPending, first.Status)
		assert.Equal(t, shared_models.BookingStatusPending, second.Status)
	})

	t.Run("FrozenTotalSurvivesPriceChange", func(t *testing.T) {
		b, err := CreateBooking(ctx, pool, CreateParams{
			GuestID: guest, PropertyID: property,
			CheckIn: base.AddDate(0, 2, 0), CheckOut: base.AddDate(0, 2, 3), NumGuests: 2,
		})
		require.NoError(t, err)

		_, err = pool.Exec(ctx, `UPDATE properties SET price_per_night = 999 WHERE id = $1`, property)
		require.NoError(t, err)

		reloaded, err := GetBookingByID(ctx, pool, b.ID)
		require.NoError(t, err)
		assert.InDelta(t, 300, reloaded.TotalPrice, 1e-9)
	})
}

func TestConfirmBookingSerializesOverlaps(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	host := seedUser(t, pool, "host@example.com")
	guestA := seedUser(t, pool, "a@example.com")
	guestB := seedUser(t, pool, "b@example.com")
	property := seedProperty(t, pool, host, 100)

	base := Today().AddDate(0, 1, 0)
	first := seedBooking(t, pool, guestA, property, base, base.AddDate(0, 0, 4),
		shared_models.BookingStatusPending, 400, nil)
	second := seedBooking(t, pool, guestB, property, base.AddDate(0, 0, 2), base.AddDate(0, 0, 6),
		shared_models.BookingStatusPending, 400, nil)

	t.Run("WrongHostForbidden", func(t *testing.T) {
		_, err := ConfirmBooking(ctx, pool, first, guestB)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	})

	t.Run("FirstConfirmationWins", func(t *testing.T) {
		b, err := ConfirmBooking(ctx, pool, first, host)
		require.NoError(t, err)
		assert.Equal(t, shared_models.BookingStatusConfirmed, b.Status)
	})

	t.Run("SecondConfirmationConflicts", func(t *testing.T) {
		_, err := ConfirmBooking(ctx, pool, second, host)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

		reloaded, err := GetBookingByID(ctx, pool, second)
		require.NoError(t, err)
		assert.Equal(t, shared_models.BookingStatusPending, reloaded.Status)
	})

	t.Run("ReconfirmConflicts", func(t *testing.T) {
		_, err := ConfirmBooking(ctx, pool, first, host)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	})
}

func TestApplyChargeSuccessReconciliation(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	host := seedUser(t, pool, "host@example.com")
	guest := seedUser(t, pool, "guest@example.com")
	property := seedProperty(t, pool, host, 100)

	base := Today().AddDate(0, 1, 0)
	booking := seedBooking(t, pool, guest, property, base, base.AddDate(0, 0, 3),
		shared_models.BookingStatusConfirmed, 300, nil)

	reference := NewPaymentReference(booking, time.Now())
	require.NoError(t, SetPaymentReference(ctx, pool, booking, reference))
	amount := KoboAmount(300)

	t.Run("UnknownReference", func(t *testing.T) {
		outcome, b, err := ApplyChargeSuccess(ctx, pool, "booking_999_1", amount)
		require.NoError(t, err)
		assert.Equal(t, PaidUnknownReference, outcome)
		assert.Nil(t, b)
	})

	t.Run("AmountMismatchLeavesUnpaid", func(t *testing.T) {
		outcome, _, err := ApplyChargeSuccess(ctx, pool, reference, amount-1)
		require.NoError(t, err)
		assert.Equal(t, PaidAmountMismatch, outcome)

		reloaded, err := GetBookingByID(ctx, pool, booking)
		require.NoError(t, err)
		assert.Equal(t, shared_models.PaymentStatusUnpaid, reloaded.PaymentStatus)
	})

	t.Run("MatchingAmountApplies", func(t *testing.T) {
		outcome, b, err := ApplyChargeSuccess(ctx, pool, reference, amount)
		require.NoError(t, err)
		assert.Equal(t, PaidApplied, outcome)
		assert.Equal(t, shared_models.PaymentStatusPaid, b.PaymentStatus)
		assert.Equal(t, shared_models.BookingStatusConfirmed, b.Status)
	})

	t.Run("ReplayIsIdempotent", func(t *testing.T) {
		outcome, b, err := ApplyChargeSuccess(ctx, pool, reference, amount)
		require.NoError(t, err)
		assert.Equal(t, PaidAlready, outcome)
		assert.Equal(t, shared_models.PaymentStatusPaid, b.PaymentStatus)

		var paidCount int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM bookings WHERE payment_status = 'paid'`).Scan(&paidCount))
		assert.Equal(t, 1, paidCount)
	})

	t.Run("PendingBookingIsPromoted", func(t *testing.T) {
		ref := "booking_pending_1"
		pending := seedBooking(t, pool, guest, property, base.AddDate(0, 2, 0), base.AddDate(0, 2, 2),
			shared_models.BookingStatusPending, 200, &ref)

		outcome, b, err := ApplyChargeSuccess(ctx, pool, ref, KoboAmount(200))
		require.NoError(t, err)
		assert.Equal(t, PaidApplied, outcome)
		assert.Equal(t, pending, b.ID)
		assert.Equal(t, shared_models.BookingStatusConfirmed, b.Status)
		assert.Equal(t, shared_models.PaymentStatusPaid, b.PaymentStatus)
	})
}
