package payment_controller

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlet-ng/backend/models/booking_models"
	"github.com/shortlet-ng/backend/models/shared_models"
)

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

// TestWebhookReconciliationFlow drives charge events through the full
// handler: signature accepted by the mock, audit row recorded, booking state
// reconciled. Mismatched and replayed deliveries both acknowledge with 200.
func TestWebhookReconciliationFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pool := testPool(t)
	ctx := context.Background()

	var host, guest, property, booking int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO users (email) VALUES ('host@example.com') RETURNING id`).Scan(&host))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO users (email) VALUES ('guest@example.com') RETURNING id`).Scan(&guest))
	require.NoError(t, pool.QueryRow(ctx, `
		INSERT INTO properties (host_id, title, address, city, state, price_per_night, max_guests)
		VALUES ($1, 'Lekki Flat', '1 Admiralty Way', 'Lagos', 'Lagos', 100, 4)
		RETURNING id`, host).Scan(&property))

	in := time.Now().UTC().AddDate(0, 1, 0)
	require.NoError(t, pool.QueryRow(ctx, `
		INSERT INTO bookings (guest_id, property_id, check_in_date, check_out_date,
		                      num_guests, total_price, status, payment_status)
		VALUES ($1, $2, $3, $4, 2, 300, 'confirmed', 'unpaid')
		RETURNING id`, guest, property, in, in.AddDate(0, 0, 3)).Scan(&booking))

	reference := booking_models.NewPaymentReference(booking, time.Now())
	require.NoError(t, booking_models.SetPaymentReference(ctx, pool, booking, reference))

	pc := NewPaymentController(pool, &mockPaystack{signatureOK: true})
	r := gin.New()
	r.POST("/webhooks/paystack", pc.Webhook)

	deliver := func(amount int64) *httptest.ResponseRecorder {
		body := fmt.Sprintf(
			`{"event":"charge.success","data":{"reference":"%s","amount":%d,"status":"success"}}`,
			reference, amount)
		req, _ := http.NewRequest("POST", "/webhooks/paystack", bytes.NewBufferString(body))
		req.Header.Set("x-paystack-signature", "accepted-by-mock")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("AmountMismatchAcksWithoutPaying", func(t *testing.T) {
		w := deliver(29999)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "mismatch")

		b, err := booking_models.GetBookingByID(ctx, pool, booking)
		require.NoError(t, err)
		assert.Equal(t, shared_models.PaymentStatusUnpaid, b.PaymentStatus)
	})

	t.Run("MatchingAmountMarksPaid", func(t *testing.T) {
		w := deliver(30000)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "processed")

		b, err := booking_models.GetBookingByID(ctx, pool, booking)
		require.NoError(t, err)
		assert.Equal(t, shared_models.PaymentStatusPaid, b.PaymentStatus)
		assert.Equal(t, shared_models.BookingStatusConfirmed, b.Status)
	})

	t.Run("ReplayAcksIdempotently", func(t *testing.T) {
		w := deliver(30000)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "already")

		var paidCount int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM bookings WHERE payment_status = 'paid'`).Scan(&paidCount))
		assert.Equal(t, 1, paidCount)
	})

	t.Run("EventsAreAudited", func(t *testing.T) {
		var total, processed int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT COUNT(*), COUNT(*) FILTER (WHERE processed) FROM webhook_events`).Scan(&total, &processed))
		assert.Equal(t, 3, total)
		assert.Equal(t, 2, processed)
	})
}
