package booking_controller

import (
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

func TestGetBookingVisibility(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pool := testPool(t)
	ctx := context.Background()

	var host, guest, stranger, property, booking int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO users (email) VALUES ('host@example.com') RETURNING id`).Scan(&host))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO users (email) VALUES ('guest@example.com') RETURNING id`).Scan(&guest))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO users (email) VALUES ('stranger@example.com') RETURNING id`).Scan(&stranger))
	require.NoError(t, pool.QueryRow(ctx, `
		INSERT INTO properties (host_id, title, address, city, state, price_per_night, max_guests)
		VALUES ($1, 'Lekki Flat', '1 Admiralty Way', 'Lagos', 'Lagos', 100, 4)
		RETURNING id`, host).Scan(&property))

	in := time.Now().UTC().AddDate(0, 1, 0)
	require.NoError(t, pool.QueryRow(ctx, `
		INSERT INTO bookings (guest_id, property_id, check_in_date, check_out_date,
		                      num_guests, total_price, status, payment_status)
		VALUES ($1, $2, $3, $4, 2, 300, 'pending', 'unpaid')
		RETURNING id`, guest, property, in, in.AddDate(0, 0, 3)).Scan(&booking))

	bc := NewBookingController(pool)
	fetchAs := func(callerID int64) *httptest.ResponseRecorder {
		r := gin.New()
		r.GET("/bookings/:booking_id", setUser(callerID), bc.GetBooking)
		req, _ := http.NewRequest("GET", fmt.Sprintf("/bookings/%d", booking), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("GuestSeesOwnBooking", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, fetchAs(guest).Code)
	})

	t.Run("HostSeesPropertyBooking", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, fetchAs(host).Code)
	})

	t.Run("StrangerForbidden", func(t *testing.T) {
		w := fetchAs(stranger)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "not a party")
	})
}
