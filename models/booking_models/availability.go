package booking_models

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlet-ng/backend/logger"
	"github.com/shortlet-ng/backend/utils/apperrors"
)

// Queryer is the subset of pgx querying shared by *pgxpool.Pool and pgx.Tx,
// so the conflict check can run standalone or inside a booking transaction.
type Queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Overlaps reports whether the half-open date ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. Ranges that merely touch (one ending exactly
// when the other starts) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// HasConflict reports whether any confirmed booking for the property
// overlaps [checkIn, checkOut). Pending bookings never block; several may
// race for the same dates and the winner is decided at confirmation time.
// excludeBookingID skips a booking (the one being confirmed); pass 0 to
// consider all.
func HasConflict(ctx context.Context, q Queryer, propertyID int64, checkIn, checkOut time.Time, excludeBookingID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE property_id = $1
			  AND status = 'confirmed'
			  AND id != $2
			  AND check_in_date < $3
			  AND check_out_date > $4
		)`

	var conflict bool
	err := q.QueryRow(ctx, query, propertyID, excludeBookingID, checkOut, checkIn).Scan(&conflict)
	if err != nil {
		logger.ErrorLogger.Errorf("Conflict check failed for property %d: %v", propertyID, err)
		return false, apperrors.Internal(err, "failed to check booking availability")
	}
	return conflict, nil
}

// DateRange is one confirmed stay, formatted for calendar display.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// GetConfirmedRanges returns the confirmed date ranges for a property in
// check-in order. A pure projection: nothing here mutates booking state.
func GetConfirmedRanges(ctx context.Context, db *pgxpool.Pool, propertyID int64) ([]DateRange, error) {
	query := `
		SELECT check_in_date, check_out_date
		FROM bookings
		WHERE property_id = $1 AND status = 'confirmed'
		ORDER BY check_in_date`

	rows, err := db.Query(ctx, query, propertyID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch booked ranges for property %d: %v", propertyID, err)
		return nil, apperrors.Internal(err, "failed to fetch booked dates")
	}
	defer rows.Close()

	ranges := []DateRange{}
	for rows.Next() {
		var start, end time.Time
		if err := rows.Scan(&start, &end); err != nil {
			return nil, apperrors.Internal(err, "failed to scan booked range")
		}
		ranges = append(ranges, DateRange{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		})
	}
	return ranges, rows.Err()
}
