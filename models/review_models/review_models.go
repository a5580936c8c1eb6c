package review_models

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlet-ng/backend/logger"
	"github.com/shortlet-ng/backend/utils/apperrors"
)

// Review is a guest's rating of a property after a completed stay. One
// review per (guest, property) pair; the database enforces this with a
// unique constraint.
type Review struct {
	ID         int64     `json:"id"`
	GuestID    int64     `json:"guest_id"`
	PropertyID int64     `json:"property_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewWithAuthor adds the author's first name for public listings.
type ReviewWithAuthor struct {
	Review
	Author struct {
		FirstName string `json:"first_name"`
	} `json:"author"`
}

// Queryer is the subset of pgx querying shared by *pgxpool.Pool and pgx.Tx,
// so the eligibility check can run standalone or inside the create
// transaction.
type Queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CanReview reports whether the guest is eligible to review the property: a
// confirmed booking must exist whose check-out date is strictly in the past.
// Eligibility reads finalized booking history and never mutates it.
func CanReview(ctx context.Context, q Queryer, guestID, propertyID int64, today time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE guest_id = $1
			  AND property_id = $2
			  AND status = 'confirmed'
			  AND check_out_date < $3
		)`

	var eligible bool
	err := q.QueryRow(ctx, query, guestID, propertyID, today).Scan(&eligible)
	if err != nil {
		logger.ErrorLogger.Errorf("Review eligibility check failed for guest %d, property %d: %v", guestID, propertyID, err)
		return false, apperrors.Internal(err, "failed to check review eligibility")
	}
	return eligible, nil
}

// CreateReview persists a review after re-checking eligibility inside the
// same transaction. A duplicate (guest, property) pair surfaces as a
// conflict via the unique constraint rather than a racy pre-check.
func CreateReview(ctx context.Context, db *pgxpool.Pool, guestID, propertyID int64, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.Validation("rating must be an integer between 1 and 5")
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to create review")
	}
	defer tx.Rollback(ctx)

	var propertyExists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`, propertyID).Scan(&propertyExists); err != nil {
		return nil, apperrors.Internal(err, "failed to create review")
	}
	if !propertyExists {
		return nil, apperrors.NotFound("property not found")
	}

	eligible, err := CanReview(ctx, tx, guestID, propertyID, todayUTC())
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, apperrors.Forbidden("you can only review properties after a completed stay")
	}

	review := &Review{}
	err = tx.QueryRow(ctx, `
		INSERT INTO reviews (guest_id, property_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, guest_id, property_id, rating, comment, created_at`,
		guestID, propertyID, rating, comment,
	).Scan(&review.ID, &review.GuestID, &review.PropertyID, &review.Rating, &review.Comment, &review.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.Conflict("you have already reviewed this property")
		}
		logger.ErrorLogger.Errorf("Failed to insert review for property %d by guest %d: %v", propertyID, guestID, err)
		return nil, apperrors.Internal(err, "failed to create review")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.Internal(err, "failed to create review")
	}

	logger.InfoLogger.Infof("Review %d created for property %d by guest %d", review.ID, propertyID, guestID)
	return review, nil
}

// GetReviewsByProperty returns a property's reviews, newest first, with
// author first names.
func GetReviewsByProperty(ctx context.Context, db *pgxpool.Pool, propertyID int64) ([]ReviewWithAuthor, error) {
	var propertyExists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`, propertyID).Scan(&propertyExists); err != nil {
		return nil, apperrors.Internal(err, "failed to fetch reviews")
	}
	if !propertyExists {
		return nil, apperrors.NotFound("property not found")
	}

	query := `
		SELECT r.id, r.guest_id, r.property_id, r.rating, r.comment, r.created_at,
		       u.first_name
		FROM reviews r
		JOIN users u ON u.id = r.guest_id
		WHERE r.property_id = $1
		ORDER BY r.created_at DESC`

	rows, err := db.Query(ctx, query, propertyID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch reviews for property %d: %v", propertyID, err)
		return nil, apperrors.Internal(err, "failed to fetch reviews")
	}
	defer rows.Close()

	reviews := []ReviewWithAuthor{}
	for rows.Next() {
		var r ReviewWithAuthor
		err := rows.Scan(&r.ID, &r.GuestID, &r.PropertyID, &r.Rating, &r.Comment, &r.CreatedAt, &r.Author.FirstName)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to scan review")
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func todayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
