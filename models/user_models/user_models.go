package user_models

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlet-ng/backend/logger"
	"github.com/shortlet-ng/backend/utils/apperrors"
)

// User is the account record issued by the identity service. This service
// only reads users (payment initiation needs the email; booking listings
// include names); it never creates or mutates them.
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	UserType      string    `json:"user_type"`
	ProfilePicURL *string   `json:"profile_pic_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// GetUserByID fetches a user record by its id.
func GetUserByID(ctx context.Context, db *pgxpool.Pool, userID int64) (*User, error) {
	user := &User{}
	query := `
		SELECT id, email, first_name, last_name, user_type, profile_pic_url, created_at
		FROM users
		WHERE id = $1
	`

	err := db.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.UserType,
		&user.ProfilePicURL,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch user %d: %v", userID, err)
		return nil, apperrors.Internal(err, "database error fetching user")
	}

	return user, nil
}
