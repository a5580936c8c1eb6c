package property_models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlet-ng/backend/logger"
	"github.com/shortlet-ng/backend/utils/apperrors"
)

// Property is a host's listing. The booking core reads price_per_night and
// max_guests at booking-creation time and freezes the computed total on the
// booking, so later edits never retroactively change existing bookings.
type Property struct {
	ID                 int64     `json:"id"`
	HostID             int64     `json:"host_id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Address            string    `json:"address"`
	City               string    `json:"city"`
	State              string    `json:"state"`
	PricePerNight      float64   `json:"price_per_night"`
	MaxGuests          int       `json:"max_guests"`
	NumBedrooms        int       `json:"num_bedrooms"`
	NumBathrooms       float64   `json:"num_bathrooms"`
	Amenities          []string  `json:"amenities"`
	PowerBackupDetails string    `json:"power_backup_details"`
	Latitude           *float64  `json:"latitude,omitempty"`
	Longitude          *float64  `json:"longitude,omitempty"`
	ListingPhotos      []string  `json:"listing_photos"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

const propertyColumns = `
	id, host_id, title, description, address, city, state,
	price_per_night, max_guests, num_bedrooms, num_bathrooms,
	amenities, power_backup_details, latitude, longitude,
	listing_photos, created_at, updated_at`

func scanProperty(row pgx.Row) (*Property, error) {
	p := &Property{}
	err := row.Scan(
		&p.ID, &p.HostID, &p.Title, &p.Description, &p.Address, &p.City, &p.State,
		&p.PricePerNight, &p.MaxGuests, &p.NumBedrooms, &p.NumBathrooms,
		&p.Amenities, &p.PowerBackupDetails, &p.Latitude, &p.Longitude,
		&p.ListingPhotos, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	if p.ListingPhotos == nil {
		p.ListingPhotos = []string{}
	}
	return p, nil
}

// CreateProperty inserts a new listing owned by hostID.
func CreateProperty(ctx context.Context, db *pgxpool.Pool, p *Property) (*Property, error) {
	if p.PricePerNight <= 0 {
		return nil, apperrors.Validation("price_per_night must be positive")
	}
	if p.MaxGuests < 1 {
		return nil, apperrors.Validation("max_guests must be at least 1")
	}

	query := `
		INSERT INTO properties (
			host_id, title, description, address, city, state,
			price_per_night, max_guests, num_bedrooms, num_bathrooms,
			amenities, power_backup_details, latitude, longitude, listing_photos
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + propertyColumns

	created, err := scanProperty(db.QueryRow(ctx, query,
		p.HostID, p.Title, p.Description, p.Address, p.City, p.State,
		p.PricePerNight, p.MaxGuests, p.NumBedrooms, p.NumBathrooms,
		p.Amenities, p.PowerBackupDetails, p.Latitude, p.Longitude, p.ListingPhotos,
	))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert property for host %d: %v", p.HostID, err)
		return nil, apperrors.Internal(err, "failed to create property")
	}

	logger.InfoLogger.Infof("Property %d created by host %d", created.ID, created.HostID)
	return created, nil
}

// GetPropertyByID fetches a single listing.
func GetPropertyByID(ctx context.Context, db *pgxpool.Pool, propertyID int64) (*Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	p, err := scanProperty(db.QueryRow(ctx, query, propertyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("property not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch property %d: %v", propertyID, err)
		return nil, apperrors.Internal(err, "database error fetching property")
	}
	return p, nil
}

// Filters narrows ListProperties results. Pointer fields are applied only
// when set. CheckIn/CheckOut, when both present, exclude properties that
// have a confirmed booking overlapping [CheckIn, CheckOut).
type Filters struct {
	City        string
	State       string
	MinPrice    *float64
	MaxPrice    *float64
	MinBedrooms *int
	MinGuests   *int
	CheckIn     *time.Time
	CheckOut    *time.Time
}

// ListProperties returns listings matching f, newest first.
func ListProperties(ctx context.Context, db *pgxpool.Pool, f Filters) ([]Property, error) {
	var conditions []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if f.City != "" {
		add("city ILIKE $%d", "%"+f.City+"%")
	}
	if f.State != "" {
		add("state ILIKE $%d", "%"+f.State+"%")
	}
	if f.MinPrice != nil {
		add("price_per_night >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price_per_night <= $%d", *f.MaxPrice)
	}
	if f.MinBedrooms != nil {
		add("num_bedrooms >= $%d", *f.MinBedrooms)
	}
	if f.MinGuests != nil {
		add("max_guests >= $%d", *f.MinGuests)
	}

	if f.CheckIn != nil && f.CheckOut != nil {
		// Half-open overlap: an existing [s, e) conflicts iff s < CheckOut
		// AND e > CheckIn. Only confirmed bookings block availability.
		args = append(args, *f.CheckOut, *f.CheckIn)
		conditions = append(conditions, fmt.Sprintf(`NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.property_id = properties.id
			  AND b.status = 'confirmed'
			  AND b.check_in_date < $%d
			  AND b.check_out_date > $%d
		)`, len(args)-1, len(args)))
	}

	query := `SELECT ` + propertyColumns + ` FROM properties`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list properties: %v", err)
		return nil, apperrors.Internal(err, "failed to list properties")
	}
	defer rows.Close()

	properties := []Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to scan property row: %v", err)
			return nil, apperrors.Internal(err, "failed to scan property")
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

// GetPropertiesByHost returns the host's own listings, newest first.
func GetPropertiesByHost(ctx context.Context, db *pgxpool.Pool, hostID int64) ([]Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE host_id = $1 ORDER BY created_at DESC`

	rows, err := db.Query(ctx, query, hostID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch listings for host %d: %v", hostID, err)
		return nil, apperrors.Internal(err, "failed to fetch listings")
	}
	defer rows.Close()

	properties := []Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to scan property")
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

// Updates holds the mutable listing fields for a partial update. Nil fields
// are left untouched.
type Updates struct {
	Title              *string   `json:"title"`
	Description        *string   `json:"description"`
	Address            *string   `json:"address"`
	City               *string   `json:"city"`
	State              *string   `json:"state"`
	PricePerNight      *float64  `json:"price_per_night"`
	MaxGuests          *int      `json:"max_guests"`
	NumBedrooms        *int      `json:"num_bedrooms"`
	NumBathrooms       *float64  `json:"num_bathrooms"`
	Amenities          *[]string `json:"amenities"`
	PowerBackupDetails *string   `json:"power_backup_details"`
	Latitude           *float64  `json:"latitude"`
	Longitude          *float64  `json:"longitude"`
}

// UpdateProperty applies a partial update. Only the owning host may update;
// ownership is checked against the persisted row inside the same statement.
func UpdateProperty(ctx context.Context, db *pgxpool.Pool, propertyID, hostID int64, u Updates) (*Property, error) {
	var sets []string
	var args []any

	set := func(column string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Address != nil {
		set("address", *u.Address)
	}
	if u.City != nil {
		set("city", *u.City)
	}
	if u.State != nil {
		set("state", *u.State)
	}
	if u.PricePerNight != nil {
		if *u.PricePerNight <= 0 {
			return nil, apperrors.Validation("price_per_night must be positive")
		}
		set("price_per_night", *u.PricePerNight)
	}
	if u.MaxGuests != nil {
		if *u.MaxGuests < 1 {
			return nil, apperrors.Validation("max_guests must be at least 1")
		}
		set("max_guests", *u.MaxGuests)
	}
	if u.NumBedrooms != nil {
		set("num_bedrooms", *u.NumBedrooms)
	}
	if u.NumBathrooms != nil {
		set("num_bathrooms", *u.NumBathrooms)
	}
	if u.Amenities != nil {
		set("amenities", *u.Amenities)
	}
	if u.PowerBackupDetails != nil {
		set("power_backup_details", *u.PowerBackupDetails)
	}
	if u.Latitude != nil {
		set("latitude", *u.Latitude)
	}
	if u.Longitude != nil {
		set("longitude", *u.Longitude)
	}

	if len(sets) == 0 {
		return nil, apperrors.Validation("no valid fields provided for update")
	}
	sets = append(sets, "updated_at = NOW()")

	// Ownership is enforced in the WHERE clause so a concurrent transfer
	// cannot race a stale pre-check.
	args = append(args, propertyID)
	idArg := len(args)
	args = append(args, hostID)
	hostArg := len(args)

	query := fmt.Sprintf(
		"UPDATE properties SET %s WHERE id = $%d AND host_id = $%d RETURNING %s",
		strings.Join(sets, ", "), idArg, hostArg, propertyColumns,
	)

	p, err := scanProperty(db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish missing from not-owned for the caller.
			if _, getErr := GetPropertyByID(ctx, db, propertyID); getErr != nil {
				return nil, getErr
			}
			return nil, apperrors.Forbidden("you do not have permission to update this property")
		}
		logger.ErrorLogger.Errorf("Failed to update property %d: %v", propertyID, err)
		return nil, apperrors.Internal(err, "failed to update property")
	}

	logger.InfoLogger.Infof("Property %d updated by host %d", propertyID, hostID)
	return p, nil
}

// DeleteProperty removes a listing and, via ON DELETE CASCADE, its bookings
// and reviews. Only the owning host may delete.
func DeleteProperty(ctx context.Context, db *pgxpool.Pool, propertyID, hostID int64) error {
	tag, err := db.Exec(ctx,
		`DELETE FROM properties WHERE id = $1 AND host_id = $2`,
		propertyID, hostID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to delete property %d: %v", propertyID, err)
		return apperrors.Internal(err, "failed to delete property")
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := GetPropertyByID(ctx, db, propertyID); getErr != nil {
			return getErr
		}
		return apperrors.Forbidden("you do not have permission to delete this property")
	}

	logger.InfoLogger.Infof("Property %d deleted by host %d", propertyID, hostID)
	return nil
}
