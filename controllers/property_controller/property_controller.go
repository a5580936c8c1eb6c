package property_controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlet-ng/backend/logger"
	"github.com/shortlet-ng/backend/models/booking_models"
	"github.com/shortlet-ng/backend/models/property_models"
	"github.com/shortlet-ng/backend/utils"
	"github.com/shortlet-ng/backend/utils/apperrors"
	"github.com/shortlet-ng/backend/utils/bookedcache"
)

// PropertyController holds dependencies for property listing operations.
type PropertyController struct {
	DB *pgxpool.Pool
}

// NewPropertyController creates a new instance of PropertyController.
func NewPropertyController(db *pgxpool.Pool) *PropertyController {
	return &PropertyController{DB: db}
}

type CreatePropertyRequest struct {
	Title              string   `json:"title" binding:"required"`
	Description        string   `json:"description"`
	Address            string   `json:"address" binding:"required"`
	City               string   `json:"city" binding:"required"`
	State              string   `json:"state" binding:"required"`
	PricePerNight      float64  `json:"price_per_night" binding:"required,gt=0"`
	MaxGuests          int      `json:"max_guests" binding:"required,gte=1"`
	NumBedrooms        int      `json:"num_bedrooms"`
	NumBathrooms       float64  `json:"num_bathrooms"`
	Amenities          []string `json:"amenities"`
	PowerBackupDetails string   `json:"power_backup_details"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	ListingPhotos      []string `json:"listing_photos"`
}

// CreateProperty registers a new listing owned by the caller.
func (pc *PropertyController) CreateProperty(c *gin.Context) {
	hostID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	property, err := property_models.CreateProperty(c.Request.Context(), pc.DB, &property_models.Property{
		HostID:             hostID,
		Title:              req.Title,
		Description:        req.Description,
		Address:            req.Address,
		City:               req.City,
		State:              req.State,
		PricePerNight:      req.PricePerNight,
		MaxGuests:          req.MaxGuests,
		NumBedrooms:        req.NumBedrooms,
		NumBathrooms:       req.NumBathrooms,
		Amenities:          req.Amenities,
		PowerBackupDetails: req.PowerBackupDetails,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		ListingPhotos:      req.ListingPhotos,
	})
	if err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"property": property})
}

// GetProperty returns a single listing by id.
func (pc *PropertyController) GetProperty(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.Param("property_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	property, err := property_models.GetPropertyByID(c.Request.Context(), pc.DB, propertyID)
	if err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"property": property})
}

// ListProperties returns listings matching the query filters. When both
// check_in and check_out are supplied, listings with a confirmed booking
// overlapping that range are excluded.
func (pc *PropertyController) ListProperties(c *gin.Context) {
	filters := property_models.Filters{
		City:  c.Query("city"),
		State: c.Query("state"),
	}

	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_price"})
			return
		}
		filters.MinPrice = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_price"})
			return
		}
		filters.MaxPrice = &v
	}
	if raw := c.Query("min_bedrooms"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_bedrooms"})
			return
		}
		filters.MinBedrooms = &v
	}
	if raw := c.Query("guests"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guests"})
			return
		}
		filters.MinGuests = &v
	}

	checkIn := c.Query("check_in")
	checkOut := c.Query("check_out")
	if (checkIn == "") != (checkOut == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in and check_out must be provided together"})
		return
	}
	if checkIn != "" {
		in, err := time.Parse("2006-01-02", checkIn)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in date, expected YYYY-MM-DD"})
			return
		}
		out, err := time.Parse("2006-01-02", checkOut)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out date, expected YYYY-MM-DD"})
			return
		}
		if !out.After(in) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "check_out must be after check_in"})
			return
		}
		filters.CheckIn = &in
		filters.CheckOut = &out
	}

	properties, err := property_models.ListProperties(c.Request.Context(), pc.DB, filters)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list properties: %v", err)
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"properties": properties, "count": len(properties)})
}

// GetMyListings returns the caller's own properties.
func (pc *PropertyController) GetMyListings(c *gin.Context) {
	hostID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	properties, err := property_models.GetPropertiesByHost(c.Request.Context(), pc.DB, hostID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list properties for host %d: %v", hostID, err)
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"properties": properties, "count": len(properties)})
}

// UpdateProperty applies a partial update to a listing owned by the caller.
func (pc *PropertyController) UpdateProperty(c *gin.Context) {
	hostID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	propertyID, err := strconv.ParseInt(c.Param("property_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	var updates property_models.Updates
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if updates.PricePerNight != nil && *updates.PricePerNight <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_per_night must be positive"})
		return
	}
	if updates.MaxGuests != nil && *updates.MaxGuests < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_guests must be at least 1"})
		return
	}

	property, err := property_models.UpdateProperty(c.Request.Context(), pc.DB, propertyID, hostID, updates)
	if err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"property": property})
}

// DeleteProperty removes a listing owned by the caller. Bookings cascade.
func (pc *PropertyController) DeleteProperty(c *gin.Context) {
	hostID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	propertyID, err := strconv.ParseInt(c.Param("property_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	if err := property_models.DeleteProperty(c.Request.Context(), pc.DB, propertyID, hostID); err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	bookedcache.Invalidate(c.Request.Context(), propertyID)
	c.JSON(http.StatusOK, gin.H{"message": "property deleted"})
}

// GetBookedDates returns the confirmed date ranges for a listing so clients
// can grey out unavailable dates. Served from cache when warm.
func (pc *PropertyController) GetBookedDates(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.Param("property_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	ctx := c.Request.Context()
	if ranges, ok := bookedcache.Get(ctx, propertyID); ok {
		c.JSON(http.StatusOK, gin.H{"booked_dates": ranges})
		return
	}

	if _, err := property_models.GetPropertyByID(ctx, pc.DB, propertyID); err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	ranges, err := booking_models.GetConfirmedRanges(ctx, pc.DB, propertyID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to load booked dates for property %d: %v", propertyID, err)
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	bookedcache.Set(ctx, propertyID, ranges)
	c.JSON(http.StatusOK, gin.H{"booked_dates": ranges})
}
