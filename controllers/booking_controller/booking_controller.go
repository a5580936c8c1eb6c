package booking_controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlet-ng/backend/logger"
	"github.com/shortlet-ng/backend/models/booking_models"
	"github.com/shortlet-ng/backend/models/property_models"
	"github.com/shortlet-ng/backend/models/user_models"
	"github.com/shortlet-ng/backend/utils"
	"github.com/shortlet-ng/backend/utils/apperrors"
	"github.com/shortlet-ng/backend/utils/bookedcache"
	"github.com/shortlet-ng/backend/utils/mail"
)

// BookingController holds dependencies for booking lifecycle operations.
type BookingController struct {
	DB *pgxpool.Pool
}

// NewBookingController creates a new instance of BookingController.
func NewBookingController(db *pgxpool.Pool) *BookingController {
	return &BookingController{DB: db}
}

type CreateBookingRequest struct {
	PropertyID int64  `json:"property_id" binding:"required"`
	CheckIn    string `json:"check_in_date" binding:"required"`
	CheckOut   string `json:"check_out_date" binding:"required"`
	NumGuests  int    `json:"num_guests" binding:"required,gte=1"`
}

// CreateBooking creates a pending booking for the caller. The dates are
// checked against confirmed bookings only; competing pending requests are
// resolved at confirmation time.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	guestID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	checkIn, err := time.Parse("2006-01-02", req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in_date, expected YYYY-MM-DD"})
		return
	}
	checkOut, err := time.Parse("2006-01-02", req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out_date, expected YYYY-MM-DD"})
		return
	}

	booking, err := booking_models.CreateBooking(c.Request.Context(), bc.DB, booking_models.CreateParams{
		GuestID:    guestID,
		PropertyID: req.PropertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		NumGuests:  req.NumGuests,
	})
	if err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// GetBooking returns a single booking. Only the guest who made it or the
// host of the property may view it.
func (bc *BookingController) GetBooking(c *gin.Context) {
	callerID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := strconv.ParseInt(c.Param("booking_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := booking_models.GetBookingByID(c.Request.Context(), bc.DB, bookingID)
	if err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	if booking.GuestID != callerID {
		property, err := property_models.GetPropertyByID(c.Request.Context(), bc.DB, booking.PropertyID)
		if err != nil {
			c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
			return
		}
		if property.HostID != callerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "you are not a party to this booking"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// ConfirmBooking moves a pending booking to confirmed. Host only. The
// availability check is repeated inside the transaction so two overlapping
// pending bookings can never both confirm.
func (bc *BookingController) ConfirmBooking(c *gin.Context) {
	hostID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := strconv.ParseInt(c.Param("booking_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := booking_models.ConfirmBooking(c.Request.Context(), bc.DB, bookingID, hostID)
	if err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	bookedcache.Invalidate(c.Request.Context(), booking.PropertyID)
	go bc.notifyBookingConfirmed(booking)

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// CancelBooking moves an active booking to cancelled. Host only. Payment
// status is left untouched; a paid cancellation is resolved out of band.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	hostID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := strconv.ParseInt(c.Param("booking_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := booking_models.CancelBooking(c.Request.Context(), bc.DB, bookingID, hostID)
	if err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	bookedcache.Invalidate(c.Request.Context(), booking.PropertyID)
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// GetMyBookings returns the caller's bookings as a guest, newest first.
func (bc *BookingController) GetMyBookings(c *gin.Context) {
	guestID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookings, err := booking_models.GetBookingsByGuest(c.Request.Context(), bc.DB, guestID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list bookings for guest %d: %v", guestID, err)
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// GetHostBookings returns bookings across all of the caller's listings.
func (bc *BookingController) GetHostBookings(c *gin.Context) {
	hostID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookings, err := booking_models.GetBookingsByHost(c.Request.Context(), bc.DB, hostID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list bookings for host %d: %v", hostID, err)
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// notifyBookingConfirmed emails the guest. Runs detached from the request;
// lookup failures only skip the email.
func (bc *BookingController) notifyBookingConfirmed(booking *booking_models.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	guest, err := user_models.GetUserByID(ctx, bc.DB, booking.GuestID)
	if err != nil {
		logger.WarnLogger.Warnf("Skipping confirmation email for booking %d: %v", booking.ID, err)
		return
	}
	property, err := property_models.GetPropertyByID(ctx, bc.DB, booking.PropertyID)
	if err != nil {
		logger.WarnLogger.Warnf("Skipping confirmation email for booking %d: %v", booking.ID, err)
		return
	}

	mail.SendBookingConfirmed(guest.Email, property.Title,
		booking.CheckInDate.Format("2006-01-02"), booking.CheckOutDate.Format("2006-01-02"))
}
