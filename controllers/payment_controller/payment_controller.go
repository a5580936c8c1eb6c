package payment_controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlet-ng/backend/clients"
	"github.com/shortlet-ng/backend/logger"
	"github.com/shortlet-ng/backend/models/booking_models"
	"github.com/shortlet-ng/backend/models/payment_models"
	"github.com/shortlet-ng/backend/models/user_models"
	"github.com/shortlet-ng/backend/utils"
	"github.com/shortlet-ng/backend/utils/apperrors"
	"github.com/shortlet-ng/backend/utils/bookedcache"
	"github.com/shortlet-ng/backend/utils/mail"
)

// PaymentController handles payment initiation and webhook reconciliation.
type PaymentController struct {
	DB       *pgxpool.Pool
	Paystack clients.PaystackClientWrapper
}

// NewPaymentController creates a new payment controller.
func NewPaymentController(db *pgxpool.Pool, paystack clients.PaystackClientWrapper) *PaymentController {
	return &PaymentController{DB: db, Paystack: paystack}
}

// InitiatePayment starts a payment attempt for a confirmed, unpaid booking
// owned by the caller. The provider call happens before any local write, so
// a timeout or provider failure leaves the booking untouched and the guest
// can simply retry. A retry replaces the stored reference wholesale; the
// superseded reference can no longer be reconciled.
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	guestID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := strconv.ParseInt(c.Param("booking_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	ctx := c.Request.Context()
	booking, err := booking_models.GetBookingByID(ctx, pc.DB, bookingID)
	if err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}
	if booking.GuestID != guestID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you did not make this booking"})
		return
	}
	if !booking.Payable() {
		c.JSON(http.StatusConflict, gin.H{
			"error": "booking cannot be paid for in its current state",
		})
		return
	}

	guest, err := user_models.GetUserByID(ctx, pc.DB, guestID)
	if err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	reference := booking_models.NewPaymentReference(bookingID, time.Now())
	amountKobo := booking_models.KoboAmount(booking.TotalPrice)

	provCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	init, err := pc.Paystack.InitializeTransaction(provCtx, clients.InitializeRequest{
		Email:     guest.Email,
		Amount:    amountKobo,
		Reference: reference,
		Metadata: map[string]any{
			"booking_id":  bookingID,
			"property_id": booking.PropertyID,
		},
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Payment initialization failed for booking %d: %v", bookingID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable, please retry"})
		return
	}

	// Commit the reference only after the provider accepted it. The state
	// precondition is re-checked inside this transaction.
	if err := booking_models.SetPaymentReference(ctx, pc.DB, bookingID, reference); err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authorization_url": init.AuthorizationURL,
		"access_code":       init.AccessCode,
		"reference":         reference,
		"amount":            amountKobo,
	})
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Status    string `json:"status"`
	} `json:"data"`
}

// Webhook receives payment events from Paystack. The signature is verified
// over the exact raw bytes before anything else; a bad signature is the only
// non-200 outcome. Everything after authentication acknowledges with 200 so
// the provider stops redelivering events we have already classified.
func (pc *PaymentController) Webhook(c *gin.Context) {
	rawBody, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	signature := c.GetHeader("x-paystack-signature")
	if !pc.Paystack.VerifyWebhookSignature(signature, rawBody) {
		logger.WarnLogger.Warnf("Rejected webhook with invalid signature from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	ctx := c.Request.Context()

	var event webhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		logger.WarnLogger.Warnf("Ignoring malformed webhook payload: %v", err)
		payment_models.RecordWebhookEvent(ctx, pc.DB, "malformed", rawBody)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	eventID := payment_models.RecordWebhookEvent(ctx, pc.DB, event.Event, rawBody)

	if event.Event != "charge.success" {
		logger.InfoLogger.Infof("Ignoring webhook event %q", event.Event)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if event.Data.Status != "success" {
		logger.InfoLogger.Infof("Ignoring charge event for %s with status %q", event.Data.Reference, event.Data.Status)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if event.Data.Reference == "" {
		logger.WarnLogger.Warn("charge.success event without a reference")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	outcome, booking, err := booking_models.ApplyChargeSuccess(ctx, pc.DB, event.Data.Reference, event.Data.Amount)
	if err != nil {
		// Authenticated events are always acknowledged, even when applying
		// them fails locally, so provider retries cannot mask a deeper bug.
		// The unprocessed audit row plus this log line make the stuck
		// payment observable for manual replay.
		logger.ErrorLogger.Errorf("Failed to apply charge.success for %s (event %s recorded unprocessed): %v",
			event.Data.Reference, eventID, err)
		c.JSON(http.StatusOK, gin.H{"status": "acknowledged"})
		return
	}

	switch outcome {
	case booking_models.PaidApplied:
		payment_models.MarkWebhookProcessed(ctx, pc.DB, eventID)
		bookedcache.Invalidate(ctx, booking.PropertyID)
		go pc.sendReceipt(booking, event.Data.Reference, event.Data.Amount)
		logger.InfoLogger.Infof("Webhook applied: booking %d paid via %s", booking.ID, event.Data.Reference)
		c.JSON(http.StatusOK, gin.H{"status": "processed"})
	case booking_models.PaidAlready:
		payment_models.MarkWebhookProcessed(ctx, pc.DB, eventID)
		logger.InfoLogger.Infof("Webhook replay for %s, booking %d already paid", event.Data.Reference, booking.ID)
		c.JSON(http.StatusOK, gin.H{"status": "already processed"})
	case booking_models.PaidUnknownReference:
		logger.WarnLogger.Warnf("Webhook for unknown reference %s", event.Data.Reference)
		c.JSON(http.StatusOK, gin.H{"status": "unknown reference"})
	case booking_models.PaidAmountMismatch:
		logger.ErrorLogger.Errorf("Webhook amount mismatch for %s: got %d, booking %d expects %d",
			event.Data.Reference, event.Data.Amount, booking.ID, booking_models.KoboAmount(booking.TotalPrice))
		c.JSON(http.StatusOK, gin.H{"status": "amount mismatch"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

// sendReceipt emails the guest a payment receipt. Runs detached from the
// webhook request.
func (pc *PaymentController) sendReceipt(booking *booking_models.Booking, reference string, amountKobo int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	guest, err := user_models.GetUserByID(ctx, pc.DB, booking.GuestID)
	if err != nil {
		logger.WarnLogger.Warnf("Skipping receipt email for booking %d: %v", booking.ID, err)
		return
	}
	mail.SendPaymentReceipt(guest.Email, reference, amountKobo)
}
