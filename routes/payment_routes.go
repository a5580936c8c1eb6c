package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/shortlet-ng/backend/clients"
	"github.com/shortlet-ng/backend/config/db"
	"github.com/shortlet-ng/backend/controllers/payment_controller"
	"github.com/shortlet-ng/backend/logger"
	middleware "github.com/shortlet-ng/backend/middlewares"
	"github.com/shortlet-ng/backend/middlewares/auth"
)

// RegisterPaymentRoutes registers payment initiation and the provider
// webhook endpoint
func RegisterPaymentRoutes(router *gin.Engine) {
	paystackClient, err := clients.NewPaystackClient()
	if err != nil {
		logger.ErrorLogger.Fatalf("Failed to initialize Paystack client: %v", err)
	}

	paymentController := payment_controller.NewPaymentController(db.DB, paystackClient)

	// Webhook is public; authentication is the HMAC signature on the body.
	router.POST("/webhooks/paystack",
		middleware.NewRateLimiter("120-1m", "paystack-webhook"),
		paymentController.Webhook)

	protected := router.Group("/bookings")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/:booking_id/pay",
			middleware.CombinedRateLimiter("initiate-payment", "5-1m", "20-10m"),
			paymentController.InitiatePayment)
	}
}
