package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/shortlet-ng/backend/config/db"
	"github.com/shortlet-ng/backend/controllers/booking_controller"
	middleware "github.com/shortlet-ng/backend/middlewares"
	"github.com/shortlet-ng/backend/middlewares/auth"
)

// RegisterBookingRoutes registers all booking lifecycle routes
func RegisterBookingRoutes(router *gin.Engine) {
	bookingController := booking_controller.NewBookingController(db.DB)

	protected := router.Group("/bookings")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("",
			middleware.CombinedRateLimiter("create-booking", "5-1m", "20-10m"),
			bookingController.CreateBooking)
		protected.GET("/:booking_id", bookingController.GetBooking)
		protected.POST("/:booking_id/confirm",
			middleware.NewRateLimiter("10-1m", "confirm-booking"),
			bookingController.ConfirmBooking)
		protected.POST("/:booking_id/cancel",
			middleware.NewRateLimiter("10-1m", "cancel-booking"),
			bookingController.CancelBooking)
	}

	me := router.Group("/my-bookings")
	me.Use(auth.AuthMiddleware())
	{
		me.GET("", bookingController.GetMyBookings)
	}

	host := router.Group("/host")
	host.Use(auth.AuthMiddleware())
	{
		host.GET("/bookings", bookingController.GetHostBookings)
	}
}
