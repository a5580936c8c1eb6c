package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/shortlet-ng/backend/config/db"
	"github.com/shortlet-ng/backend/controllers/property_controller"
	middleware "github.com/shortlet-ng/backend/middlewares"
	"github.com/shortlet-ng/backend/middlewares/auth"
)

// RegisterPropertyRoutes registers all property listing routes
func RegisterPropertyRoutes(router *gin.Engine) {
	propertyController := property_controller.NewPropertyController(db.DB)

	// Public browse endpoints
	public := router.Group("/properties")
	{
		public.GET("",
			middleware.NewRateLimiter("60-1m", "list-properties"),
			propertyController.ListProperties)
		public.GET("/:property_id",
			middleware.NewRateLimiter("120-1m", "get-property"),
			propertyController.GetProperty)
		public.GET("/:property_id/booked-dates",
			middleware.NewRateLimiter("120-1m", "booked-dates"),
			propertyController.GetBookedDates)
	}

	// Host management endpoints
	protected := router.Group("/properties")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("",
			middleware.CombinedRateLimiter("create-property", "10-1m", "50-10m"),
			propertyController.CreateProperty)
		protected.PATCH("/:property_id", propertyController.UpdateProperty)
		protected.DELETE("/:property_id", propertyController.DeleteProperty)
	}

	me := router.Group("/my-listings")
	me.Use(auth.AuthMiddleware())
	{
		me.GET("", propertyController.GetMyListings)
	}
}
