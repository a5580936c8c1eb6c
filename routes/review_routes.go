package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/shortlet-ng/backend/config/db"
	"github.com/shortlet-ng/backend/controllers/review_controller"
	middleware "github.com/shortlet-ng/backend/middlewares"
	"github.com/shortlet-ng/backend/middlewares/auth"
)

// RegisterReviewRoutes registers review routes
func RegisterReviewRoutes(router *gin.Engine) {
	reviewController := review_controller.NewReviewController(db.DB)

	router.GET("/properties/:property_id/reviews",
		middleware.NewRateLimiter("60-1m", "list-reviews"),
		reviewController.GetPropertyReviews)

	protected := router.Group("/properties")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/:property_id/reviews",
			middleware.CombinedRateLimiter("create-review", "5-1m", "20-10m"),
			reviewController.CreateReview)
	}
}
