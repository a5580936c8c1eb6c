package review_controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlet-ng/backend/models/review_models"
	"github.com/shortlet-ng/backend/utils"
	"github.com/shortlet-ng/backend/utils/apperrors"
)

// ReviewController holds dependencies for review operations.
type ReviewController struct {
	DB *pgxpool.Pool
}

// NewReviewController creates a new instance of ReviewController.
func NewReviewController(db *pgxpool.Pool) *ReviewController {
	return &ReviewController{DB: db}
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

// CreateReview posts a review for a completed stay. The caller must have a
// confirmed booking on the property whose check-out date is in the past,
// and may review each property at most once.
func (rc *ReviewController) CreateReview(c *gin.Context) {
	guestID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	propertyID, err := strconv.ParseInt(c.Param("property_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be an integer between 1 and 5"})
		return
	}

	review, err := review_models.CreateReview(c.Request.Context(), rc.DB, guestID, propertyID, req.Rating, req.Comment)
	if err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// GetPropertyReviews returns all reviews for a listing, newest first.
func (rc *ReviewController) GetPropertyReviews(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.Param("property_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	reviews, err := review_models.GetReviewsByProperty(c.Request.Context(), rc.DB, propertyID)
	if err != nil {
		c.JSON(apperrors.Status(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}
