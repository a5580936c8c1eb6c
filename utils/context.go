package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/shortlet-ng/backend/logger"
	"github.com/shortlet-ng/backend/utils/apperrors"
)

// GetUserIDFromContext extracts the verified caller id set by the auth
// middleware under "user_id". The identity service guarantees the id is a
// positive integer; anything else means the middleware chain is miswired.
func GetUserIDFromContext(c *gin.Context) (int64, error) {
	raw, exists := c.Get("user_id")
	if !exists {
		logger.ErrorLogger.Error("User ID not found in context.")
		return 0, apperrors.Authentication("authentication required")
	}

	userID, ok := raw.(int64)
	if !ok {
		logger.ErrorLogger.Errorf("User ID in context is not an int64, actual type: %T", raw)
		return 0, apperrors.Authentication("invalid user identity")
	}
	return userID, nil
}
