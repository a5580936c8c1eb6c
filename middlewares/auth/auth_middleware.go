package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/shortlet-ng/backend/logger"
	"github.com/shortlet-ng/backend/utils"
)

// AuthMiddleware verifies the bearer token issued by the identity service and
// places the verified caller id in the context under "user_id" as an int64.
// All authorization decisions downstream re-derive ownership from persisted
// state; this middleware only establishes who is calling.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authorization token"})
			return
		}

		var tokenString string
		if len(authHeader) > 7 && strings.ToLower(authHeader[:7]) == "bearer " {
			tokenString = authHeader[7:]
		} else {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return utils.GetJWTSecret(), nil
		})
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to parse JWT token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		userID, err := callerIDFromClaims(claims)
		if err != nil {
			logger.ErrorLogger.Errorf("Invalid caller identity in token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// callerIDFromClaims reads the caller id from "user_id" or "sub". The
// identity service encodes it as a JSON number, which arrives as float64.
func callerIDFromClaims(claims jwt.MapClaims) (int64, error) {
	raw, exists := claims["user_id"]
	if !exists {
		raw, exists = claims["sub"]
	}
	if !exists {
		return 0, fmt.Errorf("no user identifier found in token")
	}

	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		var id int64
		if _, err := fmt.Sscanf(v, "%d", &id); err != nil {
			return 0, fmt.Errorf("user identifier %q is not an integer", v)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("unsupported user identifier type %T", raw)
	}
}
