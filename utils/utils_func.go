package utils

import (
	"fmt"
	"os"
)

// GetJWTSecret returns the shared HMAC secret used to verify access tokens
// issued by the identity service.
func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Println("WARNING: JWT_SECRET environment variable not set.")
		return []byte("default-insecure-secret-only-for-development")
	}
	return []byte(secret)
}
