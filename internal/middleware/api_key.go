package middleware

import (
	"crypto/sha256"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmitchellscott/halftone/internal/logging"
)

// APIKeyAuth checks requests against a single bcrypt hashed key
type APIKeyAuth struct {
	hash     []byte
	verified sync.Map // sha256 of accepted keys
}

// NewAPIKeyAuth returns nil when hash is empty, which disables the check
func NewAPIKeyAuth(hash string) *APIKeyAuth {
	if hash == "" {
		return nil
	}
	return &APIKeyAuth{hash: []byte(hash)}
}

// extractAPIKey reads the key from a Bearer token or the X-API-Key header
func extractAPIKey(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.GetHeader("X-API-Key")
}

// Valid reports whether key matches the configured hash
func (a *APIKeyAuth) Valid(key string) bool {
	if a == nil {
		return true
	}
	if key == "" {
		return false
	}
	sum := sha256.Sum256([]byte(key))
	if _, ok := a.verified.Load(sum); ok {
		return true
	}
	if bcrypt.CompareHashAndPassword(a.hash, []byte(key)) != nil {
		return false
	}
	a.verified.Store(sum, struct{}{})
	return true
}

// Required rejects requests without a valid key
func (a *APIKeyAuth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Valid(extractAPIKey(c)) {
			logging.WarnWithComponent(logging.ComponentAPI, "rejected API key", "ip", c.ClientIP(), "path", c.FullPath())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// HashAPIKey produces the value API_KEY_HASH expects
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
