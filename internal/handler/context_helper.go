package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kidscholars/ksis-api/internal/middleware"
	"github.com/kidscholars/ksis-api/internal/models"
)

// claimsFromContext returns the authenticated token claims, or nil when the
// request passed through without a token (public or optional-auth routes).
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}
