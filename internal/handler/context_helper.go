package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campusrec/achievement-api/internal/authz"
	"github.com/campusrec/achievement-api/internal/middleware"
	"github.com/campusrec/achievement-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// principalFromContext builds the explicit principal services expect from the
// verified claims. Returns false when the request carries no identity.
func principalFromContext(c *gin.Context) (authz.Principal, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		return authz.Principal{}, false
	}
	return authz.Principal{UserID: claims.UserID, Role: claims.Role}, true
}
