package middleware

import (
	"companionhub/models"
	"companionhub/services/auth"
	"companionhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const identityKey = "user"

// Authenticate resolves the bearer token to a live identity and stores it in
// the context under "user".
func Authenticate(gate *auth.Gate, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := gate.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			utils.RespondError(c, logger, err)
			return
		}
		c.Set(identityKey, user)
		c.Next()
	}
}

// RequireRoles rejects identities outside allowed. It must run after
// Authenticate and before any body is read.
func RequireRoles(allowed auth.RoleSet, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Authorize(CurrentUser(c), allowed); err != nil {
			utils.RespondError(c, logger, err)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the identity stored by Authenticate, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
