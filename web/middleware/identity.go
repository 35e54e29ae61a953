package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/testwork/bookadmin/logger"
	"github.com/testwork/bookadmin/web/access"
	"github.com/testwork/bookadmin/web/service"
	"github.com/testwork/bookadmin/web/session"
)

const identityKey = "identity"

// IdentityMiddleware resolves the identity of the current request from the
// session. A missing user or stale uniquifier resolves to the anonymous
// identity and clears the session.
func IdentityMiddleware() gin.HandlerFunc {
	authService := service.AuthService{}
	return func(c *gin.Context) {
		identity := access.Anonymous()
		if id, token, ok := session.GetLoginUser(c); ok {
			user, err := authService.GetIdentityUser(id, token)
			if err != nil {
				logger.Error("resolve identity failed:", err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			if user != nil {
				identity = access.IdentityOf(user)
			} else if err := session.ClearSession(c); err != nil {
				logger.Warning("Unable to clear stale session:", err)
			}
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// GetIdentity returns the identity resolved by IdentityMiddleware.
func GetIdentity(c *gin.Context) access.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(access.Identity); ok {
			return identity
		}
	}
	return access.Anonymous()
}
