package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	usersvc "github.com/M-ahmad144/Lymora-Backend/internal/service/user"
	"github.com/gin-gonic/gin"
)

const userCtxKey = "authUser"

// authRequired resolves the Bearer token to a user and stores it on the
// gin context for downstream handlers.
func authRequired(svc userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token, authorization denied"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		user, err := svc.LookupByToken(c.Request.Context(), parts[1])
		if err != nil {
			if errors.Is(err, usersvc.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(userCtxKey, user)
		c.Next()
	}
}

// adminRequired must run after authRequired.
func adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied, admins only"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userCtxKey)
	if !ok {
		return nil
	}
	user, ok := v.(*domain.User)
	if !ok {
		return nil
	}
	return user
}
