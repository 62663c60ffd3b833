package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	authorizationType   = "Bearer"
	ContextUserIDKey    = "userID"
	ContextUserKey      = "user"
)

func AuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(authorizationHeader)
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 || fields[0] != authorizationType {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		user, err := tokenService.ValidateToken(c.Request.Context(), fields[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserKey, user)

		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	id, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	idStr, ok := id.(string)
	return idStr, ok && idStr != ""
}

// GetUserContext builds the session for a core call from the authenticated
// user: its id, timezone and sound preference, stamped with the request time.
func GetUserContext(c *gin.Context) (domain.UserContext, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.UserContext{}, false
	}

	uc := domain.NewUserContext(userID, time.Now().UTC())
	if v, exists := c.Get(ContextUserKey); exists {
		if user, ok := v.(*domain.User); ok && user != nil {
			uc.Location = user.Location()
			uc.SFXEnabled = user.SFXEnabled
		}
	}
	return uc, true
}
