package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/models"
	"github.com/nplaceworks/adrank_backend/utils"
)

// SessionMiddleware resolves the redis-backed session token into the
// request context: business id, user id, role. Requests without a token
// pass through; protected routes reject them in RequireUser.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			// API clients may authenticate with a bearer JWT instead.
			if claims := CtxValue(c.Request.Context()); claims != nil {
				user, err := models.GetUserById(c.Request.Context(), claims.ID)
				if err != nil {
					c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
					c.Abort()
					return
				}
				attachUser(c, "", user)
				c.Next()
				return
			}
			c.Next()
			return
		}
		username, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		user, err := models.GetUserByUsername(c.Request.Context(), username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		attachUser(c, token, user)
		c.Next()
	}
}

func attachUser(c *gin.Context, token string, user *models.User) {
	ctx := c.Request.Context()
	if token != "" {
		ctx = utils.SetTokenInContext(ctx, token)
	}
	ctx = utils.SetUsernameInContext(ctx, user.Username)
	ctx = utils.SetUserIdInContext(ctx, user.ID)
	ctx = utils.SetUserNameInContext(ctx, user.Name)
	ctx = utils.SetBusinessIdInContext(ctx, user.BusinessId)
	ctx = utils.SetIsAdminInContext(ctx, user.Role == models.UserRoleAdmin)
	c.Request = c.Request.WithContext(ctx)
}

// RequireUser aborts with 401 unless SessionMiddleware resolved a user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := utils.GetUserIdFromContext(c.Request.Context()); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the session belongs to an admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, ok := utils.GetIsAdminFromContext(c.Request.Context())
		if !ok || !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
