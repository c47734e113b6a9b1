package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/models"
)

const accountKey = "account"

// AuthMiddleware resolves the bearer token to an account and stores it on the
// gin context for CurrentAccount.
func AuthMiddleware(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		account, err := svc.ResolveToken(c.Request.Context(), tokenStr)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(accountKey, account)
		c.Next()
	}
}

// CurrentAccount returns the account set by AuthMiddleware.
func CurrentAccount(c *gin.Context) (*models.Account, bool) {
	v, ok := c.Get(accountKey)
	if !ok {
		return nil, false
	}
	account, ok := v.(*models.Account)
	return account, ok && account != nil
}

func abortForbidden(c *gin.Context, err error) {
	var fe *auth.ForbiddenError
	if errors.As(err, &fe) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":    "forbidden",
			"required": fe.Required,
			"role":     fe.Role,
		})
		return
	}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
}

func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}
		if err := auth.CheckPermission(account, permission); err != nil {
			abortForbidden(c, err)
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}
		if err := auth.CheckRole(account, roles...); err != nil {
			abortForbidden(c, err)
			return
		}
		c.Next()
	}
}
