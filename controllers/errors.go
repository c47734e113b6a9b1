package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/database"
)

// respondError maps the auth error taxonomy onto status codes. Anything
// unrecognised is logged and reported without detail.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	var ve *auth.ValidationError
	var fe *auth.ForbiddenError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, auth.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, database.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient stock", "field": "quantity"})
	case errors.Is(err, auth.ErrDuplicateAccount):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered", "field": "email"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, auth.ErrInvalidOrExpiredCode):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired verification code"})
	case errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
	case errors.As(err, &fe):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "required": fe.Required, "role": fe.Role})
	case errors.Is(err, auth.ErrSelfRoleChange), errors.Is(err, auth.ErrSelfDelete):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, auth.ErrNotifyFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send verification"})
	default:
		log.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
