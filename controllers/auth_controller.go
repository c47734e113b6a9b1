package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/dto"
	"github.com/wastewise/backend/middleware"
)

// POST /auth/register
func Register(svc *auth.Service, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid json body")
			return
		}

		session, err := svc.Register(c.Request.Context(), body.Name, body.Email, body.Password)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"user":  session.Account,
			"token": session.Token,
		})
	}
}

// POST /auth/login
func Login(svc *auth.Service, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid json body")
			return
		}

		outcome, err := svc.Login(c.Request.Context(), body.Email, body.Password, body.Code)
		if err != nil {
			respondError(c, log, err)
			return
		}

		if outcome.State != auth.StateVerified {
			c.JSON(http.StatusOK, gin.H{
				"requiresTwoFactor": true,
				"message":           "verification code sent",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":  outcome.Session.Account,
			"token": outcome.Session.Token,
		})
	}
}

// GET /auth/me
func Me(svc *auth.Service, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := middleware.CurrentAccount(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}

		profile, err := svc.Profile(c.Request.Context(), account.ID)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":        profile.Account,
			"permissions": profile.EffectivePermissions,
		})
	}
}

// POST /auth/2fa/enable and /auth/2fa/disable. The first call (no code)
// sends a code; the second confirms it.
func ChangeTwoFactor(svc *auth.Service, enable bool, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := middleware.CurrentAccount(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}

		// An empty body is a request for a code.
		var body dto.TwoFactorDTO
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "invalid json body")
			return
		}

		state, err := svc.ChangeTwoFactor(c.Request.Context(), account, enable, body.Code)
		if err != nil {
			respondError(c, log, err)
			return
		}

		if state != auth.StateVerified {
			c.JSON(http.StatusOK, gin.H{
				"requiresVerification": true,
				"message":              "verification code sent",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"twoFactorEnabled": account.TwoFactorEnabled})
	}
}
