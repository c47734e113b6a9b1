package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/dto"
	"github.com/wastewise/backend/middleware"
	"github.com/wastewise/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type userHandler func(c *gin.Context, actor *models.Account)

// withActor passes the authenticated account explicitly to h.
func withActor(h userHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.CurrentAccount(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}
		h(c, actor)
	}
}

func targetID(c *gin.Context) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid user id")
		return bson.ObjectID{}, false
	}
	return id, true
}

// GET /users
func ListUsers(svc *auth.Service, log *slog.Logger) gin.HandlerFunc {
	return withActor(func(c *gin.Context, actor *models.Account) {
		accounts, err := svc.ListAccounts(c.Request.Context(), actor)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": accounts, "total": len(accounts)})
	})
}

// POST /users
func CreateUser(svc *auth.Service, log *slog.Logger) gin.HandlerFunc {
	return withActor(func(c *gin.Context, actor *models.Account) {
		var body dto.CreateUserDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid json body")
			return
		}

		account, err := svc.CreateAccount(c.Request.Context(), actor, auth.NewAccount{
			Name:        body.Name,
			Email:       body.Email,
			Password:    body.Password,
			Role:        models.Role(body.Role),
			Permissions: body.Permissions,
		})
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, account)
	})
}

// PATCH /users/:id/role
func UpdateUserRole(svc *auth.Service, log *slog.Logger) gin.HandlerFunc {
	return withActor(func(c *gin.Context, actor *models.Account) {
		id, ok := targetID(c)
		if !ok {
			return
		}
		var body dto.UpdateRoleDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role is required", "field": "role"})
			return
		}

		account, err := svc.SetRole(c.Request.Context(), actor, id, models.Role(body.Role))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, account)
	})
}

// PATCH /users/:id/permissions
func UpdateUserPermissions(svc *auth.Service, log *slog.Logger) gin.HandlerFunc {
	return withActor(func(c *gin.Context, actor *models.Account) {
		id, ok := targetID(c)
		if !ok {
			return
		}
		var body dto.UpdatePermissionsDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid json body")
			return
		}

		account, err := svc.SetPermissions(c.Request.Context(), actor, id, body.Permissions)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, account)
	})
}

// DELETE /users/:id
func DeleteUser(svc *auth.Service, log *slog.Logger) gin.HandlerFunc {
	return withActor(func(c *gin.Context, actor *models.Account) {
		id, ok := targetID(c)
		if !ok {
			return
		}
		if err := svc.DeleteAccount(c.Request.Context(), actor, id); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
}
