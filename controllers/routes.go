package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/middleware"
	"github.com/wastewise/backend/models"
)

// RegisterRoutes mounts every endpoint on r. Permission gates sit on the
// routes; the users endpoints are also checked inside auth.Service. Role
// assignment (PATCH role, or POST with a role above user) stays admin-only
// even for accounts granted users:write.
func RegisterRoutes(r *gin.Engine, svc *auth.Service, d Deps) {
	log := d.Log

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	r.POST("/auth/register", Register(svc, log))
	r.POST("/auth/login", Login(svc, log))

	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware(svc))
	{
		authed.GET("/auth/me", Me(svc, log))
		authed.POST("/auth/2fa/enable", ChangeTwoFactor(svc, true, log))
		authed.POST("/auth/2fa/disable", ChangeTwoFactor(svc, false, log))

		authed.GET("/users", middleware.RequirePermission(auth.PermUsersRead), ListUsers(svc, log))
		authed.POST("/users", middleware.RequirePermission(auth.PermUsersWrite), CreateUser(svc, log))
		authed.PATCH("/users/:id/role", middleware.RequireRole(models.RoleAdmin), middleware.RequirePermission(auth.PermUsersWrite), UpdateUserRole(svc, log))
		authed.PATCH("/users/:id/permissions", middleware.RequirePermission(auth.PermUsersWrite), UpdateUserPermissions(svc, log))
		authed.DELETE("/users/:id", middleware.RequirePermission(auth.PermUsersDelete), DeleteUser(svc, log))

		authed.GET("/inventory", middleware.RequirePermission(auth.PermInventoryRead), GetInventory(d))
		authed.GET("/inventory/:id", middleware.RequirePermission(auth.PermInventoryRead), GetInventoryItem(d))
		authed.POST("/inventory", middleware.RequirePermission(auth.PermInventoryWrite), AddInventoryItem(d))
		authed.PATCH("/inventory/:id", middleware.RequirePermission(auth.PermInventoryWrite), UpdateInventoryItem(d))
		authed.DELETE("/inventory/:id", middleware.RequirePermission(auth.PermInventoryDelete), DeleteInventoryItem(d))

		authed.GET("/waste", middleware.RequirePermission(auth.PermWasteRead), GetWasteLogs(d))
		authed.POST("/waste", middleware.RequirePermission(auth.PermWasteWrite), AddWasteLog(d))
		authed.DELETE("/waste/:id", middleware.RequirePermission(auth.PermWasteDelete), DeleteWasteLog(d))

		authed.GET("/reports/summary", middleware.RequirePermission(auth.PermAnalyticsRead), GetSummary(d))
		authed.GET("/reports/waste.csv", middleware.RequirePermission(auth.PermAnalyticsRead), ExportWasteCSV(d))
	}
}
