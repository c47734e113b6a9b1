package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wastewise/backend/database"
	"github.com/wastewise/backend/dto"
	"github.com/wastewise/backend/middleware"
	"github.com/wastewise/backend/models"
	"github.com/wastewise/backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func itemID(c *gin.Context) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid item id")
		return bson.ObjectID{}, false
	}
	return id, true
}

// GET /inventory
func GetInventory(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, limit := utils.Pagination(c.Query("page"), c.Query("limit"), d.Limits.Default, d.Limits.Max)

		f := database.InventoryFilter{
			Category: strings.TrimSpace(c.Query("category")),
			Query:    strings.TrimSpace(c.Query("q")),
			Page:     page,
			Limit:    limit,
		}
		if v := c.Query("expiringWithinDays"); v != "" {
			days := utils.ParseIntDefault(v, -1)
			if days < 0 {
				badRequest(c, "expiringWithinDays must be a non-negative integer")
				return
			}
			before := time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
			f.ExpiringBefore = &before
		}

		items, total, err := d.Inventory.List(ctx, f)
		if err != nil {
			respondError(c, d.Log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items": items,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

// GET /inventory/:id
func GetInventoryItem(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := itemID(c)
		if !ok {
			return
		}
		item, err := d.Inventory.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, d.Log, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// POST /inventory
func AddInventoryItem(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := middleware.CurrentAccount(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}

		var body dto.CreateInventoryItemDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		name := strings.TrimSpace(body.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty", "field": "name"})
			return
		}

		now := time.Now().UTC()
		item := models.InventoryItem{
			ID:          bson.NewObjectID(),
			Name:        name,
			SKU:         utils.GenerateSlug(name),
			Category:    strings.TrimSpace(body.Category),
			Quantity:    *body.Quantity,
			Unit:        strings.TrimSpace(body.Unit),
			CostPerUnit: body.CostPerUnit,
			ExpiryDate:  body.ExpiryDate.UTC(),
			Location:    strings.TrimSpace(body.Location),
			CreatedBy:   account.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := d.Inventory.Create(c.Request.Context(), &item); err != nil {
			respondError(c, d.Log, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// PATCH /inventory/:id
func UpdateInventoryItem(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := itemID(c)
		if !ok {
			return
		}

		var body dto.UpdateInventoryItemDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		set := bson.M{}
		if body.Name != nil {
			v := strings.TrimSpace(*body.Name)
			if v == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty", "field": "name"})
				return
			}
			set["name"] = v
			set["sku"] = utils.GenerateSlug(v)
		}
		if body.Category != nil {
			set["category"] = strings.TrimSpace(*body.Category)
		}
		if body.Quantity != nil {
			set["quantity"] = *body.Quantity
		}
		if body.Unit != nil {
			v := strings.TrimSpace(*body.Unit)
			if v == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unit cannot be empty", "field": "unit"})
				return
			}
			set["unit"] = v
		}
		if body.CostPerUnit != nil {
			set["costPerUnit"] = *body.CostPerUnit
		}
		if body.ExpiryDate != nil {
			set["expiryDate"] = body.ExpiryDate.UTC()
		}
		if body.Location != nil {
			set["location"] = strings.TrimSpace(*body.Location)
		}

		if len(set) == 0 {
			badRequest(c, "no updates provided")
			return
		}

		item, err := d.Inventory.Update(c.Request.Context(), id, set)
		if err != nil {
			respondError(c, d.Log, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /inventory/:id
func DeleteInventoryItem(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := itemID(c)
		if !ok {
			return
		}
		if err := d.Inventory.Delete(c.Request.Context(), id); err != nil {
			respondError(c, d.Log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
