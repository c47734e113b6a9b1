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

// dateRange reads from/to query params; to is exclusive.
func dateRange(c *gin.Context) (from, to *time.Time, ok bool) {
	from, err := utils.ParseDateQuery(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "from"})
		return nil, nil, false
	}
	to, err = utils.ParseDateQuery(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "to"})
		return nil, nil, false
	}
	if from != nil && to != nil && !to.After(*from) {
		badRequest(c, "to must be after from")
		return nil, nil, false
	}
	return from, to, true
}

// GET /waste
func GetWasteLogs(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := utils.Pagination(c.Query("page"), c.Query("limit"), d.Limits.Default, d.Limits.Max)

		reason := strings.TrimSpace(c.Query("reason"))
		if reason != "" && !models.WasteReason(reason).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown reason", "field": "reason"})
			return
		}
		from, to, ok := dateRange(c)
		if !ok {
			return
		}

		logs, total, err := d.Waste.List(c.Request.Context(), database.WasteFilter{
			Reason: reason,
			From:   from,
			To:     to,
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			respondError(c, d.Log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items": logs,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

// POST /waste
//
// With itemId the item's stock is reduced first, and name, unit and cost
// default from the item.
func AddWasteLog(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		account, ok := middleware.CurrentAccount(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}

		var body dto.CreateWasteLogDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		reason := models.WasteReason(strings.TrimSpace(body.Reason))
		if !reason.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown reason", "field": "reason"})
			return
		}

		entry := models.WasteLog{
			ID:       bson.NewObjectID(),
			ItemName: strings.TrimSpace(body.ItemName),
			Quantity: body.Quantity,
			Unit:     strings.TrimSpace(body.Unit),
			Reason:   reason,
			Notes:    strings.TrimSpace(body.Notes),
			LoggedBy: account.ID,
			LoggedAt: time.Now().UTC(),
		}
		if body.LoggedAt != nil {
			entry.LoggedAt = body.LoggedAt.UTC()
		}
		if body.Cost != nil {
			entry.Cost = *body.Cost
		}

		if body.ItemID != "" {
			id, err := bson.ObjectIDFromHex(body.ItemID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id", "field": "itemId"})
				return
			}
			item, err := d.Inventory.Decrement(ctx, id, body.Quantity)
			if err != nil {
				respondError(c, d.Log, err)
				return
			}
			entry.ItemID = &id
			if entry.ItemName == "" {
				entry.ItemName = item.Name
			}
			if entry.Unit == "" {
				entry.Unit = item.Unit
			}
			if body.Cost == nil {
				entry.Cost = body.Quantity * item.CostPerUnit
			}
		}

		if entry.ItemName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "itemName is required without itemId", "field": "itemName"})
			return
		}
		if entry.Unit == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unit is required without itemId", "field": "unit"})
			return
		}

		if err := d.Waste.Create(ctx, &entry); err != nil {
			if entry.ItemID != nil {
				d.Log.ErrorContext(ctx, "waste log not stored after stock decrement", "item", entry.ItemID.Hex(), "quantity", entry.Quantity)
			}
			respondError(c, d.Log, err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

// DELETE /waste/:id
func DeleteWasteLog(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			badRequest(c, "invalid waste log id")
			return
		}
		if err := d.Waste.Delete(c.Request.Context(), id); err != nil {
			respondError(c, d.Log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
