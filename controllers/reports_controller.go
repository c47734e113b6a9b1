package controllers

import (
	"bytes"
	"encoding/csv"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wastewise/backend/database"
	"github.com/wastewise/backend/models"
	"github.com/wastewise/backend/utils"
)

const expiringSoonWindow = 3 * 24 * time.Hour

// GET /reports/summary
func GetSummary(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		from, to, ok := dateRange(c)
		if !ok {
			return
		}

		byReason, byMonth, err := d.Waste.Summary(ctx, from, to)
		if err != nil {
			respondError(c, d.Log, err)
			return
		}
		expiring, err := d.Inventory.CountExpiring(ctx, time.Now().UTC().Add(expiringSoonWindow))
		if err != nil {
			respondError(c, d.Log, err)
			return
		}

		var total models.WasteSummaryRow
		total.Key = "total"
		for _, r := range byReason {
			total.Count += r.Count
			total.Quantity += r.Quantity
			total.Cost += r.Cost
		}

		c.JSON(http.StatusOK, gin.H{
			"total":        total,
			"byReason":     byReason,
			"byMonth":      byMonth,
			"expiringSoon": expiring,
			"generatedAt":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}

var wasteCSVHeader = []string{"id", "loggedAt", "itemName", "quantity", "unit", "reason", "cost", "notes"}

func writeWasteCSV(w io.Writer, logs []models.WasteLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(wasteCSVHeader); err != nil {
		return err
	}
	for _, l := range logs {
		row := []string{
			l.ID.Hex(),
			l.LoggedAt.UTC().Format(time.RFC3339),
			l.ItemName,
			strconv.FormatFloat(l.Quantity, 'f', -1, 64),
			l.Unit,
			string(l.Reason),
			strconv.FormatFloat(l.Cost, 'f', 2, 64),
			l.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// GET /reports/waste.csv
//
// archive=true also uploads the file when object storage is configured and
// returns its URL in X-Archive-URL.
func ExportWasteCSV(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		from, to, ok := dateRange(c)
		if !ok {
			return
		}
		archive, err := utils.ParseBoolQuery(c.Query("archive"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "archive must be a boolean", "field": "archive"})
			return
		}

		logs, _, err := d.Waste.List(ctx, database.WasteFilter{From: from, To: to})
		if err != nil {
			respondError(c, d.Log, err)
			return
		}

		var buf bytes.Buffer
		if err := writeWasteCSV(&buf, logs); err != nil {
			respondError(c, d.Log, err)
			return
		}

		now := time.Now().UTC()
		fileName := "waste-" + now.Format("20060102-150405") + ".csv"

		if archive != nil && *archive {
			if d.Uploader == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "export archive is not configured"})
				return
			}
			url, err := d.Uploader.UploadExport(ctx, utils.ExportObjectName(fileName, now), "text/csv", buf.Bytes())
			if err != nil {
				respondError(c, d.Log, err)
				return
			}
			c.Header("X-Archive-URL", url)
		}

		c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
}
