package controllers

import (
	"context"
	"log/slog"
	"time"

	"github.com/wastewise/backend/database"
	"github.com/wastewise/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type InventoryStore interface {
	List(ctx context.Context, f database.InventoryFilter) ([]models.InventoryItem, int64, error)
	Get(ctx context.Context, id bson.ObjectID) (*models.InventoryItem, error)
	Create(ctx context.Context, item *models.InventoryItem) error
	Update(ctx context.Context, id bson.ObjectID, set bson.M) (*models.InventoryItem, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	Decrement(ctx context.Context, id bson.ObjectID, qty float64) (*models.InventoryItem, error)
	CountExpiring(ctx context.Context, before time.Time) (int64, error)
}

type WasteStore interface {
	List(ctx context.Context, f database.WasteFilter) ([]models.WasteLog, int64, error)
	Create(ctx context.Context, entry *models.WasteLog) error
	Delete(ctx context.Context, id bson.ObjectID) error
	Summary(ctx context.Context, from, to *time.Time) (byReason, byMonth []models.WasteSummaryRow, err error)
}

// ExportUploader archives generated report files; see utils.R2Client.
type ExportUploader interface {
	UploadExport(ctx context.Context, objectName, contentType string, body []byte) (string, error)
}

type QueryLimits struct {
	Default int
	Max     int
}

// Deps is what the route table needs. Uploader may be nil.
type Deps struct {
	Inventory InventoryStore
	Waste     WasteStore
	Uploader  ExportUploader
	Limits    QueryLimits
	Log       *slog.Logger
}
