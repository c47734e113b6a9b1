package database

import (
	"context"
	"fmt"
	"time"

	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type WasteFilter struct {
	Reason string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

func (f WasteFilter) bson() bson.M {
	filter := bson.M{}
	if f.Reason != "" {
		filter["reason"] = f.Reason
	}
	window := bson.M{}
	if f.From != nil {
		window["$gte"] = *f.From
	}
	if f.To != nil {
		window["$lt"] = *f.To
	}
	if len(window) > 0 {
		filter["loggedAt"] = window
	}
	return filter
}

type WasteRepository struct {
	col *mongo.Collection
}

func NewWasteRepository(db *mongo.Database) *WasteRepository {
	return &WasteRepository{col: db.Collection(WasteCollection)}
}

// List returns newest first. Limit 0 returns everything matching.
func (r *WasteRepository) List(ctx context.Context, f WasteFilter) ([]models.WasteLog, int64, error) {
	filter := f.bson()
	opts := options.Find().SetSort(bson.D{{Key: "loggedAt", Value: -1}})
	if f.Limit > 0 {
		opts = opts.SetSkip(int64((f.Page - 1) * f.Limit)).SetLimit(int64(f.Limit))
	}

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find waste: %w", err)
	}
	defer cursor.Close(ctx)

	logs := make([]models.WasteLog, 0)
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, 0, fmt.Errorf("decode waste: %w", err)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count waste: %w", err)
	}
	return logs, total, nil
}

func (r *WasteRepository) Create(ctx context.Context, entry *models.WasteLog) error {
	if entry.ID.IsZero() {
		entry.ID = bson.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert waste: %w", err)
	}
	return nil
}

func (r *WasteRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete waste: %w", err)
	}
	if res.DeletedCount == 0 {
		return auth.ErrNotFound
	}
	return nil
}

// Summary groups waste in the window by reason and by calendar month (UTC).
func (r *WasteRepository) Summary(ctx context.Context, from, to *time.Time) (byReason, byMonth []models.WasteSummaryRow, err error) {
	match := WasteFilter{From: from, To: to}.bson()

	byReason, err = r.aggregate(ctx, match, "$reason")
	if err != nil {
		return nil, nil, err
	}
	byMonth, err = r.aggregate(ctx, match, bson.M{
		"$dateToString": bson.M{"format": "%Y-%m", "date": "$loggedAt"},
	})
	if err != nil {
		return nil, nil, err
	}
	return byReason, byMonth, nil
}

func (r *WasteRepository) aggregate(ctx context.Context, match bson.M, key any) ([]models.WasteSummaryRow, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: key},
			{Key: "count", Value: bson.M{"$sum": 1}},
			{Key: "quantity", Value: bson.M{"$sum": "$quantity"}},
			{Key: "cost", Value: bson.M{"$sum": "$cost"}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate waste: %w", err)
	}
	defer cursor.Close(ctx)

	rows := make([]models.WasteSummaryRow, 0)
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return rows, nil
}
