package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type InventoryFilter struct {
	Category       string
	Query          string
	ExpiringBefore *time.Time
	Page           int
	Limit          int
}

type InventoryRepository struct {
	col *mongo.Collection
}

func NewInventoryRepository(db *mongo.Database) *InventoryRepository {
	return &InventoryRepository{col: db.Collection(InventoryCollection)}
}

func (f InventoryFilter) bson() bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Query != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Query), "$options": "i"}
	}
	if f.ExpiringBefore != nil {
		filter["expiryDate"] = bson.M{"$lte": *f.ExpiringBefore}
	}
	return filter
}

func (r *InventoryRepository) List(ctx context.Context, f InventoryFilter) ([]models.InventoryItem, int64, error) {
	filter := f.bson()
	opts := options.Find().SetSort(bson.D{{Key: "expiryDate", Value: 1}, {Key: "name", Value: 1}})
	if f.Limit > 0 {
		opts = opts.SetSkip(int64((f.Page - 1) * f.Limit)).SetLimit(int64(f.Limit))
	}

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find inventory: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.InventoryItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode inventory: %w", err)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count inventory: %w", err)
	}
	return items, total, nil
}

func (r *InventoryRepository) Get(ctx context.Context, id bson.ObjectID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}
	return &item, nil
}

func (r *InventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	if item.ID.IsZero() {
		item.ID = bson.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *InventoryRepository) Update(ctx context.Context, id bson.ObjectID, set bson.M) (*models.InventoryItem, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item models.InventoryItem
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &item, nil
}

func (r *InventoryRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if res.DeletedCount == 0 {
		return auth.ErrNotFound
	}
	return nil
}

// Decrement takes qty off the item only if that much is in stock.
func (r *InventoryRepository) Decrement(ctx context.Context, id bson.ObjectID, qty float64) (*models.InventoryItem, error) {
	filter := bson.M{"_id": id, "quantity": bson.M{"$gte": qty}}
	update := bson.M{
		"$inc": bson.M{"quantity": -qty},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item models.InventoryItem
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&item)
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("decrement item: %w", err)
	}
	if _, gerr := r.Get(ctx, id); gerr != nil {
		return nil, gerr
	}
	return nil, ErrInsufficientStock
}

func (r *InventoryRepository) CountExpiring(ctx context.Context, before time.Time) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{
		"expiryDate": bson.M{"$lte": before},
		"quantity":   bson.M{"$gt": 0},
	})
	if err != nil {
		return 0, fmt.Errorf("count expiring: %w", err)
	}
	return n, nil
}
