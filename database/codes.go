package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type CodeRepository struct {
	col *mongo.Collection
}

func NewCodeRepository(db *mongo.Database) *CodeRepository {
	return &CodeRepository{col: db.Collection(CodesCollection)}
}

func (r *CodeRepository) Insert(ctx context.Context, code *models.OneTimeCode) error {
	if code.ID.IsZero() {
		code.ID = bson.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, code); err != nil {
		return fmt.Errorf("insert code: %w", err)
	}
	return nil
}

// Consume is a single findAndModify, so two requests racing on the same code
// cannot both see isUsed=false.
func (r *CodeRepository) Consume(ctx context.Context, accountID bson.ObjectID, code string, typ models.CodeType, now time.Time) (*models.OneTimeCode, error) {
	filter := bson.M{
		"accountId": accountID,
		"code":      code,
		"type":      typ,
		"isUsed":    false,
		"expiresAt": bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{"isUsed": true}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetReturnDocument(options.After)

	var rec models.OneTimeCode
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("consume code: %w", err)
	}
	return &rec, nil
}

func (r *CodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": before}})
	if err != nil {
		return 0, fmt.Errorf("delete expired codes: %w", err)
	}
	return res.DeletedCount, nil
}
