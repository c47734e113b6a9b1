package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/models"
	"github.com/wastewise/backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(UsersCollection)}
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.Permissions == nil {
		account.Permissions = []string{}
	}
	if _, err := r.col.InsertOne(ctx, account); err != nil {
		if utils.IsDuplicateKey(err) {
			return auth.ErrDuplicateAccount
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	var account models.Account
	if err := r.col.FindOne(ctx, filter).Decode(&account); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) List(ctx context.Context) ([]models.Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cursor.Close(ctx)

	accounts := make([]models.Account, 0)
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) set(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) SetLastLogin(ctx context.Context, id bson.ObjectID, at time.Time) error {
	return r.set(ctx, id, bson.M{"lastLogin": at})
}

func (r *AccountRepository) SetTwoFactor(ctx context.Context, id bson.ObjectID, enabled bool) error {
	return r.set(ctx, id, bson.M{"twoFactorEnabled": enabled})
}

func (r *AccountRepository) SetRole(ctx context.Context, id bson.ObjectID, role models.Role) error {
	return r.set(ctx, id, bson.M{"role": role})
}

func (r *AccountRepository) SetPermissions(ctx context.Context, id bson.ObjectID, perms []string) error {
	if perms == nil {
		perms = []string{}
	}
	return r.set(ctx, id, bson.M{"permissions": perms})
}

func (r *AccountRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return auth.ErrNotFound
	}
	return nil
}

// EnsureAccount inserts account unless its email already exists.
func (r *AccountRepository) EnsureAccount(ctx context.Context, account *models.Account) (bool, error) {
	if account.Permissions == nil {
		account.Permissions = []string{}
	}
	filter := bson.M{"email": account.Email}
	update := bson.M{"$setOnInsert": account}
	opts := options.UpdateOne().SetUpsert(true)

	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, fmt.Errorf("upsert account: %w", err)
	}
	return res.UpsertedCount == 1, nil
}
