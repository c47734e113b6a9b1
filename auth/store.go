package auth

import (
	"context"
	"time"

	"github.com/wastewise/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// AccountStore persists accounts. Lookups that miss return ErrNotFound and a
// duplicate email on Create returns ErrDuplicateAccount.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	SetLastLogin(ctx context.Context, id bson.ObjectID, at time.Time) error
	SetTwoFactor(ctx context.Context, id bson.ObjectID, enabled bool) error
	SetRole(ctx context.Context, id bson.ObjectID, role models.Role) error
	SetPermissions(ctx context.Context, id bson.ObjectID, perms []string) error
	Delete(ctx context.Context, id bson.ObjectID) error
}

// CodeStore persists one-time codes.
//
// Consume must atomically find the newest record matching accountID, code and
// type that is unused and expires after now, mark it used, and return it. When
// nothing matches it returns ErrNotFound.
type CodeStore interface {
	Insert(ctx context.Context, code *models.OneTimeCode) error
	Consume(ctx context.Context, accountID bson.ObjectID, code string, typ models.CodeType, now time.Time) (*models.OneTimeCode, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Notifier delivers a code to the account's inbox.
type Notifier interface {
	Send(ctx context.Context, email, code string, flow models.CodeType) error
}

type TokenSigner interface {
	Sign(accountID string) (string, error)
	Verify(token string) (string, error)
}

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	// Compare returns ErrInvalidCredentials on mismatch.
	Compare(ctx context.Context, hash, password string) error
	// CompareDummy burns the same work as Compare against a fixed hash.
	CompareDummy(ctx context.Context, password string)
}
