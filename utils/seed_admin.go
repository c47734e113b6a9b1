package utils

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// AccountEnsurer inserts an account only when its email is not taken.
type AccountEnsurer interface {
	EnsureAccount(ctx context.Context, account *models.Account) (created bool, err error)
}

// SeedAdminUser creates the bootstrap admin when email and password are both
// set. It never overwrites an existing account.
func SeedAdminUser(ctx context.Context, store AccountEnsurer, hasher auth.PasswordHasher, name, email, pass string, log *slog.Logger) error {
	email = strings.TrimSpace(email)
	if email == "" || pass == "" {
		log.InfoContext(ctx, "ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		name = "Administrator"
	}

	hash, err := hasher.Hash(ctx, pass)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()
	created, err := store.EnsureAccount(ctx, &models.Account{
		ID:           bson.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Permissions:  []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if created {
		log.InfoContext(ctx, "admin user seeded", "email", email)
	} else {
		log.InfoContext(ctx, "admin user already exists", "email", email)
	}
	return nil
}
