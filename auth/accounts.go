package auth

import (
	"context"
	"strings"

	"github.com/wastewise/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type NewAccount struct {
	Name        string
	Email       string
	Password    string
	Role        models.Role
	Permissions []string
}

func (s *Service) ListAccounts(ctx context.Context, actor *models.Account) ([]models.Account, error) {
	if err := CheckPermission(actor, PermUsersRead); err != nil {
		return nil, err
	}
	return s.accounts.List(ctx)
}

// CreateAccount is the admin path; unlike Register it may pick role and
// grants and does not sign a session. Any role above user needs an admin actor.
func (s *Service) CreateAccount(ctx context.Context, actor *models.Account, in NewAccount) (*models.Account, error) {
	if err := CheckPermission(actor, PermUsersWrite); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, invalid("role", "must be one of user, manager, admin")
	}
	if role != models.RoleUser {
		if err := CheckRole(actor, models.RoleAdmin); err != nil {
			return nil, err
		}
	}

	account, err := s.createAccount(ctx, name, email, in.Password, role, in.Permissions)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "account created", "account", account.ID.Hex(), "by", actor.ID.Hex(), "role", role)
	return account, nil
}

// SetRole is admin-only even for accounts granted users:write, and refuses to
// let an admin move their own account off admin.
func (s *Service) SetRole(ctx context.Context, actor *models.Account, target bson.ObjectID, role models.Role) (*models.Account, error) {
	if err := CheckPermission(actor, PermUsersWrite); err != nil {
		return nil, err
	}
	if err := CheckRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, invalid("role", "must be one of user, manager, admin")
	}
	if actor.ID == target && actor.Role == models.RoleAdmin && role != models.RoleAdmin {
		return nil, ErrSelfRoleChange
	}
	if err := s.accounts.SetRole(ctx, target, role); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "role changed", "account", target.Hex(), "by", actor.ID.Hex(), "role", role)
	return s.accounts.FindByID(ctx, target)
}

func (s *Service) SetPermissions(ctx context.Context, actor *models.Account, target bson.ObjectID, perms []string) (*models.Account, error) {
	if err := CheckPermission(actor, PermUsersWrite); err != nil {
		return nil, err
	}
	if err := s.accounts.SetPermissions(ctx, target, NormalizePermissions(perms)); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "permissions changed", "account", target.Hex(), "by", actor.ID.Hex())
	return s.accounts.FindByID(ctx, target)
}

func (s *Service) DeleteAccount(ctx context.Context, actor *models.Account, target bson.ObjectID) error {
	if err := CheckPermission(actor, PermUsersDelete); err != nil {
		return err
	}
	if actor.ID == target {
		return ErrSelfDelete
	}
	if err := s.accounts.Delete(ctx, target); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "account deleted", "account", target.Hex(), "by", actor.ID.Hex())
	return nil
}
