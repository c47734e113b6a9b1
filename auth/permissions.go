package auth

import (
	"sort"
	"strings"

	"github.com/wastewise/backend/models"
)

const (
	PermInventoryRead   = "inventory:read"
	PermInventoryWrite  = "inventory:write"
	PermInventoryDelete = "inventory:delete"
	PermWasteRead       = "waste:read"
	PermWasteWrite      = "waste:write"
	PermWasteDelete     = "waste:delete"
	PermAnalyticsRead   = "analytics:read"
	PermUsersRead       = "users:read"
	PermUsersWrite      = "users:write"
	PermUsersDelete     = "users:delete"
	PermSettingsWrite   = "settings:write"
)

var userPermissions = [...]string{
	PermInventoryRead, PermInventoryWrite, PermWasteRead, PermWasteWrite,
}

var managerPermissions = [...]string{
	PermInventoryRead, PermInventoryWrite, PermWasteRead, PermWasteWrite,
	PermInventoryDelete, PermWasteDelete, PermAnalyticsRead, PermUsersRead,
}

var adminPermissions = [...]string{
	PermInventoryRead, PermInventoryWrite, PermWasteRead, PermWasteWrite,
	PermInventoryDelete, PermWasteDelete, PermAnalyticsRead, PermUsersRead,
	PermUsersWrite, PermUsersDelete, PermSettingsWrite,
}

// RolePermissions returns a fresh copy of the fixed permission list for role,
// in display order. Unknown roles get nothing.
func RolePermissions(role models.Role) []string {
	switch role {
	case models.RoleUser:
		return append([]string(nil), userPermissions[:]...)
	case models.RoleManager:
		return append([]string(nil), managerPermissions[:]...)
	case models.RoleAdmin:
		return append([]string(nil), adminPermissions[:]...)
	}
	return nil
}

// EffectivePermissions is the role's permissions followed by any custom
// grants not already covered, deduplicated.
func EffectivePermissions(account *models.Account) []string {
	perms := RolePermissions(account.Role)
	seen := make(map[string]struct{}, len(perms)+len(account.Permissions))
	for _, p := range perms {
		seen[p] = struct{}{}
	}
	for _, p := range account.Permissions {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		perms = append(perms, p)
	}
	return perms
}

func HasPermission(account *models.Account, required string) bool {
	for _, p := range EffectivePermissions(account) {
		if p == required {
			return true
		}
	}
	return false
}

func CheckPermission(account *models.Account, required string) error {
	if account == nil {
		return &ForbiddenError{Required: required}
	}
	if !HasPermission(account, required) {
		return &ForbiddenError{Required: required, Role: account.Role}
	}
	return nil
}

func CheckRole(account *models.Account, allowed ...models.Role) error {
	if account != nil {
		for _, r := range allowed {
			if account.Role == r {
				return nil
			}
		}
	}
	names := make([]string, len(allowed))
	for i, r := range allowed {
		names[i] = "role:" + string(r)
	}
	fe := &ForbiddenError{Required: strings.Join(names, "|")}
	if account != nil {
		fe.Role = account.Role
	}
	return fe
}

// NormalizePermissions trims, drops empties and duplicates, and sorts.
func NormalizePermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
