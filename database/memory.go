package database

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryAccounts is an in-process AccountStore. Data is lost on restart.
type MemoryAccounts struct {
	mu   sync.RWMutex
	byID map[bson.ObjectID]*models.Account
}

func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{byID: make(map[bson.ObjectID]*models.Account)}
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	c.Permissions = append([]string{}, a.Permissions...)
	if a.LastLogin != nil {
		t := *a.LastLogin
		c.LastLogin = &t
	}
	return &c
}

func (m *MemoryAccounts) Create(_ context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == account.Email {
			return auth.ErrDuplicateAccount
		}
	}
	if account.ID.IsZero() {
		account.ID = bson.NewObjectID()
	}
	if account.Permissions == nil {
		account.Permissions = []string{}
	}
	m.byID[account.ID] = copyAccount(account)
	return nil
}

func (m *MemoryAccounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.byID {
		if a.Email == email {
			return copyAccount(a), nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *MemoryAccounts) FindByID(_ context.Context, id bson.ObjectID) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return copyAccount(a), nil
}

func (m *MemoryAccounts) List(_ context.Context) ([]models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Account, 0, len(m.byID))
	for _, a := range m.byID {
		out = append(out, *copyAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryAccounts) update(id bson.ObjectID, fn func(*models.Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	fn(a)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryAccounts) SetLastLogin(_ context.Context, id bson.ObjectID, at time.Time) error {
	return m.update(id, func(a *models.Account) { a.LastLogin = &at })
}

func (m *MemoryAccounts) SetTwoFactor(_ context.Context, id bson.ObjectID, enabled bool) error {
	return m.update(id, func(a *models.Account) { a.TwoFactorEnabled = enabled })
}

func (m *MemoryAccounts) SetRole(_ context.Context, id bson.ObjectID, role models.Role) error {
	return m.update(id, func(a *models.Account) { a.Role = role })
}

func (m *MemoryAccounts) SetPermissions(_ context.Context, id bson.ObjectID, perms []string) error {
	return m.update(id, func(a *models.Account) { a.Permissions = append([]string{}, perms...) })
}

func (m *MemoryAccounts) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return auth.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *MemoryAccounts) EnsureAccount(ctx context.Context, account *models.Account) (bool, error) {
	err := m.Create(ctx, account)
	if errors.Is(err, auth.ErrDuplicateAccount) {
		return false, nil
	}
	return err == nil, err
}

// MemoryCodes is an in-process CodeStore. Its mutex plays the part of the
// findAndModify in CodeRepository.
type MemoryCodes struct {
	mu    sync.Mutex
	codes []models.OneTimeCode
}

func NewMemoryCodes() *MemoryCodes {
	return &MemoryCodes{}
}

func (m *MemoryCodes) Insert(_ context.Context, code *models.OneTimeCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if code.ID.IsZero() {
		code.ID = bson.NewObjectID()
	}
	m.codes = append(m.codes, *code)
	return nil
}

func (m *MemoryCodes) Consume(_ context.Context, accountID bson.ObjectID, code string, typ models.CodeType, now time.Time) (*models.OneTimeCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	best := -1
	for i := range m.codes {
		c := &m.codes[i]
		if c.AccountID != accountID || c.Code != code || c.Type != typ || c.IsUsed || !c.ExpiresAt.After(now) {
			continue
		}
		if best < 0 || c.CreatedAt.After(m.codes[best].CreatedAt) {
			best = i
		}
	}
	if best < 0 {
		return nil, auth.ErrNotFound
	}
	m.codes[best].IsUsed = true
	rec := m.codes[best]
	return &rec, nil
}

func (m *MemoryCodes) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.codes[:0]
	var n int64
	for _, c := range m.codes {
		if !c.ExpiresAt.After(before) {
			n++
			continue
		}
		kept = append(kept, c)
	}
	m.codes = kept
	return n, nil
}

// Snapshot returns a copy of every stored code, used or not.
func (m *MemoryCodes) Snapshot() []models.OneTimeCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.OneTimeCode(nil), m.codes...)
}
