package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/database"
	"github.com/wastewise/backend/models"
	"golang.org/x/crypto/bcrypt"
)

type sentCode struct {
	email string
	code  string
	flow  models.CodeType
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentCode
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, email, code string, flow models.CodeType) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentCode{email: email, code: code, flow: flow})
	return nil
}

func (n *recordingNotifier) last(t *testing.T) sentCode {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		t.Fatalf("no code was sent")
	}
	return n.sent[len(n.sent)-1]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc      *auth.Service
	signer   *auth.JWTSigner
	accounts *database.MemoryAccounts
	codes    *database.MemoryCodes
	notifier *recordingNotifier
	clock    *fakeClock
}

const testSecret = "test-secret-test-secret-test-secret"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		accounts: database.NewMemoryAccounts(),
		codes:    database.NewMemoryCodes(),
		notifier: &recordingNotifier{},
		clock:    &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	broker := auth.NewBroker(f.codes, f.notifier, auth.DefaultCodeTTL, 0, nil)
	auth.SetBrokerClock(broker, f.clock.Now)
	f.signer = auth.NewJWTSigner([]byte(testSecret), auth.DefaultTokenTTL)
	auth.SetSignerClock(f.signer, f.clock.Now)
	f.svc = auth.NewService(f.accounts, broker, auth.NewBcryptHasher(bcrypt.MinCost, 4), f.signer, nil)
	auth.SetServiceClock(f.svc, f.clock.Now)
	return f
}

func (f *fixture) seed(t *testing.T, email, password string, role models.Role) *models.Account {
	t.Helper()
	s, err := f.svc.Register(context.Background(), "Test "+string(role), email, password)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	if role != models.RoleUser {
		if err := f.accounts.SetRole(context.Background(), s.Account.ID, role); err != nil {
			t.Fatalf("set role: %v", err)
		}
	}
	a, err := f.accounts.FindByID(context.Background(), s.Account.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	return a
}

var errBoom = errors.New("boom")
