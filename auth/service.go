package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/wastewise/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Session is an authenticated identity plus its bearer token.
type Session struct {
	Account *models.Account
	Token   string
}

// LoginOutcome is StateAwaitingVerification (code sent, Session nil) or
// StateVerified (Session set).
type LoginOutcome struct {
	State   VerificationState
	Session *Session
}

type Profile struct {
	Account              *models.Account
	EffectivePermissions []string
}

type Service struct {
	accounts AccountStore
	broker   *Broker
	hasher   PasswordHasher
	tokens   TokenSigner
	log      *slog.Logger
	now      func() time.Time
}

func NewService(accounts AccountStore, broker *Broker, hasher PasswordHasher, tokens TokenSigner, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		accounts: accounts,
		broker:   broker,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) Broker() *Broker { return s.broker }

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email", "is malformed")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return invalid("password", "is required")
	}
	if len(password) > MaxPasswordBytes {
		return invalid("password", fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}

// Register creates a user-role account and signs a session for it.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	account, err := s.createAccount(ctx, name, email, password, models.RoleUser, nil)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "account registered", "account", account.ID.Hex())
	return s.mint(account)
}

func (s *Service) createAccount(ctx context.Context, name, email, password string, role models.Role, perms []string) (*models.Account, error) {
	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateAccount
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	account := &models.Account{
		ID:               bson.NewObjectID(),
		Name:             name,
		Email:            email,
		PasswordHash:     hash,
		Role:             role,
		Permissions:      NormalizePermissions(perms),
		TwoFactorEnabled: false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	// The unique index still decides a registration race.
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Authenticate checks the password only. Unknown email and wrong password
// return the same ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		s.hasher.CompareDummy(ctx, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if err := s.hasher.Compare(ctx, account.PasswordHash, password); err != nil {
		return nil, err
	}
	return account, nil
}

// Login runs the password check and, for 2FA accounts, the login code step.
// An empty code on a 2FA account sends a new code.
func (s *Service) Login(ctx context.Context, email, password, code string) (*LoginOutcome, error) {
	account, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if account.TwoFactorEnabled {
		state, err := s.broker.Advance(ctx, account, models.CodeTypeLogin, code)
		if err != nil {
			return nil, err
		}
		if state != StateVerified {
			return &LoginOutcome{State: state}, nil
		}
	}

	now := s.now().UTC()
	if err := s.accounts.SetLastLogin(ctx, account.ID, now); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	account.LastLogin = &now

	session, err := s.mint(account)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "login succeeded", "account", account.ID.Hex(), "twoFactor", account.TwoFactorEnabled)
	return &LoginOutcome{State: StateVerified, Session: session}, nil
}

func (s *Service) mint(account *models.Account) (*Session, error) {
	token, err := s.tokens.Sign(account.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Account: account, Token: token}, nil
}

// ResolveToken verifies a bearer token and loads its account fresh, so role
// changes apply on the next request.
func (s *Service) ResolveToken(ctx context.Context, token string) (*models.Account, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidToken
	}
	account, err := s.accounts.FindByID(ctx, oid)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return account, nil
}

func (s *Service) Profile(ctx context.Context, id bson.ObjectID) (*Profile, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Profile{Account: account, EffectivePermissions: EffectivePermissions(account)}, nil
}

// ChangeTwoFactor runs the enable_2fa or disable_2fa flow for account. The
// flag flips only once the code verifies.
func (s *Service) ChangeTwoFactor(ctx context.Context, account *models.Account, enable bool, code string) (VerificationState, error) {
	flow := models.CodeTypeDisable2FA
	if enable {
		flow = models.CodeTypeEnable2FA
	}
	if account.TwoFactorEnabled == enable {
		if enable {
			return StateNeedCode, invalid("twoFactor", "already enabled")
		}
		return StateNeedCode, invalid("twoFactor", "already disabled")
	}

	state, err := s.broker.Advance(ctx, account, flow, code)
	if err != nil || state != StateVerified {
		return state, err
	}

	if err := s.accounts.SetTwoFactor(ctx, account.ID, enable); err != nil {
		return StateAwaitingVerification, fmt.Errorf("update two factor: %w", err)
	}
	account.TwoFactorEnabled = enable
	s.log.InfoContext(ctx, "two factor changed", "account", account.ID.Hex(), "enabled", enable)
	return StateVerified, nil
}
