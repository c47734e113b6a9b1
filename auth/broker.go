package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/wastewise/backend/models"
)

const (
	DefaultCodeTTL = 10 * time.Minute

	codeMin = 100000
	codeMax = 999999
)

// VerificationState is where a single step-up attempt stands.
type VerificationState int

const (
	StateNeedCode VerificationState = iota
	StateAwaitingVerification
	StateVerified
)

func (s VerificationState) String() string {
	switch s {
	case StateNeedCode:
		return "need_code"
	case StateAwaitingVerification:
		return "awaiting_verification"
	case StateVerified:
		return "verified"
	}
	return "unknown"
}

// GenerateCode returns a uniformly random six digit code in [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// Broker issues and verifies one-time codes. It holds no per-attempt state;
// everything lives in the CodeStore.
type Broker struct {
	codes     CodeStore
	notifier  Notifier
	ttl       time.Duration
	retention time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// NewBroker keeps expired and used codes for retention past their expiry
// before Reap removes them. A negative retention is treated as zero.
func NewBroker(codes CodeStore, notifier Notifier, ttl, retention time.Duration, log *slog.Logger) *Broker {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	if retention < 0 {
		retention = 0
	}
	if log == nil {
		log = slog.Default()
	}
	return &Broker{codes: codes, notifier: notifier, ttl: ttl, retention: retention, log: log, now: time.Now}
}

// Issue creates, stores and sends a fresh code. Earlier outstanding codes of
// the same type stay valid until used or expired.
func (b *Broker) Issue(ctx context.Context, account *models.Account, flow models.CodeType) (*models.OneTimeCode, error) {
	if !flow.Valid() {
		return nil, invalid("type", "unknown verification flow")
	}
	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}
	now := b.now().UTC()
	rec := &models.OneTimeCode{
		AccountID: account.ID,
		Code:      code,
		Type:      flow,
		ExpiresAt: now.Add(b.ttl),
		IsUsed:    false,
		CreatedAt: now,
	}
	if err := b.codes.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("store code: %w", err)
	}
	if err := b.notifier.Send(ctx, account.Email, code, flow); err != nil {
		b.log.ErrorContext(ctx, "verification send failed", "account", account.ID.Hex(), "flow", flow, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}
	b.log.InfoContext(ctx, "verification code issued", "account", account.ID.Hex(), "flow", flow)
	return rec, nil
}

// Verify consumes a matching unused, unexpired code. Wrong, reused and
// expired codes all yield ErrInvalidOrExpiredCode.
func (b *Broker) Verify(ctx context.Context, account *models.Account, code string, flow models.CodeType) error {
	code = strings.TrimSpace(code)
	if code == "" || !flow.Valid() {
		return ErrInvalidOrExpiredCode
	}
	_, err := b.codes.Consume(ctx, account.ID, code, flow, b.now().UTC())
	if errors.Is(err, ErrNotFound) {
		b.log.WarnContext(ctx, "verification code rejected", "account", account.ID.Hex(), "flow", flow)
		return ErrInvalidOrExpiredCode
	}
	if err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	return nil
}

// Advance drives one step of the attempt: without a code it issues one and
// reports StateAwaitingVerification; with a code it verifies it and reports
// StateVerified. A rejected code leaves the attempt awaiting verification.
func (b *Broker) Advance(ctx context.Context, account *models.Account, flow models.CodeType, code string) (VerificationState, error) {
	if strings.TrimSpace(code) == "" {
		if _, err := b.Issue(ctx, account, flow); err != nil {
			return StateNeedCode, err
		}
		return StateAwaitingVerification, nil
	}
	if err := b.Verify(ctx, account, code, flow); err != nil {
		return StateAwaitingVerification, err
	}
	return StateVerified, nil
}

// Reap deletes codes that expired more than the retention window ago.
func (b *Broker) Reap(ctx context.Context) (int64, error) {
	n, err := b.codes.DeleteExpired(ctx, b.now().UTC().Add(-b.retention))
	if err != nil {
		return 0, fmt.Errorf("reap codes: %w", err)
	}
	if n > 0 {
		b.log.DebugContext(ctx, "reaped expired codes", "count", n)
	}
	return n, nil
}

// RunReaper calls Reap every interval until ctx is done.
func (b *Broker) RunReaper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := b.Reap(ctx); err != nil {
				b.log.WarnContext(ctx, "code reaper", "err", err)
			}
		}
	}
}
