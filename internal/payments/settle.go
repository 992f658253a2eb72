package payments

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"resume-bot/internal/shared/telemetry"
)

// Store is the subset of the users repository that settlement mutates.
type Store interface {
	ExtendSubscription(ctx context.Context, tgUserID int64, days int, now time.Time) (time.Time, error)
	SetSubscriptionUntil(ctx context.Context, tgUserID int64, until time.Time) error
	AddHRReviews(ctx context.Context, tgUserID int64, n int) error
	AddCoverPacks(ctx context.Context, tgUserID int64, n int) error
}

// Payment is a successful payment reported by the chat platform.
type Payment struct {
	UserID   int64
	Payload  string
	Currency string
	Amount   int
	ChargeID string
}

// Settlement describes what a payment granted.
type Settlement struct {
	Kind  string
	Until time.Time
}

// Settler applies payments to user balances.
type Settler struct {
	store   Store
	catalog Catalog
	now     func() time.Time
	log     *zap.Logger
}

// NewSettler constructs a Settler.
func NewSettler(store Store, catalog Catalog, log *zap.Logger) *Settler {
	return &Settler{store: store, catalog: catalog, now: time.Now, log: telemetry.OrNop(log)}
}

// Settle parses the payload and applies its effect. Unknown payloads and payloads
// issued to another user are rejected without any mutation.
func (s *Settler) Settle(ctx context.Context, p Payment) (Settlement, error) {
	payload, err := ParsePayload(p.Payload)
	if err != nil {
		return Settlement{}, err
	}

	now := s.now().UTC()
	out := Settlement{Kind: payload.Kind}
	switch payload.Kind {
	case KindSubscription:
		if payload.UserID != p.UserID {
			return Settlement{}, fmt.Errorf("%w: payload uid=%d payer=%d", ErrUserMismatch, payload.UserID, p.UserID)
		}
		until, err := s.store.ExtendSubscription(ctx, p.UserID, s.catalog.SubscriptionDays, now)
		if err != nil {
			return Settlement{}, fmt.Errorf("extend subscription: %w", err)
		}
		out.Until = until
	case KindPro:
		until := now.AddDate(0, 0, s.catalog.ProDays)
		if err := s.store.SetSubscriptionUntil(ctx, p.UserID, until); err != nil {
			return Settlement{}, fmt.Errorf("set subscription: %w", err)
		}
		out.Until = until
	case KindHRReview:
		if err := s.store.AddHRReviews(ctx, p.UserID, 1); err != nil {
			return Settlement{}, fmt.Errorf("add hr review: %w", err)
		}
	case KindCoverPack:
		if err := s.store.AddCoverPacks(ctx, p.UserID, 1); err != nil {
			return Settlement{}, fmt.Errorf("add cover pack: %w", err)
		}
	}

	s.log.Info("payments.settled",
		zap.Int64("user_id", p.UserID),
		zap.String("kind", payload.Kind),
		zap.Int("amount", p.Amount),
		zap.String("currency", p.Currency),
		zap.String("charge_id", p.ChargeID),
	)
	return out, nil
}
