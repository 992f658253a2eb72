// Package entitlement decides who may receive a full report and debits one-time credits.
package entitlement

import (
	"context"
	"time"

	"resume-bot/internal/users"
)

// Store is the subset of the users repository the guard mutates.
type Store interface {
	ConsumeOneTimeCredit(ctx context.Context, tgUserID int64) (bool, error)
}

// Guard applies the entitlement rules. Now defaults to time.Now.
type Guard struct {
	Store Store
	Now   func() time.Time
}

// NewGuard constructs a Guard over the users store.
func NewGuard(store Store) *Guard {
	return &Guard{Store: store, Now: time.Now}
}

func (g *Guard) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// IsSubscribed reports whether the user has an active subscription.
func (g *Guard) IsSubscribed(user users.User) bool {
	return user.SubscribedAt(g.now())
}

// MayGenerateFull reports whether the user qualifies for a full report.
func (g *Guard) MayGenerateFull(user users.User) bool {
	return g.IsSubscribed(user) || user.OneTimeFullLeft > 0
}

// ConsumeOnSuccess debits one credit after a delivered full report unless the user is
// subscribed. The decrement is conditional on a positive balance, so it never goes below zero.
func (g *Guard) ConsumeOnSuccess(ctx context.Context, user users.User) error {
	if g.IsSubscribed(user) {
		return nil
	}
	_, err := g.Store.ConsumeOneTimeCredit(ctx, user.TgUserID)
	return err
}
