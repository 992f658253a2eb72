package users

import (
	"context"
	"time"
)

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

// Repo persists users. Counter mutations are single conditional writes.
type Repo interface {
	// Ensure creates the user with freeCredits one-time credits or refreshes the profile of an existing one.
	Ensure(ctx context.Context, profile Profile, freeCredits int) (User, error)
	Get(ctx context.Context, tgUserID int64) (User, error)
	AcceptTerms(ctx context.Context, tgUserID int64) error
	// ConsumeOneTimeCredit decrements the credit counter if it is positive and reports whether it did.
	ConsumeOneTimeCredit(ctx context.Context, tgUserID int64) (bool, error)
	// ConsumeCoverPack decrements the cover pack counter if it is positive and reports whether it did.
	ConsumeCoverPack(ctx context.Context, tgUserID int64) (bool, error)
	// ExtendSubscription moves the expiry to max(now, current expiry) + days and returns it.
	ExtendSubscription(ctx context.Context, tgUserID int64, days int, now time.Time) (time.Time, error)
	SetSubscriptionUntil(ctx context.Context, tgUserID int64, until time.Time) error
	AddHRReviews(ctx context.Context, tgUserID int64, n int) error
	AddCoverPacks(ctx context.Context, tgUserID int64, n int) error
}
