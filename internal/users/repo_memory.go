package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps users in process memory.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[int64]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[int64]User)}
}

func (r *MemoryRepo) Ensure(ctx context.Context, profile Profile, freeCredits int) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	user, ok := r.users[profile.TgUserID]
	if !ok {
		user = User{
			TgUserID:        profile.TgUserID,
			OneTimeFullLeft: max(0, freeCredits),
			CreatedAt:       now,
		}
	}
	user.ChatID = profile.ChatID
	if profile.Username != "" {
		user.Username = profile.Username
	}
	user.UpdatedAt = now
	r.users[profile.TgUserID] = user
	return copyUser(user), nil
}

func (r *MemoryRepo) Get(ctx context.Context, tgUserID int64) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[tgUserID]
	if !ok {
		return User{}, ErrNotFound
	}
	return copyUser(user), nil
}

func (r *MemoryRepo) AcceptTerms(ctx context.Context, tgUserID int64) error {
	return r.update(ctx, tgUserID, func(u *User) bool {
		u.AcceptedRules = true
		return true
	})
}

func (r *MemoryRepo) ConsumeOneTimeCredit(ctx context.Context, tgUserID int64) (bool, error) {
	var consumed bool
	err := r.update(ctx, tgUserID, func(u *User) bool {
		if u.OneTimeFullLeft <= 0 {
			return false
		}
		u.OneTimeFullLeft--
		consumed = true
		return true
	})
	return consumed, err
}

func (r *MemoryRepo) ConsumeCoverPack(ctx context.Context, tgUserID int64) (bool, error) {
	var consumed bool
	err := r.update(ctx, tgUserID, func(u *User) bool {
		if u.CoverPacksLeft <= 0 {
			return false
		}
		u.CoverPacksLeft--
		consumed = true
		return true
	})
	return consumed, err
}

func (r *MemoryRepo) ExtendSubscription(ctx context.Context, tgUserID int64, days int, now time.Time) (time.Time, error) {
	var until time.Time
	err := r.update(ctx, tgUserID, func(u *User) bool {
		base := now.UTC()
		if u.SubscriptionUntil != nil && u.SubscriptionUntil.After(base) {
			base = *u.SubscriptionUntil
		}
		until = base.AddDate(0, 0, days)
		u.SubscriptionUntil = &until
		return true
	})
	return until, err
}

func (r *MemoryRepo) SetSubscriptionUntil(ctx context.Context, tgUserID int64, until time.Time) error {
	return r.update(ctx, tgUserID, func(u *User) bool {
		t := until.UTC()
		u.SubscriptionUntil = &t
		return true
	})
}

func (r *MemoryRepo) AddHRReviews(ctx context.Context, tgUserID int64, n int) error {
	return r.update(ctx, tgUserID, func(u *User) bool {
		u.HRReviewsLeft += n
		return true
	})
}

func (r *MemoryRepo) AddCoverPacks(ctx context.Context, tgUserID int64, n int) error {
	return r.update(ctx, tgUserID, func(u *User) bool {
		u.CoverPacksLeft += n
		return true
	})
}

// update applies fn under the write lock; fn reports whether it changed the user.
func (r *MemoryRepo) update(ctx context.Context, tgUserID int64, fn func(u *User) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[tgUserID]
	if !ok {
		return ErrNotFound
	}
	if fn(&user) {
		user.UpdatedAt = time.Now().UTC()
		r.users[tgUserID] = user
	}
	return nil
}

func copyUser(u User) User {
	if u.SubscriptionUntil != nil {
		t := *u.SubscriptionUntil
		u.SubscriptionUntil = &t
	}
	return u
}
