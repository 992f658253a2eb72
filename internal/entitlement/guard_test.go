package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-bot/internal/users"
)

var fixedNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func newGuard(repo *users.MemoryRepo) *Guard {
	g := NewGuard(repo)
	g.Now = func() time.Time { return fixedNow }
	return g
}

func TestOneTimeCreditIsSpentOnce(t *testing.T) {
	ctx := context.Background()
	repo := users.NewMemoryRepo()
	user, err := repo.Ensure(ctx, users.Profile{TgUserID: 1}, 1)
	require.NoError(t, err)
	g := newGuard(repo)

	require.True(t, g.MayGenerateFull(user))
	require.NoError(t, g.ConsumeOnSuccess(ctx, user))

	user, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, user.OneTimeFullLeft)
	assert.False(t, g.MayGenerateFull(user))

	// A stale snapshot must not drive the counter negative.
	require.NoError(t, g.ConsumeOnSuccess(ctx, users.User{TgUserID: 1, OneTimeFullLeft: 1}))
	user, _ = repo.Get(ctx, 1)
	assert.Equal(t, 0, user.OneTimeFullLeft)
}

func TestSubscriptionKeepsCredits(t *testing.T) {
	ctx := context.Background()
	repo := users.NewMemoryRepo()
	_, err := repo.Ensure(ctx, users.Profile{TgUserID: 2}, 1)
	require.NoError(t, err)
	require.NoError(t, repo.SetSubscriptionUntil(ctx, 2, fixedNow.Add(time.Hour)))
	g := newGuard(repo)

	for i := 0; i < 3; i++ {
		user, err := repo.Get(ctx, 2)
		require.NoError(t, err)
		require.True(t, g.MayGenerateFull(user))
		require.NoError(t, g.ConsumeOnSuccess(ctx, user))
	}
	user, _ := repo.Get(ctx, 2)
	assert.Equal(t, 1, user.OneTimeFullLeft)
}

func TestExpiredSubscriptionWithoutCredits(t *testing.T) {
	past := fixedNow.Add(-time.Minute)
	g := newGuard(users.NewMemoryRepo())

	assert.False(t, g.MayGenerateFull(users.User{SubscriptionUntil: &past}))
	assert.False(t, g.IsSubscribed(users.User{SubscriptionUntil: &past}))
	assert.False(t, g.MayGenerateFull(users.User{}))
	exact := fixedNow
	assert.False(t, g.IsSubscribed(users.User{SubscriptionUntil: &exact}))
}

func TestGrantRestoresEntitlement(t *testing.T) {
	ctx := context.Background()
	repo := users.NewMemoryRepo()
	_, _ = repo.Ensure(ctx, users.Profile{TgUserID: 3}, 0)
	g := newGuard(repo)

	user, _ := repo.Get(ctx, 3)
	require.False(t, g.MayGenerateFull(user))

	_, err := repo.ExtendSubscription(ctx, 3, 7, fixedNow)
	require.NoError(t, err)
	user, _ = repo.Get(ctx, 3)
	assert.True(t, g.MayGenerateFull(user))
}
