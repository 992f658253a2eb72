package users

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryRepoEnsureKeepsCredits(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	user, err := repo.Ensure(ctx, Profile{TgUserID: 1, ChatID: 10, Username: "bob"}, 1)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if user.OneTimeFullLeft != 1 {
		t.Fatalf("expected 1 free credit, got %d", user.OneTimeFullLeft)
	}
	if _, err := repo.ConsumeOneTimeCredit(ctx, 1); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	user, err = repo.Ensure(ctx, Profile{TgUserID: 1, ChatID: 11}, 1)
	if err != nil {
		t.Fatalf("Ensure again: %v", err)
	}
	if user.OneTimeFullLeft != 0 {
		t.Fatalf("second Ensure must not grant credits again, got %d", user.OneTimeFullLeft)
	}
	if user.ChatID != 11 || user.Username != "bob" {
		t.Fatalf("unexpected profile %+v", user)
	}
}

func TestMemoryRepoConsumeNeverGoesNegative(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	if _, err := repo.Ensure(ctx, Profile{TgUserID: 2}, 1); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	consumed := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ConsumeOneTimeCredit(ctx, 2)
			if err != nil {
				t.Errorf("Consume: %v", err)
				return
			}
			if ok {
				mu.Lock()
				consumed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	user, _ := repo.Get(ctx, 2)
	if consumed != 1 || user.OneTimeFullLeft != 0 {
		t.Fatalf("expected exactly one consumption, got %d (left %d)", consumed, user.OneTimeFullLeft)
	}
}

func TestMemoryRepoExtendSubscription(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, err := repo.Ensure(ctx, Profile{TgUserID: 3}, 0); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	until, err := repo.ExtendSubscription(ctx, 3, 7, now)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if !until.Equal(now.AddDate(0, 0, 7)) {
		t.Fatalf("unexpected until %s", until)
	}
	until, err = repo.ExtendSubscription(ctx, 3, 7, now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Extend again: %v", err)
	}
	if !until.Equal(now.AddDate(0, 0, 14)) {
		t.Fatalf("extension must stack on an active subscription, got %s", until)
	}
}

func TestMemoryRepoMissingUser(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	if _, err := repo.Get(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.AcceptTerms(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.AddCoverPacks(ctx, 99, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoReturnsCopies(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	_, _ = repo.Ensure(ctx, Profile{TgUserID: 4}, 0)
	_ = repo.SetSubscriptionUntil(ctx, 4, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	user, _ := repo.Get(ctx, 4)
	*user.SubscriptionUntil = time.Time{}

	again, _ := repo.Get(ctx, 4)
	if again.SubscriptionUntil.IsZero() {
		t.Fatalf("stored subscription must not be mutated through a returned copy")
	}
}
