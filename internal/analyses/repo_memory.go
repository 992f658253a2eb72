package analyses

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu         sync.RWMutex
	byUser     map[int64][]Record
	fileChecks []FileCheck
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byUser: make(map[int64][]Record)}
}

// Create appends the record to the user's history.
func (r *MemoryRepo) Create(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[record.UserID] = append(r.byUser[record.UserID], record)
	return nil
}

// Latest returns the most recent record for the user.
func (r *MemoryRepo) Latest(ctx context.Context, userID int64) (Record, error) {
	list, err := r.ListByUser(ctx, userID, 1)
	if err != nil {
		return Record{}, err
	}
	if len(list) == 0 {
		return Record{}, ErrNotFound
	}
	return list[0], nil
}

// ListByUser returns records for a user ordered by created_at desc.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	stored := r.byUser[userID]
	items := make([]Record, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		items = append(items, stored[i])
	}
	r.mu.RUnlock()

	// Ties keep the later insertion first.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// RecordFileCheck stores a rejected document verdict.
func (r *MemoryRepo) RecordFileCheck(ctx context.Context, check FileCheck) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if check.ID == "" {
		check.ID = uuid.NewString()
	}
	if check.CreatedAt.IsZero() {
		check.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fileChecks = append(r.fileChecks, check)
	return nil
}

// FileChecks returns a copy of stored file checks.
func (r *MemoryRepo) FileChecks() []FileCheck {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]FileCheck(nil), r.fileChecks...)
}
