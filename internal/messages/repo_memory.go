package messages

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo keeps the audit log in process memory.
type MemoryRepo struct {
	mu   sync.RWMutex
	rows []Message
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Append(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	r.rows = append(r.rows, msg)
	r.mu.Unlock()
	return nil
}

// ListByUser returns the newest entries first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Message
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].UserID != userID {
			continue
		}
		out = append(out, r.rows[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
