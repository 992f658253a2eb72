package analyses

import "context"

// Repo defines persistence operations for analyses and file checks.
type Repo interface {
	Create(ctx context.Context, record Record) error
	Latest(ctx context.Context, userID int64) (Record, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]Record, error)
	RecordFileCheck(ctx context.Context, check FileCheck) error
}
