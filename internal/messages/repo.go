package messages

import "context"

// Repo appends to and reads from the audit log.
type Repo interface {
	Append(ctx context.Context, msg Message) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]Message, error)
}
