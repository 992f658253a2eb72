package messages

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Append(ctx context.Context, msg Message) error {
	const query = `
INSERT INTO messages (id, message_id, chat_id, user_id, kind, text, file_name, callback, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, query,
		msg.ID,
		msg.MessageID,
		msg.ChatID,
		msg.UserID,
		msg.Kind,
		nullableString(msg.Text),
		nullableString(msg.FileName),
		nullableString(msg.Callback),
		nullableString(msg.Status),
		msg.CreatedAt,
	)
	return err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]Message, error) {
	const query = `
SELECT id, message_id, chat_id, user_id, kind, text, file_name, callback, status, created_at
FROM messages
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var msg Message
		var text, fileName, callback, status sql.NullString
		if err := rows.Scan(&msg.ID, &msg.MessageID, &msg.ChatID, &msg.UserID, &msg.Kind,
			&text, &fileName, &callback, &status, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Text = text.String
		msg.FileName = fileName.String
		msg.Callback = callback.String
		msg.Status = status.String
		out = append(out, msg)
	}
	return out, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
