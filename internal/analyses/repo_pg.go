package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis record.
func (r *PGRepo) Create(ctx context.Context, record Record) error {
	const query = `
INSERT INTO analyses (id, user_id, source_refs, details, mode, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	refs, err := marshalJSONB(nonNilRefs(record.SourceRefs))
	if err != nil {
		return err
	}
	details, err := marshalJSONB(record.Details)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		refs,
		details,
		record.Mode,
		record.CreatedAt,
	)
	return err
}

// Latest returns the most recent analysis for a user.
func (r *PGRepo) Latest(ctx context.Context, userID int64) (Record, error) {
	list, err := r.ListByUser(ctx, userID, 1)
	if err != nil {
		return Record{}, err
	}
	if len(list) == 0 {
		return Record{}, ErrNotFound
	}
	return list[0], nil
}

// ListByUser returns analyses for a user ordered by created_at desc.
func (r *PGRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
SELECT id, user_id, source_refs, details, mode, created_at
FROM analyses
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var refs []byte
		var details []byte
		var mode sql.NullString
		if err := rows.Scan(&rec.ID, &rec.UserID, &refs, &details, &mode, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if len(refs) > 0 {
			if err := json.Unmarshal(refs, &rec.SourceRefs); err != nil {
				return nil, fmt.Errorf("decode source_refs: %w", err)
			}
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &rec.Details); err != nil {
				return nil, fmt.Errorf("decode details: %w", err)
			}
		}
		if mode.Valid {
			rec.Mode = mode.String
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// RecordFileCheck inserts a rejected document verdict.
func (r *PGRepo) RecordFileCheck(ctx context.Context, check FileCheck) error {
	const query = `
INSERT INTO file_checks (id, user_id, storage_ref, kind, is_valid, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if check.ID == "" {
		check.ID = uuid.NewString()
	}
	if check.CreatedAt.IsZero() {
		check.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, query,
		check.ID,
		check.UserID,
		nullableString(check.StorageRef),
		check.Kind,
		check.Valid,
		nullableString(check.Reason),
		check.CreatedAt,
	)
	return err
}

func marshalJSONB(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb: %w", err)
	}
	return data, nil
}

func nonNilRefs(refs []string) []string {
	if refs == nil {
		return []string{}
	}
	return refs
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
