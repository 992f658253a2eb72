package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const userColumns = `tg_user_id, chat_id, username, accepted_rules, subscription_until,
  one_time_full_left, cover_packs_left, hr_reviews_left, created_at, updated_at`

func (r *PGRepo) Ensure(ctx context.Context, profile Profile, freeCredits int) (User, error) {
	query := `
INSERT INTO users (tg_user_id, chat_id, username, one_time_full_left, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (tg_user_id) DO UPDATE SET
  chat_id = EXCLUDED.chat_id,
  username = COALESCE(EXCLUDED.username, users.username),
  updated_at = now()
RETURNING ` + userColumns
	row := r.DB.QueryRowContext(ctx, query,
		profile.TgUserID,
		profile.ChatID,
		nullableString(profile.Username),
		max(0, freeCredits),
	)
	return scanUser(row)
}

func (r *PGRepo) Get(ctx context.Context, tgUserID int64) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tg_user_id = $1 LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, tgUserID))
}

func (r *PGRepo) AcceptTerms(ctx context.Context, tgUserID int64) error {
	const query = `UPDATE users SET accepted_rules = TRUE, updated_at = now() WHERE tg_user_id = $1`
	return r.execOne(ctx, query, tgUserID)
}

func (r *PGRepo) ConsumeOneTimeCredit(ctx context.Context, tgUserID int64) (bool, error) {
	const query = `
UPDATE users SET one_time_full_left = one_time_full_left - 1, updated_at = now()
WHERE tg_user_id = $1 AND one_time_full_left > 0`
	return r.execConditional(ctx, query, tgUserID)
}

func (r *PGRepo) ConsumeCoverPack(ctx context.Context, tgUserID int64) (bool, error) {
	const query = `
UPDATE users SET cover_packs_left = cover_packs_left - 1, updated_at = now()
WHERE tg_user_id = $1 AND cover_packs_left > 0`
	return r.execConditional(ctx, query, tgUserID)
}

func (r *PGRepo) ExtendSubscription(ctx context.Context, tgUserID int64, days int, now time.Time) (time.Time, error) {
	const query = `
UPDATE users
SET subscription_until = GREATEST(COALESCE(subscription_until, $2), $2) + make_interval(days => $3),
    updated_at = now()
WHERE tg_user_id = $1
RETURNING subscription_until`
	var until time.Time
	err := r.DB.QueryRowContext(ctx, query, tgUserID, now.UTC(), days).Scan(&until)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	return until.UTC(), nil
}

func (r *PGRepo) SetSubscriptionUntil(ctx context.Context, tgUserID int64, until time.Time) error {
	const query = `UPDATE users SET subscription_until = $2, updated_at = now() WHERE tg_user_id = $1`
	return r.execOne(ctx, query, tgUserID, until.UTC())
}

func (r *PGRepo) AddHRReviews(ctx context.Context, tgUserID int64, n int) error {
	const query = `UPDATE users SET hr_reviews_left = hr_reviews_left + $2, updated_at = now() WHERE tg_user_id = $1`
	return r.execOne(ctx, query, tgUserID, n)
}

func (r *PGRepo) AddCoverPacks(ctx context.Context, tgUserID int64, n int) error {
	const query = `UPDATE users SET cover_packs_left = cover_packs_left + $2, updated_at = now() WHERE tg_user_id = $1`
	return r.execOne(ctx, query, tgUserID, n)
}

func (r *PGRepo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) execConditional(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var username sql.NullString
	var until sql.NullTime
	err := row.Scan(
		&user.TgUserID,
		&user.ChatID,
		&username,
		&user.AcceptedRules,
		&until,
		&user.OneTimeFullLeft,
		&user.CoverPacksLeft,
		&user.HRReviewsLeft,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if username.Valid {
		user.Username = username.String
	}
	if until.Valid {
		t := until.Time.UTC()
		user.SubscriptionUntil = &t
	}
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
