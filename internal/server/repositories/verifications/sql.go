package verifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/dmitrijs2005/mediagate/internal/dbx"
	"github.com/dmitrijs2005/mediagate/internal/server/models"
)

// SQLRepository implements Repository over dbx.DBTX.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, d dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: d}
}

func (r *SQLRepository) Upsert(ctx context.Context, v *models.Verification) error {
	query := `
		INSERT INTO verifications (user_id, expires, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET expires = excluded.expires, created_at = excluded.created_at
	`
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), v.UserID, v.Expires.Unix(), v.CreatedAt.Unix()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Find(ctx context.Context, userID string) (*models.Verification, error) {
	query := `
		SELECT user_id, expires, created_at
		FROM verifications
		WHERE user_id = ?
	`
	v, err := scanVerification(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *SQLRepository) Delete(ctx context.Context, userID string) error {
	query := `
		DELETE FROM verifications
		WHERE user_id = ?
	`
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context) ([]*models.Verification, error) {
	query := `
		SELECT user_id, expires, created_at
		FROM verifications
		ORDER BY user_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM verifications
		WHERE expires <= ?
	`
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), now.Unix())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verifications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVerification(s scanner) (*models.Verification, error) {
	var (
		v                models.Verification
		expires, created int64
	)
	if err := s.Scan(&v.UserID, &expires, &created); err != nil {
		return nil, err
	}
	v.Expires = time.Unix(expires, 0)
	v.CreatedAt = time.Unix(created, 0)
	return &v, nil
}
