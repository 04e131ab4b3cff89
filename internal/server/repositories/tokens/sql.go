package tokens

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

// SQLRepository implements Repository over dbx.DBTX (satisfied by *sql.DB
// or *sql.Tx) for both SQLite and PostgreSQL.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX, d dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: d}
}

func (r *SQLRepository) Replace(ctx context.Context, t *models.Token) error {
	query := `
		INSERT INTO tokens (token, user_id, expires, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET token = excluded.token, expires = excluded.expires, created_at = excluded.created_at
	`
	var expires sql.NullInt64
	if t.Expires != nil {
		expires = sql.NullInt64{Int64: t.Expires.Unix(), Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), t.Token, t.UserID, expires, t.CreatedAt.Unix()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Find(ctx context.Context, token string) (*models.Token, error) {
	query := `
		SELECT token, user_id, expires, created_at
		FROM tokens
		WHERE token = ?
	`
	t, err := scanToken(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *SQLRepository) Delete(ctx context.Context, token string) error {
	query := `
		DELETE FROM tokens
		WHERE token = ?
	`
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), token)
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

func (r *SQLRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	query := `
		DELETE FROM tokens
		WHERE user_id = ?
	`
	return r.exec(ctx, query, userID)
}

func (r *SQLRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM tokens
		WHERE expires IS NOT NULL AND expires <= ?
	`
	return r.exec(ctx, query, now.Unix())
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID string) ([]*models.Token, error) {
	query := `
		SELECT token, user_id, expires, created_at
		FROM tokens
		WHERE user_id = ?
	`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tokens`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanToken(s scanner) (*models.Token, error) {
	var (
		t       models.Token
		expires sql.NullInt64
		created int64
	)
	if err := s.Scan(&t.Token, &t.UserID, &expires, &created); err != nil {
		return nil, err
	}
	if expires.Valid {
		e := time.Unix(expires.Int64, 0)
		t.Expires = &e
	}
	t.CreatedAt = time.Unix(created, 0)
	return &t, nil
}
