package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/dbx"
	"github.com/dmitrijs2005/mediagate/internal/server/models"
	"github.com/google/uuid"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, d dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: d}
}

func (r *SQLRepository) Append(ctx context.Context, rec *models.UsageRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	query := `
		INSERT INTO usage_records (id, user_id, platform, url, time)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), rec.ID, rec.UserID, rec.Platform, rec.URL, rec.Time.Unix()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) CountByPlatform(ctx context.Context, userID string) (map[string]int64, error) {
	query := `
		SELECT platform, COUNT(*)
		FROM usage_records
		WHERE user_id = ?
		GROUP BY platform
	`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			platform string
			n        int64
		)
		if err := rows.Scan(&platform, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out[platform] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) Summaries(ctx context.Context) ([]*models.UsageSummary, error) {
	query := `
		SELECT user_id, platform, COUNT(*)
		FROM usage_records
		GROUP BY user_id, platform
		ORDER BY user_id, platform
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var (
		out []*models.UsageSummary
		cur *models.UsageSummary
	)
	for rows.Next() {
		var (
			userID, platform string
			n                int64
		)
		if err := rows.Scan(&userID, &platform, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if cur == nil || cur.UserID != userID {
			cur = &models.UsageSummary{UserID: userID, PerPlatform: make(map[string]int64)}
			out = append(out, cur)
		}
		cur.PerPlatform[platform] = n
		cur.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) Since(ctx context.Context, unix int64) ([]*models.UsageRecord, error) {
	query := `
		SELECT id, user_id, platform, url, time
		FROM usage_records
		WHERE time >= ?
		ORDER BY time, id
	`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), unix)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.UsageRecord
	for rows.Next() {
		var (
			rec models.UsageRecord
			ts  int64
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Platform, &rec.URL, &ts); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		rec.Time = time.Unix(ts, 0)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM usage_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
