package links

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sealnote/internal/client/models"
	"github.com/dmitrijs2005/sealnote/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, l *models.Link) error {
	query := `INSERT INTO links (id, code, link, expires_at, destroy_on_read, created_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.Code, l.URL, toUnix(l.ExpiresAt), l.DestroyOnRead, l.CreatedAt.Unix(), l.Deleted)
	if err != nil {
		return fmt.Errorf("failed to insert link: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, code, link, expires_at, destroy_on_read, created_at, deleted FROM links`

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Link, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select links: %w", err)
	}
	defer rows.Close()

	var result []models.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE code = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, code)
	l, err := scanLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *SQLiteRepository) MarkDeleted(ctx context.Context, code string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE links SET deleted = 1 WHERE code = ? AND deleted = 0`, code)
	if err != nil {
		return 0, fmt.Errorf("failed to mark link deleted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Prune(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM links WHERE deleted = 1 OR (expires_at IS NOT NULL AND expires_at <= ?)`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune links: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(s scanner) (*models.Link, error) {
	var (
		l         models.Link
		expiresAt sql.NullInt64
		createdAt int64
	)
	if err := s.Scan(&l.ID, &l.Code, &l.URL, &expiresAt, &l.DestroyOnRead, &createdAt, &l.Deleted); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		l.ExpiresAt = time.Unix(expiresAt.Int64, 0).UTC()
	}
	l.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &l, nil
}

func toUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
