package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/marketsales/internal/client/models"
	"github.com/dmitrijs2005/marketsales/internal/client/repositories"
	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/dmitrijs2005/marketsales/internal/dbx"
)

const columns = `id, user_id, name, starts_at, ends_at, status, ` + repositories.MetaColumns

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.Event) error {
	query := `INSERT INTO events (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			starts_at = excluded.starts_at,
			ends_at = excluded.ends_at,
			status = excluded.status,
			synced = excluded.synced,
			version = excluded.version,
			last_modified = excluded.last_modified,
			sync_error = excluded.sync_error`

	args := append([]any{e.ID, e.UserID, e.Name, e.StartsAt, e.EndsAt, int(e.Status)}, repositories.MetaArgs(e.Sync)...)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert event %s: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	e, err := scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]models.Event, error) {
	return r.list(ctx, `SELECT `+columns+` FROM events WHERE user_id = ? ORDER BY starts_at, id`, userID)
}

func (r *SQLiteRepository) ListPending(ctx context.Context, userID string) ([]models.Event, error) {
	return r.list(ctx, `SELECT `+columns+` FROM events WHERE user_id = ? AND synced = 0 ORDER BY last_modified, id`, userID)
}

func (r *SQLiteRepository) SaveSyncState(ctx context.Context, id string, meta models.SyncMeta) (bool, error) {
	return repositories.SaveSyncState(ctx, r.db, "events", "id = ?", meta, id)
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	defer rows.Close()

	var result []models.Event
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Event, error) {
	var (
		e      models.Event
		status int
		meta   repositories.MetaScan
	)
	dest := append([]any{&e.ID, &e.UserID, &e.Name, &e.StartsAt, &e.EndsAt, &status}, meta.Targets()...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	e.Status = models.EventStatus(status)
	e.Sync = meta.Meta()
	return &e, nil
}
