package tickets

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

const columns = `id, event_id, user_id, ts, payment_method, total, status, ` + repositories.MetaColumns

// SQLiteRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, t *models.Ticket) error {
	query := `INSERT INTO tickets (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			event_id = excluded.event_id,
			user_id = excluded.user_id,
			ts = excluded.ts,
			payment_method = excluded.payment_method,
			total = excluded.total,
			status = excluded.status,
			synced = excluded.synced,
			version = excluded.version,
			last_modified = excluded.last_modified,
			sync_error = excluded.sync_error`

	args := []any{t.ID, t.EventID, t.UserID, t.Timestamp, string(t.PaymentMethod), t.Total.String(), int(t.Status)}
	args = append(args, repositories.MetaArgs(t.Sync)...)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert ticket %s: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Ticket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM tickets WHERE id = ?`, id)
	t, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %s: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	return r.list(ctx, `SELECT `+columns+` FROM tickets WHERE user_id = ? ORDER BY ts DESC, id`, userID)
}

func (r *SQLiteRepository) ListPending(ctx context.Context, userID string) ([]models.Ticket, error) {
	return r.list(ctx, `SELECT `+columns+` FROM tickets WHERE user_id = ? AND synced = 0 ORDER BY last_modified, id`, userID)
}

func (r *SQLiteRepository) SaveSyncState(ctx context.Context, id string, meta models.SyncMeta) (bool, error) {
	return repositories.SaveSyncState(ctx, r.db, "tickets", "id = ?", meta, id)
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tickets: %w", err)
	}
	defer rows.Close()

	var result []models.Ticket
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Ticket, error) {
	var (
		t      models.Ticket
		method string
		status int
		meta   repositories.MetaScan
	)
	dest := append([]any{&t.ID, &t.EventID, &t.UserID, &t.Timestamp, &method, &t.Total, &status}, meta.Targets()...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	t.PaymentMethod = models.PaymentMethod(method)
	t.Status = models.TicketStatus(status)
	t.Sync = meta.Meta()
	return &t, nil
}
