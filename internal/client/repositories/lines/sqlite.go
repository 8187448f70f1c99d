package lines

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

const columns = `event_id, line_id, ticket_id, user_id, line_number, line_type, description,
	product_id, quantity, unit_price, subtotal, original_line_id, ` + repositories.MetaColumns

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, l *models.LineItem) error {
	query := `INSERT INTO line_items (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id, line_id) DO UPDATE SET
			ticket_id = excluded.ticket_id,
			user_id = excluded.user_id,
			line_number = excluded.line_number,
			line_type = excluded.line_type,
			description = excluded.description,
			product_id = excluded.product_id,
			quantity = excluded.quantity,
			unit_price = excluded.unit_price,
			subtotal = excluded.subtotal,
			original_line_id = excluded.original_line_id,
			synced = excluded.synced,
			version = excluded.version,
			last_modified = excluded.last_modified,
			sync_error = excluded.sync_error`

	args := []any{
		l.EventID, l.LineID, l.TicketID, l.UserID, l.LineNumber, string(l.Type), l.Description,
		l.ProductID, l.Quantity, l.UnitPrice.String(), l.Subtotal.String(), l.OriginalLineID,
	}
	args = append(args, repositories.MetaArgs(l.Sync)...)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert line %s: %w", l.Key(), err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, key models.LineKey) (*models.LineItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM line_items WHERE event_id = ? AND line_id = ?`,
		key.EventID, key.LineID)
	l, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get line %s: %w", key, err)
	}
	return l, nil
}

func (r *SQLiteRepository) ListByTicket(ctx context.Context, ticketID string) ([]models.LineItem, error) {
	return r.list(ctx, `SELECT `+columns+` FROM line_items WHERE ticket_id = ? ORDER BY line_number, line_id`, ticketID)
}

func (r *SQLiteRepository) ListByEvent(ctx context.Context, eventID string) ([]models.LineItem, error) {
	return r.list(ctx, `SELECT `+columns+` FROM line_items WHERE event_id = ? ORDER BY line_id`, eventID)
}

func (r *SQLiteRepository) ListPending(ctx context.Context, userID string) ([]models.LineItem, error) {
	return r.list(ctx, `SELECT `+columns+` FROM line_items WHERE user_id = ? AND synced = 0
		ORDER BY last_modified, event_id, line_id`, userID)
}

func (r *SQLiteRepository) MaxLineSeq(ctx context.Context, eventID string) (int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT line_id FROM line_items WHERE event_id = ?`, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to select line ids: %w", err)
	}
	defer rows.Close()

	highest := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan line id: %w", err)
		}
		if n, ok := models.ParseLineSeq(id); ok && n > highest {
			highest = n
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate line ids: %w", err)
	}
	return highest, nil
}

func (r *SQLiteRepository) SaveSyncState(ctx context.Context, key models.LineKey, meta models.SyncMeta) (bool, error) {
	return repositories.SaveSyncState(ctx, r.db, "line_items", "event_id = ? AND line_id = ?", meta, key.EventID, key.LineID)
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select lines: %w", err)
	}
	defer rows.Close()

	var result []models.LineItem
	for rows.Next() {
		l, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		result = append(result, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lines: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.LineItem, error) {
	var (
		l        models.LineItem
		lineType string
		meta     repositories.MetaScan
	)
	dest := []any{
		&l.EventID, &l.LineID, &l.TicketID, &l.UserID, &l.LineNumber, &lineType, &l.Description,
		&l.ProductID, &l.Quantity, &l.UnitPrice, &l.Subtotal, &l.OriginalLineID,
	}
	if err := s.Scan(append(dest, meta.Targets()...)...); err != nil {
		return nil, err
	}
	l.Type = models.LineType(lineType)
	l.Sync = meta.Meta()
	return &l, nil
}
