// Package repositories holds helpers shared by the SQLite repositories of
// the client record store. Each synced table ends with the same four
// bookkeeping columns, read and written through the helpers below.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/marketsales/internal/client/models"
	"github.com/dmitrijs2005/marketsales/internal/dbx"
)

// MetaColumns lists the bookkeeping columns in the order MetaArgs and
// MetaScan use.
const MetaColumns = "synced, version, last_modified, sync_error"

// MetaArgs returns the bind arguments for MetaColumns.
func MetaArgs(m models.SyncMeta) []any {
	var syncErr sql.NullString
	if m.SyncError != nil {
		syncErr = sql.NullString{String: *m.SyncError, Valid: true}
	}
	return []any{m.Synced, m.Version, m.LastModified, syncErr}
}

// MetaScan collects the bookkeeping columns of one row.
type MetaScan struct {
	synced       bool
	version      int64
	lastModified int64
	syncError    sql.NullString
}

// Targets returns the Scan destinations for MetaColumns.
func (m *MetaScan) Targets() []any {
	return []any{&m.synced, &m.version, &m.lastModified, &m.syncError}
}

func (m *MetaScan) Meta() models.SyncMeta {
	meta := models.SyncMeta{
		Synced:       m.synced,
		Version:      m.version,
		LastModified: m.lastModified,
	}
	if m.syncError.Valid {
		s := m.syncError.String
		meta.SyncError = &s
	}
	return meta
}

// SaveSyncState updates synced/sync_error of the row matched by where, but
// only while the stored version still equals meta.Version. It reports
// whether the row was updated; false means a newer local edit exists or the
// row is gone.
func SaveSyncState(ctx context.Context, db dbx.DBTX, table, where string, meta models.SyncMeta, keyArgs ...any) (bool, error) {
	args := MetaArgs(meta)
	query := fmt.Sprintf(`UPDATE %s SET synced = ?, sync_error = ? WHERE %s AND version = ?`, table, where)

	bind := append([]any{args[0], args[3]}, keyArgs...)
	bind = append(bind, meta.Version)

	res, err := db.ExecContext(ctx, query, bind...)
	if err != nil {
		return false, fmt.Errorf("failed to save sync state in %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}
