// Package lines persists ticket line items in the client SQLite store.
// A line is keyed by (event id, line id); line ids are sequential per event.
package lines

import (
	"context"

	"github.com/dmitrijs2005/marketsales/internal/client/models"
)

type Repository interface {
	// Upsert inserts the line or replaces every column of the stored one.
	Upsert(ctx context.Context, l *models.LineItem) error

	// Get returns a line by key or common.ErrNotFound.
	Get(ctx context.Context, key models.LineKey) (*models.LineItem, error)

	// ListByTicket returns the lines of a ticket ordered by line number.
	ListByTicket(ctx context.Context, ticketID string) ([]models.LineItem, error)

	// ListByEvent returns every line recorded at an event.
	ListByEvent(ctx context.Context, eventID string) ([]models.LineItem, error)

	// ListPending returns the user's unsynced lines ordered by last modification.
	ListPending(ctx context.Context, userID string) ([]models.LineItem, error)

	// MaxLineSeq returns the highest numeric line id suffix used in an
	// event, 0 when the event has no lines.
	MaxLineSeq(ctx context.Context, eventID string) (int, error)

	// SaveSyncState persists synced/syncError if the stored version still
	// matches meta.Version.
	SaveSyncState(ctx context.Context, key models.LineKey, meta models.SyncMeta) (bool, error)
}
