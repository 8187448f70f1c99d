// Package tickets persists sale tickets in the client SQLite store.
package tickets

import (
	"context"

	"github.com/dmitrijs2005/marketsales/internal/client/models"
)

// Repository describes storage operations on tickets.
type Repository interface {
	// Upsert inserts the ticket or replaces every column of the stored one.
	Upsert(ctx context.Context, t *models.Ticket) error

	// Get returns a ticket by id or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Ticket, error)

	// ListByUser returns the tickets of a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Ticket, error)

	// ListPending returns the user's unsynced tickets ordered by
	// last modification.
	ListPending(ctx context.Context, userID string) ([]models.Ticket, error)

	// SaveSyncState persists synced/syncError if the stored version still
	// matches meta.Version.
	SaveSyncState(ctx context.Context, id string, meta models.SyncMeta) (bool, error)
}
