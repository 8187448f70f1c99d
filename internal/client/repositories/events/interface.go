// Package events persists market events in the client SQLite store.
package events

import (
	"context"

	"github.com/dmitrijs2005/marketsales/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, e *models.Event) error
	// Get returns an event by id or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Event, error)
	// ListByUser returns the user's events ordered by start time.
	ListByUser(ctx context.Context, userID string) ([]models.Event, error)
	ListPending(ctx context.Context, userID string) ([]models.Event, error)
	SaveSyncState(ctx context.Context, id string, meta models.SyncMeta) (bool, error)
}
