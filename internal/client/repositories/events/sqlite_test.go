package events

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/marketsales/internal/client/dbtest"
	"github.com/dmitrijs2005/marketsales/internal/client/models"
	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(id string, startsAt int64, synced bool) models.Event {
	return models.Event{
		ID:       id,
		UserID:   "u1",
		Name:     "Plaza Mayor " + id,
		StartsAt: startsAt,
		EndsAt:   startsAt + 3600_000,
		Status:   models.EventScheduled,
		Sync:     models.SyncMeta{Synced: synced, Version: 2, LastModified: startsAt},
	}
}

func TestUpsertGetList(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	ctx := context.Background()

	late := event("e2", 5000, true)
	early := event("e1", 1000, false)
	require.NoError(t, r.Upsert(ctx, &late))
	require.NoError(t, r.Upsert(ctx, &early))

	got, err := r.Get(ctx, "e1")
	require.NoError(t, err)
	if diff := cmp.Diff(early, *got); diff != "" {
		t.Fatalf("event mismatch (-want +got):\n%s", diff)
	}

	all, err := r.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "e1", all[0].ID)

	pending, err := r.ListPending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "e1", pending[0].ID)

	_, err = r.Get(ctx, "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveSyncState(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	ctx := context.Background()

	e := event("e1", 1000, false)
	require.NoError(t, r.Upsert(ctx, &e))

	meta := e.Sync
	meta.Synced = true
	ok, err := r.SaveSyncState(ctx, "e1", meta)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.SaveSyncState(ctx, "missing", meta)
	require.NoError(t, err)
	assert.False(t, ok)
}
