package tickets

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/marketsales/internal/client/dbtest"
	"github.com/dmitrijs2005/marketsales/internal/client/models"
	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticket(id, user string, ts int64, synced bool) models.Ticket {
	return models.Ticket{
		ID:            id,
		EventID:       "ev1",
		UserID:        user,
		Timestamp:     ts,
		PaymentMethod: models.PaymentCash,
		Total:         decimal.RequireFromString("12.40"),
		Status:        models.TicketCompleted,
		Sync:          models.SyncMeta{Synced: synced, Version: 1, LastModified: ts},
	}
}

var decimalEq = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestUpsertAndGet_RoundTrip(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	ctx := context.Background()

	reason := "timeout"
	in := ticket("t1", "u1", 100, false)
	in.Sync.SyncError = &reason

	require.NoError(t, r.Upsert(ctx, &in))

	got, err := r.Get(ctx, "t1")
	require.NoError(t, err)
	if diff := cmp.Diff(in, *got, decimalEq); diff != "" {
		t.Fatalf("ticket mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsert_ReplacesExistingRow(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	ctx := context.Background()

	in := ticket("t1", "u1", 100, false)
	require.NoError(t, r.Upsert(ctx, &in))

	in.Total = decimal.RequireFromString("3")
	in.Sync = models.SyncMeta{Synced: true, Version: 2, LastModified: 200}
	require.NoError(t, r.Upsert(ctx, &in))
	require.NoError(t, r.Upsert(ctx, &in))

	all, err := r.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Total.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, int64(2), all[0].Sync.Version)
	assert.Nil(t, all[0].Sync.SyncError)
}

func TestGet_NotFound(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	_, err := r.Get(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListPending_FiltersByUserAndOrders(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	ctx := context.Background()

	for _, tk := range []models.Ticket{
		ticket("b", "u1", 300, false),
		ticket("a", "u1", 100, false),
		ticket("c", "u1", 200, true),
		ticket("d", "u2", 50, false),
	} {
		require.NoError(t, r.Upsert(ctx, &tk))
	}

	pending, err := r.ListPending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].ID)
	assert.Equal(t, "b", pending[1].ID)

	byUser, err := r.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, byUser, 3)
	assert.Equal(t, "b", byUser[0].ID, "newest first")
}

func TestSaveSyncState_OnlyForMatchingVersion(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	ctx := context.Background()

	in := ticket("t1", "u1", 100, false)
	in.Sync.Version = 3
	require.NoError(t, r.Upsert(ctx, &in))

	stale := models.SyncMeta{Synced: true, Version: 2, LastModified: 100}
	ok, err := r.SaveSyncState(ctx, "t1", stale)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := r.Get(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, got.Sync.Synced)

	current := models.SyncMeta{Synced: true, Version: 3, LastModified: 100}
	ok, err = r.SaveSyncState(ctx, "t1", current)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = r.Get(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, got.Sync.Synced)
}
