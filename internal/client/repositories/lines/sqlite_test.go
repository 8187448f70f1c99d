package lines

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/marketsales/internal/client/dbtest"
	"github.com/dmitrijs2005/marketsales/internal/client/models"
	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(eventID string, seq int, ticketID string, synced bool, modified int64) models.LineItem {
	return models.LineItem{
		EventID:     eventID,
		LineID:      models.FormatLineID(seq),
		TicketID:    ticketID,
		UserID:      "u1",
		LineNumber:  seq,
		Type:        models.LineManual,
		Description: "honey",
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("4.25"),
		Subtotal:    decimal.RequireFromString("8.50"),
		Sync:        models.SyncMeta{Synced: synced, Version: 1, LastModified: modified},
	}
}

func TestUpsertAndGet_CompositeKey(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	ctx := context.Background()

	a := line("ev1", 1, "t1", false, 10)
	b := line("ev2", 1, "t2", false, 10)
	b.Description = "cheese"
	require.NoError(t, r.Upsert(ctx, &a))
	require.NoError(t, r.Upsert(ctx, &b))

	got, err := r.Get(ctx, a.Key())
	require.NoError(t, err)
	assert.Equal(t, "honey", got.Description)
	assert.True(t, got.Subtotal.Equal(decimal.RequireFromString("8.5")))
	assert.Equal(t, models.LineManual, got.Type)

	got, err = r.Get(ctx, b.Key())
	require.NoError(t, err)
	assert.Equal(t, "cheese", got.Description)

	_, err = r.Get(ctx, models.LineKey{EventID: "ev3", LineID: "L0001"})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListByTicketAndEvent(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	ctx := context.Background()

	for _, l := range []models.LineItem{
		line("ev1", 2, "t1", true, 1),
		line("ev1", 1, "t1", true, 1),
		line("ev1", 3, "t2", true, 1),
		line("ev2", 1, "t3", true, 1),
	} {
		require.NoError(t, r.Upsert(ctx, &l))
	}

	byTicket, err := r.ListByTicket(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, byTicket, 2)
	assert.Equal(t, 1, byTicket[0].LineNumber)
	assert.Equal(t, 2, byTicket[1].LineNumber)

	byEvent, err := r.ListByEvent(ctx, "ev1")
	require.NoError(t, err)
	assert.Len(t, byEvent, 3)
}

func TestListPending(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	ctx := context.Background()

	for _, l := range []models.LineItem{
		line("ev1", 1, "t1", false, 30),
		line("ev1", 2, "t1", true, 20),
		line("ev1", 3, "t1", false, 10),
	} {
		require.NoError(t, r.Upsert(ctx, &l))
	}

	pending, err := r.ListPending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "L0003", pending[0].LineID)
	assert.Equal(t, "L0001", pending[1].LineID)
}

func TestMaxLineSeq(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	ctx := context.Background()

	n, err := r.MaxLineSeq(ctx, "ev1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for _, l := range []models.LineItem{line("ev1", 9, "t1", true, 1), line("ev1", 12, "t1", true, 1), line("ev2", 40, "t2", true, 1)} {
		require.NoError(t, r.Upsert(ctx, &l))
	}
	odd := line("ev1", 1, "t1", true, 1)
	odd.LineID = "legacy"
	require.NoError(t, r.Upsert(ctx, &odd))

	n, err = r.MaxLineSeq(ctx, "ev1")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestSaveSyncState_RecordsFailure(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	ctx := context.Background()

	l := line("ev1", 1, "t1", false, 10)
	require.NoError(t, r.Upsert(ctx, &l))

	reason := "unavailable"
	meta := l.Sync
	meta.SyncError = &reason

	ok, err := r.SaveSyncState(ctx, l.Key(), meta)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := r.Get(ctx, l.Key())
	require.NoError(t, err)
	require.NotNil(t, got.Sync.SyncError)
	assert.Equal(t, "unavailable", *got.Sync.SyncError)
	assert.False(t, got.Sync.Synced)
	assert.Equal(t, int64(1), got.Sync.Version)
}
