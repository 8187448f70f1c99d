package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/marketsales/internal/client/dbtest"
	"github.com/dmitrijs2005/marketsales/internal/client/models"
	"github.com/dmitrijs2005/marketsales/internal/client/remote"
	"github.com/dmitrijs2005/marketsales/internal/client/store"
	"github.com/dmitrijs2005/marketsales/internal/clock"
	"github.com/dmitrijs2005/marketsales/internal/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

type env struct {
	store  *store.Store
	remote *scriptedRemote
	clock  *clock.FakeClock
	engine Reconciler
}

func newEnv(t *testing.T, opts ReconcileOptions) *env {
	t.Helper()
	st := store.New(dbtest.Open(t), logging.Nop())
	rs := &scriptedRemote{MemoryStore: remote.NewMemoryStore(), failPut: map[string]error{}}
	clk := clock.Fake(t0)
	return &env{
		store:  st,
		remote: rs,
		clock:  clk,
		engine: NewReconcileService(st, rs, clk, logging.Nop(), opts),
	}
}

// scriptedRemote wraps the in-memory remote with per-document failures,
// a call log and a hook run before every Put.
type scriptedRemote struct {
	*remote.MemoryStore

	mu        sync.Mutex
	failPut   map[string]error
	queryErr  error
	puts      []string
	queries   []remote.Query
	beforePut func(collection string, doc remote.Document)

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	queryDelay  time.Duration
}

func (r *scriptedRemote) Put(ctx context.Context, collection string, doc remote.Document) error {
	r.mu.Lock()
	r.puts = append(r.puts, collection+"/"+doc.ID)
	err := r.failPut[doc.ID]
	hook := r.beforePut
	r.mu.Unlock()

	if hook != nil {
		hook(collection, doc)
	}
	if err != nil {
		return err
	}
	return r.MemoryStore.Put(ctx, collection, doc)
}

func (r *scriptedRemote) Query(ctx context.Context, q remote.Query) ([]remote.Document, error) {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		m := r.maxInFlight.Load()
		if n <= m || r.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	r.mu.Lock()
	r.queries = append(r.queries, q)
	err := r.queryErr
	delay := r.queryDelay
	r.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return r.MemoryStore.Query(ctx, q)
}

func (r *scriptedRemote) putLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.puts...)
}

var errRemoteDown = errors.New("remote down")

func ms(d time.Duration) int64 { return clock.Millis(t0.Add(d)) }

func pendingMeta(lastModified int64) models.SyncMeta {
	return models.SyncMeta{Version: 1, LastModified: lastModified}
}

func event(id, user string, startsAt, endsAt int64, status models.EventStatus) models.Event {
	return models.Event{ID: id, UserID: user, Name: "Market " + id, StartsAt: startsAt, EndsAt: endsAt, Status: status, Sync: pendingMeta(ms(-time.Hour))}
}

func ticket(id, eventID, user string, total int64) models.Ticket {
	return models.Ticket{
		ID: id, EventID: eventID, UserID: user, Timestamp: ms(-time.Hour),
		PaymentMethod: models.PaymentCash, Total: decimal.NewFromInt(total),
		Status: models.TicketCompleted, Sync: pendingMeta(ms(-time.Hour)),
	}
}

func line(eventID, lineID, ticketID, user string, n int, price int64) models.LineItem {
	p := decimal.NewFromInt(price)
	return models.LineItem{
		EventID: eventID, LineID: lineID, TicketID: ticketID, UserID: user, LineNumber: n,
		Type: models.LineManual, Description: "item " + lineID, Quantity: 1, UnitPrice: p, Subtotal: p,
		Sync: pendingMeta(ms(-time.Hour)),
	}
}

// remoteCopy stamps a record the way another device would have pushed it.
func remoteMetaAt(version int64, lastModified int64) models.SyncMeta {
	return models.SyncMeta{Synced: true, Version: version, LastModified: lastModified}
}

func putRemote(t *testing.T, r *scriptedRemote, collection string, doc remote.Document) {
	t.Helper()
	require.NoError(t, r.MemoryStore.Put(context.Background(), collection, doc))
}
