// Package store is the durable record store of the client: events,
// tickets and line items with their sync metadata, on top of SQLite.
//
// Writes that belong together go through UpsertAll, which applies a whole
// batch in one transaction. Readers that need a live view subscribe with
// ObserveTickets and receive a fresh snapshot after every committed change.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/marketsales/internal/client/models"
	"github.com/dmitrijs2005/marketsales/internal/client/repositories/events"
	"github.com/dmitrijs2005/marketsales/internal/client/repositories/lines"
	"github.com/dmitrijs2005/marketsales/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/marketsales/internal/client/repositories/tickets"
	"github.com/dmitrijs2005/marketsales/internal/dbx"
	"github.com/dmitrijs2005/marketsales/internal/logging"
)

// Repos groups the repositories bound to one handle, either the database
// itself or an open transaction.
type Repos struct {
	Events   events.Repository
	Tickets  tickets.Repository
	Lines    lines.Repository
	Metadata metadata.Repository
}

func reposFor(db dbx.DBTX) Repos {
	return Repos{
		Events:   events.NewSQLiteRepository(db),
		Tickets:  tickets.NewSQLiteRepository(db),
		Lines:    lines.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}
}

// Upsert writes every record of b through r. Run it against transaction
// bound Repos to get all-or-nothing semantics.
func (r Repos) Upsert(ctx context.Context, b Batch) error {
	for i := range b.Events {
		if err := r.Events.Upsert(ctx, &b.Events[i]); err != nil {
			return err
		}
	}
	for i := range b.Tickets {
		if err := r.Tickets.Upsert(ctx, &b.Tickets[i]); err != nil {
			return err
		}
	}
	for i := range b.Lines {
		if err := r.Lines.Upsert(ctx, &b.Lines[i]); err != nil {
			return err
		}
	}
	return nil
}

// Batch is a set of records written atomically by UpsertAll.
type Batch struct {
	Events  []models.Event
	Tickets []models.Ticket
	Lines   []models.LineItem
}

func (b Batch) Len() int { return len(b.Events) + len(b.Tickets) + len(b.Lines) }

func (b Batch) users() map[string]struct{} {
	users := make(map[string]struct{})
	for _, e := range b.Events {
		users[e.UserID] = struct{}{}
	}
	for _, t := range b.Tickets {
		users[t.UserID] = struct{}{}
	}
	for _, l := range b.Lines {
		users[l.UserID] = struct{}{}
	}
	return users
}

// Store is safe for concurrent use.
type Store struct {
	Repos

	db     *sql.DB
	logger logging.Logger

	mu   sync.Mutex
	subs map[*subscription]struct{}
}

func New(db *sql.DB, logger logging.Logger) *Store {
	return &Store{
		Repos:  reposFor(db),
		db:     db,
		logger: logger.With("module", "store"),
		subs:   make(map[*subscription]struct{}),
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertAll inserts or replaces every record of b in a single transaction.
// Either all of them are stored or, on error, none. An empty batch does
// nothing. Writing the same batch twice leaves the same state as once.
func (s *Store) UpsertAll(ctx context.Context, b Batch) error {
	if b.Len() == 0 {
		return nil
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return reposFor(tx).Upsert(ctx, b)
	})
	if err != nil {
		return fmt.Errorf("upsert batch of %d records: %w", b.Len(), err)
	}

	s.notify(b.users())
	return nil
}

// InTx runs fn against repositories bound to one transaction. fn must only
// use the Repos it receives. Observers of every user are refreshed after a
// successful commit.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, reposFor(tx))
	})
	if err != nil {
		return err
	}
	s.notify(nil)
	return nil
}

// SaveTicketSyncState persists the push outcome of a ticket. It reports
// false when the ticket was edited locally since the pushed version.
func (s *Store) SaveTicketSyncState(ctx context.Context, t models.Ticket) (bool, error) {
	ok, err := s.Tickets.SaveSyncState(ctx, t.ID, t.Sync)
	if ok {
		s.notify(map[string]struct{}{t.UserID: {}})
	}
	return ok, err
}

// SaveLineSyncState and SaveEventSyncState do not notify: observers watch
// ticket snapshots only, which these writes leave unchanged.
func (s *Store) SaveLineSyncState(ctx context.Context, l models.LineItem) (bool, error) {
	return s.Lines.SaveSyncState(ctx, l.Key(), l.Sync)
}

func (s *Store) SaveEventSyncState(ctx context.Context, e models.Event) (bool, error) {
	return s.Events.SaveSyncState(ctx, e.ID, e.Sync)
}
