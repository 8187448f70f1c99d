// Package services contains the application services of the market sales
// client: reconciliation with the remote document store, the boot
// sequence, and the commit path that turns drafts into durable records.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/marketsales/internal/client/models"
	"github.com/dmitrijs2005/marketsales/internal/client/remote"
	"github.com/dmitrijs2005/marketsales/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/marketsales/internal/client/store"
	"github.com/dmitrijs2005/marketsales/internal/client/syncstate"
	"github.com/dmitrijs2005/marketsales/internal/clock"
	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/dmitrijs2005/marketsales/internal/logging"
	"golang.org/x/sync/errgroup"
)

// PushReport counts the outcome of one push pass. Stale counts records
// whose outcome was discarded because they were edited during the push.
type PushReport struct {
	Pushed int
	Failed int
	Stale  int
}

// PullReport counts the records adopted from the remote, per kind.
type PullReport struct {
	Events    int
	Tickets   int
	Lines     int
	Malformed int
}

func (r PullReport) Total() int { return r.Events + r.Tickets + r.Lines }

// Reconciler is the reconciliation engine.
//
// Contract:
//   - PushPendingChanges writes every unsynced record of the user to the
//     remote. A record that fails is marked with the error and the pass
//     continues; only local storage failures end it early.
//   - PullSelective adopts remote changes made since the last pull (or
//     within the pull window on the first one), overwriting local copies.
//   - ColdStartImport mirrors everything the remote holds for the user into
//     an empty local store. Without remote tickets it writes nothing.
//   - ApplyAutomaticStateTransitions advances event statuses that depend
//     only on time. Calling it twice in a row changes nothing the second time.
type Reconciler interface {
	PushPendingChanges(ctx context.Context, userID string) (PushReport, error)
	PullSelective(ctx context.Context, userID string) (PullReport, error)
	ColdStartImport(ctx context.Context, userID string) (PullReport, error)
	ApplyAutomaticStateTransitions(ctx context.Context, userID string) (int, error)
}

// ReconcileOptions tunes the engine. Zero values select the defaults.
type ReconcileOptions struct {
	PullWindow        time.Duration
	ImportConcurrency int
}

const (
	DefaultPullWindow        = 30 * 24 * time.Hour
	DefaultImportConcurrency = 4
)

type reconcileService struct {
	store   *store.Store
	remote  remote.Store
	tracker *syncstate.Tracker
	clock   clock.Clock
	logger  logging.Logger
	opts    ReconcileOptions
}

func NewReconcileService(st *store.Store, rs remote.Store, clk clock.Clock, logger logging.Logger, opts ReconcileOptions) Reconciler {
	if opts.PullWindow <= 0 {
		opts.PullWindow = DefaultPullWindow
	}
	if opts.ImportConcurrency <= 0 {
		opts.ImportConcurrency = DefaultImportConcurrency
	}
	return &reconcileService{
		store:   st,
		remote:  rs,
		tracker: syncstate.New(clk),
		clock:   clk,
		logger:  logger.With("module", "reconcile"),
		opts:    opts,
	}
}

func (s *reconcileService) PushPendingChanges(ctx context.Context, userID string) (PushReport, error) {
	var report PushReport
	if userID == "" {
		return report, common.ErrNoUser
	}

	events, err := s.store.Events.ListPending(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("list pending events: %w", err)
	}
	tickets, err := s.store.Tickets.ListPending(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("list pending tickets: %w", err)
	}
	lines, err := s.store.Lines.ListPending(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("list pending lines: %w", err)
	}

	// Events first so tickets never reference an event the remote lacks.
	err = pushAll(ctx, s, &report, common.CollectionEvents, events,
		remote.EventDocument, func(e *models.Event) *models.SyncMeta { return &e.Sync }, s.store.SaveEventSyncState)
	if err == nil {
		err = pushAll(ctx, s, &report, common.CollectionTickets, tickets,
			remote.TicketDocument, func(t *models.Ticket) *models.SyncMeta { return &t.Sync }, s.store.SaveTicketSyncState)
	}
	if err == nil {
		err = pushAll(ctx, s, &report, common.CollectionLines, lines,
			remote.LineDocument, func(l *models.LineItem) *models.SyncMeta { return &l.Sync }, s.store.SaveLineSyncState)
	}

	s.logger.Info(ctx, "push finished", "user", userID, "pushed", report.Pushed, "failed", report.Failed, "stale", report.Stale)
	return report, err
}

// pushAll writes items one by one. A remote failure is recorded on the
// record; a local failure to save the outcome, or cancellation, stops the
// pass.
func pushAll[T any](
	ctx context.Context,
	s *reconcileService,
	report *PushReport,
	collection string,
	items []T,
	toDoc func(T) remote.Document,
	meta func(*T) *models.SyncMeta,
	save func(context.Context, T) (bool, error),
) error {
	for i := range items {
		item := &items[i]
		doc := toDoc(*item)

		putErr := s.remote.Put(ctx, collection, doc)
		if err := ctx.Err(); err != nil {
			return err
		}

		m := meta(item)
		if putErr != nil {
			*m = s.tracker.MarkFailed(*m, putErr.Error())
			report.Failed++
			s.logger.Warn(ctx, "push failed", "collection", collection, "id", doc.ID, "error", putErr)
		} else {
			*m = s.tracker.MarkSynced(*m)
			report.Pushed++
		}

		saved, err := save(ctx, *item)
		if err != nil {
			return fmt.Errorf("save sync state of %s/%s: %w", collection, doc.ID, err)
		}
		if !saved {
			report.Stale++
		}
	}
	return nil
}

var collections = []string{common.CollectionEvents, common.CollectionTickets, common.CollectionLines}

// decoded holds the records of one remote fetch.
type decoded struct {
	batch     store.Batch
	marks     map[string]int64
	malformed int
}

func newDecoded() *decoded {
	return &decoded{marks: make(map[string]int64)}
}

func (d *decoded) mark(collection string, lastModified int64) {
	if lastModified > d.marks[collection] {
		d.marks[collection] = lastModified
	}
}

// add decodes docs of one collection, adopting the remote sync metadata.
// Malformed documents are counted and dropped.
func (s *reconcileService) add(ctx context.Context, d *decoded, userID, collection string, docs []remote.Document) {
	for _, doc := range docs {
		var err error
		switch collection {
		case common.CollectionEvents:
			var e models.Event
			if e, err = remote.EventFromDocument(doc); err == nil {
				e.Sync = s.tracker.AdoptRemote(e.Sync.Version, e.Sync.LastModified)
				d.batch.Events = append(d.batch.Events, e)
				d.mark(collection, e.Sync.LastModified)
			}
		case common.CollectionTickets:
			var t models.Ticket
			if t, err = remote.TicketFromDocument(doc); err == nil {
				t.Sync = s.tracker.AdoptRemote(t.Sync.Version, t.Sync.LastModified)
				d.batch.Tickets = append(d.batch.Tickets, t)
				d.mark(collection, t.Sync.LastModified)
			}
		case common.CollectionLines:
			var l models.LineItem
			if l, err = remote.LineFromDocument(doc); err == nil {
				if l.UserID == "" {
					l.UserID = userID
				}
				l.Sync = s.tracker.AdoptRemote(l.Sync.Version, l.Sync.LastModified)
				d.batch.Lines = append(d.batch.Lines, l)
				d.mark(collection, l.Sync.LastModified)
			}
		}
		if err != nil {
			d.malformed++
			s.logger.Warn(ctx, "dropping remote document", "collection", collection, "id", doc.ID, "error", err)
		}
	}
}

func (d *decoded) report() PullReport {
	return PullReport{
		Events:    len(d.batch.Events),
		Tickets:   len(d.batch.Tickets),
		Lines:     len(d.batch.Lines),
		Malformed: d.malformed,
	}
}

func ownerQuery(collection, userID string, since int64) remote.Query {
	return remote.Query{
		Collection:    collection,
		Equals:        map[string]any{remote.FieldUserID: userID},
		ModifiedAfter: since,
	}
}

func (s *reconcileService) PullSelective(ctx context.Context, userID string) (PullReport, error) {
	if userID == "" {
		return PullReport{}, common.ErrNoUser
	}

	fallback := clock.Millis(s.clock.Now().Add(-s.opts.PullWindow))
	d := newDecoded()

	for _, collection := range collections {
		since, ok, err := s.store.Metadata.GetInt64(ctx, metadata.PullMarkKey(userID, collection))
		if err != nil {
			return PullReport{}, fmt.Errorf("read pull mark: %w", err)
		}
		if !ok {
			since = fallback
		}

		docs, err := s.remote.Query(ctx, ownerQuery(collection, userID, since))
		if err != nil {
			return PullReport{}, fmt.Errorf("pull %s: %w", collection, err)
		}
		s.add(ctx, d, userID, collection, docs)
	}

	if err := s.commit(ctx, userID, d); err != nil {
		return PullReport{}, err
	}

	report := d.report()
	s.logger.Info(ctx, "pull finished", "user", userID, "adopted", report.Total(), "malformed", report.Malformed)
	return report, nil
}

// commit upserts the batch and advances the pull marks in one transaction.
func (s *reconcileService) commit(ctx context.Context, userID string, d *decoded) error {
	if d.batch.Len() == 0 && len(d.marks) == 0 {
		return nil
	}
	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		if err := r.Upsert(ctx, d.batch); err != nil {
			return err
		}
		for collection, mark := range d.marks {
			key := metadata.PullMarkKey(userID, collection)
			prev, _, err := r.Metadata.GetInt64(ctx, key)
			if err != nil {
				return err
			}
			if mark > prev {
				if err := r.Metadata.SetInt64(ctx, key, mark); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store pulled records: %w", err)
	}
	return nil
}

func (s *reconcileService) ColdStartImport(ctx context.Context, userID string) (PullReport, error) {
	if userID == "" {
		return PullReport{}, common.ErrNoUser
	}

	head := newDecoded()
	for _, collection := range []string{common.CollectionEvents, common.CollectionTickets} {
		docs, err := s.remote.Query(ctx, ownerQuery(collection, userID, 0))
		if err != nil {
			return PullReport{}, fmt.Errorf("import %s: %w", collection, err)
		}
		s.add(ctx, head, userID, collection, docs)
	}

	// Events are only mirrored alongside tickets: a user without remote
	// tickets gets no local writes at all.
	if len(head.batch.Tickets) == 0 {
		s.logger.Info(ctx, "nothing to import", "user", userID,
			"events", len(head.batch.Events), "malformed", head.malformed)
		return PullReport{Malformed: head.malformed}, nil
	}

	// Tickets are stored before their lines are fetched.
	if err := s.store.UpsertAll(ctx, head.batch); err != nil {
		return PullReport{}, fmt.Errorf("store imported tickets: %w", err)
	}

	tickets := head.batch.Tickets
	perTicket := make([][]remote.Document, len(tickets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.ImportConcurrency)
	for i, t := range tickets {
		g.Go(func() error {
			q := ownerQuery(common.CollectionLines, userID, 0)
			q.Equals["ticketId"] = t.ID
			docs, err := s.remote.Query(gctx, q)
			if err != nil {
				return fmt.Errorf("import lines of ticket %s: %w", t.ID, err)
			}
			perTicket[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PullReport{}, err
	}

	tail := newDecoded()
	tail.malformed = head.malformed
	for _, docs := range perTicket {
		s.add(ctx, tail, userID, common.CollectionLines, docs)
	}
	for c, m := range head.marks {
		tail.mark(c, m)
	}
	if err := s.commit(ctx, userID, tail); err != nil {
		return PullReport{}, err
	}

	report := tail.report()
	report.Events = len(head.batch.Events)
	report.Tickets = len(head.batch.Tickets)
	s.logger.Info(ctx, "import finished", "user", userID,
		"events", report.Events, "tickets", report.Tickets, "lines", report.Lines, "malformed", report.Malformed)
	return report, nil
}

func (s *reconcileService) ApplyAutomaticStateTransitions(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, common.ErrNoUser
	}

	events, err := s.store.Events.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list events: %w", err)
	}

	now := clock.Millis(s.clock.Now())
	var batch store.Batch
	for _, e := range events {
		next := e.AutomaticStatus(now)
		if next == e.Status {
			continue
		}
		e.Status = next
		e.Sync = s.tracker.MarkDirty(e.Sync)
		batch.Events = append(batch.Events, e)
	}

	if err := s.store.UpsertAll(ctx, batch); err != nil {
		return 0, fmt.Errorf("apply event transitions: %w", err)
	}

	changed := len(batch.Events)
	if changed > 0 {
		s.logger.Info(ctx, "event statuses advanced", "user", userID, "count", changed)
	}
	return changed, nil
}
