package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/marketsales/internal/client/models"
	"github.com/dmitrijs2005/marketsales/internal/client/store"
	"github.com/dmitrijs2005/marketsales/internal/client/syncstate"
	"github.com/dmitrijs2005/marketsales/internal/clock"
	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/dmitrijs2005/marketsales/internal/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DraftClearer forgets the draft of an event once it has been committed.
type DraftClearer interface {
	Clear(key string)
}

// CommitService turns user actions into durable records.
//
// Contract:
//   - CreateEvent stores a scheduled event.
//   - CommitDraft stores one ticket with a line per draft line, numbered
//     from 1 with fresh sequential line ids, then clears the event's draft.
//   - RefundLine adds a credit line for a sold line to the same ticket and
//     lowers the ticket total.
//
// Every write happens in a single transaction and leaves the records
// pending push.
type CommitService interface {
	CreateEvent(ctx context.Context, userID, name string, startsAt, endsAt time.Time) (models.Event, error)
	CommitDraft(ctx context.Context, userID, eventID string, draft models.Draft, method models.PaymentMethod) (models.Ticket, []models.LineItem, error)
	RefundLine(ctx context.Context, userID string, key models.LineKey) (models.LineItem, error)
}

type commitService struct {
	store   *store.Store
	drafts  DraftClearer
	tracker *syncstate.Tracker
	clock   clock.Clock
	logger  logging.Logger
	newID   func() string
}

func NewCommitService(st *store.Store, drafts DraftClearer, clk clock.Clock, logger logging.Logger) CommitService {
	return &commitService{
		store:   st,
		drafts:  drafts,
		tracker: syncstate.New(clk),
		clock:   clk,
		logger:  logger.With("module", "commit"),
		newID:   uuid.NewString,
	}
}

func (s *commitService) CreateEvent(ctx context.Context, userID, name string, startsAt, endsAt time.Time) (models.Event, error) {
	if userID == "" {
		return models.Event{}, common.ErrNoUser
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Event{}, fmt.Errorf("%w: event name is required", common.ErrInvalidRecord)
	}
	if !endsAt.IsZero() && endsAt.Before(startsAt) {
		return models.Event{}, fmt.Errorf("%w: event ends before it starts", common.ErrInvalidRecord)
	}

	e := models.Event{
		ID:       s.newID(),
		UserID:   userID,
		Name:     name,
		StartsAt: clock.Millis(startsAt),
		Status:   models.EventScheduled,
		Sync:     s.tracker.NewMeta(),
	}
	if !endsAt.IsZero() {
		e.EndsAt = clock.Millis(endsAt)
	}

	if err := s.store.UpsertAll(ctx, store.Batch{Events: []models.Event{e}}); err != nil {
		return models.Event{}, fmt.Errorf("saving event: %w", err)
	}
	s.logger.Info(ctx, "event created", "event", e.ID, "user", userID)
	return e, nil
}

func (s *commitService) CommitDraft(ctx context.Context, userID, eventID string, draft models.Draft, method models.PaymentMethod) (models.Ticket, []models.LineItem, error) {
	if userID == "" {
		return models.Ticket{}, nil, common.ErrNoUser
	}
	if len(draft.Lines) == 0 {
		return models.Ticket{}, nil, fmt.Errorf("%w: empty draft", common.ErrInvalidRecord)
	}
	if !method.Valid() {
		return models.Ticket{}, nil, fmt.Errorf("%w: payment method %q", common.ErrInvalidRecord, method)
	}

	meta := s.tracker.NewMeta()
	ticket := models.Ticket{
		ID:            s.newID(),
		EventID:       eventID,
		UserID:        userID,
		Timestamp:     meta.LastModified,
		PaymentMethod: method,
		Total:         decimal.Zero,
		Status:        models.TicketCompleted,
		Sync:          meta,
	}

	var lines []models.LineItem
	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		if _, err := r.Events.Get(ctx, eventID); err != nil {
			return fmt.Errorf("event %s: %w", eventID, err)
		}
		seq, err := r.Lines.MaxLineSeq(ctx, eventID)
		if err != nil {
			return err
		}

		lines = make([]models.LineItem, 0, len(draft.Lines))
		for i, dl := range draft.Lines {
			l := dl
			l.EventID = eventID
			l.LineID = models.FormatLineID(seq + i + 1)
			l.TicketID = ticket.ID
			l.UserID = userID
			l.LineNumber = i + 1
			l.OriginalLineID = ""
			if l.Type == "" || l.Type == models.LineRefund {
				l.Type = models.LineManual
			}
			if l.Quantity == 0 {
				l.Quantity = 1
			}
			l.Subtotal = models.Subtotal(l.Quantity, l.UnitPrice)
			l.Sync = meta
			if err := l.Validate(); err != nil {
				return err
			}
			ticket.Total = ticket.Total.Add(l.Subtotal)
			lines = append(lines, l)
		}

		return r.Upsert(ctx, store.Batch{Tickets: []models.Ticket{ticket}, Lines: lines})
	})
	if err != nil {
		return models.Ticket{}, nil, fmt.Errorf("committing draft: %w", err)
	}

	s.drafts.Clear(eventID)
	s.logger.Info(ctx, "ticket committed", "ticket", ticket.ID, "event", eventID, "lines", len(lines), "total", ticket.Total.String())
	return ticket, lines, nil
}

func (s *commitService) RefundLine(ctx context.Context, userID string, key models.LineKey) (models.LineItem, error) {
	if userID == "" {
		return models.LineItem{}, common.ErrNoUser
	}

	var credit models.LineItem
	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		original, err := r.Lines.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("line %s: %w", key, err)
		}
		if original.UserID != userID {
			return fmt.Errorf("line %s: %w", key, common.ErrNotFound)
		}

		siblings, err := r.Lines.ListByTicket(ctx, original.TicketID)
		if err != nil {
			return err
		}
		lineNumber := 0
		for _, l := range siblings {
			if l.Type == models.LineRefund && l.OriginalLineID == original.LineID && l.EventID == original.EventID {
				return fmt.Errorf("%w: line %s is already refunded", common.ErrInvalidRecord, key)
			}
			lineNumber = max(lineNumber, l.LineNumber)
		}

		ticket, err := r.Tickets.Get(ctx, original.TicketID)
		if err != nil {
			return fmt.Errorf("ticket %s: %w", original.TicketID, err)
		}

		seq, err := r.Lines.MaxLineSeq(ctx, key.EventID)
		if err != nil {
			return err
		}
		credit, err = models.NewCreditLine(*original, models.FormatLineID(seq+1), lineNumber+1)
		if err != nil {
			return err
		}
		credit.Sync = s.tracker.NewMeta()

		ticket.Total = ticket.Total.Add(credit.Subtotal)
		ticket.Status = models.TicketPartiallyRefunded
		ticket.Sync = s.tracker.MarkDirty(ticket.Sync)

		return r.Upsert(ctx, store.Batch{Tickets: []models.Ticket{*ticket}, Lines: []models.LineItem{credit}})
	})
	if err != nil {
		return models.LineItem{}, fmt.Errorf("refunding line: %w", err)
	}

	s.logger.Info(ctx, "line refunded", "line", key.String(), "credit", credit.LineID)
	return credit, nil
}
