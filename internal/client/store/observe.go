package store

import (
	"context"

	"github.com/dmitrijs2005/marketsales/internal/client/models"
)

type subscription struct {
	userID string
	wake   chan struct{}
}

// ObserveTickets returns a channel carrying the user's tickets. The first
// value is the current state; another follows each committed change that
// concerns the user. Snapshots are coalesced: a slow reader only sees the
// latest state. The channel is closed when ctx ends or when the store
// cannot be read.
func (s *Store) ObserveTickets(ctx context.Context, userID string) <-chan []models.Ticket {
	out := make(chan []models.Ticket)
	sub := &subscription{userID: userID, wake: make(chan struct{}, 1)}
	sub.wake <- struct{}{}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer close(out)
		defer s.unsubscribe(sub)

		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.wake:
			}

			list, err := s.Tickets.ListByUser(ctx, userID)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error(ctx, "ticket observer stopped", "user", userID, "error", err)
				}
				return
			}
			if list == nil {
				list = []models.Ticket{}
			}

			select {
			case out <- list:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (s *Store) unsubscribe(sub *subscription) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

// notify wakes the observers of the given users, or all observers when
// users is nil.
func (s *Store) notify(users map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sub := range s.subs {
		if users != nil {
			if _, ok := users[sub.userID]; !ok {
				continue
			}
		}
		select {
		case sub.wake <- struct{}{}:
		default:
		}
	}
}
