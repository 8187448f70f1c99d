package models

type EventStatus int

const (
	EventScheduled       EventStatus = 1
	EventInProgress      EventStatus = 2
	EventPendingCloseout EventStatus = 3
	EventClosed          EventStatus = 4
	EventCancelled       EventStatus = 5
)

func (s EventStatus) String() string {
	switch s {
	case EventScheduled:
		return "scheduled"
	case EventInProgress:
		return "in_progress"
	case EventPendingCloseout:
		return "pending_closeout"
	case EventClosed:
		return "closed"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Event is a market day the vendor sells at.
type Event struct {
	ID       string
	UserID   string
	Name     string
	StartsAt int64
	EndsAt   int64
	Status   EventStatus
	Sync     SyncMeta
}

// AutomaticStatus returns the status the event should have at now (epoch
// millis) if only the passage of time is considered. Closed and cancelled
// events are final; an event is never moved backwards.
func (e Event) AutomaticStatus(now int64) EventStatus {
	switch e.Status {
	case EventScheduled, EventInProgress:
	default:
		return e.Status
	}

	if e.EndsAt > 0 && now >= e.EndsAt {
		return EventPendingCloseout
	}
	if e.Status == EventScheduled && now >= e.StartsAt {
		return EventInProgress
	}
	return e.Status
}
