package models

import (
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// Valid reports whether p is a known payment method.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

type TicketStatus int

const (
	TicketCompleted TicketStatus = 1
	// TicketPartiallyRefunded is set once at least one credit line exists.
	TicketPartiallyRefunded TicketStatus = 2
	TicketVoided            TicketStatus = 3
)

// Ticket is a completed sale at an event.
type Ticket struct {
	ID            string
	EventID       string
	UserID        string
	Timestamp     int64
	PaymentMethod PaymentMethod
	Total         decimal.Decimal
	Status        TicketStatus
	Sync          SyncMeta
}
