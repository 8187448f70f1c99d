package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/shopspring/decimal"
)

type LineType string

const (
	LineManual  LineType = "manual"
	LineProduct LineType = "product"
	LineRefund  LineType = "refund"
)

func (t LineType) Valid() bool {
	switch t {
	case LineManual, LineProduct, LineRefund:
		return true
	}
	return false
}

// LineKey identifies a line item. Line ids are only unique within an event.
type LineKey struct {
	EventID string
	LineID  string
}

func (k LineKey) String() string { return k.EventID + "/" + k.LineID }

// LineItem is one position of a ticket.
type LineItem struct {
	EventID        string
	LineID         string
	TicketID       string
	UserID         string
	LineNumber     int
	Type           LineType
	Description    string
	ProductID      string
	Quantity       int64
	UnitPrice      decimal.Decimal
	Subtotal       decimal.Decimal
	OriginalLineID string
	Sync           SyncMeta
}

func (l LineItem) Key() LineKey { return LineKey{EventID: l.EventID, LineID: l.LineID} }

// Subtotal returns quantity × unit price.
func Subtotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

// Validate checks the amount invariants: a sale line has a positive quantity
// and subtotal = quantity × unitPrice; a refund line points at the line it
// credits and carries the negated subtotal.
func (l LineItem) Validate() error {
	if l.EventID == "" || l.LineID == "" || l.TicketID == "" {
		return fmt.Errorf("%w: line %s lacks identity", common.ErrInvalidRecord, l.Key())
	}
	if !l.Type.Valid() {
		return fmt.Errorf("%w: line %s has type %q", common.ErrInvalidRecord, l.Key(), l.Type)
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("%w: line %s has quantity %d", common.ErrInvalidRecord, l.Key(), l.Quantity)
	}

	want := Subtotal(l.Quantity, l.UnitPrice)
	if l.Type == LineRefund {
		if l.OriginalLineID == "" {
			return fmt.Errorf("%w: refund line %s has no original line", common.ErrInvalidRecord, l.Key())
		}
		want = want.Neg()
	}
	if !l.Subtotal.Equal(want) {
		return fmt.Errorf("%w: line %s subtotal %s, want %s", common.ErrInvalidRecord, l.Key(), l.Subtotal, want)
	}
	return nil
}

// NewCreditLine builds the refund line crediting original. The new line
// lives in the same ticket and mirrors quantity and unit price.
func NewCreditLine(original LineItem, lineID string, lineNumber int) (LineItem, error) {
	if original.Type == LineRefund {
		return LineItem{}, fmt.Errorf("%w: line %s is already a refund", common.ErrInvalidRecord, original.Key())
	}
	return LineItem{
		EventID:        original.EventID,
		LineID:         lineID,
		TicketID:       original.TicketID,
		UserID:         original.UserID,
		LineNumber:     lineNumber,
		Type:           LineRefund,
		Description:    original.Description,
		ProductID:      original.ProductID,
		Quantity:       original.Quantity,
		UnitPrice:      original.UnitPrice,
		Subtotal:       Subtotal(original.Quantity, original.UnitPrice).Neg(),
		OriginalLineID: original.LineID,
	}, nil
}

const linePrefix = "L"

// FormatLineID renders the n-th line id of an event, e.g. L0007.
func FormatLineID(n int) string {
	return fmt.Sprintf("%s%04d", linePrefix, n)
}

// ParseLineSeq extracts n from an id produced by FormatLineID.
func ParseLineSeq(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, linePrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
