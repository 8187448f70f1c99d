package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

type DraftTab string

const (
	TabManual  DraftTab = "manual"
	TabCatalog DraftTab = "catalog"
)

// Draft is the uncommitted cart of one event. It never reaches the
// record store as is; committing it produces a ticket and its lines.
type Draft struct {
	Lines            []LineItem
	Total            decimal.Decimal
	AmountInput      string
	DescriptionInput string
	ActiveTab        DraftTab
}

// Clone returns a copy that shares no mutable state with d.
func (d Draft) Clone() Draft {
	d.Lines = slices.Clone(d.Lines)
	return d
}

// LinesTotal sums the line subtotals.
func (d Draft) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		total = total.Add(l.Subtotal)
	}
	return total
}
