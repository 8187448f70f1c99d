package remote

import (
	"fmt"

	"github.com/dmitrijs2005/marketsales/internal/client/models"
	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/shopspring/decimal"
)

// Decoders return common.ErrMalformedDocument when an identity field is
// missing from the fields; the store key never stands in for it, and
// callers drop such documents. Other fields fall back to defaults.
// The decoded record carries the remote version and lastModified in Sync;
// Synced and SyncError are left for the caller to set.

func metaFields(m models.SyncMeta, fields map[string]any) {
	fields[FieldVersion] = m.Version
	fields[FieldLastModified] = m.LastModified
}

func remoteMeta(d Document) models.SyncMeta {
	return models.SyncMeta{
		Version:      d.Int64(FieldVersion, 1),
		LastModified: d.Int64(FieldLastModified, 0),
	}
}

func malformed(collection, id, field string) error {
	return fmt.Errorf("%w: %s/%s lacks %s", common.ErrMalformedDocument, collection, id, field)
}

func TicketDocument(t models.Ticket) Document {
	f := map[string]any{
		"id":            t.ID,
		"eventId":       t.EventID,
		FieldUserID:     t.UserID,
		"timestamp":     t.Timestamp,
		"paymentMethod": string(t.PaymentMethod),
		"total":         t.Total.String(),
		"status":        int64(t.Status),
	}
	metaFields(t.Sync, f)
	return Document{ID: t.ID, Fields: f}
}

func TicketFromDocument(d Document) (models.Ticket, error) {
	id := d.String("id", "")
	if id == "" {
		return models.Ticket{}, malformed(common.CollectionTickets, d.ID, "id")
	}
	for _, key := range []string{"eventId", FieldUserID} {
		if d.String(key, "") == "" {
			return models.Ticket{}, malformed(common.CollectionTickets, id, key)
		}
	}
	return models.Ticket{
		ID:            id,
		EventID:       d.String("eventId", ""),
		UserID:        d.String(FieldUserID, ""),
		Timestamp:     d.Int64("timestamp", 0),
		PaymentMethod: models.PaymentMethod(d.String("paymentMethod", string(models.PaymentCash))),
		Total:         d.Decimal("total", decimal.Zero),
		Status:        models.TicketStatus(d.Int64("status", int64(models.TicketCompleted))),
		Sync:          remoteMeta(d),
	}, nil
}

// LineDocumentID is the remote id of a line: line ids repeat across events.
func LineDocumentID(k models.LineKey) string {
	return k.EventID + "_" + k.LineID
}

func LineDocument(l models.LineItem) Document {
	f := map[string]any{
		"eventId":        l.EventID,
		"lineId":         l.LineID,
		"ticketId":       l.TicketID,
		FieldUserID:      l.UserID,
		"lineNumber":     int64(l.LineNumber),
		"lineType":       string(l.Type),
		"description":    l.Description,
		"quantity":       l.Quantity,
		"unitPrice":      l.UnitPrice.String(),
		"subtotal":       l.Subtotal.String(),
		"productId":      nil,
		"originalLineId": nil,
	}
	if l.ProductID != "" {
		f["productId"] = l.ProductID
	}
	if l.OriginalLineID != "" {
		f["originalLineId"] = l.OriginalLineID
	}
	metaFields(l.Sync, f)
	return Document{ID: LineDocumentID(l.Key()), Fields: f}
}

func LineFromDocument(d Document) (models.LineItem, error) {
	for _, key := range []string{"eventId", "lineId", "ticketId"} {
		if d.String(key, "") == "" {
			return models.LineItem{}, malformed(common.CollectionLines, d.ID, key)
		}
	}
	quantity := d.Int64("quantity", 1)
	unitPrice := d.Decimal("unitPrice", decimal.Zero)
	return models.LineItem{
		EventID:        d.String("eventId", ""),
		LineID:         d.String("lineId", ""),
		TicketID:       d.String("ticketId", ""),
		UserID:         d.String(FieldUserID, ""),
		LineNumber:     int(d.Int64("lineNumber", 0)),
		Type:           models.LineType(d.String("lineType", string(models.LineManual))),
		Description:    d.String("description", ""),
		ProductID:      d.String("productId", ""),
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		Subtotal:       d.Decimal("subtotal", models.Subtotal(quantity, unitPrice)),
		OriginalLineID: d.String("originalLineId", ""),
		Sync:           remoteMeta(d),
	}, nil
}

func EventDocument(e models.Event) Document {
	f := map[string]any{
		"id":        e.ID,
		FieldUserID: e.UserID,
		"name":      e.Name,
		"startsAt":  e.StartsAt,
		"endsAt":    e.EndsAt,
		"status":    int64(e.Status),
	}
	metaFields(e.Sync, f)
	return Document{ID: e.ID, Fields: f}
}

func EventFromDocument(d Document) (models.Event, error) {
	id := d.String("id", "")
	if id == "" {
		return models.Event{}, malformed(common.CollectionEvents, d.ID, "id")
	}
	if d.String(FieldUserID, "") == "" {
		return models.Event{}, malformed(common.CollectionEvents, id, FieldUserID)
	}
	return models.Event{
		ID:       id,
		UserID:   d.String(FieldUserID, ""),
		Name:     d.String("name", ""),
		StartsAt: d.Int64("startsAt", 0),
		EndsAt:   d.Int64("endsAt", 0),
		Status:   models.EventStatus(d.Int64("status", int64(models.EventScheduled))),
		Sync:     remoteMeta(d),
	}, nil
}
