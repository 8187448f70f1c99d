// Package models defines the records kept by the market sales client:
// events, sale tickets and their line items, the sync metadata every
// persisted record carries, and the in-memory cart draft.
//
// Timestamps are epoch milliseconds. Money is held as decimal.Decimal and
// persisted as its canonical string form.
package models
