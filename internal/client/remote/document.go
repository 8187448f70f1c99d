// Package remote describes the cloud document store the client reconciles
// with, the conversion between local records and documents, and an
// in-memory store implementation.
//
// The store is a last-writer-wins collection of documents addressed by
// (collection, id). It has no transactions; queries are equality filters
// plus an optional "modified after" bound on the lastModified field.
package remote

import (
	"context"

	"github.com/dmitrijs2005/marketsales/internal/documents"
)

type (
	Document = documents.Document
	Query    = documents.Query
)

const (
	FieldLastModified = documents.FieldLastModified
	FieldUserID       = documents.FieldUserID
	FieldVersion      = documents.FieldVersion
)

// Store is the remote document store.
type Store interface {
	// Put creates or fully replaces a document.
	Put(ctx context.Context, collection string, doc Document) error

	// Query returns the documents matching q in unspecified order.
	Query(ctx context.Context, q Query) ([]Document, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
