package documents

import (
	"context"

	"github.com/dmitrijs2005/marketsales/internal/documents"
)

type Repository interface {
	Put(ctx context.Context, collection string, doc documents.Document) error
	Query(ctx context.Context, q documents.Query) ([]documents.Document, error)
}
