// Package documents stores the server's schemaless documents in PostgreSQL,
// one row per (collection, id) with the fields kept as JSONB.
package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/dmitrijs2005/marketsales/internal/dbx"
	"github.com/dmitrijs2005/marketsales/internal/documents"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Put inserts or replaces a document. A row owned by another user is left
// untouched and ErrOwnershipConflict is returned.
func (r *PostgresRepository) Put(ctx context.Context, collection string, doc documents.Document) error {
	userID := doc.String(documents.FieldUserID, "")
	if doc.ID == "" || userID == "" {
		return fmt.Errorf("%w: %s document without id or userId", common.ErrInvalidRecord, collection)
	}

	fields, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query := `
		INSERT INTO documents (collection, id, user_id, last_modified, fields)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (collection, id)
		DO UPDATE SET
			last_modified = EXCLUDED.last_modified,
			fields = EXCLUDED.fields
			WHERE documents.user_id = EXCLUDED.user_id;
	`
	res, err := r.db.ExecContext(ctx, query,
		collection, doc.ID, userID, doc.Int64(documents.FieldLastModified, 0), fields)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%w: %s/%s", common.ErrOwnershipConflict, collection, doc.ID)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Query returns the documents of q.Collection containing every Equals pair
// and, when q.ModifiedAfter is positive, modified after it; oldest first.
func (r *PostgresRepository) Query(ctx context.Context, q documents.Query) ([]documents.Document, error) {
	filter := []byte("{}")
	if len(q.Equals) > 0 {
		var err error
		if filter, err = json.Marshal(q.Equals); err != nil {
			return nil, fmt.Errorf("encode filter: %w", err)
		}
	}

	query := `SELECT id, fields FROM documents
		WHERE collection = $1 AND fields @> $2::jsonb`
	args := []any{q.Collection, filter}
	// A zero bound means every document, including ones never stamped.
	if q.ModifiedAfter > 0 {
		query += ` AND last_modified > $3`
		args = append(args, q.ModifiedAfter)
	}
	query += `
		ORDER BY last_modified, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []documents.Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}

		doc := documents.Document{ID: id}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&doc.Fields); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", q.Collection, id, err)
		}
		normalizeNumbers(doc.Fields)
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// normalizeNumbers turns json.Number values into int64 or float64 so they
// travel as numbers rather than strings.
func normalizeNumbers(fields map[string]any) {
	for k, v := range fields {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			fields[k] = i
		} else if f, err := n.Float64(); err == nil {
			fields[k] = f
		}
	}
}
