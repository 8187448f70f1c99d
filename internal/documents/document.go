// Package documents defines the schemaless document shared by the client
// remote backends, the gRPC wire format and the document server: an id plus
// a map of fields, queried by equality filters and a lastModified bound.
package documents

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Document is one remote document. Fields hold strings, numbers, booleans
// or nil; numbers may arrive as any Go integer or float type depending on
// the transport.
type Document struct {
	ID     string         `cbor:"id" json:"id"`
	Fields map[string]any `cbor:"fields" json:"fields"`
}

// Query selects documents of one collection. Every entry of Equals must
// match exactly; ModifiedAfter > 0 additionally requires
// lastModified > ModifiedAfter.
type Query struct {
	Collection    string         `cbor:"collection" json:"collection"`
	Equals        map[string]any `cbor:"equals" json:"equals,omitempty"`
	ModifiedAfter int64          `cbor:"modifiedAfter" json:"modifiedAfter,omitempty"`
}

// FieldLastModified and FieldUserID are present in every document.
const (
	FieldLastModified = "lastModified"
	FieldUserID       = "userId"
	FieldVersion      = "version"
)

// Has reports whether the field is present and not nil.
func (d Document) Has(key string) bool {
	v, ok := d.Fields[key]
	return ok && v != nil
}

// String returns the field as a string, or def when absent or not a string.
func (d Document) String(key, def string) string {
	if s, ok := d.Fields[key].(string); ok {
		return s
	}
	return def
}

// Int64 returns the field as an integer, or def when absent or not numeric.
func (d Document) Int64(key string, def int64) int64 {
	switch v := d.Fields[key].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint32:
		return int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return def
		}
		return int64(v)
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

// Decimal returns the field as a decimal. Strings are parsed exactly;
// numbers are converted. def is returned when absent or unparsable.
func (d Document) Decimal(key string, def decimal.Decimal) decimal.Decimal {
	switch v := d.Fields[key].(type) {
	case string:
		if dec, err := decimal.NewFromString(v); err == nil {
			return dec
		}
	case json.Number:
		if dec, err := decimal.NewFromString(v.String()); err == nil {
			return dec
		}
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int64, int, int32, uint64, uint32:
		return decimal.NewFromInt(d.Int64(key, 0))
	}
	return def
}

// Matches reports whether d satisfies q's filters.
func (d Document) Matches(q Query) bool {
	for k, want := range q.Equals {
		if !sameValue(d.Fields[k], want) {
			return false
		}
	}
	if q.ModifiedAfter > 0 && d.Int64(FieldLastModified, 0) <= q.ModifiedAfter {
		return false
	}
	return true
}

func sameValue(got, want any) bool {
	if gs, ok := got.(string); ok {
		ws, ok := want.(string)
		return ok && gs == ws
	}
	probe := Document{Fields: map[string]any{"a": got, "b": want}}
	if !probe.Has("a") || !probe.Has("b") {
		return got == nil && want == nil
	}
	const none = math.MinInt64
	a, b := probe.Int64("a", none), probe.Int64("b", none)
	return a != none && a == b
}
