package remote

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore is a Store kept in process memory. It backs tests and the
// "memory" remote backend of the CLI.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]Document)}
}

func (m *MemoryStore) Put(ctx context.Context, collection string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.docs[collection]
	if !ok {
		coll = make(map[string]Document)
		m.docs[collection] = coll
	}
	coll[doc.ID] = Document{ID: doc.ID, Fields: maps.Clone(doc.Fields)}
	return nil
}

func (m *MemoryStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Document
	for _, d := range m.docs[q.Collection] {
		if d.Matches(q) {
			result = append(result, Document{ID: d.ID, Fields: maps.Clone(d.Fields)})
		}
	}
	return result, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Get returns a stored document, mainly for assertions.
func (m *MemoryStore) Get(collection, id string) (Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[collection][id]
	return d, ok
}

// Len counts the documents of a collection.
func (m *MemoryStore) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[collection])
}
