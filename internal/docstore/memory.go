package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/imrann-dev/school-erp-api/internal/models"
)

// MemoryPersistence keeps documents in-process. Used by tests and as a
// fallback when no database is configured.
type MemoryPersistence struct {
	mu   sync.RWMutex
	docs map[string]string
}

// NewMemoryPersistence constructs an empty in-memory persistence layer.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{docs: make(map[string]string)}
}

// Get returns a deep copy of the stored document.
func (m *MemoryPersistence) Get(ctx context.Context, kind, key string) (models.Document, error) {
	m.mu.RLock()
	raw, ok := m.docs[kind+"/"+key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrDocumentNotFound
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", kind, key, err)
	}
	return doc, nil
}

// Put stores a deep copy of the document.
func (m *MemoryPersistence) Put(ctx context.Context, kind, key string, doc models.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", kind, key, err)
	}

	m.mu.Lock()
	m.docs[kind+"/"+key] = string(raw)
	m.mu.Unlock()
	return nil
}
