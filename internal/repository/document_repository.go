package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/imrann-dev/school-erp-api/internal/docstore"
	"github.com/imrann-dev/school-erp-api/internal/models"
)

// DocumentRepository persists store documents as jsonb rows keyed by
// (kind, key). It implements docstore.Persistence.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Get fetches and decodes the document for (kind, key).
func (r *DocumentRepository) Get(ctx context.Context, kind, key string) (models.Document, error) {
	const query = `SELECT doc FROM documents WHERE kind = $1 AND key = $2`
	var raw []byte
	if err := r.db.GetContext(ctx, &raw, query, kind, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, docstore.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document %s/%s: %w", kind, key, err)
	}

	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", kind, key, err)
	}
	return doc, nil
}

// Put upserts the document for (kind, key).
func (r *DocumentRepository) Put(ctx context.Context, kind, key string, doc models.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", kind, key, err)
	}

	const query = `INSERT INTO documents (kind, key, doc, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (kind, key)
DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, kind, key, raw, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert document %s/%s: %w", kind, key, err)
	}
	return nil
}
