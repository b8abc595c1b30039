package docstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/imrann-dev/school-erp-api/internal/models"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
)

// Persistence abstracts the durable key-value layer behind a store so
// tests can swap it for an in-memory map.
type Persistence interface {
	Get(ctx context.Context, kind, key string) (models.Document, error)
	Put(ctx context.Context, kind, key string, doc models.Document) error
}

// ErrDocumentNotFound is returned by Persistence implementations when
// no document exists for a key yet.
var ErrDocumentNotFound = errors.New("document not found")

// DefaultFactory synthesizes the initial document for a key. Reads
// never fail: a missing document is replaced by the factory output and
// persisted, so a second read returns the same document.
type DefaultFactory func(key string) models.Document

// Event describes one committed store write.
type Event struct {
	Key      string
	Section  string
	Document models.Document
}

// Subscriber receives events synchronously, in write order, on the
// goroutine that performed the write.
type Subscriber func(Event)

// Store is a per-kind document store with read, whole/partial write and
// change notification. Each Store instance owns its observer list; two
// independent instances never interfere.
type Store struct {
	kind        string
	persistence Persistence
	defaults    DefaultFactory
	logger      *zap.Logger

	// writeMu serializes read-merge-write cycles so concurrent patches
	// to one document cannot drop each other's committed fields.
	writeMu sync.Mutex

	mu      sync.Mutex
	subs    map[string]map[int]Subscriber
	nextSub int
}

// New constructs a Store for one document kind.
func New(kind string, persistence Persistence, defaults DefaultFactory, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		kind:        kind,
		persistence: persistence,
		defaults:    defaults,
		logger:      logger,
		subs:        make(map[string]map[int]Subscriber),
	}
}

// Kind reports the document kind this store manages.
func (s *Store) Kind() string {
	return s.kind
}

// Get returns the stored document for key, lazily initialising and
// persisting the default on first access.
func (s *Store) Get(ctx context.Context, key string) (models.Document, error) {
	doc, err := s.persistence.Get(ctx, s.kind, key)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ErrDocumentNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read document")
	}

	doc = s.defaults(key)
	if doc == nil {
		doc = models.Document{}
	}
	if err := s.persistence.Put(ctx, s.kind, key, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to initialise document")
	}
	s.logger.Debug("document initialised", zap.String("kind", s.kind), zap.String("key", key))

	// Read back the persisted form so first and later reads agree on
	// value representation.
	doc, err = s.persistence.Get(ctx, s.kind, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read document")
	}
	return doc, nil
}

// Update shallow-merges patch into the whole document, stamps
// updatedAt, persists and notifies subscribers of key. Writes hold the
// store write lock through notification so subscribers observe them in
// commit order.
func (s *Store) Update(ctx context.Context, key string, patch models.Document) (models.Document, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	merged := cloneDocument(doc)
	for field, value := range patch {
		merged[field] = value
	}
	merged["updatedAt"] = time.Now().UTC().Format(time.RFC3339)

	if err := s.persistence.Put(ctx, s.kind, key, merged); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist document")
	}
	s.notify(Event{Key: key, Document: merged})
	return merged, nil
}

// UpdateSection shallow-merges patch into one named top-level section,
// leaving sibling fields and other sections untouched.
func (s *Store) UpdateSection(ctx context.Context, key, section string, patch models.Document) (models.Document, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	merged := cloneDocument(doc)
	current, _ := merged[section].(map[string]interface{})
	next := make(map[string]interface{}, len(current)+len(patch))
	for field, value := range current {
		next[field] = value
	}
	for field, value := range patch {
		next[field] = value
	}
	merged[section] = next
	merged["updatedAt"] = time.Now().UTC().Format(time.RFC3339)

	if err := s.persistence.Put(ctx, s.kind, key, merged); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist document")
	}
	s.notify(Event{Key: key, Section: section, Document: merged})
	return merged, nil
}

// Replace overwrites the document wholesale and notifies subscribers.
func (s *Store) Replace(ctx context.Context, key string, doc models.Document) (models.Document, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	replaced := cloneDocument(doc)
	replaced["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
	if err := s.persistence.Put(ctx, s.kind, key, replaced); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist document")
	}
	s.notify(Event{Key: key, Document: replaced})
	return replaced, nil
}

// Reset discards the stored document and re-persists the default.
func (s *Store) Reset(ctx context.Context, key string) (models.Document, error) {
	doc := s.defaults(key)
	if doc == nil {
		doc = models.Document{}
	}
	return s.Replace(ctx, key, doc)
}

// Subscribe registers callback for writes to key. The returned func
// removes the subscription; callers must invoke it exactly once.
// Callbacks run while the store write lock is held, so they must not
// write back into the store.
func (s *Store) Subscribe(key string, callback Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs[key] == nil {
		s.subs[key] = make(map[int]Subscriber)
	}
	id := s.nextSub
	s.nextSub++
	s.subs[key][id] = callback

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if listeners, ok := s.subs[key]; ok {
			delete(listeners, id)
			if len(listeners) == 0 {
				delete(s.subs, key)
			}
		}
	}
}

// notify delivers the event to a snapshot of the subscriber list so a
// callback may unsubscribe (or subscribe) without deadlocking.
func (s *Store) notify(event Event) {
	s.mu.Lock()
	listeners := make([]Subscriber, 0, len(s.subs[event.Key]))
	for _, callback := range s.subs[event.Key] {
		listeners = append(listeners, callback)
	}
	s.mu.Unlock()

	for _, callback := range listeners {
		callback(event)
	}
}

func cloneDocument(doc models.Document) models.Document {
	clone := make(models.Document, len(doc)+1)
	for field, value := range doc {
		clone[field] = value
	}
	return clone
}
