// Package memory provides the in-memory implementation of the document
// cache: the observable collection plus the pending-operation table.
package memory

import (
	"sort"
	"sync"

	"github.com/custodia-labs/docbridge/internal/core/domain"
	"github.com/custodia-labs/docbridge/internal/core/ports/driven"
	"github.com/custodia-labs/docbridge/internal/logger"
)

// Ensure Cache implements the interface.
var _ driven.DocumentCache = (*Cache)(nil)

// Cache is the in-memory implementation of driven.DocumentCache.
//
// Mutations are serialised by the mutex and subscribers are notified
// synchronously after the mutation, outside the lock, so a subscriber may
// read back from the cache without deadlocking.
type Cache struct {
	mu         sync.RWMutex
	documents  map[string]domain.Document
	operations map[string]domain.Operation
	opOrder    []string
	connected  bool

	subMu   sync.Mutex
	subs    map[int]func(domain.CacheEvent)
	nextSub int
}

// NewCache creates an empty document cache.
func NewCache() *Cache {
	return &Cache{
		documents:  make(map[string]domain.Document),
		operations: make(map[string]domain.Operation),
		subs:       make(map[int]func(domain.CacheEvent)),
	}
}

// AddDocument inserts or replaces a document.
func (c *Cache) AddDocument(doc domain.Document) {
	c.mu.Lock()
	c.documents[doc.ID] = doc.Clone()
	c.mu.Unlock()

	c.notify(domain.CacheEvent{Kind: domain.EventDocumentAdded, DocumentID: doc.ID})
}

// UpdateDocument merges patch fields into an existing record.
// No-op if the id is absent.
func (c *Cache) UpdateDocument(id string, patch domain.Patch) {
	c.mu.Lock()
	doc, ok := c.documents[id]
	if ok {
		doc.Apply(patch)
		c.documents[id] = doc
	}
	c.mu.Unlock()

	if !ok {
		logger.Debug("cache: update for unknown document %s ignored", id)
		return
	}
	c.notify(domain.CacheEvent{Kind: domain.EventDocumentUpdated, DocumentID: id})
}

// RemoveDocument deletes a document if present.
func (c *Cache) RemoveDocument(id string) {
	c.mu.Lock()
	_, ok := c.documents[id]
	delete(c.documents, id)
	c.mu.Unlock()

	if ok {
		c.notify(domain.CacheEvent{Kind: domain.EventDocumentRemoved, DocumentID: id})
	}
}

// SetDocuments replaces the entire collection.
func (c *Cache) SetDocuments(docs []domain.Document) {
	c.mu.Lock()
	c.documents = make(map[string]domain.Document, len(docs))
	for _, doc := range docs {
		c.documents[doc.ID] = doc.Clone()
	}
	c.mu.Unlock()

	c.notify(domain.CacheEvent{Kind: domain.EventDocumentsReset})
}

// GetDocument retrieves a deep copy of a document.
func (c *Cache) GetDocument(id string) (*domain.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.documents[id]
	if !ok {
		return nil, false
	}
	out := doc.Clone()
	return &out, true
}

// ListDocuments returns a copy of the collection sorted by id for stable
// iteration.
func (c *Cache) ListDocuments() []domain.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Document, 0, len(c.documents))
	for _, doc := range c.documents {
		out = append(out, doc.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddOperation registers a pending operation.
func (c *Cache) AddOperation(op domain.Operation) {
	c.mu.Lock()
	if _, exists := c.operations[op.ID]; !exists {
		c.opOrder = append(c.opOrder, op.ID)
	}
	c.operations[op.ID] = op
	c.mu.Unlock()

	c.notify(domain.CacheEvent{Kind: domain.EventOperationAdded, OperationID: op.ID, DocumentID: op.DocumentID})
}

// RemoveOperation drops a pending operation without rollback.
// Safe to call twice with the same id.
func (c *Cache) RemoveOperation(id string) {
	c.mu.Lock()
	op, ok := c.operations[id]
	if ok {
		delete(c.operations, id)
		c.dropOrderLocked(id)
	}
	c.mu.Unlock()

	if ok {
		c.notify(domain.CacheEvent{Kind: domain.EventOperationRemoved, OperationID: id, DocumentID: op.DocumentID})
	}
}

// GetOperation retrieves a pending operation.
func (c *Cache) GetOperation(id string) (*domain.Operation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	op, ok := c.operations[id]
	if !ok {
		return nil, false
	}
	return &op, true
}

// PendingOperations returns pending operations in issuance order.
// An empty documentID returns all of them.
func (c *Cache) PendingOperations(documentID string) []domain.Operation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.Operation
	for _, id := range c.opOrder {
		op := c.operations[id]
		if documentID == "" || op.DocumentID == documentID {
			out = append(out, op)
		}
	}
	return out
}

// HasPendingOperations reports whether a document has pending operations.
func (c *Cache) HasPendingOperations(documentID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, op := range c.operations {
		if op.DocumentID == documentID {
			return true
		}
	}
	return false
}

// RollbackOperation applies the operation's rollback descriptor and drops
// it from the pending table. Unknown ids are logged and ignored.
func (c *Cache) RollbackOperation(id string) {
	c.mu.Lock()
	op, ok := c.operations[id]
	if ok {
		delete(c.operations, id)
		c.dropOrderLocked(id)
		c.applyRollbackLocked(op.Rollback)
	}
	c.mu.Unlock()

	if !ok {
		logger.Debug("cache: rollback for unknown operation %s ignored", id)
		return
	}
	c.notify(domain.CacheEvent{Kind: domain.EventOperationRemoved, OperationID: id, DocumentID: op.DocumentID})
}

// RollbackAll rolls back every pending operation, newest first.
func (c *Cache) RollbackAll() {
	c.mu.Lock()
	rolled := make([]domain.Operation, 0, len(c.opOrder))
	for i := len(c.opOrder) - 1; i >= 0; i-- {
		op := c.operations[c.opOrder[i]]
		c.applyRollbackLocked(op.Rollback)
		rolled = append(rolled, op)
	}
	c.operations = make(map[string]domain.Operation)
	c.opOrder = nil
	c.mu.Unlock()

	for _, op := range rolled {
		c.notify(domain.CacheEvent{Kind: domain.EventOperationRemoved, OperationID: op.ID, DocumentID: op.DocumentID})
	}
}

// SetConnected records channel connectivity.
func (c *Cache) SetConnected(connected bool) {
	c.mu.Lock()
	changed := c.connected != connected
	c.connected = connected
	c.mu.Unlock()

	if changed {
		c.notify(domain.CacheEvent{Kind: domain.EventConnectionChange, Connected: connected})
	}
}

// Connected reports the recorded channel connectivity.
func (c *Cache) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Subscribe registers an observer. The returned function unsubscribes.
func (c *Cache) Subscribe(fn func(domain.CacheEvent)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// applyRollbackLocked interprets a data-only rollback descriptor.
// Caller holds the write lock.
func (c *Cache) applyRollbackLocked(rb domain.Rollback) {
	switch rb.Kind {
	case domain.RollbackRemove:
		delete(c.documents, rb.DocumentID)
	case domain.RollbackRestore:
		if rb.Snapshot != nil {
			c.documents[rb.Snapshot.ID] = rb.Snapshot.Clone()
		}
	}
}

func (c *Cache) dropOrderLocked(id string) {
	for i, oid := range c.opOrder {
		if oid == id {
			c.opOrder = append(c.opOrder[:i], c.opOrder[i+1:]...)
			return
		}
	}
}

func (c *Cache) notify(ev domain.CacheEvent) {
	c.subMu.Lock()
	fns := make([]func(domain.CacheEvent), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
