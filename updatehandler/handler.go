// Package updatehandler coalesces delta-driven resource changes into at
// most one in-flight reconciliation task per (subject, type) and, for
// each of that type's Search Indexes, checks whether the resource still
// belongs in it and upserts or deletes its document accordingly.
package updatehandler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nbittich/mu-search/config"
	"github.com/nbittich/mu-search/docbuilder"
	"github.com/nbittich/mu-search/indexmanager"
	"github.com/nbittich/mu-search/observability"
	"github.com/nbittich/mu-search/registry"
	"github.com/nbittich/mu-search/search"
	"github.com/nbittich/mu-search/sparql"
	"github.com/nbittich/mu-search/textextract"
)

var log = observability.Component(observability.ComponentUpdateHandler)

// pendingTask tracks one in-flight (subject, type) reconciliation: a
// second Enqueue for the same key while the task is running marks it
// dirty instead of starting a second task, so the task re-runs once
// more after it finishes rather than dropping the newer delta.
type pendingTask struct {
	mu    sync.Mutex
	dirty bool
}

// Handler is the Update Handler's coalescing queue and worker pool.
type Handler struct {
	mu    sync.Mutex
	tasks map[string]*pendingTask

	tokens chan struct{}

	manager    *indexmanager.Manager
	sparqlPool *sparql.Pool
	backend    search.Backend
	extractor  textextract.Extractor
	cfg        *config.Config
}

// New builds a Handler bounding concurrent in-flight tasks to
// maxWorkers via a simple token bucket.
func New(manager *indexmanager.Manager, sparqlPool *sparql.Pool, backend search.Backend, extractor textextract.Extractor, cfg *config.Config, maxWorkers int) *Handler {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	tokens := make(chan struct{}, maxWorkers)
	for i := 0; i < maxWorkers; i++ {
		tokens <- struct{}{}
	}
	return &Handler{
		tasks:      make(map[string]*pendingTask),
		tokens:     tokens,
		manager:    manager,
		sparqlPool: sparqlPool,
		backend:    backend,
		extractor:  extractor,
		cfg:        cfg,
	}
}

// Drain blocks until no tasks are in flight or ctx is cancelled, used
// during graceful shutdown to let outstanding reconciliations finish.
func (h *Handler) Drain(ctx context.Context) {
	for {
		h.mu.Lock()
		empty := len(h.tasks) == 0
		h.mu.Unlock()
		if empty {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func taskKey(subject, typeName string) string {
	return typeName + "\x00" + subject
}

// Enqueue schedules (subject, typeName) for reconciliation, coalescing
// with any task already in flight for the same key. It never blocks:
// a new task spawns its own goroutine that waits for a worker token.
func (h *Handler) Enqueue(subject, typeName string) {
	key := taskKey(subject, typeName)

	h.mu.Lock()
	if t, ok := h.tasks[key]; ok {
		t.mu.Lock()
		t.dirty = true
		t.mu.Unlock()
		h.mu.Unlock()
		return
	}
	t := &pendingTask{}
	h.tasks[key] = t
	h.mu.Unlock()

	observability.UpdateHandlerQueueDepth.Inc()
	go h.run(subject, typeName, key, t)
}

func (h *Handler) run(subject, typeName, key string, t *pendingTask) {
	<-h.tokens
	defer func() { h.tokens <- struct{}{} }()

	for {
		t.mu.Lock()
		t.dirty = false
		t.mu.Unlock()

		if err := h.processOnce(context.Background(), subject, typeName); err != nil {
			observability.UpdateHandlerTasksTotal.WithLabelValues("failed").Inc()
			log.Warn("update task failed", "subject", subject, "type", typeName, "error", err)
		} else {
			observability.UpdateHandlerTasksTotal.WithLabelValues("succeeded").Inc()
		}

		h.mu.Lock()
		t.mu.Lock()
		again := t.dirty
		if !again {
			delete(h.tasks, key)
		}
		t.mu.Unlock()
		h.mu.Unlock()
		if !again {
			break
		}
	}

	observability.UpdateHandlerQueueDepth.Dec()
}

func (h *Handler) processOnce(ctx context.Context, subject, typeName string) error {
	def := h.cfg.ByName(typeName)
	if def == nil {
		return fmt.Errorf("updatehandler: unknown type %q", typeName)
	}

	var firstErr error
	for _, idx := range h.manager.FetchAll(typeName) {
		if idx.Status == registry.StatusDeleted {
			continue
		}
		if err := h.manager.Transact(idx, func() error {
			return h.reconcileOne(ctx, idx, def, subject)
		}); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// reconcileOne checks whether subject still carries one of def's
// related RDF types under idx's authorization: if so its document is
// rebuilt and upserted; otherwise any existing document is deleted
// (a missing document is not an error).
func (h *Handler) reconcileOne(ctx context.Context, idx *registry.SearchIndex, def *config.IndexDefinition, subject string) error {
	var exists bool
	err := h.sparqlPool.WithAuthorization(ctx, idx.AllowedGroups, func(c sparql.Client) error {
		ok, err := c.Ask(ctx, existsQuery(subject, def.RelatedRDFTypes()))
		exists = ok
		return err
	})
	if err != nil {
		return fmt.Errorf("updatehandler: check existence %s: %w", subject, err)
	}

	if !exists {
		var id string
		err := h.sparqlPool.WithAuthorization(ctx, idx.AllowedGroups, func(c sparql.Client) error {
			uuid, err := docbuilder.ResourceUUID(ctx, c, subject)
			id = uuid
			return err
		})
		if err != nil {
			// The resource no longer carries a mu:uuid we can look up,
			// most likely because it was removed outright rather than
			// just dropped from this index's related types. There is no
			// document identity left to delete by.
			log.Debug("no uuid to delete by", "subject", subject, "index", idx.Name, "error", err)
			return nil
		}
		if err := h.backend.DeleteDocument(ctx, idx.Name, id); err != nil {
			return fmt.Errorf("updatehandler: delete %s from %s: %w", id, idx.Name, err)
		}
		return nil
	}

	var doc search.Document
	err = h.sparqlPool.WithAuthorization(ctx, idx.AllowedGroups, func(c sparql.Client) error {
		built, err := docbuilder.Build(ctx, subject, def, docbuilder.Options{
			Client:             c,
			Extractor:          h.extractor,
			AttachmentPathBase: h.cfg.AttachmentPathBase,
			AttachmentMaxBytes: h.cfg.AttachmentMaxBytes,
		})
		doc = built
		return err
	})
	if err != nil {
		observability.DocumentBuildFailuresTotal.WithLabelValues(idx.TypeName).Inc()
		return fmt.Errorf("updatehandler: build %s: %w", subject, err)
	}

	id, err := docbuilder.DocumentID(doc)
	if err != nil {
		return fmt.Errorf("updatehandler: %s: %w", subject, err)
	}

	if err := h.backend.UpsertDocument(ctx, idx.Name, id, doc); err != nil {
		return fmt.Errorf("updatehandler: upsert %s into %s: %w", id, idx.Name, err)
	}
	return nil
}
