// Package indexmanager is the central coordination point for Search
// Index lifecycle: creation, bulk rebuilds, invalidation and removal,
// plus background reconciliation of eager indexes against the search
// backend's actual state.
package indexmanager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nbittich/mu-search/authz"
	"github.com/nbittich/mu-search/config"
	"github.com/nbittich/mu-search/indexbuilder"
	"github.com/nbittich/mu-search/observability"
	"github.com/nbittich/mu-search/registry"
	"github.com/nbittich/mu-search/search"
)

var log = observability.Component(observability.ComponentIndexMgmt)

// Manager holds the master mutex serialising registry mutation and the
// sync.Map of per-index mutexes serialising document writes, status
// transitions and bulk rebuilds against one Search Index.
type Manager struct {
	mu       sync.Mutex
	mutexes  sync.Map // index name -> *sync.Mutex
	registry *registry.Registry
	backend  search.Backend
	builder  *indexbuilder.Builder
	cfg      *config.Config
}

// New builds an indexmanager.Manager.
func New(reg *registry.Registry, backend search.Backend, builder *indexbuilder.Builder, cfg *config.Config) *Manager {
	return &Manager{registry: reg, backend: backend, builder: builder, cfg: cfg}
}

func (m *Manager) lockFor(name string) *sync.Mutex {
	val, _ := m.mutexes.LoadOrStore(name, &sync.Mutex{})
	return val.(*sync.Mutex)
}

// Ensure returns the SearchIndex for (typeName, allowedGroups),
// creating and persisting it if necessary. The master mutex is held
// only while deciding whether a create is needed; the triplestore and
// search-backend I/O a create requires run under the new index's own
// lock instead, so unrelated Ensure calls never queue behind it.
func (m *Manager) Ensure(ctx context.Context, typeName string, allowedGroups, usedGroups authz.AllowedGroups, isEager bool) (*registry.SearchIndex, error) {
	def := m.cfg.ByName(typeName)
	if def == nil {
		return nil, fmt.Errorf("indexmanager: unknown type %q", typeName)
	}

	name := registry.IndexName(typeName, allowedGroups)

	if idx, ok := m.registry.FindByName(name); ok {
		if err := m.ensureBackendIndex(ctx, idx, def); err != nil {
			return nil, err
		}
		return idx, nil
	}

	// The master mutex serialises only the decision to create a new
	// identity; the per-index lock acquired below (held through the
	// registry.Create metadata write) is what actually guards the I/O,
	// so unrelated in-flight Ensure calls never queue behind this one.
	m.mu.Lock()
	_, alreadyDeciding := m.registry.FindByName(name)
	m.mu.Unlock()
	if alreadyDeciding {
		idx, _ := m.registry.FindByName(name)
		if err := m.ensureBackendIndex(ctx, idx, def); err != nil {
			return nil, err
		}
		return idx, nil
	}

	lock := m.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	if idx, ok := m.registry.FindByName(name); ok {
		if err := m.ensureBackendIndexLocked(ctx, idx, def); err != nil {
			return nil, err
		}
		return idx, nil
	}

	idx, err := m.registry.Create(ctx, typeName, allowedGroups, usedGroups, isEager)
	if err != nil {
		observability.ReindexTasksTotal.WithLabelValues(typeName, "ensure_failed").Inc()
		return nil, fmt.Errorf("indexmanager: ensure %s: %w", typeName, err)
	}

	if err := m.ensureBackendIndexLocked(ctx, idx, def); err != nil {
		return nil, err
	}

	observability.ReindexTasksTotal.WithLabelValues(typeName, "ensure").Inc()
	return idx, nil
}

// ensureBackendIndex acquires idx's per-index lock and creates its
// search-backend index if it does not already exist. Callers that
// already hold idx's lock (the create path inside Ensure) must call
// ensureBackendIndexLocked directly instead, or they will deadlock
// re-acquiring their own non-reentrant mutex.
func (m *Manager) ensureBackendIndex(ctx context.Context, idx *registry.SearchIndex, def *config.IndexDefinition) error {
	lock := m.lockFor(idx.Name)
	lock.Lock()
	defer lock.Unlock()
	return m.ensureBackendIndexLocked(ctx, idx, def)
}

// ensureBackendIndexLocked does the actual work; it assumes idx's
// per-index lock is already held by the caller.
func (m *Manager) ensureBackendIndexLocked(ctx context.Context, idx *registry.SearchIndex, def *config.IndexDefinition) error {
	exists, err := m.backend.IndexExists(ctx, idx.Name)
	if err != nil {
		return fmt.Errorf("indexmanager: check backend index %s: %w", idx.Name, err)
	}
	if exists {
		return nil
	}

	if err := m.backend.CreateIndex(ctx, idx.Name, buildMappings(def), buildSettings(def, m.cfg)); err != nil {
		return fmt.Errorf("indexmanager: create backend index %s: %w", idx.Name, err)
	}
	idx.Status = registry.StatusInvalid
	return nil
}

func buildMappings(def *config.IndexDefinition) map[string]interface{} {
	props := map[string]interface{}{}
	if def.Mappings != nil {
		if configured, ok := def.Mappings["properties"].(map[string]interface{}); ok {
			for k, v := range configured {
				props[k] = v
			}
		}
	}
	props["uuid"] = map[string]interface{}{"type": "keyword"}
	props["uri"] = map[string]interface{}{"type": "keyword"}
	return map[string]interface{}{"properties": props}
}

func buildSettings(def *config.IndexDefinition, cfg *config.Config) map[string]interface{} {
	if def.Settings != nil {
		return def.Settings
	}
	return cfg.DefaultSettings
}

// Update rebuilds idx entirely: clear, bulk rebuild, refresh, all while
// holding idx's lock so no other writer observes a partially-rebuilt
// index. On any failure idx is left invalid rather than valid.
func (m *Manager) Update(ctx context.Context, idx *registry.SearchIndex, def *config.IndexDefinition) error {
	lock := m.lockFor(idx.Name)
	lock.Lock()
	defer lock.Unlock()

	idx.Status = registry.StatusUpdating
	start := time.Now()

	err := m.rebuild(ctx, idx, def)

	observability.ReindexDurationSeconds.WithLabelValues(idx.TypeName).Observe(time.Since(start).Seconds())

	if err != nil {
		idx.Status = registry.StatusInvalid
		observability.ReindexTasksTotal.WithLabelValues(idx.TypeName, "update_failed").Inc()
		log.Warn("index update failed", "name", idx.Name, "error", err)
		return err
	}

	idx.Status = registry.StatusValid
	observability.ReindexTasksTotal.WithLabelValues(idx.TypeName, "update").Inc()
	return nil
}

func (m *Manager) rebuild(ctx context.Context, idx *registry.SearchIndex, def *config.IndexDefinition) error {
	if err := m.backend.ClearIndex(ctx, idx.Name); err != nil {
		return fmt.Errorf("indexmanager: clear %s: %w", idx.Name, err)
	}
	if _, err := m.builder.Build(ctx, idx, def); err != nil {
		return fmt.Errorf("indexmanager: build %s: %w", idx.Name, err)
	}
	if err := m.backend.RefreshIndex(ctx, idx.Name); err != nil {
		return fmt.Errorf("indexmanager: refresh %s: %w", idx.Name, err)
	}
	return nil
}

// Transact runs fn under idx's per-index lock, transitioning idx to
// updating first and to valid/invalid afterward exactly like Update. It
// is the Update Handler's hook for single-document reconciliation,
// sharing the same lock and status-transition discipline as a full
// rebuild so the two can never observe or leave behind an inconsistent
// status.
func (m *Manager) Transact(idx *registry.SearchIndex, fn func() error) error {
	lock := m.lockFor(idx.Name)
	lock.Lock()
	defer lock.Unlock()

	idx.Status = registry.StatusUpdating
	if err := fn(); err != nil {
		idx.Status = registry.StatusInvalid
		observability.ReindexTasksTotal.WithLabelValues(idx.TypeName, "document_update_failed").Inc()
		log.Warn("document update failed", "index", idx.Name, "error", err)
		return err
	}

	idx.Status = registry.StatusValid
	return nil
}

// Invalidate transitions idx to invalid without touching the backend
// index or metadata; the next reader or reconciliation pass rebuilds it.
func (m *Manager) Invalidate(idx *registry.SearchIndex) {
	lock := m.lockFor(idx.Name)
	lock.Lock()
	idx.Status = registry.StatusInvalid
	lock.Unlock()

	observability.ReindexTasksTotal.WithLabelValues(idx.TypeName, "invalidate").Inc()
}

// Remove deletes idx's backend index, its persisted metadata and its
// in-memory entry.
func (m *Manager) Remove(ctx context.Context, idx *registry.SearchIndex) error {
	lock := m.lockFor(idx.Name)
	lock.Lock()
	defer lock.Unlock()

	if err := m.backend.DeleteIndex(ctx, idx.Name); err != nil {
		return fmt.Errorf("indexmanager: remove backend index %s: %w", idx.Name, err)
	}
	if err := m.registry.RemoveByName(ctx, idx.Name); err != nil {
		return fmt.Errorf("indexmanager: remove metadata %s: %w", idx.Name, err)
	}
	idx.Status = registry.StatusDeleted

	observability.ReindexTasksTotal.WithLabelValues(idx.TypeName, "remove").Inc()
	m.mutexes.Delete(idx.Name)
	return nil
}
