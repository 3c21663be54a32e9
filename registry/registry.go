package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nbittich/mu-search/authz"
	"github.com/nbittich/mu-search/observability"
	"github.com/nbittich/mu-search/sparql"
)

var log = observability.Component(observability.ComponentIndexMgmt)

// Registry is the keyed two-level map of live Search Index instances,
// backed by the metadata graph for persistence. Its mutex only ever
// guards map membership, never triplestore or search-backend I/O.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]map[string]*SearchIndex // type_name -> index_name -> *SearchIndex
	sparql  sparql.Service
	uriBase string
}

// New builds a Registry backed by svc, minting metadata IRIs under
// uriBase (e.g. "http://mu.semte.ch/services/search-index/").
func New(svc sparql.Service, uriBase string) *Registry {
	return &Registry{
		entries: make(map[string]map[string]*SearchIndex),
		sparql:  svc,
		uriBase: uriBase,
	}
}

// Create mints, persists and registers a new SearchIndex for the given
// identity tuple. Callers must already hold whatever higher-level lock
// serialises creation for that identity (the Index Manager calls it
// under the new index's per-index lock).
func (r *Registry) Create(ctx context.Context, typeName string, allowedGroups, usedGroups authz.AllowedGroups, isEager bool) (*SearchIndex, error) {
	name := IndexName(typeName, allowedGroups)
	idx := &SearchIndex{
		URI:           r.uriBase + name,
		Name:          name,
		TypeName:      typeName,
		AllowedGroups: authz.Canonical(allowedGroups),
		UsedGroups:    authz.Canonical(usedGroups),
		IsEager:       isEager,
		Status:        StatusInvalid,
	}

	if err := r.sparql.SudoUpdate(ctx, insertMetadataQuery(idx, uuid.NewString())); err != nil {
		return nil, fmt.Errorf("registry: persist %s: %w", name, err)
	}

	r.mu.Lock()
	if r.entries[typeName] == nil {
		r.entries[typeName] = make(map[string]*SearchIndex)
	}
	r.entries[typeName][name] = idx
	r.mu.Unlock()

	observability.RegistryOpsTotal.WithLabelValues(typeName, "create").Inc()
	log.Info("registered search index", "type", typeName, "name", name, "eager", isEager)
	return idx, nil
}

// Put registers an already-constructed SearchIndex (used when loading
// persisted metadata at startup) without writing it to the triplestore.
func (r *Registry) Put(idx *SearchIndex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[idx.TypeName] == nil {
		r.entries[idx.TypeName] = make(map[string]*SearchIndex)
	}
	r.entries[idx.TypeName][idx.Name] = idx
}

// FindByName returns the in-memory SearchIndex with the given name,
// searching across all types.
func (r *Registry) FindByName(name string) (*SearchIndex, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, byName := range r.entries {
		if idx, ok := byName[name]; ok {
			return idx, true
		}
	}
	return nil, false
}

// FindForType returns every in-memory SearchIndex registered for
// typeName.
func (r *Registry) FindForType(typeName string) []*SearchIndex {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byName := r.entries[typeName]
	out := make([]*SearchIndex, 0, len(byName))
	for _, idx := range byName {
		out = append(out, idx)
	}
	return out
}

// FindAll returns every in-memory SearchIndex across all types.
func (r *Registry) FindAll() []*SearchIndex {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*SearchIndex
	for _, byName := range r.entries {
		for _, idx := range byName {
			out = append(out, idx)
		}
	}
	return out
}

// RemoveByName deletes the named index's metadata from the triplestore
// and drops it from the in-memory map.
func (r *Registry) RemoveByName(ctx context.Context, name string) error {
	idx, ok := r.FindByName(name)
	if !ok {
		return nil
	}

	if err := r.sparql.SudoUpdate(ctx, deleteMetadataQuery(idx.URI)); err != nil {
		return fmt.Errorf("registry: remove %s: %w", name, err)
	}

	r.mu.Lock()
	delete(r.entries[idx.TypeName], name)
	r.mu.Unlock()

	observability.RegistryOpsTotal.WithLabelValues(idx.TypeName, "remove").Inc()
	log.Info("removed search index", "type", idx.TypeName, "name", name)
	return nil
}

// LoadAll populates the registry from persisted metadata for the given
// types, tentatively marking every loaded index valid; the caller (the
// Index Manager) is responsible for correcting this against actual
// search-backend existence.
func (r *Registry) LoadAll(ctx context.Context, typeNames []string) error {
	rows, err := r.sparql.SudoQuery(ctx, selectAllMetadataQuery(typeNames))
	if err != nil {
		return fmt.Errorf("registry: load metadata: %w", err)
	}

	for _, row := range rows {
		uri := row["uri"].Value
		typeName := row["objectType"].Value
		name := row["indexName"].Value

		allowed, err := loadGroups(ctx, r.sparql, uri, predHasAllowedGroup)
		if err != nil {
			return fmt.Errorf("registry: load allowed groups for %s: %w", uri, err)
		}
		used, err := loadGroups(ctx, r.sparql, uri, predHasUsedGroup)
		if err != nil {
			return fmt.Errorf("registry: load used groups for %s: %w", uri, err)
		}

		r.Put(&SearchIndex{
			URI:           uri,
			Name:          name,
			TypeName:      typeName,
			AllowedGroups: allowed,
			UsedGroups:    used,
			Status:        StatusValid,
		})
	}
	return nil
}

// PurgeAll removes every persisted index metadata entry for the given
// types and clears the in-memory map; it does not touch the
// search-backend indexes, which the caller must drop separately.
func (r *Registry) PurgeAll(ctx context.Context, typeNames []string) error {
	rows, err := r.sparql.SudoQuery(ctx, selectAllMetadataQuery(typeNames))
	if err != nil {
		return fmt.Errorf("registry: purge: load metadata: %w", err)
	}

	for _, row := range rows {
		if err := r.sparql.SudoUpdate(ctx, deleteMetadataQuery(row["uri"].Value)); err != nil {
			return fmt.Errorf("registry: purge %s: %w", row["uri"].Value, err)
		}
	}

	r.mu.Lock()
	r.entries = make(map[string]map[string]*SearchIndex)
	r.mu.Unlock()
	return nil
}
