package indexmanager

import (
	"context"
	"fmt"

	"github.com/nbittich/mu-search/authz"
	"github.com/nbittich/mu-search/config"
	"github.com/nbittich/mu-search/registry"
)

// Initialize loads persisted index metadata, optionally purges it, and
// ensures + synchronously rebuilds the eagerly-indexed (group, type)
// tuples declared in configuration.
func (m *Manager) Initialize(ctx context.Context) error {
	typeNames := make([]string, len(m.cfg.Types))
	for i, def := range m.cfg.Types {
		typeNames[i] = def.Name
	}

	if err := m.registry.LoadAll(ctx, typeNames); err != nil {
		return fmt.Errorf("indexmanager: initialize: load metadata: %w", err)
	}

	if !m.cfg.PersistIndexes {
		for _, idx := range m.registry.FindAll() {
			if err := m.backend.DeleteIndex(ctx, idx.Name); err != nil {
				return fmt.Errorf("indexmanager: initialize: drop backend index %s: %w", idx.Name, err)
			}
		}
		if err := m.registry.PurgeAll(ctx, typeNames); err != nil {
			return fmt.Errorf("indexmanager: initialize: purge metadata: %w", err)
		}
	}

	for _, groupTuple := range m.cfg.EagerIndexingGroups {
		allowed := toAllowedGroups(groupTuple)
		for _, def := range m.cfg.Types {
			idx, err := m.Ensure(ctx, def.Name, allowed, allowed, true)
			if err != nil {
				log.Warn("eager ensure failed at startup", "type", def.Name, "error", err)
				continue
			}
			if idx.Status != registry.StatusInvalid {
				continue
			}
			if err := m.Update(ctx, idx, def); err != nil {
				log.Warn("eager build failed at startup", "type", def.Name, "index", idx.Name, "error", err)
			}
		}
	}

	return nil
}

func toAllowedGroups(groups []config.Group) authz.AllowedGroups {
	out := make(authz.AllowedGroups, len(groups))
	for i, g := range groups {
		out[i] = authz.Group{Name: g.Name, Variables: g.Variables}
	}
	return out
}
