package indexmanager

import (
	"context"
	"time"

	"github.com/nbittich/mu-search/observability"
	"github.com/nbittich/mu-search/registry"
)

// RunReconciliation periodically re-checks every eager index's backend
// index against the search backend's actual state, re-ensuring and
// rebuilding any that have drifted away (deleted out-of-band, or never
// materialised). It blocks until ctx is cancelled.
func (m *Manager) RunReconciliation(ctx context.Context) {
	interval := time.Duration(m.cfg.ReconcileIntervalSec) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.reconcileOnce(ctx)
		}
	}
}

func (m *Manager) reconcileOnce(ctx context.Context) {
	for _, idx := range m.registry.FindAll() {
		if !idx.IsEager || idx.Status == registry.StatusDeleted {
			continue
		}

		exists, err := m.backend.IndexExists(ctx, idx.Name)
		if err != nil {
			log.Warn("reconcile: check backend index failed", "name", idx.Name, "error", err)
			continue
		}
		if exists && idx.Status == registry.StatusValid {
			continue
		}

		def := m.cfg.ByName(idx.TypeName)
		if def == nil {
			continue
		}

		if !exists {
			if err := m.ensureBackendIndex(ctx, idx, def); err != nil {
				log.Warn("reconcile: recreate backend index failed", "name", idx.Name, "error", err)
				continue
			}
		}

		if err := m.Update(ctx, idx, def); err != nil {
			log.Warn("reconcile: rebuild failed", "name", idx.Name, "error", err)
			continue
		}

		observability.ReindexTasksTotal.WithLabelValues(idx.TypeName, "reconcile").Inc()
	}
}
