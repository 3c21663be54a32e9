package indexmanager

import (
	"context"
	"fmt"

	"github.com/nbittich/mu-search/authz"
	"github.com/nbittich/mu-search/registry"
)

// FetchIndexes resolves the set of Search Indexes a caller with
// allowedGroups should query for typeName: the minimal-cover subset of
// eager indexes whose own allowed groups are covered by the caller's,
// or - if no eager subset covers the caller - a single freshly ensured
// non-eager index scoped exactly to allowedGroups. If forceUpdate is
// set, every returned index is invalidated before being handed back,
// and any index left invalid after that (by this call or by prior
// drift) is synchronously rebuilt. A failed rebuild is logged and the
// index is still returned, so callers search stale data rather than
// getting no index set.
func (m *Manager) FetchIndexes(ctx context.Context, typeName string, allowedGroups authz.AllowedGroups, forceUpdate bool) ([]*registry.SearchIndex, error) {
	def := m.cfg.ByName(typeName)
	if def == nil {
		return nil, fmt.Errorf("indexmanager: unknown type %q", typeName)
	}

	candidates := minimalCover(eagerSubset(m.registry.FindForType(typeName), allowedGroups))

	var result []*registry.SearchIndex
	if coversTarget(candidates, allowedGroups) {
		result = candidates
	} else {
		idx, err := m.Ensure(ctx, typeName, allowedGroups, allowedGroups, false)
		if err != nil {
			return nil, err
		}
		result = []*registry.SearchIndex{idx}
	}

	if forceUpdate {
		for _, idx := range result {
			m.Invalidate(idx)
		}
	}

	for _, idx := range result {
		if idx.Status == registry.StatusInvalid {
			if err := m.Update(ctx, idx, def); err != nil {
				log.Warn("index still invalid after update; returning stale index", "name", idx.Name, "error", err)
			}
		}
	}

	return result, nil
}

// FetchAll returns every registered Search Index for typeName,
// unfiltered by allowed groups, for privileged/administrative callers.
func (m *Manager) FetchAll(typeName string) []*registry.SearchIndex {
	return m.registry.FindForType(typeName)
}

// eagerSubset returns the eager indexes among candidates whose allowed
// groups are structurally a subset of target.
func eagerSubset(candidates []*registry.SearchIndex, target authz.AllowedGroups) []*registry.SearchIndex {
	var out []*registry.SearchIndex
	for _, idx := range candidates {
		if idx.IsEager && authz.Subset(idx.AllowedGroups, target) {
			out = append(out, idx)
		}
	}
	return out
}

// minimalCover discards any index whose allowed groups are structurally
// subsumed by another retained index's, leaving the smallest set that
// still covers the same ground.
func minimalCover(candidates []*registry.SearchIndex) []*registry.SearchIndex {
	var out []*registry.SearchIndex
	for i, idx := range candidates {
		subsumed := false
		for j, other := range candidates {
			if i == j {
				continue
			}
			if !authz.Equal(idx.AllowedGroups, other.AllowedGroups) && authz.Subset(idx.AllowedGroups, other.AllowedGroups) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			out = append(out, idx)
		}
	}
	return out
}

// coversTarget reports whether the union of candidates' allowed groups
// covers every group in target.
func coversTarget(candidates []*registry.SearchIndex, target authz.AllowedGroups) bool {
	if len(candidates) == 0 {
		return len(target) == 0
	}
	groups := make([]authz.AllowedGroups, len(candidates))
	for i, idx := range candidates {
		groups[i] = idx.AllowedGroups
	}
	return authz.Covers(groups, target)
}
