// Package registry persists and looks up Search Index metadata: the
// keyed two-level map of live index instances, backed by a reserved
// metadata graph in the triplestore.
package registry

import "github.com/nbittich/mu-search/authz"

// Status is a Search Index's lifecycle state.
type Status string

const (
	StatusValid    Status = "valid"
	StatusInvalid  Status = "invalid"
	StatusUpdating Status = "updating"
	StatusDeleted  Status = "deleted"
)

// SearchIndex is a live, named projection instance: one Elasticsearch
// index scoped to a type and an authorization context. Its per-instance
// mutex is held externally, keyed by Name, rather than embedded here
// (see indexmanager) so the registry's own map mutex never has to nest
// inside a document-write critical section.
type SearchIndex struct {
	URI           string
	Name          string
	TypeName      string
	AllowedGroups authz.AllowedGroups
	UsedGroups    authz.AllowedGroups
	IsEager       bool
	Status        Status
}
