// Package sparql provides the SPARQL collaborator the indexing control
// plane depends on: a scoped, authorization-bound query/update client
// and a pool that hands such clients out for the lifetime of one
// closure.
package sparql

import (
	"context"

	"github.com/nbittich/mu-search/authz"
	"github.com/nbittich/mu-search/rdfterm"
)

// Row is one SELECT/ASK result row: variable name to bound term.
type Row map[string]rdfterm.Term

// Triple is one statement produced by a CONSTRUCT query.
type Triple struct {
	Subject   rdfterm.Term
	Predicate rdfterm.Term
	Object    rdfterm.Term
}

// Client executes queries and updates under a single, already-resolved
// authorization context.
type Client interface {
	Select(ctx context.Context, sparql string) ([]Row, error)
	Construct(ctx context.Context, sparql string) ([]Triple, error)
	Ask(ctx context.Context, sparql string) (bool, error)
	Update(ctx context.Context, sparql string) error
}

// Service is the authorization-aware SPARQL collaborator the core
// consumes: scoped acquisition of an authorized client, plus privileged
// ("sudo") helpers that bypass row-level filtering for metadata access.
type Service interface {
	WithAuthorization(ctx context.Context, allowedGroups authz.AllowedGroups, fn func(Client) error) error
	SudoQuery(ctx context.Context, sparql string) ([]Row, error)
	SudoUpdate(ctx context.Context, sparql string) error
}
