package docbuilder

import (
	"context"
	"fmt"

	"github.com/nbittich/mu-search/search"
	"github.com/nbittich/mu-search/sparql"
)

// muCoreUUIDPredicate mirrors config's synthetic uuid property path; it
// is duplicated here rather than imported so ResourceUUID can run a
// standalone lookup without pulling in an index definition.
const muCoreUUIDPredicate = "http://mu.semte.ch/vocabularies/core/uuid"

// DocumentID extracts the uuid field a built Document carries as its
// search-backend identity. The uuid property is injected into every
// index and composite sub-index definition, so the field is set whenever
// the resource has a mu:uuid; a missing, nil or non-string field is an
// error.
func DocumentID(doc search.Document) (string, error) {
	v, ok := doc["uuid"]
	if !ok || v == nil {
		return "", fmt.Errorf("document has no uuid field")
	}
	id, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("document uuid field is %T, not a string", v)
	}
	return id, nil
}

// ResourceUUID looks up uri's mu:uuid directly, for callers that need a
// document's identity without building the document itself (a delta
// tells them a resource no longer qualifies for an index, so there is
// nothing to build, but the stale document still needs to be deleted by
// its uuid).
func ResourceUUID(ctx context.Context, client sparql.Client, uri string) (string, error) {
	rows, err := client.Select(ctx, fmt.Sprintf("SELECT ?uuid WHERE { <%s> <%s> ?uuid . }", uri, muCoreUUIDPredicate))
	if err != nil {
		return "", fmt.Errorf("resource uuid %s: %w", uri, err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("resource uuid %s: not found", uri)
	}
	term, ok := rows[0]["uuid"]
	if !ok {
		return "", fmt.Errorf("resource uuid %s: not found", uri)
	}
	return term.Value, nil
}
