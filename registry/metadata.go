package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nbittich/mu-search/authz"
	"github.com/nbittich/mu-search/rdfterm"
	"github.com/nbittich/mu-search/sparql"
)

// Predicates and the named graph used to persist Search Index metadata.
// Reads and writes both run under the privileged ("sudo") authorization
// context, bypassing row-level filtering for this reserved graph.
const (
	MetadataGraph = "http://mu.semte.ch/graphs/search-index-metadata"

	classElasticsearchIndex = "http://mu.semte.ch/vocabularies/ext/search/ElasticsearchIndex"
	predUUID                = "http://mu.semte.ch/vocabularies/core/uuid"
	predObjectType          = "http://mu.semte.ch/vocabularies/ext/search/objectType"
	predHasAllowedGroup     = "http://mu.semte.ch/vocabularies/ext/search/hasAllowedGroup"
	predHasUsedGroup        = "http://mu.semte.ch/vocabularies/ext/search/hasUsedGroup"
	predIndexName           = "http://mu.semte.ch/vocabularies/ext/search/indexName"
)

func insertMetadataQuery(idx *SearchIndex, uuid string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s> a <%s> ;\n", idx.URI, classElasticsearchIndex)
	fmt.Fprintf(&b, "  <%s> %s ;\n", predUUID, rdfterm.Literal(uuid).SPARQL())
	fmt.Fprintf(&b, "  <%s> %s ;\n", predObjectType, rdfterm.Literal(idx.TypeName).SPARQL())
	for _, g := range authz.Canonical(idx.AllowedGroups) {
		fmt.Fprintf(&b, "  <%s> %s ;\n", predHasAllowedGroup, rdfterm.Literal(groupJSON(g)).SPARQL())
	}
	for _, g := range authz.Canonical(idx.UsedGroups) {
		fmt.Fprintf(&b, "  <%s> %s ;\n", predHasUsedGroup, rdfterm.Literal(groupJSON(g)).SPARQL())
	}
	fmt.Fprintf(&b, "  <%s> %s .\n", predIndexName, rdfterm.Literal(idx.Name).SPARQL())

	return fmt.Sprintf("INSERT DATA { GRAPH <%s> {\n%s} }", MetadataGraph, b.String())
}

func deleteMetadataQuery(uri string) string {
	return fmt.Sprintf(
		"DELETE WHERE { GRAPH <%s> { <%s> ?p ?o . } }",
		MetadataGraph, uri,
	)
}

func selectAllMetadataQuery(typeNames []string) string {
	var filter string
	if len(typeNames) > 0 {
		quoted := make([]string, len(typeNames))
		for i, t := range typeNames {
			quoted[i] = rdfterm.Literal(t).SPARQL()
		}
		filter = fmt.Sprintf("FILTER(?objectType IN (%s))", strings.Join(quoted, ", "))
	}

	return fmt.Sprintf(`SELECT ?uri ?uuid ?objectType ?indexName
WHERE {
  GRAPH <%s> {
    ?uri a <%s> ;
      <%s> ?uuid ;
      <%s> ?objectType ;
      <%s> ?indexName .
    %s
  }
}`, MetadataGraph, classElasticsearchIndex, predUUID, predObjectType, predIndexName, filter)
}

func selectGroupsQuery(uri, pred string) string {
	return fmt.Sprintf(`SELECT ?value WHERE { GRAPH <%s> { <%s> <%s> ?value . } }`, MetadataGraph, uri, pred)
}

func groupJSON(g authz.Group) string {
	b, _ := json.Marshal(g)
	return string(b)
}

func parseGroupJSON(raw string) (authz.Group, error) {
	var g authz.Group
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return authz.Group{}, fmt.Errorf("parse persisted group %q: %w", raw, err)
	}
	return g, nil
}

// loadGroups fetches the allowed/used group literals persisted for uri
// under predicate pred.
func loadGroups(ctx context.Context, svc sparql.Service, uri, pred string) (authz.AllowedGroups, error) {
	rows, err := svc.SudoQuery(ctx, selectGroupsQuery(uri, pred))
	if err != nil {
		return nil, err
	}
	groups := make(authz.AllowedGroups, 0, len(rows))
	for _, row := range rows {
		term, ok := row["value"]
		if !ok {
			continue
		}
		g, err := parseGroupJSON(term.Value)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}
