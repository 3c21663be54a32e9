package delta

import (
	"fmt"
	"strings"

	"github.com/nbittich/mu-search/config"
	"github.com/nbittich/mu-search/rdfterm"
)

// pathExpr renders a slice of path elements as a SPARQL 1.1 property
// path expression, an empty slice rendering to the empty string.
func pathExpr(path []config.Predicate) string {
	parts := make([]string, len(path))
	for i, p := range path {
		if p.IsInverse() {
			parts[i] = "^<" + p.IRI() + ">"
		} else {
			parts[i] = "<" + p.IRI() + ">"
		}
	}
	return strings.Join(parts, "/")
}

func typeFilter(relatedTypes []string) string {
	quoted := make([]string, len(relatedTypes))
	for i, t := range relatedTypes {
		quoted[i] = "<" + t + ">"
	}
	return strings.Join(quoted, ", ")
}

// rootSubjectQuery builds the SPARQL query resolving the root
// subject(s) whose projected document, under ref, depends on triple.
// rootward and leafward are the nodes on either side of ref's predicate
// occurrence, already oriented by direction (see dispatch.go).
func rootSubjectQuery(relatedTypes []string, ref config.PathRef, triple Triple, rootward, leafward rdfterm.Term) string {
	var where strings.Builder
	where.WriteString("?s a ?type .\n")
	where.WriteString(fmt.Sprintf("FILTER(?type IN (%s)) .\n", typeFilter(relatedTypes)))

	if ref.AtStart() {
		where.WriteString(fmt.Sprintf("BIND(%s AS ?s) .\n", rootward.SPARQL()))
	} else {
		where.WriteString(fmt.Sprintf("?s %s %s .\n", pathExpr(ref.Prefix()), rootward.SPARQL()))
	}

	if triple.IsAddition {
		where.WriteString(fmt.Sprintf("%s %s %s .\n", triple.Subject.SPARQL(), triple.Predicate.SPARQL(), triple.Object.SPARQL()))

		suffix := ref.Suffix()
		if len(suffix) > 0 {
			where.WriteString(fmt.Sprintf("%s %s ?end .\n", leafward.SPARQL(), pathExpr(suffix)))
		}
	}

	return fmt.Sprintf("SELECT DISTINCT ?s WHERE {\n%s}", where.String())
}
