package docbuilder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nbittich/mu-search/config"
)

const extNS = "http://mu.semte.ch/vocabularies/ext/"

// pathExpr renders a property path as a SPARQL 1.1 property path
// expression, preserving each element's declared direction.
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

// buildPropertyQuery assembles the single CONSTRUCT query that
// materialises every property in props for the resource uri: one UNION
// branch per property, each binding its path's result to a synthetic
// `ext:<name>` subject so the response can be grouped back into property
// names without a second round-trip.
func buildPropertyQuery(uri string, props map[string]*config.PropertyDefinition) string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	var construct, where strings.Builder
	for i, name := range names {
		def := props[name]
		variable := fmt.Sprintf("?v%d", i)
		construct.WriteString(fmt.Sprintf("ext:%s ext:value %s .\n", sparqlSafeName(name), variable))

		branch := fmt.Sprintf("<%s> %s %s .", uri, pathExpr(def.Path), variable)
		if i > 0 {
			where.WriteString("UNION\n")
		}
		where.WriteString("{ " + branch + " }\n")
	}

	return fmt.Sprintf("PREFIX ext: <%s>\nCONSTRUCT {\n%s} WHERE {\n%s}", extNS, construct.String(), where.String())
}

// sparqlSafeName maps a property name to a legal local name for the
// synthetic ext: subject; property names are operator-controlled
// configuration values, not user input, so this only guards against
// characters that would break the local-name grammar.
func sparqlSafeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
