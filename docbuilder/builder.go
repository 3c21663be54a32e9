// Package docbuilder projects an RDF resource into the flat document
// shape the search backend indexes, following each index definition's
// property configuration.
package docbuilder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nbittich/mu-search/config"
	"github.com/nbittich/mu-search/rdfterm"
	"github.com/nbittich/mu-search/search"
	"github.com/nbittich/mu-search/sparql"
	"github.com/nbittich/mu-search/textextract"
)

// Options carries the collaborators and limits the builder needs beyond
// the index definition itself.
type Options struct {
	Client             sparql.Client
	Extractor          textextract.Extractor
	AttachmentPathBase string
	AttachmentMaxBytes int64
}

// Build materialises uri's projected document for def. For a composite
// index, it first resolves uri's actual RDF types and smart-merges the
// sub-documents of every matching sub-index.
func Build(ctx context.Context, uri string, def *config.IndexDefinition, opts Options) (search.Document, error) {
	if def.IsComposite() {
		return buildComposite(ctx, uri, def, opts)
	}

	fields, err := materializeProperties(ctx, uri, def.Properties, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBuildFailed, uri, err)
	}
	return search.Document(fields), nil
}

func buildComposite(ctx context.Context, uri string, def *config.IndexDefinition, opts Options) (search.Document, error) {
	types, err := resourceTypes(ctx, opts.Client, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: resolve rdf types: %w", ErrBuildFailed, uri, err)
	}
	typeSet := make(map[string]struct{}, len(types))
	for _, t := range types {
		typeSet[t] = struct{}{}
	}

	var merged search.Document
	for _, sub := range def.CompositeTypes {
		if !intersects(sub.RDFTypes, typeSet) {
			continue
		}

		fields, err := materializeProperties(ctx, uri, sub.Properties, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: sub-index %s: %w", ErrBuildFailed, uri, sub.Name, err)
		}

		sub := search.Document(fields)
		if merged == nil {
			merged = sub
			continue
		}
		merged, err = smartMerge(merged, sub)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBuildFailed, uri, err)
		}
	}
	if merged == nil {
		merged = search.Document{}
	}
	return merged, nil
}

func intersects(rdfTypes []string, have map[string]struct{}) bool {
	for _, t := range rdfTypes {
		if _, ok := have[t]; ok {
			return true
		}
	}
	return false
}

func resourceTypes(ctx context.Context, client sparql.Client, uri string) ([]string, error) {
	rows, err := client.Select(ctx, fmt.Sprintf("SELECT DISTINCT ?type WHERE { <%s> a ?type . }", uri))
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(rows))
	for _, row := range rows {
		if term, ok := row["type"]; ok {
			types = append(types, term.Value)
		}
	}
	return types, nil
}

// materializeProperties runs one CONSTRUCT round-trip for every property
// in props and projects the grouped results into document fields,
// recursing for nested properties and resolving attachments inline.
func materializeProperties(ctx context.Context, uri string, props map[string]*config.PropertyDefinition, opts Options) (map[string]interface{}, error) {
	if len(props) == 0 {
		return map[string]interface{}{}, nil
	}

	triples, err := opts.Client.Construct(ctx, buildPropertyQuery(uri, props))
	if err != nil {
		return nil, fmt.Errorf("materialize properties: %w", err)
	}

	grouped := make(map[string][]rdfterm.Term)
	for _, t := range triples {
		name := propertyNameFromSubject(t.Subject.Value, props)
		if name == "" {
			continue
		}
		grouped[name] = append(grouped[name], t.Object)
	}

	out := make(map[string]interface{}, len(props))
	for name, def := range props {
		values := grouped[name]
		field, err := projectProperty(ctx, def, values, opts)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		out[name] = field
	}
	return out, nil
}

// propertyNameFromSubject reverses the synthetic ext:<safe-name> subject
// back to the configured property name. Safe names are unique within
// props in every realistic configuration; a collision degrades to the
// first match, never a crash.
func propertyNameFromSubject(subject string, props map[string]*config.PropertyDefinition) string {
	local := strings.TrimPrefix(subject, extNS)
	for name := range props {
		if sparqlSafeName(name) == local {
			return name
		}
	}
	return ""
}

func projectProperty(ctx context.Context, def *config.PropertyDefinition, values []rdfterm.Term, opts Options) (interface{}, error) {
	switch def.Type {
	case config.PropertyLanguageString:
		return projectLanguageString(values), nil
	case config.PropertyAttachment:
		return projectAttachments(ctx, values, opts)
	case config.PropertyNested:
		return projectNested(ctx, def, values, opts)
	default: // PropertySimple, PropertyLambert72
		return projectSimple(values)
	}
}

func projectSimple(values []rdfterm.Term) (interface{}, error) {
	scalars := make([]interface{}, 0, len(values))
	for _, v := range values {
		scalar, err := rdfterm.ScalarValue(v)
		if err != nil {
			return nil, err
		}
		scalars = append(scalars, scalar)
	}
	return denumerate(scalars), nil
}

func projectLanguageString(values []rdfterm.Term) map[string][]string {
	out := map[string][]string{}
	for _, v := range values {
		key := v.Lang
		if key == "" {
			key = "default"
		}
		out[key] = append(out[key], v.Value)
	}
	return out
}

func projectNested(ctx context.Context, def *config.PropertyDefinition, values []rdfterm.Term, opts Options) ([]interface{}, error) {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		fields, err := materializeProperties(ctx, v.Value, def.SubProperties, opts)
		if err != nil {
			return nil, err
		}
		fields["uri"] = v.Value
		out = append(out, fields)
	}
	return out, nil
}

const sharePrefix = "share://"

func projectAttachments(ctx context.Context, values []rdfterm.Term, opts Options) ([]interface{}, error) {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		content, err := extractAttachment(ctx, v.Value, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{"content": content})
	}
	return out, nil
}

func extractAttachment(ctx context.Context, uri string, opts Options) (interface{}, error) {
	if !strings.HasPrefix(uri, sharePrefix) {
		return nil, nil
	}
	rel := strings.TrimPrefix(uri, sharePrefix)
	path := filepath.Join(opts.AttachmentPathBase, rel)

	info, err := os.Stat(path)
	if err != nil {
		return nil, nil
	}
	if opts.AttachmentMaxBytes > 0 && info.Size() > opts.AttachmentMaxBytes {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}

	if opts.Extractor == nil || len(raw) == 0 {
		return nil, nil
	}
	text, err := opts.Extractor.Extract(ctx, raw, contentTypeFor(path))
	if err != nil {
		return nil, nil
	}
	return text, nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "text/html"
	case ".xml":
		return "application/xml"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// denumerate applies the length-0/1/>1 -> null/scalar/array collapse
// rule shared by every non-language-string, non-attachment, non-nested
// property.
func denumerate(values []interface{}) interface{} {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return values
	}
}
