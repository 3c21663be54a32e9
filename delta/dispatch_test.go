package delta

import (
	"context"
	"testing"

	"github.com/nbittich/mu-search/authz"
	"github.com/nbittich/mu-search/config"
	"github.com/nbittich/mu-search/rdfterm"
	"github.com/nbittich/mu-search/sparql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSparqlService struct {
	queries []string
	rows    []sparql.Row
}

func (f *fakeSparqlService) WithAuthorization(context.Context, authz.AllowedGroups, func(sparql.Client) error) error {
	return nil
}
func (f *fakeSparqlService) SudoQuery(_ context.Context, q string) ([]sparql.Row, error) {
	f.queries = append(f.queries, q)
	return f.rows, nil
}
func (f *fakeSparqlService) SudoUpdate(context.Context, string) error { return nil }

type fakeSink struct {
	enqueued [][2]string
}

func (s *fakeSink) Enqueue(subject, typeName string) {
	s.enqueued = append(s.enqueued, [2]string{subject, typeName})
}

func booksConfig() *config.Config {
	return &config.Config{
		Types: []*config.IndexDefinition{{
			Name:     "books",
			RDFTypes: []string{"http://example.org/Book"},
			Properties: map[string]*config.PropertyDefinition{
				"title": {Name: "title", Type: config.PropertySimple, Path: []config.Predicate{"http://purl.org/dc/terms/title"}},
				"authorName": {
					Name: "authorName", Type: config.PropertySimple,
					Path: []config.Predicate{"http://example.org/author", "http://example.org/name"},
				},
			},
		}},
	}
}

func TestDispatch_RDFTypeInsertion_EnqueuesSubjectDirectly(t *testing.T) {
	svc := &fakeSparqlService{}
	sink := &fakeSink{}
	d := NewDispatcher(booksConfig(), svc, sink)

	batch := DeltaBatch{Triples: []Triple{{
		Subject:    rdfterm.URI("http://example.org/book/1"),
		Predicate:  rdfterm.URI(rdfterm.RDFTypePredicate),
		Object:     rdfterm.URI("http://example.org/Book"),
		IsAddition: true,
	}}}

	d.Dispatch(context.Background(), batch)

	require.Len(t, sink.enqueued, 1)
	assert.Equal(t, [2]string{"http://example.org/book/1", "books"}, sink.enqueued[0])
	assert.Empty(t, svc.queries)
}

func TestDispatch_PropertyAtStart_BindsSubjectDirectly(t *testing.T) {
	svc := &fakeSparqlService{rows: []sparql.Row{{"s": rdfterm.URI("http://example.org/book/1")}}}
	sink := &fakeSink{}
	d := NewDispatcher(booksConfig(), svc, sink)

	batch := DeltaBatch{Triples: []Triple{{
		Subject:    rdfterm.URI("http://example.org/book/1"),
		Predicate:  rdfterm.URI("http://purl.org/dc/terms/title"),
		Object:     rdfterm.Literal("Dune"),
		IsAddition: true,
	}}}

	d.Dispatch(context.Background(), batch)

	require.Len(t, sink.enqueued, 1)
	assert.Equal(t, "books", sink.enqueued[0][1])
	require.Len(t, svc.queries, 1)
	assert.Contains(t, svc.queries[0], "BIND(<http://example.org/book/1> AS ?s)")
}

func TestDispatch_PropertyMidPath_WalksPrefix(t *testing.T) {
	svc := &fakeSparqlService{rows: []sparql.Row{{"s": rdfterm.URI("http://example.org/book/1")}}}
	sink := &fakeSink{}
	d := NewDispatcher(booksConfig(), svc, sink)

	batch := DeltaBatch{Triples: []Triple{{
		Subject:    rdfterm.URI("http://example.org/person/1"),
		Predicate:  rdfterm.URI("http://example.org/name"),
		Object:     rdfterm.Literal("Frank Herbert"),
		IsAddition: true,
	}}}

	d.Dispatch(context.Background(), batch)

	require.Len(t, sink.enqueued, 1)
	require.Len(t, svc.queries, 1)
	assert.Contains(t, svc.queries[0], "?s <http://example.org/author> <http://example.org/person/1>")
}

func TestDispatch_UnconfiguredPredicate_IsSkippedSilently(t *testing.T) {
	svc := &fakeSparqlService{}
	sink := &fakeSink{}
	d := NewDispatcher(booksConfig(), svc, sink)

	batch := DeltaBatch{Triples: []Triple{{
		Subject:    rdfterm.URI("http://example.org/book/1"),
		Predicate:  rdfterm.URI("http://example.org/unrelated"),
		Object:     rdfterm.Literal("noise"),
		IsAddition: true,
	}}}

	d.Dispatch(context.Background(), batch)

	assert.Empty(t, sink.enqueued)
	assert.Empty(t, svc.queries)
}

func TestDispatch_NonTerminalLiteralObject_IsPruned(t *testing.T) {
	cfg := &config.Config{
		Types: []*config.IndexDefinition{{
			Name:     "books",
			RDFTypes: []string{"http://example.org/Book"},
			Properties: map[string]*config.PropertyDefinition{
				"authorName": {
					Name: "authorName", Type: config.PropertySimple,
					Path: []config.Predicate{"http://example.org/author", "http://example.org/name"},
				},
			},
		}},
	}
	svc := &fakeSparqlService{}
	sink := &fakeSink{}
	d := NewDispatcher(cfg, svc, sink)

	// "http://example.org/author" sits at position 0 (non-terminal); a
	// literal object there cannot have an outgoing "name" edge, so this
	// occurrence is pruned without a query.
	batch := DeltaBatch{Triples: []Triple{{
		Subject:    rdfterm.URI("http://example.org/book/1"),
		Predicate:  rdfterm.URI("http://example.org/author"),
		Object:     rdfterm.Literal("not a resource"),
		IsAddition: true,
	}}}

	d.Dispatch(context.Background(), batch)

	assert.Empty(t, sink.enqueued)
	assert.Empty(t, svc.queries)
}

func TestDispatch_DeletionOmitsTripleAndSuffixFromQuery(t *testing.T) {
	svc := &fakeSparqlService{rows: []sparql.Row{{"s": rdfterm.URI("http://example.org/person/1")}}}
	sink := &fakeSink{}
	d := NewDispatcher(booksConfig(), svc, sink)

	batch := DeltaBatch{Triples: []Triple{{
		Subject:    rdfterm.URI("http://example.org/person/1"),
		Predicate:  rdfterm.URI("http://example.org/name"),
		Object:     rdfterm.Literal("Frank Herbert"),
		IsAddition: false,
	}}}

	d.Dispatch(context.Background(), batch)

	require.Len(t, svc.queries, 1)
	assert.NotContains(t, svc.queries[0], "Frank Herbert")
}
