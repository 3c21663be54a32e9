package indexbuilder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nbittich/mu-search/authz"
	"github.com/nbittich/mu-search/config"
	"github.com/nbittich/mu-search/registry"
	"github.com/nbittich/mu-search/search"
	"github.com/nbittich/mu-search/sparql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	upserts map[string]search.Document
}

func (f *fakeBackend) CreateIndex(context.Context, string, map[string]interface{}, map[string]interface{}) error {
	return nil
}
func (f *fakeBackend) IndexExists(context.Context, string) (bool, error)  { return true, nil }
func (f *fakeBackend) DeleteIndex(context.Context, string) error         { return nil }
func (f *fakeBackend) ClearIndex(context.Context, string) error          { return nil }
func (f *fakeBackend) RefreshIndex(context.Context, string) error        { return nil }
func (f *fakeBackend) InsertDocument(context.Context, string, string, search.Document) error {
	return nil
}
func (f *fakeBackend) UpsertDocument(_ context.Context, _, id string, doc search.Document) error {
	f.upserts[id] = doc
	return nil
}
func (f *fakeBackend) DeleteDocument(context.Context, string, string) error { return nil }
func (f *fakeBackend) Bulk(context.Context, string, []search.BulkOp) error  { return nil }
func (f *fakeBackend) Search(context.Context, string, map[string]interface{}) (search.SearchResponse, error) {
	return search.SearchResponse{}, nil
}
func (f *fakeBackend) Count(context.Context, string, map[string]interface{}) (int64, error) {
	return 0, nil
}
func (f *fakeBackend) UploadAttachment(context.Context, string, string, string, search.Document) error {
	return nil
}

func TestBuilder_Build_IndexesOneResource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		query := r.Form.Get("query")

		switch {
		case r.Header.Get("Accept") == "application/rdf+json":
			w.Header().Set("Content-Type", "application/rdf+json")
			_, _ = w.Write([]byte(`{
				"http://mu.semte.ch/vocabularies/ext/title": {
					"http://mu.semte.ch/vocabularies/ext/value": [{"type":"literal","value":"Dune"}]
				},
				"http://mu.semte.ch/vocabularies/ext/uuid": {
					"http://mu.semte.ch/vocabularies/ext/value": [{"type":"literal","value":"book-1-uuid"}]
				}
			}`))
		case strings.Contains(query, "COUNT"):
			w.Header().Set("Content-Type", "application/sparql-results+json")
			_, _ = w.Write([]byte(`{"results":{"bindings":[{"count":{"type":"literal","value":"1"}}]}}`))
		default:
			w.Header().Set("Content-Type", "application/sparql-results+json")
			_, _ = w.Write([]byte(`{"results":{"bindings":[{"s":{"type":"uri","value":"http://example.org/book/1"}}]}}`))
		}
	}))
	defer srv.Close()

	pool := sparql.NewPool(srv.URL, srv.URL, 2)
	backend := &fakeBackend{upserts: map[string]search.Document{}}
	cfg := &config.Config{BatchSize: 10, NumberOfThreads: 2}

	b := New(pool, backend, nil, cfg)

	def := &config.IndexDefinition{
		Name:     "books",
		RDFTypes: []string{"http://example.org/Book"},
		Properties: map[string]*config.PropertyDefinition{
			"title": {Name: "title", Type: config.PropertySimple, Path: []config.Predicate{"http://example.org/title"}},
			"uuid":  {Name: "uuid", Type: config.PropertySimple, Path: []config.Predicate{"http://mu.semte.ch/vocabularies/core/uuid"}},
		},
	}
	idx := &registry.SearchIndex{
		Name:          "books-idx",
		TypeName:      "books",
		AllowedGroups: authz.AllowedGroups{{Name: "reader"}},
	}

	result, err := b.Build(context.Background(), idx, def)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Indexed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, "Dune", backend.upserts["book-1-uuid"]["title"])
}
