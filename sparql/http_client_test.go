package sparql

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Select(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, SudoHeaderValue, r.Header.Get(MuAuthGroupsHeader))
		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write([]byte(`{"results":{"bindings":[{"title":{"type":"literal","value":"hello"}}]}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, srv.URL, SudoHeaderValue, nil)
	rows, err := client.Select(context.Background(), "SELECT ?title WHERE {}")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "hello", rows[0]["title"].Value)
}

func TestHTTPClient_Ask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"boolean": true}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, srv.URL, SudoHeaderValue, nil)
	ok, err := client.Ask(context.Background(), "ASK {}")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHTTPClient_Construct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"http://example.org/ext/title":{"http://example.org/ext/value":[{"type":"literal","value":"hello"}]}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, srv.URL, SudoHeaderValue, nil)
	triples, err := client.Construct(context.Background(), "CONSTRUCT {} WHERE {}")
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.Equal(t, "http://example.org/ext/title", triples[0].Subject.Value)
	assert.Equal(t, "hello", triples[0].Object.Value)
}

func TestHTTPClient_Update_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, srv.URL, SudoHeaderValue, nil)
	err := client.Update(context.Background(), "INSERT DATA {}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
