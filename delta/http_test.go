package delta

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_AcceptsValidPayload(t *testing.T) {
	q := NewQueue()
	srv := httptest.NewServer(Handler(q))
	defer srv.Close()

	body := `[{"inserts":[{"subject":{"value":"http://example.org/book/1"},"predicate":{"value":"http://purl.org/dc/terms/title"},"object":{"value":"Dune","type":"literal"}}],"deletes":[]}]`

	resp, err := http.Post(srv.URL+"/delta", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.True(t, q.PendingMessages())
}

func TestHandler_RejectsMalformedPayload(t *testing.T) {
	q := NewQueue()
	srv := httptest.NewServer(Handler(q))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/delta", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, q.PendingMessages())
}
