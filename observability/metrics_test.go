package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ExposesCounters(t *testing.T) {
	reg := Registry()
	ReindexTasksTotal.WithLabelValues("books", "ensure").Inc()

	srv := httptest.NewServer(MetricsHandler(reg))
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
