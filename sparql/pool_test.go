package sparql

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nbittich/mu-search/authz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_WithAuthorization_SendsCanonicalHeader(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get(MuAuthGroupsHeader)
		_, _ = w.Write([]byte(`{"boolean": true}`))
	}))
	defer srv.Close()

	pool := NewPool(srv.URL, srv.URL, 2)
	groups := authz.AllowedGroups{{Name: "reader"}}

	err := pool.WithAuthorization(context.Background(), groups, func(c Client) error {
		_, err := c.Ask(context.Background(), "ASK {}")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, authz.CacheKey(groups), gotHeader)
}

func TestPool_BoundsConcurrency(t *testing.T) {
	var inFlight, maxInFlight int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&maxInFlight)
			if cur <= old || atomic.CompareAndSwapInt32(&maxInFlight, old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		_, _ = w.Write([]byte(`{"boolean": true}`))
	}))
	defer srv.Close()

	pool := NewPool(srv.URL, srv.URL, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = pool.SudoQuery(context.Background(), "SELECT * WHERE {}")
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, int(maxInFlight), 2)
}

func TestPool_ReleasesSlotOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	pool := NewPool(srv.URL, srv.URL, 1)

	_, err := pool.SudoQuery(context.Background(), "SELECT * WHERE {}")
	assert.Error(t, err)

	// If the slot wasn't released, this would hang.
	done := make(chan struct{})
	go func() {
		_, _ = pool.SudoQuery(context.Background(), "SELECT * WHERE {}")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool slot was not released after an error")
	}
}
