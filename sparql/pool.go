package sparql

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nbittich/mu-search/authz"
)

// Pool hands out HTTPClients bound to a caller-specified authorization
// header for the scope of one closure, bounding the number of
// concurrently in-flight requests to the endpoint. The token-acquire /
// deferred-release shape mirrors the dynamic worker pool's token bucket:
// a slot is always returned on closure exit, including on error or
// panic.
type Pool struct {
	endpoint       string
	updateEndpoint string
	httpClient     *http.Client
	tokens         chan struct{}
}

// NewPool creates a pool that permits at most maxConnections concurrent
// authorized clients against endpoint.
func NewPool(endpoint, updateEndpoint string, maxConnections int) *Pool {
	if maxConnections <= 0 {
		maxConnections = 1
	}
	tokens := make(chan struct{}, maxConnections)
	for i := 0; i < maxConnections; i++ {
		tokens <- struct{}{}
	}
	return &Pool{
		endpoint:       endpoint,
		updateEndpoint: updateEndpoint,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		tokens:         tokens,
	}
}

// WithAuthorization acquires a pool slot, builds a Client bound to
// allowedGroups' canonical header value, invokes fn, and releases the
// slot on every exit path.
func (p *Pool) WithAuthorization(ctx context.Context, allowedGroups authz.AllowedGroups, fn func(Client) error) error {
	header := authz.CacheKey(allowedGroups)
	return p.withHeader(ctx, header, fn)
}

// SudoQuery runs sparql under the privileged authorization header and
// returns the bound rows.
func (p *Pool) SudoQuery(ctx context.Context, sparql string) ([]Row, error) {
	var rows []Row
	err := p.withHeader(ctx, SudoHeaderValue, func(c Client) error {
		r, err := c.Select(ctx, sparql)
		rows = r
		return err
	})
	return rows, err
}

// SudoConstruct runs a CONSTRUCT query under the privileged
// authorization header.
func (p *Pool) SudoConstruct(ctx context.Context, sparql string) ([]Triple, error) {
	var triples []Triple
	err := p.withHeader(ctx, SudoHeaderValue, func(c Client) error {
		t, err := c.Construct(ctx, sparql)
		triples = t
		return err
	})
	return triples, err
}

// SudoUpdate runs sparql under the privileged authorization header.
func (p *Pool) SudoUpdate(ctx context.Context, sparql string) error {
	return p.withHeader(ctx, SudoHeaderValue, func(c Client) error {
		return c.Update(ctx, sparql)
	})
}

func (p *Pool) withHeader(ctx context.Context, header string, fn func(Client) error) error {
	select {
	case <-p.tokens:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { p.tokens <- struct{}{} }()

	client := NewHTTPClient(p.endpoint, p.updateEndpoint, header, p.httpClient)
	if err := fn(client); err != nil {
		return fmt.Errorf("sparql pool: %w", err)
	}
	return nil
}

var _ Service = (*Pool)(nil)
