package delta

import (
	"context"
	"testing"
	"time"

	"github.com/nbittich/mu-search/rdfterm"
	"github.com/stretchr/testify/require"
)

func TestRunConsumer_DrainsQueueInOrder(t *testing.T) {
	q := NewQueue()
	sink := &fakeSink{}
	d := NewDispatcher(booksConfig(), &fakeSparqlService{}, sink)

	require.NoError(t, q.Enqueue(DeltaBatch{Triples: []Triple{{
		Subject:    rdfterm.URI("http://example.org/book/1"),
		Predicate:  rdfterm.URI(rdfterm.RDFTypePredicate),
		Object:     rdfterm.URI("http://example.org/Book"),
		IsAddition: true,
	}}}))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		RunConsumer(ctx, q, d)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(sink.enqueued) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
