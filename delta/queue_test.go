package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFOOrder(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Enqueue(DeltaBatch{Triples: []Triple{{}}}))
	require.NoError(t, q.Enqueue(DeltaBatch{Triples: []Triple{{}, {}}}))

	it := q.Messages()
	require.True(t, it.Next())
	first := it.Message().(DeltaBatch)
	assert.Len(t, first.Triples, 1)

	require.True(t, it.Next())
	second := it.Message().(DeltaBatch)
	assert.Len(t, second.Triples, 2)

	assert.False(t, it.Next())
}

func TestQueue_PendingAndDiscard(t *testing.T) {
	q := NewQueue()
	assert.False(t, q.PendingMessages())

	require.NoError(t, q.Enqueue(DeltaBatch{}))
	assert.True(t, q.PendingMessages())

	require.NoError(t, q.DiscardMessages())
	assert.False(t, q.PendingMessages())
}
