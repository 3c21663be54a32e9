package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intPayload struct{ n int }

func (p *intPayload) Clone() Payload   { return &intPayload{n: p.n} }
func (p *intPayload) MarkAsProcessed() {}

type sliceSource struct {
	values []int
	idx    int
}

func (s *sliceSource) Next(context.Context) bool { return s.idx < len(s.values) }
func (s *sliceSource) Payload() Payload {
	p := &intPayload{n: s.values[s.idx]}
	s.idx++
	return p
}
func (s *sliceSource) Error() error { return nil }

type collectingSink struct {
	out []int
}

func (s *collectingSink) Consume(_ context.Context, p Payload) error {
	s.out = append(s.out, p.(*intPayload).n)
	return nil
}

func TestPipeline_DoublesEachValue(t *testing.T) {
	double := ProcessorFunc(func(_ context.Context, p Payload) (Payload, error) {
		ip := p.(*intPayload)
		return &intPayload{n: ip.n * 2}, nil
	})

	source := &sliceSource{values: []int{1, 2, 3}}
	sink := &collectingSink{}

	pl := New(FixedWorkerPool(double, 2))
	require.NoError(t, pl.Run(context.Background(), source, sink))

	assert.ElementsMatch(t, []int{2, 4, 6}, sink.out)
}
