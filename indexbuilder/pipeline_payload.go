package indexbuilder

import (
	"context"

	"github.com/nbittich/mu-search/pipeline"
)

// batchPayload carries one page's starting offset through the pipeline.
type batchPayload struct {
	offset int
}

func (p *batchPayload) Clone() pipeline.Payload { return &batchPayload{offset: p.offset} }
func (p *batchPayload) MarkAsProcessed()        {}

// resultPayload carries one batch's outcome into the sink.
type resultPayload struct {
	indexed int
	failed  int
}

func (p *resultPayload) Clone() pipeline.Payload {
	return &resultPayload{indexed: p.indexed, failed: p.failed}
}
func (p *resultPayload) MarkAsProcessed() {}

// batchSource yields one batchPayload per page, in offset order, for
// `total` pages of `batchSize` resources each.
type batchSource struct {
	total     int
	batchSize int
	emitted   int
}

func (s *batchSource) Next(_ context.Context) bool {
	return s.emitted < s.total
}

func (s *batchSource) Payload() pipeline.Payload {
	p := &batchPayload{offset: s.emitted * s.batchSize}
	s.emitted++
	return p
}

func (s *batchSource) Error() error { return nil }

// resultSink tallies indexed/failed counts across every batch.
type resultSink struct {
	indexed int
	failed  int
}

func (s *resultSink) Consume(_ context.Context, p pipeline.Payload) error {
	rp := p.(*resultPayload)
	s.indexed += rp.indexed
	s.failed += rp.failed
	return nil
}
