package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// workerParams is the concrete StageParams a Pipeline wires between two
// adjacent stages.
type workerParams struct {
	stage int
	inCh  <-chan Payload
	outCh chan<- Payload
	errCh chan<- error
}

func (p *workerParams) StageIndex() int        { return p.stage }
func (p *workerParams) Input() <-chan Payload  { return p.inCh }
func (p *workerParams) Output() chan<- Payload { return p.outCh }
func (p *workerParams) Error() chan<- error    { return p.errCh }

// maybeEmitError sends err on errCh without blocking if the channel's
// buffer is full; callers only need the first error, not every one.
func maybeEmitError(err error, errCh chan<- error) {
	select {
	case errCh <- err:
	default:
	}
}

// Pipeline is an assembled sequence of stages connected by channels, fed
// by a Source and drained by a Sink.
type Pipeline struct {
	stages []StageRunner
}

// New assembles a Pipeline that runs payloads through stages in order.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run drives payloads from source through every stage into sink,
// returning the first error encountered by any stage, the source or the
// sink. It blocks until source is exhausted and every in-flight payload
// has drained through the sink, or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, source Source, sink Sink) error {
	stageCh := make([]chan Payload, len(p.stages)+1)
	for i := range stageCh {
		stageCh[i] = make(chan Payload)
	}
	errCh := make(chan error, len(p.stages)+2)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(stageCh[0])
		runSource(ctx, source, stageCh[0], errCh)
	}()

	for i, stage := range p.stages {
		wg.Add(1)
		go func(i int, stage StageRunner) {
			defer wg.Done()
			defer close(stageCh[i+1])
			stage.Run(ctx, &workerParams{stage: i, inCh: stageCh[i], outCh: stageCh[i+1], errCh: errCh})
		}(i, stage)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		runSink(ctx, sink, stageCh[len(stageCh)-1], errCh)
	}()

	wg.Wait()
	close(errCh)

	var first error
	for err := range errCh {
		if first == nil {
			first = err
		}
	}
	return first
}

func runSource(ctx context.Context, source Source, outCh chan<- Payload, errCh chan<- error) {
	for source.Next(ctx) {
		select {
		case outCh <- source.Payload():
		case <-ctx.Done():
			return
		}
	}
	if err := source.Error(); err != nil {
		maybeEmitError(fmt.Errorf("pipeline source: %w", err), errCh)
	}
}

func runSink(ctx context.Context, sink Sink, inCh <-chan Payload, errCh chan<- error) {
	for {
		select {
		case payload, ok := <-inCh:
			if !ok {
				return
			}
			if err := sink.Consume(ctx, payload); err != nil {
				maybeEmitError(fmt.Errorf("pipeline sink: %w", err), errCh)
				continue
			}
			payload.MarkAsProcessed()
		case <-ctx.Done():
			return
		}
	}
}
