package delta

import (
	"context"
	"time"

	"github.com/nbittich/mu-search/observability"
)

const defaultPollInterval = 200 * time.Millisecond

// RunConsumer drains q on a single goroutine, in arrival order,
// dispatching each DeltaBatch and recording per-batch metrics. It
// blocks until ctx is cancelled, at which point it returns once any
// batch already being dispatched completes.
func RunConsumer(ctx context.Context, q Queue, dispatcher *Dispatcher) {
	for {
		if ctx.Err() != nil {
			return
		}

		it := q.Messages()
		if !it.Next() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(defaultPollInterval):
			}
			continue
		}

		batch, ok := it.Message().(DeltaBatch)
		if !ok {
			continue
		}

		start := time.Now()
		dispatcher.Dispatch(ctx, batch)
		observability.DeltaProcessingDurationSeconds.Observe(time.Since(start).Seconds())
		observability.DeltaEventsTotal.WithLabelValues("processed").Inc()
	}
}

// Drain blocks until q has no pending messages or ctx is cancelled,
// used during graceful shutdown to let the consumer finish the backlog.
func Drain(ctx context.Context, q Queue) {
	for q.PendingMessages() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(defaultPollInterval):
		}
	}
}
