package delta

import (
	"io"
	"net/http"

	"github.com/nbittich/mu-search/observability"
)

// Handler builds the POST /delta ingress: it decodes a v0.0.1 delta
// payload and enqueues it onto q for RunConsumer to drain.
func Handler(q Queue) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/delta", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			observability.DeltaEventsTotal.WithLabelValues("rejected").Inc()
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}

		batch, err := ParseBatch(body)
		if err != nil {
			observability.DeltaEventsTotal.WithLabelValues("rejected").Inc()
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := q.Enqueue(batch); err != nil {
			observability.DeltaEventsTotal.WithLabelValues("rejected").Inc()
			http.Error(w, "enqueue: "+err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusAccepted)
	})
	return mux
}
