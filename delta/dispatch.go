package delta

import (
	"context"

	"github.com/nbittich/mu-search/config"
	"github.com/nbittich/mu-search/observability"
	"github.com/nbittich/mu-search/rdfterm"
	"github.com/nbittich/mu-search/sparql"
)

var log = observability.Component(observability.ComponentDelta)

// RootSubjectSink receives the (subject, type) tuples a dispatched
// triple resolves to; the Update Handler implements it.
type RootSubjectSink interface {
	Enqueue(subject, typeName string)
}

// Dispatcher resolves, for each triple in an incoming delta batch, the
// set of root resources whose projected document depends on it, and
// forwards them to a RootSubjectSink.
type Dispatcher struct {
	cfg       *config.Config
	pathCache *config.PathCache
	sparql    sparql.Service
	sink      RootSubjectSink
}

// NewDispatcher builds a Dispatcher over cfg's configured types,
// resolving root subjects via svc's privileged query path.
func NewDispatcher(cfg *config.Config, svc sparql.Service, sink RootSubjectSink) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		pathCache: config.BuildPathCache(cfg),
		sparql:    svc,
		sink:      sink,
	}
}

// Dispatch processes every triple in batch, tolerating per-triple
// failures by logging and continuing rather than aborting the batch.
func (d *Dispatcher) Dispatch(ctx context.Context, batch DeltaBatch) {
	for _, t := range batch.Triples {
		if err := d.dispatchOne(ctx, t); err != nil {
			log.Warn("dispatch failed for triple", "subject", t.Subject.Value, "predicate", t.Predicate.Value, "error", err)
		}
	}
}

func (d *Dispatcher) dispatchOne(ctx context.Context, t Triple) error {
	if t.Predicate.Value == rdfterm.RDFTypePredicate {
		for _, def := range d.cfg.Types {
			if containsString(def.RelatedRDFTypes(), t.Object.Value) {
				d.sink.Enqueue(t.Subject.Value, def.Name)
			}
		}
		return nil
	}

	for _, ref := range d.pathCache.PathsFor(t.Predicate.Value) {
		if err := d.resolveForPath(ctx, ref, t); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) resolveForPath(ctx context.Context, ref config.PathRef, t Triple) error {
	def := d.cfg.ByName(ref.TypeName)
	if def == nil {
		return nil
	}

	isInverse := ref.Path[ref.Position].IsInverse()
	isTerminal := ref.Position == len(ref.Path)-1

	// A literal object has no outgoing edges: a non-terminal, non-inverse
	// occurrence would need to keep traversing from it, which is
	// impossible, so this occurrence is pruned rather than queried.
	if t.Object.IsLiteral() && !isTerminal && !isInverse {
		return nil
	}

	rootward, leafward := t.Subject, t.Object
	if isInverse {
		rootward, leafward = t.Object, t.Subject
	}

	query := rootSubjectQuery(def.RelatedRDFTypes(), ref, t, rootward, leafward)
	rows, err := d.sparql.SudoQuery(ctx, query)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if s, ok := row["s"]; ok {
			d.sink.Enqueue(s.Value, def.Name)
		}
	}
	return nil
}

func containsString(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
