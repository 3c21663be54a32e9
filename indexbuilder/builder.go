// Package indexbuilder bulk-indexes one Search Index by paging through
// its related RDF resources and upserting a projected document per
// resource into the search backend.
package indexbuilder

import (
	"context"
	"fmt"
	"strings"

	"github.com/nbittich/mu-search/authz"
	"github.com/nbittich/mu-search/config"
	"github.com/nbittich/mu-search/docbuilder"
	"github.com/nbittich/mu-search/observability"
	"github.com/nbittich/mu-search/pipeline"
	"github.com/nbittich/mu-search/registry"
	"github.com/nbittich/mu-search/search"
	"github.com/nbittich/mu-search/sparql"
	"github.com/nbittich/mu-search/textextract"
)

var log = observability.Component(observability.ComponentIndexing)

// Builder bulk-rebuilds Search Indexes, batching resource enumeration
// and parallelising document construction across a fixed worker pool
// sized to the configured thread count.
type Builder struct {
	sparqlPool *sparql.Pool
	backend    search.Backend
	extractor  textextract.Extractor
	cfg        *config.Config
}

// New builds an indexbuilder.Builder.
func New(sparqlPool *sparql.Pool, backend search.Backend, extractor textextract.Extractor, cfg *config.Config) *Builder {
	return &Builder{sparqlPool: sparqlPool, backend: backend, extractor: extractor, cfg: cfg}
}

// Result summarises one bulk build.
type Result struct {
	Indexed int
	Failed  int
}

// Build rebuilds idx entirely: it counts resources matching def's
// related RDF types under idx's allowed groups, pages through them in
// batches, and upserts a document per resource. A single document's
// build failure is logged and skipped; it never aborts the batch.
func (b *Builder) Build(ctx context.Context, idx *registry.SearchIndex, def *config.IndexDefinition) (Result, error) {
	relatedTypes := def.RelatedRDFTypes()
	if len(relatedTypes) == 0 {
		return Result{}, nil
	}

	total, err := b.count(ctx, idx.AllowedGroups, relatedTypes)
	if err != nil {
		return Result{}, fmt.Errorf("indexbuilder: count %s: %w", idx.Name, err)
	}
	if total == 0 {
		return Result{}, nil
	}

	batchSize := b.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	numBatches := (total + batchSize - 1) / batchSize
	if b.cfg.MaxBatches > 0 && numBatches > b.cfg.MaxBatches {
		numBatches = b.cfg.MaxBatches
	}

	numWorkers := b.cfg.NumberOfThreads
	if numWorkers <= 0 {
		numWorkers = 1
	}

	source := &batchSource{total: numBatches, batchSize: batchSize}
	sink := &resultSink{}
	processor := pipeline.ProcessorFunc(func(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		bp := p.(*batchPayload)
		indexed, failed := b.processBatch(ctx, idx, def, relatedTypes, bp.offset, batchSize)
		return &resultPayload{indexed: indexed, failed: failed}, nil
	})

	pl := pipeline.New(pipeline.FixedWorkerPool(processor, numWorkers))
	if err := pl.Run(ctx, source, sink); err != nil {
		return Result{Indexed: sink.indexed, Failed: sink.failed}, fmt.Errorf("indexbuilder: %s: %w", idx.Name, err)
	}

	observability.DocumentsIndexedTotal.WithLabelValues(idx.TypeName, "indexed").Add(float64(sink.indexed))
	observability.DocumentsIndexedTotal.WithLabelValues(idx.TypeName, "failed").Add(float64(sink.failed))
	return Result{Indexed: sink.indexed, Failed: sink.failed}, nil
}

func (b *Builder) count(ctx context.Context, allowedGroups authz.AllowedGroups, relatedTypes []string) (int, error) {
	var count int
	err := b.sparqlPool.WithAuthorization(ctx, allowedGroups, func(c sparql.Client) error {
		rows, err := c.Select(ctx, countQuery(relatedTypes))
		if err != nil {
			return err
		}
		if len(rows) == 1 {
			if term, ok := rows[0]["count"]; ok {
				if n, err := parseCount(term.Value); err == nil {
					count = n
				}
			}
		}
		return nil
	})
	return count, err
}

// processBatch fetches one page of resources under an authorized
// client, builds each document and upserts it, isolating per-document
// failures.
func (b *Builder) processBatch(ctx context.Context, idx *registry.SearchIndex, def *config.IndexDefinition, relatedTypes []string, offset, limit int) (indexed, failed int) {
	err := b.sparqlPool.WithAuthorization(ctx, idx.AllowedGroups, func(c sparql.Client) error {
		rows, err := c.Select(ctx, pageQuery(relatedTypes, offset, limit))
		if err != nil {
			return err
		}

		opts := docbuilder.Options{
			Client:             c,
			Extractor:          b.extractor,
			AttachmentPathBase: b.cfg.AttachmentPathBase,
			AttachmentMaxBytes: b.cfg.AttachmentMaxBytes,
		}

		for _, row := range rows {
			subject, ok := row["s"]
			if !ok {
				continue
			}
			doc, err := docbuilder.Build(ctx, subject.Value, def, opts)
			if err != nil {
				failed++
				observability.DocumentBuildFailuresTotal.WithLabelValues(idx.TypeName).Inc()
				log.Warn("document build failed", "type", idx.TypeName, "uri", subject.Value, "error", err)
				continue
			}
			id, err := docbuilder.DocumentID(doc)
			if err != nil {
				failed++
				log.Warn("document has no id", "type", idx.TypeName, "uri", subject.Value, "error", err)
				continue
			}
			if err := b.backend.UpsertDocument(ctx, idx.Name, id, doc); err != nil {
				failed++
				log.Warn("document upsert failed", "type", idx.TypeName, "uri", subject.Value, "error", err)
				continue
			}
			indexed++
		}
		return nil
	})
	if err != nil {
		log.Warn("batch failed", "type", idx.TypeName, "offset", offset, "error", err)
	}
	return indexed, failed
}

func countQuery(relatedTypes []string) string {
	return fmt.Sprintf(
		"SELECT (COUNT(DISTINCT ?s) AS ?count) WHERE { ?s a ?type . FILTER(?type IN (%s)) . }",
		typeList(relatedTypes),
	)
}

func pageQuery(relatedTypes []string, offset, limit int) string {
	return fmt.Sprintf(
		"SELECT DISTINCT ?s WHERE { ?s a ?type . FILTER(?type IN (%s)) . } ORDER BY ?s OFFSET %d LIMIT %d",
		typeList(relatedTypes), offset, limit,
	)
}

func typeList(relatedTypes []string) string {
	quoted := make([]string, len(relatedTypes))
	for i, t := range relatedTypes {
		quoted[i] = "<" + t + ">"
	}
	return strings.Join(quoted, ", ")
}

func parseCount(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}
