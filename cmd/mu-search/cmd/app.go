// Package cmd provides the mu-search CLI: a long-running server command
// plus admin subcommands for forcing a reindex or invalidating indexes
// against an already-configured deployment.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nbittich/mu-search/config"
	"github.com/nbittich/mu-search/delta"
	"github.com/nbittich/mu-search/indexbuilder"
	"github.com/nbittich/mu-search/indexmanager"
	"github.com/nbittich/mu-search/observability"
	"github.com/nbittich/mu-search/registry"
	"github.com/nbittich/mu-search/search"
	"github.com/nbittich/mu-search/sparql"
	"github.com/nbittich/mu-search/textextract"
	"github.com/nbittich/mu-search/updatehandler"
)

const registryURIBase = "http://mu.semte.ch/services/search-index/"

// app bundles every collaborator the server and admin commands share,
// wired once from a validated configuration document.
type app struct {
	cfg        *config.Config
	pool       *sparql.Pool
	backend    search.Backend
	extractor  textextract.Extractor
	registry   *registry.Registry
	builder    *indexbuilder.Builder
	manager    *indexmanager.Manager
	queue      delta.Queue
	dispatcher *delta.Dispatcher
	updates    *updatehandler.Handler
}

// buildApp loads configPath and wires every collaborator against it. It
// does not start any background loop or listener; callers decide which
// of those a given command needs.
func buildApp(configPath string) (*app, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	pool := sparql.NewPool(cfg.SPARQLEndpoint, cfg.SPARQLEndpoint, maxInt(cfg.NumberOfThreads, 1))

	backend, err := search.NewElasticsearchBackend(cfg.ElasticsearchEndpoints, false)
	if err != nil {
		return nil, fmt.Errorf("build elasticsearch backend: %w", err)
	}

	var extractor textextract.Extractor
	if cfg.TextExtractionEndpoint != "" {
		extractor = textextract.NewHTTPExtractor(cfg.TextExtractionEndpoint)
	} else {
		extractor = textextract.NewLocalExtractor(1024)
	}

	reg := registry.New(pool, registryURIBase)
	builder := indexbuilder.New(pool, backend, extractor, cfg)
	manager := indexmanager.New(reg, backend, builder, cfg)

	updates := updatehandler.New(manager, pool, backend, extractor, cfg, maxInt(cfg.NumberOfThreads, 1))

	queue := delta.NewQueue()
	dispatcher := delta.NewDispatcher(cfg, pool, updates)

	return &app{
		cfg:        cfg,
		pool:       pool,
		backend:    backend,
		extractor:  extractor,
		registry:   reg,
		builder:    builder,
		manager:    manager,
		queue:      queue,
		dispatcher: dispatcher,
		updates:    updates,
	}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	observability.SetBase(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
