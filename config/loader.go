package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/fsnotify/fsnotify"
)

// Load decodes a configuration document from r, applies the documented
// defaults, validates it and expands composite definitions. It is the
// single entry point used at process startup; a non-nil error is always
// fatal and, for a validation failure, is an aggregated
// *multierror.Error.
func Load(r io.Reader) (*Config, error) {
	var cfg Config
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	applyEnvOverrides(&cfg)
	cfg.Defaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ExpandComposites()

	return &cfg, nil
}

// LoadFile opens path and delegates to Load.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open configuration %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// applyEnvOverrides applies the small allow-list of scalar overrides
// documented in SPEC_FULL.md §4.1, in the layered file-then-env idiom.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MU_SEARCH_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("MU_SEARCH_NUMBER_OF_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NumberOfThreads = n
		}
	}
	if v := os.Getenv("MU_SEARCH_PERSIST_INDEXES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.PersistIndexes = b
		}
	}
	if v := os.Getenv("MU_SEARCH_SPARQL_ENDPOINT"); v != "" {
		cfg.SPARQLEndpoint = v
	}
}

// Watch hot-validates the configuration file at path: a revised file
// that still validates is passed to onChange, an invalid one is logged
// under the CONFIG_PARSER component tag and ignored. Mapping changes are
// never hot-applied (schema evolution of existing indexes is a
// non-goal); callers that need a live reload must restart the process.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch configuration: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch configuration %q: %w", path, err)
	}

	log := slog.With("component", "CONFIG_PARSER")

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := LoadFile(path)
				if err != nil {
					log.Warn("rejected configuration reload", "path", path, "error", err)
					continue
				}
				log.Info("validated configuration reload", "path", path)
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("watcher error", "error", err)
			}
		}
	}()

	return nil
}
