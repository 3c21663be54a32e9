// Package observability centralises the structured logging and metrics
// instrumentation shared across the indexing control plane.
package observability

import (
	"log/slog"
	"os"
)

// component tag constants, attached to every log record a given
// subsystem emits so operators can filter by component in aggregated
// log storage.
const (
	ComponentIndexMgmt     = "INDEX MGMT"
	ComponentIndexing      = "INDEXING"
	ComponentUpdateHandler = "UPDATE HANDLER"
	ComponentDelta         = "DELTA"
	ComponentTika          = "TIKA"
	ComponentConfigParser  = "CONFIG_PARSER"
)

var base = slog.New(slog.NewJSONHandler(os.Stderr, nil))

// SetBase replaces the base logger every component logger derives from;
// call once at startup after parsing log-level configuration.
func SetBase(l *slog.Logger) {
	base = l
}

// Component returns a logger tagged with the given component name.
func Component(name string) *slog.Logger {
	return base.With("component", name)
}
