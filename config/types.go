// Package config loads and validates the index configuration document:
// index definitions, property definitions and eager-indexing groups.
package config

// PropertyType is the closed set of projection shapes a PropertyDefinition
// can take.
type PropertyType string

const (
	PropertySimple         PropertyType = "simple"
	PropertyNested         PropertyType = "nested"
	PropertyAttachment     PropertyType = "attachment"
	PropertyLanguageString PropertyType = "language-string"
	PropertyLambert72      PropertyType = "lambert-72"
)

// Predicate is one element of a property path: an IRI, optionally
// prefixed with '^' to denote the inverse direction.
type Predicate string

// IsInverse reports whether the predicate is traversed backwards.
func (p Predicate) IsInverse() bool {
	return len(p) > 0 && p[0] == '^'
}

// IRI strips the inverse marker, returning the bare predicate IRI.
func (p Predicate) IRI() string {
	if p.IsInverse() {
		return string(p[1:])
	}
	return string(p)
}

// Forward returns the forward-direction form of the predicate.
func (p Predicate) Forward() Predicate {
	return Predicate(p.IRI())
}

// Inverse returns the inverse-direction form of the predicate.
func (p Predicate) Inverse() Predicate {
	return "^" + Predicate(p.IRI())
}

// PropertyDefinition describes how one document field is derived from an
// RDF resource.
type PropertyDefinition struct {
	Name          string                         `json:"name"`
	Path          []Predicate                    `json:"path"`
	Type          PropertyType                   `json:"type"`
	RDFType       string                         `json:"rdf_type,omitempty"`
	SubProperties map[string]*PropertyDefinition  `json:"sub_properties,omitempty"`
}

// SubIndex is one RDF-type projection inside a composite index.
type SubIndex struct {
	Name       string                         `json:"name"`
	RDFTypes   []string                       `json:"rdf_types"`
	Properties map[string]*PropertyDefinition `json:"properties"`
}

// IndexDefinition is a named projection: either regular (declares
// RDFTypes) or composite (declares CompositeTypes); never both.
type IndexDefinition struct {
	Name           string                          `json:"name"`
	OnPath         string                           `json:"on_path"`
	RDFTypes       []string                         `json:"rdf_types,omitempty"`
	CompositeTypes []SubIndex                       `json:"composite_types,omitempty"`
	Properties     map[string]*PropertyDefinition   `json:"properties"`
	Mappings       map[string]interface{}           `json:"mappings,omitempty"`
	Settings       map[string]interface{}           `json:"settings,omitempty"`
}

// IsComposite reports whether the definition aggregates sub-indexes.
func (d *IndexDefinition) IsComposite() bool {
	return len(d.CompositeTypes) > 0
}

// RelatedRDFTypes returns the regular index's RDFTypes, or the union of
// its sub-indexes' RDFTypes for a composite index.
func (d *IndexDefinition) RelatedRDFTypes() []string {
	if !d.IsComposite() {
		return d.RDFTypes
	}

	seen := make(map[string]struct{})
	var out []string
	for _, sub := range d.CompositeTypes {
		for _, t := range sub.RDFTypes {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	return out
}

// Group is one element of an eager-indexing group tuple or an
// authorization context entry.
type Group struct {
	Name      string   `json:"group"`
	Variables []string `json:"variables,omitempty"`
}

// Config is the top-level configuration document.
type Config struct {
	BatchSize                 int         `json:"batch_size"`
	MaxBatches                int         `json:"max_batches"`
	PersistIndexes             bool        `json:"persist_indexes"`
	AutomaticIndexUpdates      bool        `json:"automatic_index_updates"`
	EnableRawDSLEndpoint       bool        `json:"enable_raw_dsl_endpoint"`
	AttachmentPathBase         string      `json:"attachment_path_base"`
	AttachmentMaxBytes         int64       `json:"attachment_max_bytes"`
	CommonTermsCutoffFrequency float64     `json:"common_terms_cutoff_frequency"`
	UpdateWaitIntervalMinutes  int         `json:"update_wait_interval_minutes"`
	NumberOfThreads            int         `json:"number_of_threads"`
	EagerIndexingGroups        [][]Group   `json:"eager_indexing_groups"`
	IgnoredAllowedGroups       []Group     `json:"ignored_allowed_groups"`
	DefaultSettings            map[string]interface{} `json:"default_settings,omitempty"`
	Types                      []*IndexDefinition `json:"types"`

	SPARQLEndpoint         string `json:"sparql_endpoint"`
	ElasticsearchEndpoints []string `json:"elasticsearch_endpoints"`
	ReconcileIntervalSec   int    `json:"reconcile_interval_seconds"`
	MetricsListenAddress   string `json:"metrics_listen_address"`
	DeltaListenAddress     string `json:"delta_listen_address"`
	TextExtractionEndpoint string `json:"text_extraction_endpoint"`
}

// Defaults fills in the documented default values for any unset scalar
// option.
func (c *Config) Defaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.NumberOfThreads == 0 {
		c.NumberOfThreads = 1
	}
	if c.ReconcileIntervalSec == 0 {
		c.ReconcileIntervalSec = 5
	}
	if c.AttachmentMaxBytes == 0 {
		c.AttachmentMaxBytes = 20 * 1024 * 1024
	}
}

// ByName returns the configured index definition with the given type
// name, or nil.
func (c *Config) ByName(name string) *IndexDefinition {
	for _, d := range c.Types {
		if d.Name == name {
			return d
		}
	}
	return nil
}
