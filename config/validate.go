package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate checks the configuration document against the fatal rules
// (duplicate names, missing type declarations, malformed composites,
// conflicting eager groups) and returns an aggregated report. A nil
// return means the configuration is safe to load.
func (c *Config) Validate() error {
	var result *multierror.Error

	seenName := make(map[string]struct{})
	seenOnPath := make(map[string]struct{})
	knownNames := make(map[string]struct{})
	for _, d := range c.Types {
		knownNames[d.Name] = struct{}{}
	}

	for _, d := range c.Types {
		if _, dup := seenName[d.Name]; dup {
			result = multierror.Append(result, fmt.Errorf("duplicate type name %q", d.Name))
		}
		seenName[d.Name] = struct{}{}

		if d.OnPath != "" {
			if _, dup := seenOnPath[d.OnPath]; dup {
				result = multierror.Append(result, fmt.Errorf("duplicate on_path %q (type %q)", d.OnPath, d.Name))
			}
			seenOnPath[d.OnPath] = struct{}{}
		}

		if len(d.RDFTypes) == 0 && len(d.CompositeTypes) == 0 {
			result = multierror.Append(result, fmt.Errorf("type %q: must declare rdf_types or composite_types", d.Name))
		}
		if len(d.RDFTypes) > 0 && len(d.CompositeTypes) > 0 {
			result = multierror.Append(result, fmt.Errorf("type %q: cannot declare both rdf_types and composite_types", d.Name))
		}

		for _, sub := range d.CompositeTypes {
			if sub.Properties == nil {
				result = multierror.Append(result, fmt.Errorf("type %q: composite sub-index %q: properties must be a map of name to definition", d.Name, sub.Name))
			}
		}
	}

	for _, group := range c.EagerIndexingGroups {
		hasWildcard := false
		hasOther := false
		for _, g := range group {
			if g.Name == "*" {
				hasWildcard = true
			} else {
				hasOther = true
			}
		}
		if hasWildcard && hasOther {
			result = multierror.Append(result, fmt.Errorf("eager_indexing_groups: wildcard group cannot be combined with other access rights"))
		}
	}

	if result != nil {
		result.ErrorFormat = aggregatedErrorFormat
		return result
	}
	return nil
}

func aggregatedErrorFormat(errs []error) string {
	msg := fmt.Sprintf("%d configuration error(s) occurred:", len(errs))
	for _, e := range errs {
		msg += "\n\t* " + e.Error()
	}
	return msg
}
