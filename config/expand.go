package config

// muCoreUUID is the predicate every resource's mu:uuid is asserted
// against; it is how the search-index metadata graph identifies
// resources too (see registry's own predUUID).
const muCoreUUID = Predicate("http://mu.semte.ch/vocabularies/core/uuid")

// syntheticUUIDProperty is injected into every regular index and every
// composite sub-index, enabling the collapse/fold semantics the smart
// merge depends on and giving every document a stable identity distinct
// from its subject URI.
var syntheticUUIDProperty = &PropertyDefinition{
	Name: "uuid",
	Type: PropertySimple,
	Path: []Predicate{muCoreUUID},
}

// ExpandComposites resolves each composite definition's sub-indexes,
// remapping composite properties through a sub-index's mappings (falling
// back to the property name) and injecting the synthetic uuid property
// everywhere. Call once after Validate succeeds.
func (c *Config) ExpandComposites() {
	for _, d := range c.Types {
		injectUUID(d.Properties)

		for i := range d.CompositeTypes {
			sub := &d.CompositeTypes[i]
			resolved := make(map[string]*PropertyDefinition, len(d.Properties))
			for name, prop := range d.Properties {
				resolved[name] = remapProperty(name, prop, sub)
			}
			sub.Properties = resolved
			injectUUID(sub.Properties)
		}
	}
}

func remapProperty(compositeName string, prop *PropertyDefinition, sub *SubIndex) *PropertyDefinition {
	sourceName := compositeName
	if sub.Properties != nil {
		if existing, ok := sub.Properties[compositeName]; ok && existing != nil && existing.Name != "" {
			sourceName = existing.Name
		}
	}

	clone := *prop
	clone.Name = sourceName
	return &clone
}

func injectUUID(properties map[string]*PropertyDefinition) {
	if properties == nil {
		return
	}
	if _, ok := properties["uuid"]; !ok {
		properties["uuid"] = syntheticUUIDProperty
	}
}
