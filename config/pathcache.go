package config

// PathRef locates one occurrence of a predicate inside a configured
// property path: which index type owns the path, the full path, and the
// predicate's position within it.
type PathRef struct {
	TypeName string
	Path     []Predicate
	Position int
}

// AtStart reports whether the predicate is the first element of the path
// (i.e. its subject side is the document's root resource).
func (r PathRef) AtStart() bool {
	return r.Position == 0
}

// Prefix returns the path elements strictly before the predicate's
// position.
func (r PathRef) Prefix() []Predicate {
	return r.Path[:r.Position]
}

// Suffix returns the path elements strictly after the predicate's
// position.
func (r PathRef) Suffix() []Predicate {
	return r.Path[r.Position+1:]
}

// PathCache indexes, for every predicate IRI reachable through any
// configured property path, the set of full paths that contain it - the
// structure the Delta Processor walks to resolve root subjects.
type PathCache struct {
	byPredicate map[string][]PathRef
}

// BuildPathCache walks every configured index's property paths
// (including nested sub-properties and composite sub-indexes) and
// returns the reverse index keyed by bare predicate IRI.
func BuildPathCache(cfg *Config) *PathCache {
	pc := &PathCache{
		byPredicate: make(map[string][]PathRef),
	}

	for _, d := range cfg.Types {
		if d.IsComposite() {
			for _, sub := range d.CompositeTypes {
				pc.indexProperties(d.Name, sub.Properties)
			}
			continue
		}
		pc.indexProperties(d.Name, d.Properties)
	}

	return pc
}

func (pc *PathCache) indexProperties(typeName string, properties map[string]*PropertyDefinition) {
	for _, prop := range properties {
		if prop == nil {
			continue
		}
		pc.indexPath(typeName, prop.Path)
		if prop.Type == PropertyNested {
			pc.indexProperties(typeName, prop.SubProperties)
		}
	}
}

func (pc *PathCache) indexPath(typeName string, path []Predicate) {
	if len(path) == 0 {
		return
	}
	for pos, pred := range path {
		ref := PathRef{TypeName: typeName, Path: path, Position: pos}
		pc.byPredicate[pred.IRI()] = append(pc.byPredicate[pred.IRI()], ref)
	}
}

// PathsFor returns every PathRef containing the given bare predicate IRI,
// across both its forward and inverse occurrences.
func (pc *PathCache) PathsFor(predicateIRI string) []PathRef {
	return pc.byPredicate[predicateIRI]
}

// ContainsPredicate reports whether any configured path references the
// given predicate IRI, in either direction.
func (pc *PathCache) ContainsPredicate(predicateIRI string) bool {
	return len(pc.byPredicate[predicateIRI]) > 0
}
