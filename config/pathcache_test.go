package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPathCache_ForwardAndInverse(t *testing.T) {
	cfg := &Config{
		Types: []*IndexDefinition{{
			Name: "Foo",
			Properties: map[string]*PropertyDefinition{
				"title": {Path: []Predicate{"http://purl.org/dc/terms/title"}, Type: PropertySimple},
				"owner": {Path: []Predicate{"^http://example.org/owns", "http://example.org/name"}, Type: PropertySimple},
			},
		}},
	}

	pc := BuildPathCache(cfg)

	assert.True(t, pc.ContainsPredicate("http://purl.org/dc/terms/title"))
	assert.True(t, pc.ContainsPredicate("http://example.org/owns"))
	assert.True(t, pc.ContainsPredicate("http://example.org/name"))
	assert.False(t, pc.ContainsPredicate("http://example.org/unused"))

	refs := pc.PathsFor("http://example.org/owns")
	assert.Len(t, refs, 1)
	assert.Equal(t, 0, refs[0].Position)
	assert.True(t, refs[0].AtStart())
	assert.Empty(t, refs[0].Prefix())
	assert.Equal(t, []Predicate{"http://example.org/name"}, refs[0].Suffix())
}

func TestBuildPathCache_NestedAndComposite(t *testing.T) {
	cfg := &Config{
		Types: []*IndexDefinition{{
			Name: "Foo",
			Properties: map[string]*PropertyDefinition{
				"author": {
					Type:    PropertyNested,
					Path:    []Predicate{"http://example.org/author"},
					RDFType: "http://example.org/Person",
					SubProperties: map[string]*PropertyDefinition{
						"name": {Path: []Predicate{"http://example.org/name"}, Type: PropertySimple},
					},
				},
			},
		}, {
			Name: "Person",
			CompositeTypes: []SubIndex{{
				RDFTypes: []string{"http://example.org/Agent"},
				Properties: map[string]*PropertyDefinition{
					"given_name": {Path: []Predicate{"http://example.org/givenName"}, Type: PropertySimple},
				},
			}},
		}},
	}

	pc := BuildPathCache(cfg)

	assert.True(t, pc.ContainsPredicate("http://example.org/author"))
	assert.True(t, pc.ContainsPredicate("http://example.org/name"))
	assert.True(t, pc.ContainsPredicate("http://example.org/givenName"))
}
