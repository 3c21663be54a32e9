package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_DuplicateTypeName(t *testing.T) {
	cfg := &Config{
		Types: []*IndexDefinition{
			{Name: "Foo", RDFTypes: []string{"http://example.org/Foo"}},
			{Name: "Foo", RDFTypes: []string{"http://example.org/Foo2"}},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate type name "Foo"`)
}

func TestValidate_MissingTypeDeclaration(t *testing.T) {
	cfg := &Config{
		Types: []*IndexDefinition{{Name: "Foo"}},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must declare rdf_types or composite_types")
}

func TestValidate_BothRDFTypesAndComposite(t *testing.T) {
	cfg := &Config{
		Types: []*IndexDefinition{{
			Name:           "Foo",
			RDFTypes:       []string{"http://example.org/Foo"},
			CompositeTypes: []SubIndex{{Name: "sub", Properties: map[string]*PropertyDefinition{}}},
		}},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot declare both")
}

func TestValidate_WildcardEagerGroupConflict(t *testing.T) {
	cfg := &Config{
		EagerIndexingGroups: [][]Group{
			{{Name: "*"}, {Name: "editor"}},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wildcard group cannot be combined")
}

func TestValidate_AggregatesAllErrors(t *testing.T) {
	cfg := &Config{
		Types: []*IndexDefinition{
			{Name: "Foo"},
			{Name: "Foo"},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	lines := strings.Count(err.Error(), "\n\t* ")
	assert.Equal(t, 3, lines)
}

func TestValidate_ValidConfigReturnsNil(t *testing.T) {
	cfg := &Config{
		Types: []*IndexDefinition{
			{Name: "Foo", OnPath: "foos", RDFTypes: []string{"http://example.org/Foo"}, Properties: map[string]*PropertyDefinition{
				"title": {Name: "title", Path: []Predicate{"http://purl.org/dc/terms/title"}, Type: PropertySimple},
			}},
		},
	}

	assert.NoError(t, cfg.Validate())
}
