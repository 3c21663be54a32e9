package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandComposites_RemapsAndInjectsUUID(t *testing.T) {
	cfg := &Config{
		Types: []*IndexDefinition{{
			Name: "Person",
			Properties: map[string]*PropertyDefinition{
				"given_name": {Name: "given_name", Type: PropertySimple},
			},
			CompositeTypes: []SubIndex{
				{
					Name:     "Agent",
					RDFTypes: []string{"http://example.org/Agent"},
					Properties: map[string]*PropertyDefinition{
						"given_name": {Name: "first_name_used"},
					},
				},
				{
					Name:     "Mandatary",
					RDFTypes: []string{"http://example.org/Mandatary"},
				},
			},
		}},
	}

	cfg.ExpandComposites()

	agent := cfg.Types[0].CompositeTypes[0]
	require.Contains(t, agent.Properties, "given_name")
	assert.Equal(t, "first_name_used", agent.Properties["given_name"].Name)
	assert.Contains(t, agent.Properties, "uuid")

	mandatary := cfg.Types[0].CompositeTypes[1]
	require.Contains(t, mandatary.Properties, "given_name")
	assert.Equal(t, "given_name", mandatary.Properties["given_name"].Name)
	assert.Contains(t, mandatary.Properties, "uuid")

	assert.Contains(t, cfg.Types[0].Properties, "uuid")
	assert.Equal(t, []Predicate{"http://mu.semte.ch/vocabularies/core/uuid"}, cfg.Types[0].Properties["uuid"].Path)
}

func TestRelatedRDFTypes_CompositeUnion(t *testing.T) {
	d := &IndexDefinition{
		CompositeTypes: []SubIndex{
			{RDFTypes: []string{"http://example.org/A", "http://example.org/B"}},
			{RDFTypes: []string{"http://example.org/B", "http://example.org/C"}},
		},
	}

	got := d.RelatedRDFTypes()
	assert.ElementsMatch(t, []string{"http://example.org/A", "http://example.org/B", "http://example.org/C"}, got)
}
