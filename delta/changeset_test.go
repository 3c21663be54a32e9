package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatch_FlattensInsertsAndDeletes(t *testing.T) {
	body := []byte(`[
		{
			"inserts": [
				{"subject": {"value": "http://example.org/book/1"},
				 "predicate": {"value": "http://purl.org/dc/terms/title"},
				 "object": {"value": "Dune", "type": "literal"}}
			],
			"deletes": [
				{"subject": {"value": "http://example.org/book/1"},
				 "predicate": {"value": "http://purl.org/dc/terms/title"},
				 "object": {"value": "Dune (draft)", "type": "literal"}}
			]
		}
	]`)

	batch, err := ParseBatch(body)
	require.NoError(t, err)
	require.Len(t, batch.Triples, 2)

	assert.True(t, batch.Triples[0].IsAddition)
	assert.Equal(t, "Dune", batch.Triples[0].Object.Value)
	assert.False(t, batch.Triples[1].IsAddition)
	assert.Equal(t, "Dune (draft)", batch.Triples[1].Object.Value)
}

func TestParseBatch_SubjectAndPredicateAreURIs(t *testing.T) {
	body := []byte(`[{
		"inserts": [
			{"subject": {"value": "http://example.org/book/1"},
			 "predicate": {"value": "http://example.org/author"},
			 "object": {"value": "http://example.org/person/1", "type": "uri"}}
		],
		"deletes": []
	}]`)

	batch, err := ParseBatch(body)
	require.NoError(t, err)
	require.Len(t, batch.Triples, 1)

	tr := batch.Triples[0]
	assert.Equal(t, "http://example.org/book/1", tr.Subject.Value)
	assert.False(t, tr.Subject.IsLiteral())
	assert.False(t, tr.Object.IsLiteral())
}

func TestParseBatch_TypedAndLangLiterals(t *testing.T) {
	body := []byte(`[{
		"inserts": [
			{"subject": {"value": "s"}, "predicate": {"value": "p1"},
			 "object": {"value": "42", "type": "typed-literal", "datatype": "http://www.w3.org/2001/XMLSchema#integer"}},
			{"subject": {"value": "s"}, "predicate": {"value": "p2"},
			 "object": {"value": "hello", "type": "literal", "xml:lang": "en"}}
		],
		"deletes": []
	}]`)

	batch, err := ParseBatch(body)
	require.NoError(t, err)
	require.Len(t, batch.Triples, 2)

	assert.Equal(t, "http://www.w3.org/2001/XMLSchema#integer", batch.Triples[0].Object.Datatype)
	assert.Equal(t, "en", batch.Triples[1].Object.Lang)
}
