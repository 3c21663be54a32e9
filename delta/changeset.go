package delta

import (
	"encoding/json"
	"fmt"

	"github.com/nbittich/mu-search/rdfterm"
)

// wireTerm is one triple position in the v0.0.1 delta wire format.
type wireTerm struct {
	Value    string `json:"value"`
	Type     string `json:"type,omitempty"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// toTerm maps a wire term to an rdfterm.Term. Subject and predicate
// positions never carry a "type" field (RDF subjects/predicates are
// always IRIs), so the empty-Type case defaults to URI rather than
// literal.
func (t wireTerm) toTerm() rdfterm.Term {
	switch {
	case t.Datatype != "":
		return rdfterm.TypedLiteral(t.Value, t.Datatype)
	case t.Lang != "":
		return rdfterm.LangLiteral(t.Value, t.Lang)
	case t.Type == "literal" || t.Type == "typed-literal":
		return rdfterm.Literal(t.Value)
	default:
		return rdfterm.URI(t.Value)
	}
}

// wireTriple is one subject/predicate/object statement as delivered.
type wireTriple struct {
	Subject   wireTerm `json:"subject"`
	Predicate wireTerm `json:"predicate"`
	Object    wireTerm `json:"object"`
}

// wireChangeset is one element of the top-level delta array.
type wireChangeset struct {
	Inserts []wireTriple `json:"inserts"`
	Deletes []wireTriple `json:"deletes"`
}

// Triple is one parsed statement tagged with its change direction.
type Triple struct {
	Subject    rdfterm.Term
	Predicate  rdfterm.Term
	Object     rdfterm.Term
	IsAddition bool
}

// DeltaBatch is one parsed delta payload: the flattened triples from
// every changeset in the request, in arrival order.
type DeltaBatch struct {
	Triples []Triple
}

// Type satisfies Message.
func (DeltaBatch) Type() string { return "delta_batch" }

// ParseBatch decodes a v0.0.1 delta payload (an array of
// {inserts, deletes} changesets) and flattens it into one DeltaBatch,
// tagging each triple with its change direction.
func ParseBatch(body []byte) (DeltaBatch, error) {
	var changesets []wireChangeset
	if err := json.Unmarshal(body, &changesets); err != nil {
		return DeltaBatch{}, fmt.Errorf("delta: parse batch: %w", err)
	}

	var batch DeltaBatch
	for _, cs := range changesets {
		for _, wt := range cs.Inserts {
			batch.Triples = append(batch.Triples, wt.toTriple(true))
		}
		for _, wt := range cs.Deletes {
			batch.Triples = append(batch.Triples, wt.toTriple(false))
		}
	}
	return batch, nil
}

func (wt wireTriple) toTriple(isAddition bool) Triple {
	return Triple{
		Subject:    wt.Subject.toTerm(),
		Predicate:  wt.Predicate.toTerm(),
		Object:     wt.Object.toTerm(),
		IsAddition: isAddition,
	}
}
