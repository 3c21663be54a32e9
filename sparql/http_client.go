package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nbittich/mu-search/rdfterm"
)

// SudoHeaderValue is the privileged authorization header value: row-level
// filtering is bypassed by the endpoint when it sees this exact value.
const SudoHeaderValue = `[{"group":"sudo"}]`

// MuAuthGroupsHeader is the header carrying the caller's canonical
// allowed-groups JSON, the convention the row-level-authorizing SPARQL
// endpoint expects.
const MuAuthGroupsHeader = "Mu-Auth-Allowed-Groups"

// HTTPClient is a minimal SPARQL 1.1 protocol client bound to a single,
// already-resolved authorization header.
type HTTPClient struct {
	endpoint       string
	updateEndpoint string
	authHeader     string
	httpClient     *http.Client
}

// NewHTTPClient builds a client bound to authHeader (the exact value to
// send as Mu-Auth-Allowed-Groups; use SudoHeaderValue for privileged
// access).
func NewHTTPClient(endpoint, updateEndpoint, authHeader string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if updateEndpoint == "" {
		updateEndpoint = endpoint
	}
	return &HTTPClient{
		endpoint:       endpoint,
		updateEndpoint: updateEndpoint,
		authHeader:     authHeader,
		httpClient:     httpClient,
	}
}

func (c *HTTPClient) Select(ctx context.Context, sparql string) ([]Row, error) {
	var decoded sparqlSelectResults
	if err := c.query(ctx, sparql, "application/sparql-results+json", &decoded); err != nil {
		return nil, fmt.Errorf("sparql select: %w", err)
	}

	rows := make([]Row, 0, len(decoded.Results.Bindings))
	for _, binding := range decoded.Results.Bindings {
		row := make(Row, len(binding))
		for variable, term := range binding {
			row[variable] = term.toTerm()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *HTTPClient) Ask(ctx context.Context, sparql string) (bool, error) {
	var decoded sparqlAskResult
	if err := c.query(ctx, sparql, "application/sparql-results+json", &decoded); err != nil {
		return false, fmt.Errorf("sparql ask: %w", err)
	}
	return decoded.Boolean, nil
}

// Construct executes a CONSTRUCT query and decodes the resulting graph
// from the endpoint's JSON-LD-ish "application/rdf+json" serialisation:
// {"subjectURI": {"predicateURI": [{"value":..,"type":..}, ...]}}.
func (c *HTTPClient) Construct(ctx context.Context, sparql string) ([]Triple, error) {
	var decoded map[string]map[string][]sparqlTerm
	if err := c.query(ctx, sparql, "application/rdf+json", &decoded); err != nil {
		return nil, fmt.Errorf("sparql construct: %w", err)
	}

	var triples []Triple
	for subject, predicates := range decoded {
		for predicate, objects := range predicates {
			for _, obj := range objects {
				triples = append(triples, Triple{
					Subject:   rdfterm.URI(subject),
					Predicate: rdfterm.URI(predicate),
					Object:    obj.toTerm(),
				})
			}
		}
	}
	return triples, nil
}

func (c *HTTPClient) query(ctx context.Context, sparql, accept string, into interface{}) error {
	form := url.Values{"query": {sparql}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", accept)
	req.Header.Set(MuAuthGroupsHeader, c.authHeader)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("endpoint returned status %d: %s", res.StatusCode, body)
	}

	return json.NewDecoder(res.Body).Decode(into)
}

func (c *HTTPClient) Update(ctx context.Context, sparql string) error {
	form := url.Values{"update": {sparql}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.updateEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sparql update: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(MuAuthGroupsHeader, c.authHeader)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sparql update: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("sparql update: endpoint returned status %d: %s", res.StatusCode, body)
	}
	return nil
}

type sparqlSelectResults struct {
	Results struct {
		Bindings []map[string]sparqlTerm `json:"bindings"`
	} `json:"results"`
}

type sparqlAskResult struct {
	Boolean bool `json:"boolean"`
}

type sparqlTerm struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang"`
	Datatype string `json:"datatype"`
}

func (t sparqlTerm) toTerm() rdfterm.Term {
	switch t.Type {
	case "uri":
		return rdfterm.URI(t.Value)
	case "bnode":
		return rdfterm.Term{Type: rdfterm.TypeBNode, Value: t.Value}
	case "typed-literal", "literal":
		if t.Datatype != "" {
			return rdfterm.TypedLiteral(t.Value, t.Datatype)
		}
		if t.Lang != "" {
			return rdfterm.LangLiteral(t.Value, t.Lang)
		}
		return rdfterm.Literal(t.Value)
	default:
		return rdfterm.Literal(t.Value)
	}
}
