package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchBackend is the concrete search-backend collaborator,
// wrapping github.com/elastic/go-elasticsearch/v8.
type ElasticsearchBackend struct {
	es          *elasticsearch.Client
	syncRefresh bool
}

var _ Backend = (*ElasticsearchBackend)(nil)

// NewElasticsearchBackend dials the given Elasticsearch nodes. When
// syncRefresh is true, every write request blocks until its effect is
// visible to search (refresh=true); this trades indexing throughput for
// read-your-write consistency and should only be enabled in tests or for
// low-volume indexes.
func NewElasticsearchBackend(nodes []string, syncRefresh bool) (*ElasticsearchBackend, error) {
	cfg := elasticsearch.Config{Addresses: nodes}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("new elasticsearch backend: %w", err)
	}
	return &ElasticsearchBackend{es: client, syncRefresh: syncRefresh}, nil
}

func (b *ElasticsearchBackend) refreshOpt() string {
	if b.syncRefresh {
		return "true"
	}
	return "false"
}

func (b *ElasticsearchBackend) CreateIndex(ctx context.Context, name string, mappings, settings map[string]interface{}) error {
	body := map[string]interface{}{}
	if mappings != nil {
		body["mappings"] = mappings
	}
	if settings != nil {
		body["settings"] = settings
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("create index %q: %w", name, err)
	}

	res, err := b.es.Indices.Create(
		name,
		b.es.Indices.Create.WithContext(ctx),
		b.es.Indices.Create.WithBody(bytes.NewReader(encoded)),
	)
	if err != nil {
		return fmt.Errorf("create index %q: %w", name, err)
	}
	return decodeError(res)
}

func (b *ElasticsearchBackend) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := b.es.Indices.Exists([]string{name}, b.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("index exists %q: %w", name, err)
	}
	defer res.Body.Close()
	return res.StatusCode == 200, nil
}

func (b *ElasticsearchBackend) DeleteIndex(ctx context.Context, name string) error {
	res, err := b.es.Indices.Delete([]string{name}, b.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete index %q: %w", name, err)
	}
	return decodeError(res)
}

func (b *ElasticsearchBackend) ClearIndex(ctx context.Context, name string) error {
	matchAll := bytes.NewReader([]byte(`{"query":{"match_all":{}}}`))
	res, err := b.es.DeleteByQuery(
		[]string{name},
		matchAll,
		b.es.DeleteByQuery.WithContext(ctx),
		b.es.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("clear index %q: %w", name, err)
	}
	return decodeError(res)
}

func (b *ElasticsearchBackend) RefreshIndex(ctx context.Context, name string) error {
	res, err := b.es.Indices.Refresh(
		b.es.Indices.Refresh.WithContext(ctx),
		b.es.Indices.Refresh.WithIndex(name),
	)
	if err != nil {
		return fmt.Errorf("refresh index %q: %w", name, err)
	}
	return decodeError(res)
}

func (b *ElasticsearchBackend) InsertDocument(ctx context.Context, name, id string, doc Document) error {
	return b.write(doc, func(body *bytes.Reader) (*esapi.Response, error) {
		return b.es.Create(name, id, body, b.es.Create.WithContext(ctx), b.es.Create.WithRefresh(b.refreshOpt()))
	})
}

func (b *ElasticsearchBackend) UpsertDocument(ctx context.Context, name, id string, doc Document) error {
	return b.write(doc, func(body *bytes.Reader) (*esapi.Response, error) {
		return b.es.Index(name, body, b.es.Index.WithDocumentID(id), b.es.Index.WithContext(ctx), b.es.Index.WithRefresh(b.refreshOpt()))
	})
}

// write is a small shared helper: encode doc, run the request builder,
// decode any error response.
func (b *ElasticsearchBackend) write(doc Document, do func(*bytes.Reader) (*esapi.Response, error)) error {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	res, err := do(bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return decodeError(res)
}

func (b *ElasticsearchBackend) DeleteDocument(ctx context.Context, name, id string) error {
	res, err := b.es.Delete(name, id, b.es.Delete.WithContext(ctx), b.es.Delete.WithRefresh(b.refreshOpt()))
	if err != nil {
		return fmt.Errorf("delete document %q: %w", id, err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		// Missing-document delete is not an error (SPEC_FULL.md §4.8).
		return nil
	}
	return decodeError(res)
}

func (b *ElasticsearchBackend) Bulk(ctx context.Context, name string, ops []BulkOp) error {
	var buf bytes.Buffer
	for _, op := range ops {
		meta := map[string]interface{}{
			op.Action: map[string]interface{}{"_index": name, "_id": op.ID},
		}
		metaLine, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("bulk: encode meta: %w", err)
		}
		buf.Write(metaLine)
		buf.WriteByte('\n')

		if op.Action != "delete" {
			docLine, err := json.Marshal(op.Doc)
			if err != nil {
				return fmt.Errorf("bulk: encode doc: %w", err)
			}
			if op.Action == "update" {
				buf.WriteString(`{"doc":`)
				buf.Write(docLine)
				buf.WriteByte('}')
			} else {
				buf.Write(docLine)
			}
			buf.WriteByte('\n')
		}
	}

	res, err := b.es.Bulk(bytes.NewReader(buf.Bytes()), b.es.Bulk.WithContext(ctx), b.es.Bulk.WithRefresh(b.refreshOpt()))
	if err != nil {
		return fmt.Errorf("bulk: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return decodeErrorBody(res)
	}

	var decoded bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("bulk: decode response: %w", err)
	}
	if decoded.Errors {
		return fmt.Errorf("bulk: one or more operations failed")
	}
	return nil
}

func (b *ElasticsearchBackend) Search(ctx context.Context, name string, query map[string]interface{}) (SearchResponse, error) {
	encoded, err := json.Marshal(query)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}

	res, err := b.es.Search(
		b.es.Search.WithContext(ctx),
		b.es.Search.WithIndex(name),
		b.es.Search.WithBody(bytes.NewReader(encoded)),
	)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return SearchResponse{}, decodeErrorBody(res)
	}

	var decoded searchResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return SearchResponse{}, fmt.Errorf("search: decode response: %w", err)
	}

	out := SearchResponse{Total: decoded.Hits.Total.Value}
	for _, hit := range decoded.Hits.Hits {
		out.Hits = append(out.Hits, SearchResult{ID: hit.ID, Score: hit.Score, Source: hit.Source})
	}
	return out, nil
}

func (b *ElasticsearchBackend) Count(ctx context.Context, name string, query map[string]interface{}) (int64, error) {
	body := map[string]interface{}{}
	if query != nil {
		body["query"] = query["query"]
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}

	res, err := b.es.Count(
		b.es.Count.WithContext(ctx),
		b.es.Count.WithIndex(name),
		b.es.Count.WithBody(bytes.NewReader(encoded)),
	)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, decodeErrorBody(res)
	}

	var decoded struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("count: decode response: %w", err)
	}
	return decoded.Count, nil
}

func (b *ElasticsearchBackend) UploadAttachment(ctx context.Context, name, id, pipeline string, doc Document) error {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("upload attachment: %w", err)
	}
	res, err := b.es.Index(
		name,
		bytes.NewReader(encoded),
		b.es.Index.WithDocumentID(id),
		b.es.Index.WithContext(ctx),
		b.es.Index.WithPipeline(pipeline),
		b.es.Index.WithRefresh(b.refreshOpt()),
	)
	if err != nil {
		return fmt.Errorf("upload attachment: %w", err)
	}
	return decodeError(res)
}

type bulkResponse struct {
	Errors bool `json:"errors"`
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string   `json:"_id"`
			Score  float64  `json:"_score"`
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type esErrorResponse struct {
	ErrorDetail struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

func (e esErrorResponse) Error() string {
	return fmt.Sprintf("elasticsearch: %s (%s) status=%s", e.ErrorDetail.Reason, e.ErrorDetail.Type, strconv.Itoa(e.Status))
}

func decodeError(res *esapi.Response) error {
	defer res.Body.Close()
	if !res.IsError() {
		return nil
	}
	return decodeErrorBody(res)
}

func decodeErrorBody(res *esapi.Response) error {
	var errRes esErrorResponse
	if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
		return fmt.Errorf("elasticsearch: status %s and unreadable error body", res.Status())
	}
	return errRes
}
