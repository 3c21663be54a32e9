// Package search provides the Elasticsearch-compatible search backend
// collaborator.
package search

import "context"

// Document is a projected document ready to be upserted; its shape is
// whatever the Document Builder produced, keyed by property name.
type Document map[string]interface{}

// SearchResult is one hit returned by a Search call.
type SearchResult struct {
	ID     string
	Score  float64
	Source Document
}

// SearchResponse is the full result of a Search call.
type SearchResponse struct {
	Total int64
	Hits  []SearchResult
}

// BulkOp is one operation in a Bulk call.
type BulkOp struct {
	Action string // "index", "update" or "delete"
	ID     string
	Doc    Document
}

// Backend is the search-backend collaborator the core depends on.
type Backend interface {
	CreateIndex(ctx context.Context, name string, mappings, settings map[string]interface{}) error
	IndexExists(ctx context.Context, name string) (bool, error)
	DeleteIndex(ctx context.Context, name string) error
	ClearIndex(ctx context.Context, name string) error
	RefreshIndex(ctx context.Context, name string) error
	InsertDocument(ctx context.Context, name, id string, doc Document) error
	UpsertDocument(ctx context.Context, name, id string, doc Document) error
	DeleteDocument(ctx context.Context, name, id string) error
	Bulk(ctx context.Context, name string, ops []BulkOp) error
	Search(ctx context.Context, name string, query map[string]interface{}) (SearchResponse, error)
	Count(ctx context.Context, name string, query map[string]interface{}) (int64, error)
	UploadAttachment(ctx context.Context, name, id, pipeline string, doc Document) error
}
