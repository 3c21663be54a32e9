// Package textextract turns raw attachment bytes into plain text for
// indexing, either by stripping markup locally or by delegating to an
// external extraction service.
package textextract

import "context"

// Extractor is the text-extraction collaborator the Document Builder
// depends on when projecting an "attachment" property.
type Extractor interface {
	// Extract returns the plain-text content of raw, whose media type is
	// given by contentType (e.g. "text/html", "application/pdf").
	Extract(ctx context.Context, raw []byte, contentType string) (string, error)
}
