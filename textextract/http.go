package textextract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPExtractor delegates extraction to an external Tika-like service
// reachable over HTTP: the raw bytes are PUT to the endpoint with their
// content type, and the response body is the extracted plain text.
type HTTPExtractor struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPExtractor builds an HTTPExtractor targeting endpoint (e.g.
// "http://tika:9998/tika").
func NewHTTPExtractor(endpoint string) *HTTPExtractor {
	return &HTTPExtractor{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (he *HTTPExtractor) Extract(ctx context.Context, raw []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, he.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("text extraction request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "text/plain")

	res, err := he.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("text extraction: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 16<<20))
	if err != nil {
		return "", fmt.Errorf("text extraction: read response: %w", err)
	}

	if res.StatusCode >= 300 {
		return "", fmt.Errorf("text extraction: status %d: %s", res.StatusCode, string(body))
	}

	return string(body), nil
}

var _ Extractor = (*HTTPExtractor)(nil)
