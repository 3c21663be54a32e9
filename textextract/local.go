package textextract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
)

var repeatedSpaceRegex = regexp.MustCompile(`\s+`)

// LocalExtractor strips HTML markup in-process using bluemonday and
// memoises the result by the SHA-256 digest of the raw content, so the
// same attachment body is never sanitised twice.
type LocalExtractor struct {
	policyPool sync.Pool
	cache      *lru.Cache[string, string]
}

// NewLocalExtractor builds a LocalExtractor whose content-addressed cache
// holds up to cacheSize entries; a non-positive cacheSize disables caching.
func NewLocalExtractor(cacheSize int) *LocalExtractor {
	le := &LocalExtractor{
		policyPool: sync.Pool{
			New: func() interface{} {
				return bluemonday.StrictPolicy()
			},
		},
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, string](cacheSize)
		if err == nil {
			le.cache = cache
		}
	}
	return le
}

func (le *LocalExtractor) Extract(_ context.Context, raw []byte, contentType string) (string, error) {
	key := contentDigest(raw)
	if le.cache != nil {
		if cached, ok := le.cache.Get(key); ok {
			return cached, nil
		}
	}

	text := le.sanitize(raw, contentType)

	if le.cache != nil {
		le.cache.Add(key, text)
	}
	return text, nil
}

func (le *LocalExtractor) sanitize(raw []byte, contentType string) string {
	if !strings.Contains(contentType, "html") && !strings.Contains(contentType, "xml") {
		// Not markup; assume the bytes are already plain text.
		return strings.TrimSpace(string(raw))
	}

	policy := le.policyPool.Get().(*bluemonday.Policy)
	defer le.policyPool.Put(policy)

	sanitized := policy.SanitizeBytes(raw)
	return strings.TrimSpace(html.UnescapeString(repeatedSpaceRegex.ReplaceAllString(string(sanitized), " ")))
}

func contentDigest(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

var _ Extractor = (*LocalExtractor)(nil)
