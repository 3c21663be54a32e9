package textextract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalExtractor_StripsHTML(t *testing.T) {
	le := NewLocalExtractor(16)
	text, err := le.Extract(context.Background(), []byte("<p>Hello <b>World</b></p>"), "text/html")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", text)
}

func TestLocalExtractor_PlainTextPassthrough(t *testing.T) {
	le := NewLocalExtractor(16)
	text, err := le.Extract(context.Background(), []byte("already plain"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "already plain", text)
}

func TestLocalExtractor_CachesByContentDigest(t *testing.T) {
	le := NewLocalExtractor(16)
	raw := []byte("<p>cache me</p>")

	first, err := le.Extract(context.Background(), raw, "text/html")
	require.NoError(t, err)

	cached, ok := le.cache.Get(contentDigest(raw))
	require.True(t, ok)
	assert.Equal(t, first, cached)

	second, err := le.Extract(context.Background(), raw, "text/html")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLocalExtractor_DisabledCache(t *testing.T) {
	le := NewLocalExtractor(0)
	assert.Nil(t, le.cache)

	text, err := le.Extract(context.Background(), []byte("<p>no cache</p>"), "text/html")
	require.NoError(t, err)
	assert.Equal(t, "no cache", text)
}
