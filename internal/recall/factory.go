package recall

import (
	"context"
	"strings"
)

// NewIndex creates a pgvector-backed index when a database URL is
// configured, otherwise an embedded chromem index (persistent when dataDir
// is set).
func NewIndex(ctx context.Context, databaseURL, dataDir string, dim int) (VectorIndex, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresIndex(ctx, databaseURL, dim)
	}
	return NewChromemIndex(dataDir)
}

// NewEmbedder returns the OpenAI-compatible embedder when an API key is
// configured, otherwise the deterministic local hash embedder.
func NewEmbedder(apiKey, baseURL, model string, dim int) Embedder {
	if strings.TrimSpace(apiKey) != "" {
		return NewOpenAIEmbedder(apiKey, baseURL, model, dim)
	}
	return NewHashEmbedder(dim)
}
