// Package recall is the append-only long-term dialogue memory: every
// non-empty utterance is embedded and indexed, and past utterances can be
// retrieved by similarity search scoped to one user.
package recall

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"strings"
)

// Record is one archived utterance.
type Record struct {
	ID     string
	UserID string
	Role   string
	Text   string
}

// Embedder maps text to a fixed-dimension vector. The mapping itself is an
// external collaborator; only the dimensionality is contractual here.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// VectorIndex is the storage backend for embedded records. Query results
// are ordered by descending similarity and restricted to one user.
type VectorIndex interface {
	Upsert(ctx context.Context, rec Record, embedding []float32) error
	Query(ctx context.Context, userID string, embedding []float32, limit int) ([]Record, error)
	Close() error
}

// Archive is the public long-term memory surface. Embedding and backend
// failures stop here: they are logged and degrade to a skipped write or an
// empty result so the caller's turn is never aborted.
type Archive struct {
	index VectorIndex
	embed Embedder
}

func NewArchive(index VectorIndex, embed Embedder) *Archive {
	return &Archive{index: index, embed: embed}
}

// Index archives one utterance. Blank text is a no-op.
func (a *Archive) Index(ctx context.Context, userID, role, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	embedding, err := a.embed.Embed(ctx, text)
	if err != nil {
		log.Printf("[recall] embed for %s failed, skipping index: %v", userID, err)
		return
	}

	rec := Record{
		ID:     recordID(userID, text),
		UserID: userID,
		Role:   role,
		Text:   text,
	}
	if err := a.index.Upsert(ctx, rec, embedding); err != nil {
		log.Printf("[recall] upsert for %s failed, skipping index: %v", userID, err)
	}
}

// Search returns up to limit archived texts relevant to the query, most
// similar first. A blank query returns nothing without touching the
// embedder; any failure returns nothing.
func (a *Archive) Search(ctx context.Context, userID, query string, limit int) []string {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil
	}

	embedding, err := a.embed.Embed(ctx, query)
	if err != nil {
		log.Printf("[recall] embed query for %s failed: %v", userID, err)
		return nil
	}

	records, err := a.index.Query(ctx, userID, embedding, limit)
	if err != nil {
		log.Printf("[recall] search for %s failed: %v", userID, err)
		return nil
	}

	texts := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Text != "" {
			texts = append(texts, rec.Text)
		}
	}
	return texts
}

// Close releases the backend.
func (a *Archive) Close() error {
	return a.index.Close()
}

// recordID derives a stable id from the owning user and the exact text, so
// re-archiving identical content overwrites instead of duplicating. The
// fnv64 collision risk across different texts is an accepted tradeoff.
func recordID(userID, text string) string {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return fmt.Sprintf("%016x", h.Sum64())
}
