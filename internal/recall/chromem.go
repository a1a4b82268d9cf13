package recall

import (
	"context"
	"fmt"
	"strings"

	chromem "github.com/philippgille/chromem-go"
)

const chromemCollection = "memory_bridge_dialogs"

// ChromemIndex stores records in chromem-go, an embedded pure-Go vector
// database. With a data dir it persists across restarts; without one it
// lives in process memory only.
type ChromemIndex struct {
	col *chromem.Collection
}

// NewChromemIndex opens (or creates) the dialog collection. dataDir may be
// empty for an ephemeral in-memory index.
func NewChromemIndex(dataDir string) (*ChromemIndex, error) {
	var (
		db  *chromem.DB
		err error
	)
	if strings.TrimSpace(dataDir) == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dataDir, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	}

	// Embeddings are always supplied by the caller, so no embedding func.
	col, err := db.GetOrCreateCollection(chromemCollection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open chromem collection: %w", err)
	}
	return &ChromemIndex{col: col}, nil
}

func (c *ChromemIndex) Upsert(ctx context.Context, rec Record, embedding []float32) error {
	doc := chromem.Document{
		ID:        rec.ID,
		Content:   rec.Text,
		Embedding: embedding,
		Metadata: map[string]string{
			"user_id": rec.UserID,
			"role":    rec.Role,
		},
	}
	if err := c.col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

func (c *ChromemIndex) Query(ctx context.Context, userID string, embedding []float32, limit int) ([]Record, error) {
	where := map[string]string{"user_id": userID}

	// chromem rejects nResults larger than the number of matching documents,
	// so shrink the limit until the query goes through.
	var results []chromem.Result
	for n := limit; n >= 1; n-- {
		var err error
		results, err = c.col.QueryEmbedding(ctx, embedding, n, where, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if n == 1 {
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	records := make([]Record, 0, len(results))
	for _, res := range results {
		records = append(records, Record{
			ID:     res.ID,
			UserID: res.Metadata["user_id"],
			Role:   res.Metadata["role"],
			Text:   res.Content,
		})
	}
	return records, nil
}

func (c *ChromemIndex) Close() error { return nil }

func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
