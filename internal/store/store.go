package store

import (
	"context"

	"product-docs-rag/internal/models"
)

// Store persists chunks and answers nearest-neighbour queries over their
// embeddings. Errors are *models.StoreError values.
type Store interface {
	// Insert appends one chunk and returns its backend id.
	Insert(ctx context.Context, chunk models.Chunk) (string, error)

	// DeleteAll removes every chunk. Deleting an empty store succeeds.
	DeleteAll(ctx context.Context) error

	// Query returns at most req.MatchCount chunks with similarity >=
	// req.MatchThreshold, most similar first. A non-empty req.Category
	// restricts the candidates before ranking. An empty store yields an
	// empty slice and no error.
	Query(ctx context.Context, req models.QueryRequest) ([]models.QueryResult, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	Close() error
}
