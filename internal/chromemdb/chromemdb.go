package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"product-docs-rag/internal/helper"
	"product-docs-rag/internal/models"
	"product-docs-rag/internal/store"
)

// Store keeps the corpus in a chromem-go collection, on disk or in memory.
type Store struct {
	db             *chromem.DB
	collectionName string
	dimension      int

	mu         sync.RWMutex
	collection *chromem.Collection
}

var _ store.Store = (*Store)(nil)

// NewVectorDBManager opens a persistent database under dbPath, or an in-memory
// one when inMemory is set, and makes sure the collection exists.
func NewVectorDBManager(dbPath, collectionName string, inMemory, compress bool, dimension int) (*Store, error) {
	var db *chromem.DB
	if inMemory {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}
	return newStore(db, collectionName, dimension)
}

func newStore(db *chromem.DB, collectionName string, dimension int) (*Store, error) {
	s := &Store{db: db, collectionName: collectionName, dimension: dimension}
	if err := s.getOrCreateCollection(); err != nil {
		return nil, err
	}
	return s, nil
}

// the embedding func is never called: documents and queries always carry vectors
func (s *Store) getOrCreateCollection() error {
	c, err := s.db.GetOrCreateCollection(s.collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create/get collection: %w", err)
	}
	s.collection = c
	return nil
}

func (s *Store) Insert(ctx context.Context, chunk models.Chunk) (string, error) {
	if len(chunk.Embedding) != s.dimension {
		err := fmt.Errorf("embedding has %d values, collection expects %d", len(chunk.Embedding), s.dimension)
		return "", models.NewStoreError("insert", models.ErrWriteFailed, err)
	}
	if chunk.Content == "" {
		return "", models.NewStoreError("insert", models.ErrWriteFailed, errors.New("empty content"))
	}

	id, err := helper.GenerateUUID()
	if err != nil {
		return "", models.NewStoreError("insert", models.ErrWriteFailed, err)
	}
	doc := chromem.Document{
		ID:        id,
		Content:   chunk.Content,
		Metadata:  chunk.Metadata.ToMap(),
		Embedding: chunk.Embedding,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.collection.AddDocument(ctx, doc); err != nil {
		return "", models.NewStoreError("insert", models.ErrWriteFailed, err)
	}
	return id, nil
}

// DeleteAll drops the collection and creates it again empty.
func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(s.collectionName); err != nil {
		return models.NewStoreError("delete_all", models.ErrDeleteFailed, err)
	}
	if err := s.getOrCreateCollection(); err != nil {
		return models.NewStoreError("delete_all", models.ErrDeleteFailed, err)
	}
	log.Debug().Str("collection", s.collectionName).Msg("Collection cleared")
	return nil
}

func (s *Store) Query(ctx context.Context, req models.QueryRequest) ([]models.QueryResult, error) {
	if len(req.Embedding) != s.dimension {
		err := fmt.Errorf("query embedding has %d values, collection expects %d", len(req.Embedding), s.dimension)
		return nil, models.NewStoreError("query", models.ErrQueryFailed, err)
	}
	if req.MatchCount <= 0 {
		return nil, models.NewStoreError("query", models.ErrQueryFailed, fmt.Errorf("match count must be positive, got %d", req.MatchCount))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// chromem refuses nResults larger than the collection
	n := min(req.MatchCount, s.collection.Count())
	if n == 0 {
		return []models.QueryResult{}, nil
	}

	var where map[string]string
	if req.Category != "" {
		where = map[string]string{models.MetaCategory: req.Category}
	}

	res, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: req.Embedding,
		NResults:       n,
		Where:          where,
	})
	if err != nil {
		return nil, models.NewStoreError("query", models.ErrQueryFailed, err)
	}

	results := make([]models.QueryResult, 0, len(res))
	for _, r := range res {
		sim := float64(r.Similarity)
		// ranked descending, so everything after the first miss is below too
		if sim < req.MatchThreshold {
			break
		}
		results = append(results, models.QueryResult{
			Content:    r.Content,
			Similarity: sim,
			Metadata:   models.MetadataFromMap(r.Metadata),
		})
	}
	return results, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Count(), nil
}

// Export writes the collection to path, encrypted when key is set.
func (s *Store) Export(path string, compress bool, key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.db.ExportToFile(path, compress, key, s.collectionName); err != nil {
		return fmt.Errorf("failed to export collection: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
