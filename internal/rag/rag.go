package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"product-docs-rag/internal/embedding"
	"product-docs-rag/internal/models"
	"product-docs-rag/internal/store"
)

// Retriever answers product questions from the stored chunks. It must use
// the same embedder that ingested them.
type Retriever struct {
	embedder       embedding.Embedder
	store          store.Store
	matchCount     int
	matchThreshold float64
}

func NewRetriever(e embedding.Embedder, s store.Store, matchCount int, matchThreshold float64) *Retriever {
	return &Retriever{embedder: e, store: s, matchCount: matchCount, matchThreshold: matchThreshold}
}

// Search returns the chunks most similar to query. A product hint that
// matches a known product restricts the search to that category; any other
// hint only enriches the embedded text.
func (r *Retriever) Search(ctx context.Context, productHint, query string) ([]models.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.ErrEmptyQuery
	}
	productHint = strings.TrimSpace(productHint)

	category, ok := models.MatchProduct(productHint)
	if !ok && productHint != "" {
		log.Debug().Str("product", productHint).Msg("No known product matched, searching all categories")
	}

	return r.query(ctx, combinedQuery(productHint, query), category, r.matchThreshold)
}

// SemanticSearch runs an unfiltered search with its own threshold.
func (r *Retriever) SemanticSearch(ctx context.Context, query string, threshold float64) ([]models.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.ErrEmptyQuery
	}
	return r.query(ctx, query, "", threshold)
}

func (r *Retriever) query(ctx context.Context, text, category string, threshold float64) ([]models.QueryResult, error) {
	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.store.Query(ctx, models.QueryRequest{
		Embedding:      vec,
		MatchCount:     r.matchCount,
		MatchThreshold: threshold,
		Category:       category,
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Str("category", category).Int("count", len(results)).Msg("Search finished")
	return results, nil
}

// Retrieve is Search rendered for a conversational agent. It never fails:
// errors become a fixed apology and an empty result a request to rephrase.
func (r *Retriever) Retrieve(ctx context.Context, productHint, query string) string {
	results, err := r.Search(ctx, productHint, query)
	if err != nil {
		log.Error().Err(err).Str("product", productHint).Msg("Document search failed")
		return models.FailureMessage
	}
	if len(results) == 0 {
		if strings.TrimSpace(productHint) == "" {
			return fmt.Sprintf(models.NoResultsAnyProductMessage, query)
		}
		return fmt.Sprintf(models.NoResultsMessage, query, productHint)
	}
	return FormatResults(results)
}

func combinedQuery(productHint, query string) string {
	if productHint == "" {
		return query
	}
	return productHint + ": " + query
}

// FormatResults renders results under the results header, numbered from 1.
func FormatResults(results []models.QueryResult) string {
	parts := make([]string, 0, len(results))
	for i, res := range results {
		parts = append(parts, fmt.Sprintf(models.ResultTemplate, i+1, res.Similarity, res.Content, res.Metadata.Source))
	}
	return models.ResultsHeader + "\n\n" + strings.Join(parts, "\n\n")
}
