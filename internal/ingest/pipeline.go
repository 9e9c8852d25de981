package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"product-docs-rag/internal/chunker"
	"product-docs-rag/internal/embedding"
	"product-docs-rag/internal/models"
	"product-docs-rag/internal/source"
	"product-docs-rag/internal/store"
)

// Extractor turns a document file into plain text.
type Extractor interface {
	ExtractText(path string) (string, error)
}

// Pipeline normalizes, chunks, embeds and stores documents one at a time.
// A failing chunk or document is reported and skipped; it never stops the
// rest of the batch.
type Pipeline struct {
	chunker   *chunker.Chunker
	embedder  embedding.Embedder
	store     store.Store
	extractor Extractor
}

func NewPipeline(c *chunker.Chunker, e embedding.Embedder, s store.Store, x Extractor) *Pipeline {
	return &Pipeline{chunker: c, embedder: e, store: s, extractor: x}
}

// Prepare returns the chunks of doc with their metadata filled in and no
// embeddings.
func (p *Pipeline) Prepare(doc models.SourceDocument) []models.Chunk {
	texts := p.chunker.Split(chunker.Normalize(doc.Text))
	category := models.ResolveCategory(doc.Category, doc.Folder)

	chunks := make([]models.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, models.Chunk{
			Content: text,
			Metadata: models.Metadata{
				Source:      doc.Source,
				Path:        doc.Path,
				Category:    category,
				ChunkIndex:  i,
				TotalChunks: len(texts),
			},
		})
	}
	return chunks
}

// IngestDocument stores every chunk of doc it can and reports the rest.
func (p *Pipeline) IngestDocument(ctx context.Context, doc models.SourceDocument) DocumentReport {
	chunks := p.Prepare(doc)
	report := DocumentReport{
		Source:      doc.Source,
		Category:    models.ResolveCategory(doc.Category, doc.Folder),
		TotalChunks: len(chunks),
	}
	logger := log.With().Str("source", doc.Source).Str("category", report.Category).Logger()

	if len(chunks) == 0 {
		report.Err = fmt.Errorf("%w: %s produced no chunks", models.ErrExtraction, doc.Source)
		logger.Warn().Msg("Document produced no chunks, skipping")
		return report
	}

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			report.Err = err
			logger.Warn().Err(err).Msg("Ingestion cancelled")
			return report
		}

		idx := chunk.Metadata.ChunkIndex
		vec, err := p.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			report.Failures = append(report.Failures, ChunkFailure{ChunkIndex: idx, Stage: StageEmbed, Err: err})
			logger.Error().Err(err).Int("chunk_index", idx).Msg("Failed to embed chunk")
			continue
		}
		chunk.Embedding = vec

		if _, err := p.store.Insert(ctx, chunk); err != nil {
			report.Failures = append(report.Failures, ChunkFailure{ChunkIndex: idx, Stage: StageInsert, Err: err})
			logger.Error().Err(err).Int("chunk_index", idx).Msg("Failed to store chunk")
			continue
		}
		report.Stored++
	}

	if report.Stored == 0 {
		report.Err = fmt.Errorf("none of %d chunks stored: %w", report.TotalChunks, report.Failures[0].Err)
		logger.Error().Err(report.Err).Msg("Document not stored")
		return report
	}

	logger.Info().Int("count", report.Stored).Int("total_chunks", report.TotalChunks).Msg("Processed document")
	return report
}

// IngestFiles extracts and ingests files in order.
func (p *Pipeline) IngestFiles(ctx context.Context, files []source.File) BatchReport {
	var batch BatchReport
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("remaining", len(files)-len(batch.Documents)).Msg("Batch cancelled")
			break
		}
		batch.Documents = append(batch.Documents, p.ingestFile(ctx, f))
	}
	batch.Log()
	return batch
}

func (p *Pipeline) ingestFile(ctx context.Context, f source.File) DocumentReport {
	text, err := p.extractor.ExtractText(f.Path)
	if err != nil {
		log.Warn().Err(err).Str("source", f.Name).Msg("Could not extract text, skipping")
		return DocumentReport{
			Source:   f.Name,
			Category: models.ResolveCategory("", f.Folder),
			Err:      err,
		}
	}
	return p.IngestDocument(ctx, models.SourceDocument{
		Text:   text,
		Source: f.Name,
		Path:   f.Path,
		Folder: f.Folder,
	})
}

// Reindex replaces the whole corpus with files. If the store cannot be
// cleared nothing is ingested.
func (p *Pipeline) Reindex(ctx context.Context, files []source.File) (BatchReport, error) {
	log.Info().Int("count", len(files)).Msg("Clearing document store before re-indexing")
	if err := p.store.DeleteAll(ctx); err != nil {
		return BatchReport{}, fmt.Errorf("clear store: %w", err)
	}
	return p.IngestFiles(ctx, files), nil
}
