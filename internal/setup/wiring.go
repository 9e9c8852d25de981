package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"product-docs-rag/internal/chromemdb"
	"product-docs-rag/internal/chunker"
	"product-docs-rag/internal/config"
	"product-docs-rag/internal/db"
	"product-docs-rag/internal/embedding"
	"product-docs-rag/internal/helper"
	"product-docs-rag/internal/ingest"
	"product-docs-rag/internal/llmservice"
	"product-docs-rag/internal/models"
	"product-docs-rag/internal/parser"
	"product-docs-rag/internal/rag"
	"product-docs-rag/internal/store"
)

// Dependencies holds the process-wide components built from one Config.
// Ingestion and retrieval share the same Embedder and Store.
type Dependencies struct {
	Config    *config.Config
	Store     store.Store
	Embedder  embedding.Embedder
	Pipeline  *ingest.Pipeline
	Retriever *rag.Retriever
}

func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	embedder, err := embedding.New(&cfg.EmbedLLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	chk, err := chunker.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap, cfg.RAG.KeepShort())
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("backend", cfg.Store.Backend).
		Str("embedder", cfg.EmbedLLM.Provider).
		Int("dimension", embedder.Dimension()).
		Msg("Components wired")

	return &Dependencies{
		Config:    cfg,
		Store:     st,
		Embedder:  embedder,
		Pipeline:  ingest.NewPipeline(chk, embedder, st, parser.Extractor{}),
		Retriever: rag.NewRetriever(embedder, st, cfg.RAG.MatchCount, cfg.RAG.MatchThreshold),
	}, nil
}

// OpenStore opens the backend selected by cfg.Store.Backend.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	dim := cfg.EmbedLLM.Dimension
	switch cfg.Store.Backend {
	case config.BackendSupabase:
		s, err := db.Open(ctx, &cfg.Database, dim)
		if err != nil {
			return nil, fmt.Errorf("failed to open supabase store: %w", err)
		}
		return s, nil
	case config.BackendChromem:
		if !cfg.Store.InMemory {
			if err := helper.CreateFolder(cfg.Store.Path); err != nil {
				return nil, err
			}
		}
		s, err := chromemdb.NewVectorDBManager(cfg.Store.Path, cfg.Store.Collection, cfg.Store.InMemory, cfg.Store.Compress, dim)
		if err != nil {
			return nil, fmt.Errorf("failed to open chromem store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// NewAssistant builds the chat agent on top of the retriever. It is separate
// from Wire so that ingestion runs without chat credentials.
func (d *Dependencies) NewAssistant() (*llmservice.Assistant, error) {
	llm, err := llmservice.NewChatModel(&d.Config.ChatLLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return llmservice.NewAssistant(llm, d.Retriever), nil
}

// InitSchema creates the Supabase table and search functions. Other
// backends need no schema.
func (d *Dependencies) InitSchema(ctx context.Context) error {
	s, ok := d.Store.(*db.Store)
	if !ok {
		log.Info().Str("backend", d.Config.Store.Backend).Msg("Backend needs no schema, skipping")
		return nil
	}
	return db.InitDB(ctx, s.DB(), d.Embedder.Dimension())
}

// Export writes the local collection to path. Only the chromem backend
// supports it.
func (d *Dependencies) Export(path, key string) error {
	s, ok := d.Store.(*chromemdb.Store)
	if !ok {
		return errors.New("export is only supported by the chromem backend")
	}
	return s.Export(path, d.Config.Store.Compress, key)
}

func (d *Dependencies) Close() error {
	return d.Store.Close()
}

// PreviewChunks returns the chunks doc would be stored as, without
// embeddings. It needs neither a store nor an embedding model.
func PreviewChunks(cfg *config.Config, doc models.SourceDocument) ([]models.Chunk, error) {
	chk, err := chunker.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap, cfg.RAG.KeepShort())
	if err != nil {
		return nil, err
	}
	return ingest.NewPipeline(chk, nil, nil, nil).Prepare(doc), nil
}
