package setup

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-docs-rag/internal/config"
	"product-docs-rag/internal/models"
	"product-docs-rag/internal/source"
)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	keep := true
	return &config.Config{
		Store:    config.StoreConfig{Backend: config.BackendChromem, Collection: "documents", InMemory: true},
		EmbedLLM: config.LLMConfig{Provider: config.ProviderHash, Dimension: 128},
		ChatLLM:  config.LLMConfig{Provider: "unknown"},
		RAG: config.RAGConfig{
			ChunkSize:          1000,
			ChunkOverlap:       200,
			MatchThreshold:     0.1,
			SearchThreshold:    0.5,
			MatchCount:         5,
			KeepShortDocuments: &keep,
		},
	}
}

func TestWireLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	deps, err := Wire(ctx, localConfig(t))
	require.NoError(t, err)
	defer deps.Close()

	report := deps.Pipeline.IngestDocument(ctx, models.SourceDocument{
		Text:     "Para hacer un DAP, ingrese a la app y seleccione ahorro.",
		Source:   "manual.pdf",
		Category: "DAP",
	})
	require.NoError(t, report.Err)

	res, err := deps.Retriever.Search(ctx, "DAP", "¿cómo hago un DAP?")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "manual.pdf", res[0].Metadata.Source)

	assert.NoError(t, deps.InitSchema(ctx))
	assert.NoError(t, deps.Export(filepath.Join(t.TempDir(), "documents.gob"), ""))

	_, err = deps.NewAssistant()
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestWireRejectsInvalidConfig(t *testing.T) {
	cfg := localConfig(t)
	cfg.RAG.ChunkOverlap = cfg.RAG.ChunkSize

	_, err := Wire(context.Background(), cfg)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestWirePersistentChromemStore(t *testing.T) {
	ctx := context.Background()
	cfg := localConfig(t)
	cfg.Store.InMemory = false
	cfg.Store.Path = filepath.Join(t.TempDir(), "chromemdb")

	deps, err := Wire(ctx, cfg)
	require.NoError(t, err)

	batch, err := deps.Pipeline.Reindex(ctx, []source.File{})
	require.NoError(t, err)
	assert.Empty(t, batch.Documents)

	n, err := deps.Store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPreviewChunks(t *testing.T) {
	chunks, err := PreviewChunks(localConfig(t), models.SourceDocument{
		Text:   "Para hacer un DAP,\ningrese a la app.",
		Source: "manual.pdf",
		Folder: "DAP",
	})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Para hacer un DAP, ingrese a la app.", chunks[0].Content)
	assert.Equal(t, "DAP", chunks[0].Metadata.Category)
	assert.Nil(t, chunks[0].Embedding)
}
