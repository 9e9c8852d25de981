package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"product-docs-rag/internal/config"
	"product-docs-rag/internal/models"
)

// Embedder maps text to a vector of Dimension() floats. The same Embedder
// must serve ingestion and queries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Model adapts a langchaingo embedder and enforces the configured dimension.
type Model struct {
	client    embeddings.Embedder
	dimension int
	name      string
}

func NewModel(client embeddings.Embedder, dimension int, name string) *Model {
	return &Model{client: client, dimension: dimension, name: name}
}

// New builds the embedder selected by cfg.Provider.
func New(cfg *config.LLMConfig) (Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		return NewOllamaEmbedder(cfg)
	case config.ProviderOpenAI:
		return NewOpenAIEmbedder(cfg)
	case config.ProviderHash:
		return NewHashEmbedder(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", models.ErrConfiguration, cfg.Provider)
	}
}

func NewOllamaEmbedder(cfg *config.LLMConfig) (*Model, error) {
	log.Debug().Str("base_url", cfg.BaseURL).Str("model", cfg.Model).Int("dimension", cfg.Dimension).Msg("Creating ollama embedder")

	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init ollama client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create ollama embedder: %w", err)
	}
	return NewModel(embedder, cfg.Dimension, "ollama/"+cfg.Model), nil
}

// NewOpenAIEmbedder works with any OpenAI-compatible embeddings endpoint.
func NewOpenAIEmbedder(cfg *config.LLMConfig) (*Model, error) {
	log.Debug().Str("base_url", cfg.BaseURL).Str("model", cfg.Model).Int("dimension", cfg.Dimension).Msg("Creating openai embedder")

	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init openai client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create openai embedder: %w", err)
	}
	return NewModel(embedder, cfg.Dimension, "openai/"+cfg.Model), nil
}

func (m *Model) Dimension() int { return m.dimension }

func (m *Model) String() string { return m.name }

// Embed never returns a partial vector: empty input, client failures and
// vectors of the wrong size are all reported as models.ErrEmbedding.
func (m *Model) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", models.ErrEmbedding)
	}
	vec, err := m.client.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrEmbedding, err)
	}
	if len(vec) != m.dimension {
		return nil, fmt.Errorf("%w: %s returned %d values, expected %d", models.ErrEmbedding, m.name, len(vec), m.dimension)
	}
	return vec, nil
}
