package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"product-docs-rag/internal/models"
)

const (
	BackendSupabase = "supabase"
	BackendChromem  = "chromem"

	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderHash   = "hash"

	DriverPgdriver = "pgdriver"
	DriverPostgres = "postgres"

	defaultChunkSize       = 1000
	defaultChunkOverlap    = 200
	defaultMatchThreshold  = 0.1
	defaultMatchCount      = 5
	defaultSearchThreshold = 0.5
	defaultDimension       = 384
	defaultEmbedModel      = "all-minilm"
	defaultOllamaURL       = "http://localhost:11434"
	defaultCollection      = "documents"
	defaultChromemPath     = "./chromemdb"
	defaultDocumentsRoot   = "./documents"
	defaultLogLevel        = "info"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Store    StoreConfig    `yaml:"store"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	ChatLLM  LLMConfig      `yaml:"chat_llm"`
	RAG      RAGConfig      `yaml:"rag"`
	Ingest   IngestConfig   `yaml:"ingest"`
	LogLevel string         `yaml:"log_level"`
	Pretty   bool           `yaml:"pretty_logs"`
}

// DatabaseConfig points at the Supabase Postgres instance.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Driver   string `yaml:"driver"`
	SSLMode  string `yaml:"sslmode"`
	Debug    bool   `yaml:"debug"`
}

type StoreConfig struct {
	Backend    string `yaml:"backend"`
	Collection string `yaml:"collection"`
	Path       string `yaml:"path"`
	InMemory   bool   `yaml:"in_memory"`
	Compress   bool   `yaml:"compress"`
}

// LLMConfig configures a langchaingo client. Provider is one of ollama,
// openai or hash (hash is only valid for embeddings).
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	Key       string `yaml:"key"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
}

type RAGConfig struct {
	ChunkSize          int     `yaml:"chunk_size"`
	ChunkOverlap       int     `yaml:"chunk_overlap"`
	MatchThreshold     float64 `yaml:"match_threshold"`
	MatchCount         int     `yaml:"match_count"`
	SearchThreshold    float64 `yaml:"search_threshold"`
	KeepShortDocuments *bool   `yaml:"keep_short_documents"`
}

type IngestConfig struct {
	RootDir string `yaml:"root_dir"`
}

// Defaults returns the configuration used for every key a file or the
// environment leaves unset.
func Defaults() Config {
	keep := true
	return Config{
		Database: DatabaseConfig{Driver: DriverPgdriver, SSLMode: "require"},
		Store: StoreConfig{
			Backend:    BackendSupabase,
			Collection: defaultCollection,
			Path:       defaultChromemPath,
		},
		EmbedLLM: LLMConfig{
			Provider:  ProviderOllama,
			Model:     defaultEmbedModel,
			Dimension: defaultDimension,
		},
		ChatLLM: LLMConfig{Provider: ProviderOpenAI},
		RAG: RAGConfig{
			ChunkSize:          defaultChunkSize,
			ChunkOverlap:       defaultChunkOverlap,
			MatchThreshold:     defaultMatchThreshold,
			MatchCount:         defaultMatchCount,
			SearchThreshold:    defaultSearchThreshold,
			KeepShortDocuments: &keep,
		},
		Ingest:   IngestConfig{RootDir: defaultDocumentsRoot},
		LogLevel: defaultLogLevel,
	}
}

// LoadConfig starts from Defaults, decodes the YAML file at path on top
// (a missing file is fine) and applies .env and environment overrides.
// Explicit zero values in the file are kept. It does not validate; call
// Validate before using the result.
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	// a missing .env is fine, the process environment still applies
	_ = godotenv.Load()

	applyEnv(&cfg)
	fillEmpty(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.URL, "SUPABASE_URL")
	setString(&cfg.Database.Password, "SUPABASE_KEY")
	setString(&cfg.Ingest.RootDir, "DOCUMENTS_ROOT")
	setString(&cfg.EmbedLLM.BaseURL, "EMBEDDING_BASE_URL")
	setString(&cfg.EmbedLLM.Model, "EMBEDDING_MODEL")
	setString(&cfg.ChatLLM.Key, "OPENROUTER_KEY")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.Store.Backend, "STORE_BACKEND")
	setInt(&cfg.RAG.ChunkSize, "CHUNK_SIZE")
	setInt(&cfg.RAG.ChunkOverlap, "CHUNK_OVERLAP")
	setInt(&cfg.RAG.MatchCount, "MATCH_COUNT")
	setFloat(&cfg.RAG.MatchThreshold, "MATCH_THRESHOLD")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		*dst = v
	}
}

// fillEmpty restores defaults for strings a file blanked out; an empty
// backend or provider name is never meaningful.
func fillEmpty(cfg *Config) {
	type field struct {
		dst *string
		def string
	}
	def := Defaults()
	for _, f := range []field{
		{&cfg.Store.Backend, def.Store.Backend},
		{&cfg.Store.Collection, def.Store.Collection},
		{&cfg.Store.Path, def.Store.Path},
		{&cfg.Database.Driver, def.Database.Driver},
		{&cfg.Database.SSLMode, def.Database.SSLMode},
		{&cfg.EmbedLLM.Provider, def.EmbedLLM.Provider},
		{&cfg.EmbedLLM.Model, def.EmbedLLM.Model},
		{&cfg.ChatLLM.Provider, def.ChatLLM.Provider},
		{&cfg.Ingest.RootDir, def.Ingest.RootDir},
		{&cfg.LogLevel, def.LogLevel},
	} {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
	if cfg.EmbedLLM.BaseURL == "" && cfg.EmbedLLM.Provider == ProviderOllama {
		cfg.EmbedLLM.BaseURL = defaultOllamaURL
	}
	if cfg.RAG.KeepShortDocuments == nil {
		keep := true
		cfg.RAG.KeepShortDocuments = &keep
	}
}

// Validate fails fast on settings no component can work with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendSupabase:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database url (SUPABASE_URL) is required for the supabase backend"))
		}
		if c.Database.Driver != DriverPgdriver && c.Database.Driver != DriverPostgres {
			errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
		}
	case BackendChromem:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	switch c.EmbedLLM.Provider {
	case ProviderOllama, ProviderOpenAI, ProviderHash:
	default:
		errs = append(errs, fmt.Errorf("unknown embedding provider %q", c.EmbedLLM.Provider))
	}
	if c.EmbedLLM.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("embedding dimension must be positive, got %d", c.EmbedLLM.Dimension))
	}

	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkSize <= c.RAG.ChunkOverlap {
		errs = append(errs, fmt.Errorf("chunk size %d must be greater than overlap %d", c.RAG.ChunkSize, c.RAG.ChunkOverlap))
	}
	if c.RAG.MatchCount <= 0 {
		errs = append(errs, fmt.Errorf("match count must be positive, got %d", c.RAG.MatchCount))
	}
	for _, th := range []float64{c.RAG.MatchThreshold, c.RAG.SearchThreshold} {
		if th < 0 || th > 1 {
			errs = append(errs, fmt.Errorf("match threshold %v outside [0,1]", th))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", models.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// KeepShort reports whether the sole short chunk of a document is kept.
func (r RAGConfig) KeepShort() bool {
	return r.KeepShortDocuments == nil || *r.KeepShortDocuments
}
