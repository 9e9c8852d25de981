package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"product-docs-rag/internal/config"
	"product-docs-rag/internal/models"
	"product-docs-rag/internal/store"
)

type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            int64           `bun:"id,pk,autoincrement"`
	Content       string          `bun:"content,notnull"`
	Metadata      metadataJSON    `bun:"metadata,type:jsonb,notnull"`
	Embedding     pgvector.Vector `bun:"embedding,type:vector,notnull"`
}

// metadataJSON stores models.Metadata as a jsonb object.
type metadataJSON models.Metadata

func (m metadataJSON) Value() (driver.Value, error) {
	b, err := json.Marshal(models.Metadata(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *metadataJSON) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*m = metadataJSON{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}
	return json.Unmarshal(b, (*models.Metadata)(m))
}

type matchRow struct {
	Content    string       `bun:"content"`
	Metadata   metadataJSON `bun:"metadata"`
	Similarity float64      `bun:"similarity"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// ConnectDB opens the Supabase Postgres database with the configured driver.
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := buildDSN(cfg.URL, cfg.SSLMode)
	if err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		if cfg.Password != "" {
			if dsn, err = withPassword(dsn, cfg.Password); err != nil {
				return nil, err
			}
		}
		return sql.Open("postgres", dsn)
	case config.DriverPgdriver, "":
		opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
		if cfg.Password != "" {
			opts = append(opts, pgdriver.WithPassword(cfg.Password))
		}
		return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", models.ErrConfiguration, cfg.Driver)
	}
}

// buildDSN adds sslmode to rawURL unless it already carries one.
func buildDSN(rawURL, sslmode string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: parse database url: %w", models.ErrConfiguration, err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("%w: database url must use the postgres scheme, got %q", models.ErrConfiguration, u.Scheme)
	}
	q := u.Query()
	if q.Get("sslmode") == "" && sslmode != "" {
		q.Set("sslmode", sslmode)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func withPassword(dsn, password string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	if _, ok := u.User.Password(); ok {
		return dsn, nil
	}
	u.User = url.UserPassword(u.User.Username(), password)
	return u.String(), nil
}

// schemaStatements returns the DDL for the documents table and its search
// functions. Category filtering happens before ranking and limiting.
func schemaStatements(dimension int) []string {
	dim := strconv.Itoa(dimension)
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS documents (
	id bigserial PRIMARY KEY,
	content text NOT NULL,
	metadata jsonb NOT NULL DEFAULT '{}'::jsonb,
	embedding vector(` + dim + `) NOT NULL
)`,
		`CREATE OR REPLACE FUNCTION match_documents(
	query_embedding vector(` + dim + `),
	match_threshold float,
	match_count int
) RETURNS TABLE (id bigint, content text, metadata jsonb, similarity float)
LANGUAGE sql STABLE AS $$
	SELECT d.id, d.content, d.metadata, 1 - (d.embedding <=> query_embedding) AS similarity
	FROM documents d
	WHERE 1 - (d.embedding <=> query_embedding) >= match_threshold
	ORDER BY d.embedding <=> query_embedding
	LIMIT match_count;
$$`,
		`CREATE OR REPLACE FUNCTION match_documents_by_category(
	query_embedding vector(` + dim + `),
	match_threshold float,
	match_count int,
	category_name text
) RETURNS TABLE (id bigint, content text, metadata jsonb, similarity float)
LANGUAGE sql STABLE AS $$
	SELECT d.id, d.content, d.metadata, 1 - (d.embedding <=> query_embedding) AS similarity
	FROM documents d
	WHERE d.metadata->>'category' = category_name
		AND 1 - (d.embedding <=> query_embedding) >= match_threshold
	ORDER BY d.embedding <=> query_embedding
	LIMIT match_count;
$$`,
	}
}

// InitDB creates the pgvector extension, the documents table and the two
// match functions. It is safe to run repeatedly.
func InitDB(ctx context.Context, db *bun.DB, dimension int) error {
	for _, stmt := range schemaStatements(dimension) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	log.Info().Int("dimension", dimension).Msg("Database schema ready")
	return nil
}

// matchQuery picks the search function for req and its arguments.
func matchQuery(req models.QueryRequest) (string, []any) {
	vec := pgvector.NewVector(req.Embedding)
	if req.Category != "" {
		return "SELECT content, metadata, similarity FROM " + models.MatchDocumentsByCategoryFunc + "(?::vector, ?, ?, ?)",
			[]any{vec, req.MatchThreshold, req.MatchCount, req.Category}
	}
	return "SELECT content, metadata, similarity FROM " + models.MatchDocumentsFunc + "(?::vector, ?, ?)",
		[]any{vec, req.MatchThreshold, req.MatchCount}
}

// Store is the Supabase-backed document store.
type Store struct {
	db        *bun.DB
	dimension int
}

var _ store.Store = (*Store)(nil)

func NewStore(db *bun.DB, dimension int) *Store {
	return &Store{db: db, dimension: dimension}
}

// Open connects with cfg and returns a ready store.
func Open(ctx context.Context, cfg *config.DatabaseConfig, dimension int) (*Store, error) {
	sqldb, err := ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	bdb := NewDB(sqldb, cfg.Debug)
	if err := bdb.PingContext(ctx); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return NewStore(bdb, dimension), nil
}

func (s *Store) DB() *bun.DB { return s.db }

func (s *Store) Insert(ctx context.Context, chunk models.Chunk) (string, error) {
	if len(chunk.Embedding) != s.dimension {
		err := fmt.Errorf("embedding has %d values, table expects %d", len(chunk.Embedding), s.dimension)
		return "", models.NewStoreError("insert", models.ErrWriteFailed, err)
	}
	if chunk.Content == "" {
		return "", models.NewStoreError("insert", models.ErrWriteFailed, errors.New("empty content"))
	}

	doc := &Document{
		Content:   chunk.Content,
		Metadata:  metadataJSON(chunk.Metadata),
		Embedding: pgvector.NewVector(chunk.Embedding),
	}
	if _, err := s.db.NewInsert().Model(doc).Returning("id").Exec(ctx); err != nil {
		return "", models.NewStoreError("insert", models.ErrWriteFailed, err)
	}
	return strconv.FormatInt(doc.ID, 10), nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	res, err := s.db.NewDelete().Model((*Document)(nil)).Where("id <> ?", 0).Exec(ctx)
	if err != nil {
		return models.NewStoreError("delete", models.ErrDeleteFailed, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		log.Info().Int64("rows", n).Msg("Deleted documents")
	}
	return nil
}

func (s *Store) Query(ctx context.Context, req models.QueryRequest) ([]models.QueryResult, error) {
	if len(req.Embedding) != s.dimension {
		err := fmt.Errorf("query embedding has %d values, table expects %d", len(req.Embedding), s.dimension)
		return nil, models.NewStoreError("query", models.ErrQueryFailed, err)
	}
	if req.MatchCount <= 0 {
		return nil, models.NewStoreError("query", models.ErrQueryFailed, fmt.Errorf("match count must be positive, got %d", req.MatchCount))
	}

	query, args := matchQuery(req)
	var rows []matchRow
	if err := s.db.NewRaw(query, args...).Scan(ctx, &rows); err != nil {
		return nil, models.NewStoreError("query", models.ErrQueryFailed, err)
	}

	results := make([]models.QueryResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, models.QueryResult{
			Content:    r.Content,
			Similarity: r.Similarity,
			Metadata:   models.Metadata(r.Metadata),
		})
	}
	return results, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*Document)(nil)).Count(ctx)
	if err != nil {
		return 0, models.NewStoreError("count", models.ErrQueryFailed, err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
