package chromemdb

import (
	"context"
	"testing"

	"github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-docs-rag/internal/embedding"
	"product-docs-rag/internal/models"
)

const dim = 128

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := newStore(chromem.NewDB(), "documents", dim)
	require.NoError(t, err)
	return s
}

func insertText(t *testing.T, s *Store, e embedding.Embedder, text, category string, idx int) {
	t.Helper()
	vec, err := e.Embed(context.Background(), text)
	require.NoError(t, err)
	_, err = s.Insert(context.Background(), models.Chunk{
		Content:   text,
		Embedding: vec,
		Metadata:  models.Metadata{Source: category + ".pdf", Category: category, ChunkIndex: idx, TotalChunks: 1},
	})
	require.NoError(t, err)
}

func query(t *testing.T, s *Store, e embedding.Embedder, text, category string, count int, threshold float64) []models.QueryResult {
	t.Helper()
	vec, err := e.Embed(context.Background(), text)
	require.NoError(t, err)
	res, err := s.Query(context.Background(), models.QueryRequest{
		Embedding:      vec,
		MatchCount:     count,
		MatchThreshold: threshold,
		Category:       category,
	})
	require.NoError(t, err)
	return res
}

func TestQueryEmptyStore(t *testing.T) {
	s := newTestStore(t)
	e := embedding.NewHashEmbedder(dim)

	res := query(t, s, e, "¿cómo hago un DAP?", "", 5, 0.1)
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

func TestInsertThenQueryOwnContentRanksFirst(t *testing.T) {
	s := newTestStore(t)
	e := embedding.NewHashEmbedder(dim)

	insertText(t, s, e, "Para hacer un DAP, ingrese a la app y seleccione ahorro.", "DAP", 0)
	insertText(t, s, e, "Para bloquear su tarjeta de crédito llame al contact center.", "Tarjetas de Crédito", 0)
	insertText(t, s, e, "La transferencia LBTR se procesa en tiempo real entre bancos.", "LBTR", 0)

	res := query(t, s, e, "Para bloquear su tarjeta de crédito llame al contact center.", "", 3, 0.1)
	require.NotEmpty(t, res)
	assert.Equal(t, "Tarjetas de Crédito", res[0].Metadata.Category)
	assert.InDelta(t, 1.0, res[0].Similarity, 1e-4)
	for i := 1; i < len(res); i++ {
		assert.GreaterOrEqual(t, res[i-1].Similarity, res[i].Similarity)
	}
}

func TestQueryCategoryFilterIsExclusive(t *testing.T) {
	s := newTestStore(t)
	e := embedding.NewHashEmbedder(dim)

	insertText(t, s, e, "DAP renovable a plazo fijo en pesos", "DAP", 0)
	insertText(t, s, e, "DAP renovable a plazo fijo en dólares", "DAP", 1)
	insertText(t, s, e, "Compra de dólares a plazo fijo desde la app", "Compra Dolares", 0)

	filtered := query(t, s, e, "plazo fijo", "Compra Dolares", 5, 0)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Compra Dolares", filtered[0].Metadata.Category)

	unfiltered := query(t, s, e, "plazo fijo", "", 5, 0)
	assert.Len(t, unfiltered, 3)
}

func TestQueryCategoryFilterAppliesBeforeRanking(t *testing.T) {
	s := newTestStore(t)
	e := embedding.NewHashEmbedder(dim)

	insertText(t, s, e, "bloqueo de tarjeta de crédito por robo", "Tarjetas de Crédito", 0)
	insertText(t, s, e, "bloqueo de tarjeta de crédito en el extranjero", "Tarjetas de Crédito", 1)
	insertText(t, s, e, "renovación del depósito a plazo", "DAP", 0)

	top := query(t, s, e, "bloqueo de tarjeta de crédito por robo", "", 1, -1)
	require.Len(t, top, 1)
	require.Equal(t, "Tarjetas de Crédito", top[0].Metadata.Category)

	// the DAP chunk ranks last overall but is the only candidate in its category
	// -1 is below any cosine similarity, so nothing is cut by the threshold
	res := query(t, s, e, "bloqueo de tarjeta de crédito por robo", "DAP", 1, -1)
	require.Len(t, res, 1)
	assert.Equal(t, "DAP", res[0].Metadata.Category)
	assert.Equal(t, "renovación del depósito a plazo", res[0].Content)
}

func TestQueryThresholdAndCount(t *testing.T) {
	s := newTestStore(t)
	e := embedding.NewHashEmbedder(dim)

	insertText(t, s, e, "clave de acceso bloqueada", "Reset y Recuperacion Clave", 0)
	insertText(t, s, e, "recuperar clave de acceso", "Reset y Recuperacion Clave", 1)
	insertText(t, s, e, "abonos masivos a proveedores", "abonos Masivos", 0)

	assert.Len(t, query(t, s, e, "clave de acceso", "", 1, 0), 1)

	strict := query(t, s, e, "clave de acceso", "", 5, 0.99)
	assert.Empty(t, strict)
}

func TestInsertRejectsWrongDimension(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Insert(context.Background(), models.Chunk{Content: "x", Embedding: []float32{1, 0}})
	assert.ErrorIs(t, err, models.ErrWriteFailed)

	_, err = s.Query(context.Background(), models.QueryRequest{Embedding: []float32{1}, MatchCount: 1})
	assert.ErrorIs(t, err, models.ErrQueryFailed)
}

func TestDeleteAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	e := embedding.NewHashEmbedder(dim)

	require.NoError(t, s.DeleteAll(ctx))
	insertText(t, s, e, "manual de onboarding empresas", "Onboarding Empresas", 0)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.DeleteAll(ctx))
	require.NoError(t, s.DeleteAll(ctx))
	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, query(t, s, e, "onboarding", "", 5, 0))
}

func TestPersistentStoreReopens(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := embedding.NewHashEmbedder(dim)

	s, err := NewVectorDBManager(dir, "documents", false, false, dim)
	require.NoError(t, err)
	insertText(t, s, e, "pago de línea de crédito", "Pago de Linea", 0)

	reopened, err := NewVectorDBManager(dir, "documents", false, false, dim)
	require.NoError(t, err)
	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
