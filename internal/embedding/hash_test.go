package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-docs-rag/internal/models"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestHashEmbedderDeterministic(t *testing.T) {
	ctx := context.Background()
	e := NewHashEmbedder(384)

	a, err := e.Embed(ctx, "¿Cómo hago un DAP?")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "¿Cómo hago un DAP?")
	require.NoError(t, err)

	require.Len(t, a, 384)
	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-6)
	}
	assert.InDelta(t, 1.0, cosine(a, a), 1e-6)
}

func TestHashEmbedderSimilarity(t *testing.T) {
	ctx := context.Background()
	e := NewHashEmbedder(384)

	doc, err := e.Embed(ctx, "Para hacer un DAP, ingrese a la app y seleccione ahorro.")
	require.NoError(t, err)
	related, err := e.Embed(ctx, "DAP: ¿cómo hago un DAP?")
	require.NoError(t, err)
	unrelated, err := e.Embed(ctx, "bloqueo tarjeta crédito extravío")
	require.NoError(t, err)

	assert.Greater(t, cosine(doc, related), cosine(doc, unrelated))
	assert.GreaterOrEqual(t, cosine(doc, related), 0.1)
}

func TestHashEmbedderRejectsTokenlessText(t *testing.T) {
	_, err := NewHashEmbedder(8).Embed(context.Background(), "¿? ... !!")
	assert.ErrorIs(t, err, models.ErrEmbedding)

	_, err = NewHashEmbedder(0).Embed(context.Background(), "hola")
	assert.ErrorIs(t, err, models.ErrEmbedding)
}
