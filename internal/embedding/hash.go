package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"product-docs-rag/internal/models"
)

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// HashEmbedder is an offline embedder based on the hashing trick: every
// lower-cased word token adds ±1 to one bucket and the result is L2
// normalized. Texts sharing vocabulary land close to each other, which is
// enough for local runs and tests without a model server.
type HashEmbedder struct {
	dimension int
}

func NewHashEmbedder(dimension int) *HashEmbedder {
	return &HashEmbedder{dimension: dimension}
}

func (h *HashEmbedder) Dimension() int { return h.dimension }

func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if h.dimension <= 0 {
		return nil, fmt.Errorf("%w: invalid dimension %d", models.ErrEmbedding, h.dimension)
	}
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens in text", models.ErrEmbedding)
	}

	vec := make([]float64, h.dimension)
	for _, tok := range tokens {
		f := fnv.New64a()
		_, _ = f.Write([]byte(tok))
		sum := f.Sum64()
		idx := int(sum % uint64(h.dimension))
		if sum&(1<<63) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		// every token cancelled out
		return nil, fmt.Errorf("%w: degenerate vector", models.ErrEmbedding)
	}

	out := make([]float32, h.dimension)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}
