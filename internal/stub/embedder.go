package stub

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const embeddingDim = 64

// Embedder maps text to a fixed 64-dimension bag-of-words vector by hashing
// tokens into buckets. Deterministic and offline; similar texts share buckets
// and score high under cosine similarity, which is all the stub mode needs.
type Embedder struct{}

// NewEmbedder returns the deterministic embedder.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

func (e *Embedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, embeddingDim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?()[]{}\"'")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%embeddingDim]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}
