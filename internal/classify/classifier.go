// Package classify maps a narrative to one label from a fixed emergency-type
// taxonomy by cosine similarity in a shared embedding space.
package classify

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/akagup/go-emergency-response/internal/config"
	"github.com/akagup/go-emergency-response/internal/models"
)

// FallbackLabel is what callers record when classification is impossible.
const FallbackLabel = "unknown"

// Embedder produces one vector per input text in a shared vector space.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

type Classifier struct {
	embedder Embedder
	taxonomy []config.TaxonomyLabel
}

func New(embedder Embedder, taxonomy []config.TaxonomyLabel) *Classifier {
	return &Classifier{
		embedder: embedder,
		taxonomy: taxonomy,
	}
}

// Classify returns the taxonomy label most similar to the narrative and the
// similarity score. Exact ties resolve to the lexicographically first label.
// An empty narrative fails with ErrInsufficientInput before any embedding
// call; the classifier never guesses.
func (c *Classifier) Classify(ctx context.Context, narrative string) (string, float64, error) {
	if strings.TrimSpace(narrative) == "" {
		return "", 0, fmt.Errorf("empty narrative: %w", models.ErrInsufficientInput)
	}
	if len(c.taxonomy) == 0 {
		return "", 0, fmt.Errorf("empty taxonomy: %w", models.ErrInsufficientInput)
	}

	// One batched call: narrative first, then every label description.
	texts := make([]string, 0, len(c.taxonomy)+1)
	texts = append(texts, narrative)
	for _, t := range c.taxonomy {
		texts = append(texts, t.EmbedText())
	}

	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return "", 0, fmt.Errorf("classify: %w", err)
	}

	narrativeVec := vectors[0]
	bestLabel := ""
	bestSim := math.Inf(-1)
	for i, t := range c.taxonomy {
		sim := cosine(narrativeVec, vectors[i+1])
		if sim > bestSim || (sim == bestSim && t.Label < bestLabel) {
			bestSim = sim
			bestLabel = t.Label
		}
	}

	return bestLabel, clamp01(bestSim), nil
}

func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
