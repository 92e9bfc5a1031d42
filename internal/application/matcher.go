package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"dictation-pdf/internal/domain"
)

// Match is the outcome of scoring a transcript against the catalog.
type Match struct {
	Key    string
	Score  float64
	Scores []TemplateScore
}

type TemplateScore struct {
	Key   string
	Score float64
}

// Matcher selects the catalog template whose description is semantically
// closest to a transcript. Description embeddings are computed on first use
// and reused for every later call.
type Matcher struct {
	embedder Embedder
	catalog  *domain.Catalog
	logger   *slog.Logger

	mu      sync.Mutex
	vectors [][]float32
}

func NewMatcher(embedder Embedder, catalog *domain.Catalog, logger *slog.Logger) *Matcher {
	return &Matcher{
		embedder: embedder,
		catalog:  catalog,
		logger:   logger,
	}
}

// Match returns the best-scoring template. Equal scores resolve to the
// template that comes first in the catalog.
func (m *Matcher) Match(ctx context.Context, transcript string) (Match, error) {
	if m.catalog == nil || m.catalog.Len() == 0 {
		return Match{}, domain.ErrEmptyCatalog
	}

	templateVecs, err := m.templateVectors(ctx)
	if err != nil {
		return Match{}, err
	}

	query, err := m.embedder.Embed(ctx, transcript)
	if err != nil {
		return Match{}, fmt.Errorf("embedding transcript: %w", err)
	}

	templates := m.catalog.Templates()
	result := Match{Score: math.Inf(-1), Scores: make([]TemplateScore, 0, len(templates))}

	for i, tmpl := range templates {
		score, err := CosineSimilarity(query, templateVecs[i])
		if err != nil {
			return Match{}, fmt.Errorf("scoring template %s: %w", tmpl.Key, err)
		}
		result.Scores = append(result.Scores, TemplateScore{Key: tmpl.Key, Score: score})
		if score > result.Score {
			result.Key = tmpl.Key
			result.Score = score
		}
	}

	m.logger.Debug("matched template",
		"template", result.Key,
		"score", result.Score,
		"model", m.embedder.ModelID(),
	)

	return result, nil
}

func (m *Matcher) templateVectors(ctx context.Context) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vectors != nil {
		return m.vectors, nil
	}

	templates := m.catalog.Templates()
	descriptions := make([]string, len(templates))
	for i, t := range templates {
		descriptions[i] = t.Description
	}

	vectors, err := m.embedder.EmbedBatch(ctx, descriptions)
	if err != nil {
		return nil, fmt.Errorf("embedding template descriptions: %w", err)
	}
	if len(vectors) != len(descriptions) {
		return nil, fmt.Errorf("embedding template descriptions: got %d vectors for %d templates", len(vectors), len(descriptions))
	}

	m.vectors = vectors
	return vectors, nil
}

// CosineSimilarity returns the cosine of the angle between a and b, in
// [-1, 1]. A zero-length or zero-norm vector scores 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
