package semantic

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/hn-matcher/internal/logger"
	"github.com/spigell/hn-matcher/internal/record"
	"github.com/spigell/hn-matcher/internal/summary"
)

const defaultWorkers = 4

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index keeps one embedding per record id.
type Index struct {
	embedder Embedder
	workers  int
	logger   *zap.Logger

	mu      sync.RWMutex
	vectors map[string][]float32
}

func NewIndex(embedder Embedder, workers int, log *zap.Logger) *Index {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{
		embedder: embedder,
		workers:  workers,
		logger:   log,
		vectors:  make(map[string][]float32),
	}
}

// Build embeds every record of the batch. A record whose embedding fails is
// logged and left out, its pairs then have no known similarity.
// Only context cancellation is returned as an error.
func (i *Index) Build(ctx context.Context, b *record.Batch) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)

	for _, r := range b.Records() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			vector, err := i.embedder.Embed(ctx, summary.EmbeddingText(r))
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				i.logger.Warn("embedding record failed",
					append(logger.PostFields(postID(r), string(r.Kind())), zap.Error(err))...,
				)
				return nil
			}

			i.mu.Lock()
			i.vectors[r.RecordID()] = vector
			i.mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	i.logger.Info("semantic index built",
		zap.Int("records", b.Len()),
		zap.Int("embedded", i.Len()),
	)
	return nil
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vectors)
}

// Similarity reports the cosine similarity of the two records' embeddings.
// It returns false when either record has no embedding.
func (i *Index) Similarity(c *record.Candidate, j *record.Job) (float64, bool) {
	if c == nil || j == nil {
		return 0, false
	}

	i.mu.RLock()
	a, okA := i.vectors[c.ID]
	b, okB := i.vectors[j.ID]
	i.mu.RUnlock()

	if !okA || !okB {
		return 0, false
	}
	return Cosine(a, b), true
}

// Cosine returns the cosine similarity clamped to [0,1]. Vectors of different
// length or with zero norm give 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for k := range a {
		x, y := float64(a[k]), float64(b[k])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case math.IsNaN(sim), sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return sim
}

func postID(r record.Record) int {
	switch v := r.(type) {
	case *record.Candidate:
		return v.PostID
	case *record.Job:
		return v.PostID
	}
	return 0
}
