package semantic

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hn-matcher/internal/record"
)

type stubEmbedder struct {
	mu      sync.Mutex
	calls   int
	vectors map[string][]float32
	fail    map[string]error
}

// Embed picks the vector of the first key contained in the text.
func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	for key, err := range s.fail {
		if strings.Contains(text, key) {
			return nil, err
		}
	}
	for key, v := range s.vectors {
		if strings.Contains(text, key) {
			return v, nil
		}
	}
	return nil, errors.New("no vector")
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite clamps to zero", a: []float32{1, 0}, b: []float32{-1, 0}, want: 0},
		{name: "length mismatch", a: []float32{1, 0}, b: []float32{1, 0, 0}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
		{name: "empty", want: 0},
		{name: "partial", a: []float32{1, 1}, b: []float32{1, 0}, want: 1 / math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Fatalf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestIndexBuildAndSimilarity(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)

	embedder := &stubEmbedder{
		vectors: map[string][]float32{
			"Berlin": {1, 0},
			"Acme":   {1, 0},
			"Globex": {0, 1},
		},
		fail: map[string]error{"Initech": errors.New("quota")},
	}

	b := &record.Batch{
		Candidates: []*record.Candidate{{ID: "c1", PostID: 1, Location: record.Some("Berlin")}},
		Jobs: []*record.Job{
			{ID: "j1", PostID: 2, Company: record.Some("Acme")},
			{ID: "j2", PostID: 3, Company: record.Some("Globex")},
			{ID: "j3", PostID: 4, Company: record.Some("Initech")},
		},
	}

	idx := NewIndex(embedder, 2, zap.New(core))
	if err := idx.Build(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if embedder.calls != 4 {
		t.Fatalf("expected 4 embed calls, got %d", embedder.calls)
	}
	if idx.Len() != 3 {
		t.Fatalf("expected 3 embeddings, got %d", idx.Len())
	}

	if sim, ok := idx.Similarity(b.Candidates[0], b.Jobs[0]); !ok || math.Abs(sim-1) > 1e-9 {
		t.Fatalf("expected similarity 1, got %f %v", sim, ok)
	}
	if sim, ok := idx.Similarity(b.Candidates[0], b.Jobs[1]); !ok || sim != 0 {
		t.Fatalf("expected similarity 0, got %f %v", sim, ok)
	}
	if _, ok := idx.Similarity(b.Candidates[0], b.Jobs[2]); ok {
		t.Fatal("expected unknown similarity for failed embedding")
	}
	if _, ok := idx.Similarity(nil, b.Jobs[0]); ok {
		t.Fatal("expected unknown similarity for nil candidate")
	}

	entries := observed.FilterMessage("embedding record failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["post_id"]; got != int64(4) {
		t.Fatalf("unexpected post id in log: %v", got)
	}
}

func TestIndexBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &record.Batch{Jobs: []*record.Job{{ID: "j1", Company: record.Some("Acme")}}}
	idx := NewIndex(&stubEmbedder{}, 0, nil)

	if err := idx.Build(ctx, b); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
