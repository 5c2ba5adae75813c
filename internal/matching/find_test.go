package matching

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/spigell/hn-matcher/internal/record"
)

func TestFindMatchesRanksAndFilters(t *testing.T) {
	candidates := []*record.Candidate{
		{ID: "weak", Technologies: []string{"php"}},
		{ID: "strong", Remote: record.Some("Yes"), Technologies: []string{"go", "rust"}},
		{ID: "none"},
		{ID: "tie", Remote: record.Some("Yes"), Technologies: []string{"go", "rust"}},
	}
	jobs := []*record.Job{
		{ID: "go-only", Technologies: []string{"go"}},
		{ID: "remote-rust", Remote: record.Some("Remote"), Technologies: []string{"rust", "kubernetes"}},
		{ID: "php", Technologies: []string{"php", "mysql"}},
		nil,
	}

	got := newScorer().FindMatches(candidates, jobs, 20)

	var order []string
	for _, cm := range got {
		order = append(order, cm.Candidate.ID)
	}
	if diff := cmp.Diff([]string{"strong", "tie", "weak"}, order); diff != "" {
		t.Fatalf("unexpected candidate order (-want +got):\n%s", diff)
	}

	var strongJobs []string
	for _, m := range got[0].Matches {
		strongJobs = append(strongJobs, m.Job.ID)
		if m.Score < 20 {
			t.Fatalf("match below min score: %d", m.Score)
		}
	}
	// remote-rust: 25 + 27, go-only: 55
	if diff := cmp.Diff([]string{"go-only", "remote-rust"}, strongJobs); diff != "" {
		t.Fatalf("unexpected job order (-want +got):\n%s", diff)
	}

	for _, cm := range got {
		for i := 1; i < len(cm.Matches); i++ {
			if cm.Matches[i].Score > cm.Matches[i-1].Score {
				t.Fatalf("scores increase for %s: %+v", cm.Candidate.ID, cm.Matches)
			}
		}
	}

	if got[2].Best() != 27 {
		t.Fatalf("expected weak candidate best score 27, got %d", got[2].Best())
	}
}

func TestFindMatchesMinScoreExcludesEverything(t *testing.T) {
	got := newScorer().FindMatches(
		[]*record.Candidate{berlinCandidate()},
		[]*record.Job{berlinJob()},
		82,
	)
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestFindMatchesWithSimilarityUsesBlendedMode(t *testing.T) {
	calls := 0
	similarity := func(c *record.Candidate, j *record.Job) (float64, bool) {
		calls++
		if j.ID == "unknown" {
			return 0, false
		}
		return 0.9, true
	}

	unknown := berlinJob()
	unknown.ID = "unknown"

	got := newScorer().FindMatches(
		[]*record.Candidate{berlinCandidate()},
		[]*record.Job{unknown, berlinJob()},
		0,
		WithSimilarity(similarity),
	)

	if calls != 2 {
		t.Fatalf("expected similarity to be asked twice, got %d", calls)
	}
	if len(got) != 1 || len(got[0].Matches) != 2 {
		t.Fatalf("unexpected matches: %+v", got)
	}

	best := got[0].Matches[0]
	if best.Job.ID != "j1" || best.Score != 76 || best.Mode != ModeBlended {
		t.Fatalf("unexpected best match: %s %d %s", best.Job.ID, best.Score, best.Mode)
	}

	fallback := got[0].Matches[1]
	if fallback.Score != 40 {
		t.Fatalf("expected overlap-only score 40, got %d", fallback.Score)
	}
	if fallback.Breakdown[FactorSemantic].Reason != "Semantic similarity unavailable" {
		t.Fatalf("unexpected semantic reason: %q", fallback.Breakdown[FactorSemantic].Reason)
	}
}

func TestFindMatchesEmptyInputs(t *testing.T) {
	s := newScorer()
	if got := s.FindMatches(nil, []*record.Job{berlinJob()}, 0); len(got) != 0 {
		t.Fatalf("expected no matches without candidates")
	}
	if got := s.FindMatches([]*record.Candidate{berlinCandidate()}, nil, 0); len(got) != 0 {
		t.Fatalf("expected no matches without jobs")
	}
}
