package matching

import (
	"sort"

	"github.com/spigell/hn-matcher/internal/record"
)

// Match is one job scored for a candidate.
type Match struct {
	Job *record.Job `json:"job"`
	Result
}

// CandidateMatches holds the ranked matches of one candidate.
type CandidateMatches struct {
	Candidate *record.Candidate `json:"candidate"`
	Matches   []Match           `json:"matches"`
}

// Best returns the highest score among the matches.
func (cm CandidateMatches) Best() int {
	if len(cm.Matches) == 0 {
		return 0
	}
	return cm.Matches[0].Score
}

// SimilarityFunc supplies an external similarity in [0,1] for a pair.
// It reports false when no similarity is known.
type SimilarityFunc func(c *record.Candidate, j *record.Job) (float64, bool)

type findOptions struct {
	similarity SimilarityFunc
}

type FindOption func(*findOptions)

// WithSimilarity switches the whole call to blended scoring.
func WithSimilarity(f SimilarityFunc) FindOption {
	return func(o *findOptions) {
		o.similarity = f
	}
}

// FindMatches scores every candidate against every job, keeps matches scoring
// at least minScore and ranks them. Candidates without matches are left out.
// Ties keep input order.
func (s *Scorer) FindMatches(candidates []*record.Candidate, jobs []*record.Job, minScore int, opts ...FindOption) []CandidateMatches {
	var o findOptions
	for _, opt := range opts {
		opt(&o)
	}

	jobTech := make([][]string, len(jobs))
	for i, j := range jobs {
		if j != nil {
			jobTech[i] = s.vocab.Canonical(j.Technologies)
		}
	}

	var ranked []CandidateMatches
	for _, c := range candidates {
		if c == nil {
			continue
		}
		candidateTech := s.vocab.Canonical(c.Technologies)

		var matches []Match
		for i, j := range jobs {
			if j == nil {
				continue
			}

			var res Result
			if o.similarity != nil {
				sim, ok := o.similarity(c, j)
				res = s.blended(candidateTech, jobTech[i], sim, ok)
			} else {
				res = s.additive(c, j, candidateTech, jobTech[i])
			}

			if res.Score < minScore {
				continue
			}
			matches = append(matches, Match{Job: j, Result: res})
		}

		if len(matches) == 0 {
			continue
		}

		sort.SliceStable(matches, func(a, b int) bool {
			return matches[a].Score > matches[b].Score
		})
		ranked = append(ranked, CandidateMatches{Candidate: c, Matches: matches})
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Best() > ranked[b].Best()
	})

	return ranked
}
