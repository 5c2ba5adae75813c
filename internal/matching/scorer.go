// Package matching scores candidates against jobs and ranks the results.
package matching

import (
	"fmt"
	"math"

	"github.com/spigell/hn-matcher/internal/record"
	"github.com/spigell/hn-matcher/internal/techvocab"
)

type Factor string

const (
	FactorRemote       Factor = "remote"
	FactorLocation     Factor = "location"
	FactorTechnologies Factor = "technologies"
	FactorSemantic     Factor = "semantic"
)

type Mode string

const (
	ModeAdditive Mode = "additive"
	ModeBlended  Mode = "blended"
)

const (
	RemotePoints     = 25
	LocationPoints   = 20
	RelocatePoints   = 10
	TechnologyPoints = 55
	MaxScore         = 100

	// blended mode weights, in points out of MaxScore
	blendTechnologyPoints = 60
	blendSemanticPoints   = 40

	// guards floor() against float noise like 13.999999999999998
	epsilon = 1e-9
)

// Contribution explains the points a single factor added.
type Contribution struct {
	Points       int      `json:"points"`
	Reason       string   `json:"reason"`
	Technologies []string `json:"technologies,omitempty"`
}

// Result is a scored candidate/job pair.
type Result struct {
	Score     int                     `json:"score"`
	Mode      Mode                    `json:"mode"`
	Breakdown map[Factor]Contribution `json:"breakdown"`
}

// MatchingTechnologies returns the technologies shared by the candidate and the job.
func (r Result) MatchingTechnologies() []string {
	if c, ok := r.Breakdown[FactorTechnologies]; ok {
		return c.Technologies
	}
	return nil
}

// Scorer computes compatibility scores. Both technology sets are read through
// the same vocabulary before they are compared.
type Scorer struct {
	vocab *techvocab.Matcher
}

func NewScorer(vocab *techvocab.Matcher) *Scorer {
	if vocab == nil {
		vocab = techvocab.New(techvocab.Default())
	}
	return &Scorer{vocab: vocab}
}

// Score adds remote, location and technology points, capped at MaxScore.
// A nil candidate or job scores 0.
func (s *Scorer) Score(c *record.Candidate, j *record.Job) Result {
	if c == nil || j == nil {
		return Result{Mode: ModeAdditive, Breakdown: map[Factor]Contribution{}}
	}
	return s.additive(c, j, s.vocab.Canonical(c.Technologies), s.vocab.Canonical(j.Technologies))
}

// ScoreBlended weighs the technology overlap percentage and an external
// similarity in [0,1]. Values outside the range are clamped.
func (s *Scorer) ScoreBlended(c *record.Candidate, j *record.Job, similarity float64) Result {
	if c == nil || j == nil {
		return Result{Mode: ModeBlended, Breakdown: map[Factor]Contribution{}}
	}
	return s.blended(s.vocab.Canonical(c.Technologies), s.vocab.Canonical(j.Technologies), similarity, true)
}

func (s *Scorer) additive(c *record.Candidate, j *record.Job, candidateTech, jobTech []string) Result {
	res := Result{Mode: ModeAdditive, Breakdown: make(map[Factor]Contribution)}

	if c.Remote.Affirmative() && !j.Remote.Declines() && (j.Remote.Affirmative() || j.Remote.Contains("remote")) {
		res.add(FactorRemote, Contribution{
			Points: RemotePoints,
			Reason: fmt.Sprintf("Remote preferences match (+%d)", RemotePoints),
		})
	}

	jobLoc, jobOK := j.Location.Get()
	candidateLoc, candidateOK := c.Location.Get()
	if jobOK && candidateOK {
		switch {
		case sameLocation(jobLoc, candidateLoc):
			res.add(FactorLocation, Contribution{
				Points: LocationPoints,
				Reason: fmt.Sprintf("Location matches (+%d)", LocationPoints),
			})
		case c.Relocate.Affirmative():
			res.add(FactorLocation, Contribution{
				Points: RelocatePoints,
				Reason: fmt.Sprintf("Candidate willing to relocate (+%d)", RelocatePoints),
			})
		}
	}

	if len(jobTech) > 0 {
		shared := techvocab.Overlap(candidateTech, jobTech)
		points := TechnologyPoints * len(shared) / len(jobTech)
		res.add(FactorTechnologies, Contribution{
			Points:       points,
			Reason:       fmt.Sprintf("Technology match: %d/%d (+%d)", len(shared), len(jobTech), points),
			Technologies: shared,
		})
	}

	if res.Score > MaxScore {
		res.Score = MaxScore
	}

	return res
}

func (s *Scorer) blended(candidateTech, jobTech []string, similarity float64, known bool) Result {
	res := Result{Mode: ModeBlended, Breakdown: make(map[Factor]Contribution)}

	shared := techvocab.Overlap(candidateTech, jobTech)
	techPart := 0.0
	if len(jobTech) > 0 {
		techPart = float64(blendTechnologyPoints*len(shared)) / float64(len(jobTech))
	}

	similarity = clamp(similarity)
	semanticPart := blendSemanticPoints * similarity

	res.Breakdown[FactorTechnologies] = Contribution{
		Points:       floor(techPart),
		Reason:       fmt.Sprintf("Technology overlap %d/%d weighted at %d%%", len(shared), len(jobTech), blendTechnologyPoints),
		Technologies: shared,
	}

	reason := fmt.Sprintf("Semantic similarity %.2f weighted at %d%%", similarity, blendSemanticPoints)
	if !known {
		reason = "Semantic similarity unavailable"
	}
	res.Breakdown[FactorSemantic] = Contribution{
		Points: floor(semanticPart),
		Reason: reason,
	}

	res.Score = floor(techPart + semanticPart)
	if res.Score > MaxScore {
		res.Score = MaxScore
	}

	return res
}

func (r *Result) add(f Factor, c Contribution) {
	r.Breakdown[f] = c
	r.Score += c.Points
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func floor(v float64) int {
	return int(math.Floor(v + epsilon))
}
