package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/hn-matcher/internal/normalize"
	"github.com/spigell/hn-matcher/internal/record"
	"github.com/spigell/hn-matcher/internal/techvocab"
)

const descriptionSentences = 3

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// Extractor turns post text into typed records. It holds no mutable state and
// is safe for concurrent use.
type Extractor struct {
	vocab      *techvocab.Matcher
	job        JobRules
	candidate  CandidateRules
	now        func() time.Time
	generateID func() string
}

type Option func(*Extractor)

// WithClock overrides the time used for records without a post timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// WithIDGenerator overrides how ephemeral record ids are produced.
func WithIDGenerator(f func() string) Option {
	return func(e *Extractor) {
		e.generateID = f
	}
}

// WithJobRules replaces the job chains.
func WithJobRules(rules JobRules) Option {
	return func(e *Extractor) {
		e.job = rules
	}
}

// WithCandidateRules replaces the candidate chains.
func WithCandidateRules(rules CandidateRules) Option {
	return func(e *Extractor) {
		e.candidate = rules
	}
}

func New(vocab *techvocab.Matcher, opts ...Option) *Extractor {
	if vocab == nil {
		vocab = techvocab.New(techvocab.Default())
	}

	e := &Extractor{
		vocab:      vocab,
		job:        DefaultJobRules(),
		candidate:  DefaultCandidateRules(),
		now:        time.Now,
		generateID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract normalizes raw markup and extracts a record of the given kind.
// It reports false when the record fails the validity rule.
func (e *Extractor) Extract(raw, link string, kind record.Kind) (record.Record, bool) {
	return e.extract(normalize.Clean(raw), link, kind, 0, time.Time{})
}

// ExtractPost is Extract for a forum post, keeping its id and timestamp.
func (e *Extractor) ExtractPost(post *record.Post, kind record.Kind) (record.Record, bool) {
	if post == nil {
		return nil, false
	}
	return e.extract(normalize.Clean(post.Text), post.Link(), kind, post.ID, post.Time)
}

// Record extracts without applying the validity rule. It returns nil for an unknown kind.
func (e *Extractor) Record(post *record.Post, kind record.Kind) record.Record {
	if post == nil {
		return nil
	}
	return e.build(normalize.Clean(post.Text), post.Link(), kind, post.ID, post.Time)
}

func (e *Extractor) extract(text, link string, kind record.Kind, postID int, posted time.Time) (record.Record, bool) {
	r := e.build(text, link, kind, postID, posted)
	if r == nil || !r.Valid() {
		return nil, false
	}
	return r, true
}

func (e *Extractor) build(text, link string, kind record.Kind, postID int, posted time.Time) record.Record {
	switch kind {
	case record.KindJob:
		j := e.Job(text, link)
		j.PostID = postID
		if !posted.IsZero() {
			j.Date = posted
		}
		return j
	case record.KindCandidate:
		c := e.Candidate(text, link)
		c.PostID = postID
		if !posted.IsZero() {
			c.Date = posted
		}
		return c
	default:
		return nil
	}
}

// Job extracts job fields from normalized text.
func (e *Extractor) Job(text, link string) *record.Job {
	techText := e.job.Technologies.First(text)

	return &record.Job{
		ID:               e.generateID(),
		Date:             e.now(),
		Company:          e.job.Company.First(text),
		Position:         e.job.Position.First(text),
		Location:         e.job.Location.First(text),
		Remote:           e.job.Remote.First(text),
		Salary:           e.job.Salary.First(text),
		TechnologiesText: techText,
		Technologies:     e.technologies(techText),
		Description:      Description(text, descriptionSentences),
		Apply:            e.job.Apply.First(text),
		RawText:          text,
		Link:             link,
	}
}

// Candidate extracts candidate fields from normalized text.
func (e *Extractor) Candidate(text, link string) *record.Candidate {
	techText := e.candidate.Technologies.First(text)

	return &record.Candidate{
		ID:               e.generateID(),
		Date:             e.now(),
		Email:            e.candidate.Email.First(text),
		Resume:           e.candidate.Resume.First(text),
		Location:         e.candidate.Location.First(text),
		Remote:           e.candidate.Remote.First(text),
		Relocate:         e.candidate.Relocate.First(text),
		TechnologiesText: techText,
		Technologies:     e.technologies(techText),
		Experience:       e.candidate.experience(text),
		RawText:          text,
		Link:             link,
	}
}

// technologies reads canonical tokens from the captured clause only.
func (e *Extractor) technologies(clause record.Field) []string {
	v, ok := clause.Get()
	if !ok {
		return []string{}
	}
	return e.vocab.Extract(v)
}

// Description joins up to n leading sentences of text.
func Description(text string, n int) string {
	text = strings.TrimSpace(text)
	if text == "" || n <= 0 {
		return ""
	}

	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		// keep the punctuation, drop the whitespace after it
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
		if len(sentences) == n {
			return strings.Join(sentences, " ")
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}

	return strings.Join(sentences, " ")
}
