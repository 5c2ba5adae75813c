package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const itemURL = "https://news.ycombinator.com/item"

// Kind selects which record type a post is extracted into.
type Kind string

const (
	KindJob       Kind = "job"
	KindCandidate Kind = "candidate"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindJob, "jobs", "hiring":
		return KindJob, nil
	case KindCandidate, "candidates", "seeking":
		return KindCandidate, nil
	default:
		return "", fmt.Errorf("unknown record kind %q", s)
	}
}

// Record is implemented by *Candidate and *Job.
type Record interface {
	RecordID() string
	Kind() Kind
	Valid() bool
}

// Post is one raw forum comment.
type Post struct {
	ID       int       `json:"id"`
	ThreadID int       `json:"thread_id"`
	Author   string    `json:"author,omitempty"`
	Text     string    `json:"text"`
	Time     time.Time `json:"time"`
}

// Link returns the thread link with an anchor pointing at the post.
func (p *Post) Link() string {
	return Link(p.ThreadID, p.ID)
}

func Link(threadID, postID int) string {
	if threadID == 0 {
		return fmt.Sprintf("%s?id=%d", itemURL, postID)
	}
	return fmt.Sprintf("%s?id=%d#%d", itemURL, threadID, postID)
}

// Experience is either an explicit number of years or a seniority band.
type Experience struct {
	Years    int    `json:"years,omitempty"`
	Explicit bool   `json:"explicit"`
	Band     string `json:"band,omitempty"`
}

const ExperienceNotSpecified = "Not specified"

func (e Experience) String() string {
	if e.Explicit {
		return strconv.Itoa(e.Years)
	}
	if e.Band == "" {
		return ExperienceNotSpecified
	}
	return e.Band
}

// Candidate is a job seeker extracted from a "who wants to be hired" post.
type Candidate struct {
	ID               string     `json:"id"`
	PostID           int        `json:"post_id,omitempty"`
	Date             time.Time  `json:"date"`
	Email            Field      `json:"email"`
	Resume           Field      `json:"resume"`
	Location         Field      `json:"location"`
	Remote           Field      `json:"remote"`
	Relocate         Field      `json:"relocate"`
	TechnologiesText Field      `json:"technologies_text"`
	Technologies     []string   `json:"technologies"`
	Experience       Experience `json:"experience"`
	Summary          string     `json:"summary,omitempty"`
	RawText          string     `json:"raw_text"`
	Link             string     `json:"link"`
}

func (c *Candidate) RecordID() string { return c.ID }

func (c *Candidate) Kind() Kind { return KindCandidate }

// Valid reports whether the candidate carries a way to reach or place them.
func (c *Candidate) Valid() bool {
	return c.Email.IsSet() || c.Resume.IsSet() || c.Location.IsSet()
}

// Job is a hiring post extracted from a "who is hiring" thread.
type Job struct {
	ID               string    `json:"id"`
	PostID           int       `json:"post_id,omitempty"`
	Date             time.Time `json:"date"`
	Company          Field     `json:"company"`
	Position         Field     `json:"position"`
	Location         Field     `json:"location"`
	Remote           Field     `json:"remote"`
	Salary           Field     `json:"salary"`
	TechnologiesText Field     `json:"technologies_text"`
	Technologies     []string  `json:"technologies"`
	Description      string    `json:"description"`
	Apply            Field     `json:"apply"`
	Summary          string    `json:"summary,omitempty"`
	RawText          string    `json:"raw_text"`
	Link             string    `json:"link"`
}

func (j *Job) RecordID() string { return j.ID }

func (j *Job) Kind() Kind { return KindJob }

// Valid reports whether the job names a company or a position.
func (j *Job) Valid() bool {
	return j.Company.IsSet() || j.Position.IsSet()
}

// Title is a short label used in menus and reports.
func (j *Job) Title() string {
	return fmt.Sprintf("%s / %s", j.Company.Or("Unknown company"), j.Position.Or("Unknown position"))
}
