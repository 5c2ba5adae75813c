package record

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Batch holds the records produced by one ingestion run.
type Batch struct {
	Candidates []*Candidate `json:"candidates,omitempty"`
	Jobs       []*Job       `json:"jobs,omitempty"`
}

type ExcludedPosts struct {
	Items []*ExcludedPost
}

type ExcludedPost struct {
	PostID     int
	Kind       Kind
	Link       string
	Title      string
	ExcludedAt time.Time
}

func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Candidates) + len(b.Jobs)
}

// Records returns every record of the batch, candidates first.
func (b *Batch) Records() []Record {
	if b == nil {
		return nil
	}
	records := make([]Record, 0, b.Len())
	for _, c := range b.Candidates {
		records = append(records, c)
	}
	for _, j := range b.Jobs {
		records = append(records, j)
	}
	return records
}

// Add appends a record to the matching list. Nil records are ignored.
func (b *Batch) Add(r Record) {
	switch v := r.(type) {
	case *Candidate:
		if v != nil {
			b.Candidates = append(b.Candidates, v)
		}
	case *Job:
		if v != nil {
			b.Jobs = append(b.Jobs, v)
		}
	}
}

func (b *Batch) FindByPostID(id int) Record {
	for _, c := range b.Candidates {
		if c.PostID == id {
			return c
		}
	}
	for _, j := range b.Jobs {
		if j.PostID == id {
			return j
		}
	}
	return nil
}

// Exclude removes records with the given post ids, keeping order. It returns the removed post ids.
func (b *Batch) Exclude(postIDs []int) []int {
	targets := make(map[int]struct{}, len(postIDs))
	for _, id := range postIDs {
		targets[id] = struct{}{}
	}

	var excluded []int

	candidates := b.Candidates[:0]
	for _, c := range b.Candidates {
		if _, ok := targets[c.PostID]; ok {
			excluded = append(excluded, c.PostID)
			continue
		}
		candidates = append(candidates, c)
	}
	b.Candidates = candidates

	jobs := b.Jobs[:0]
	for _, j := range b.Jobs {
		if _, ok := targets[j.PostID]; ok {
			excluded = append(excluded, j.PostID)
			continue
		}
		jobs = append(jobs, j)
	}
	b.Jobs = jobs

	return excluded
}

// RemoveInvalid drops records that fail the validity rule and returns their post ids.
func (b *Batch) RemoveInvalid() []int {
	var dropped []int

	candidates := b.Candidates[:0]
	for _, c := range b.Candidates {
		if !c.Valid() {
			dropped = append(dropped, c.PostID)
			continue
		}
		candidates = append(candidates, c)
	}
	b.Candidates = candidates

	jobs := b.Jobs[:0]
	for _, j := range b.Jobs {
		if !j.Valid() {
			dropped = append(dropped, j.PostID)
			continue
		}
		jobs = append(jobs, j)
	}
	b.Jobs = jobs

	return dropped
}

// ReportByCompany groups jobs by company name.
func (b *Batch) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range b.Jobs {
		key := job.Company.Or("Unknown company")
		report[key] = append(report[key], map[string]string{
			"position":     job.Position.Or(""),
			"location":     job.Location.Or(""),
			"remote":       job.Remote.Or(""),
			"salary":       job.Salary.Or(""),
			"technologies": fmt.Sprint(job.Technologies),
			"link":         job.Link,
		})
	}
	return report
}

func (b *Batch) DumpToTmpFile() (string, error) {
	return DumpToTmpFile("records_*.json", b)
}

func (b *Batch) ToExcluded() *ExcludedPosts {
	excluded := &ExcludedPosts{}
	now := time.Now().UTC()
	for _, c := range b.Candidates {
		excluded.Items = append(excluded.Items, &ExcludedPost{
			PostID:     c.PostID,
			Kind:       KindCandidate,
			Link:       c.Link,
			Title:      c.Location.Or(c.Email.Value()),
			ExcludedAt: now,
		})
	}
	for _, j := range b.Jobs {
		excluded.Items = append(excluded.Items, &ExcludedPost{
			PostID:     j.PostID,
			Kind:       KindJob,
			Link:       j.Link,
			Title:      j.Title(),
			ExcludedAt: now,
		})
	}
	return excluded
}

// GetExcludedPostsFromFile reads an exclude file. A missing or empty file yields an empty list.
func GetExcludedPostsFromFile(path string) (*ExcludedPosts, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedPosts{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedPosts{}, nil
	}

	var excluded ExcludedPosts
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, fmt.Errorf("decoding exclude file %s: %w", path, err)
	}
	return &excluded, nil
}

func (e *ExcludedPosts) Append(s *ExcludedPosts) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedPosts) PostIDs() []int {
	ids := make([]int, 0, len(e.Items))
	for _, post := range e.Items {
		ids = append(ids, post.PostID)
	}
	return ids
}

func (e *ExcludedPosts) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// DumpToTmpFile writes v as indented JSON into a new temp file and returns its name.
func DumpToTmpFile(pattern string, v any) (string, error) {
	file, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}
