package summary

import (
	"strings"

	"github.com/spigell/hn-matcher/internal/record"
)

// EmbeddingText renders the labelled fields, the summary and the raw text of a
// record as input for an embedding model. Absent fields are left out.
func EmbeddingText(r record.Record) string {
	var b lines

	switch v := r.(type) {
	case *record.Candidate:
		b.field("Location", v.Location)
		b.field("Remote", v.Remote)
		b.field("Willing to Relocate", v.Relocate)
		b.list("Skills", v.Technologies)
		b.line("Experience", v.Experience.String())
		b.line("Summary", summaryOf(v.Summary, r))
		b.line("Details", v.RawText)
	case *record.Job:
		b.field("Company", v.Company)
		b.field("Position", v.Position)
		b.field("Location", v.Location)
		b.field("Remote", v.Remote)
		b.field("Salary", v.Salary)
		b.list("Technologies", v.Technologies)
		b.line("Summary", summaryOf(v.Summary, r))
		b.line("Description", v.Description)
		b.line("Details", v.RawText)
	}

	return b.String()
}

func summaryOf(stored string, r record.Record) string {
	if stored != "" {
		return stored
	}
	return Summarize(r)
}

type lines struct {
	strings.Builder
}

func (b *lines) line(label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
}

func (b *lines) field(label string, f record.Field) {
	if v, ok := f.Get(); ok {
		b.line(label, v)
	}
}

func (b *lines) list(label string, values []string) {
	b.line(label, strings.Join(values, ", "))
}
