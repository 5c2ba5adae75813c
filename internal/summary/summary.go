// Package summary composes short synopses of extracted records.
package summary

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spigell/hn-matcher/internal/record"
)

const maxListedTechnologies = 3

// Summarize dispatches on the record kind. Unknown records yield an empty string.
func Summarize(r record.Record) string {
	switch v := r.(type) {
	case *record.Candidate:
		return Candidate(v)
	case *record.Job:
		return Job(v)
	default:
		return ""
	}
}

// Candidate builds e.g. "Berlin-based developer with skills in docker, python, react who is available for remote work".
func Candidate(c *record.Candidate) string {
	if c == nil {
		return ""
	}

	var parts []string

	if loc, ok := c.Location.Get(); ok && strings.TrimSpace(loc) != "" {
		parts = append(parts, strings.TrimSpace(loc)+"-based")
	}

	if len(c.Technologies) > 0 {
		parts = append(parts, "developer with skills in "+technologyList(c.Technologies))
	} else {
		parts = append(parts, "developer")
	}

	var preferences []string
	if c.Remote.Affirmative() {
		preferences = append(preferences, "available for remote work")
	}
	if c.Relocate.Affirmative() {
		preferences = append(preferences, "willing to relocate")
	}
	if len(preferences) > 0 {
		parts = append(parts, "who is "+strings.Join(preferences, " and "))
	}

	return capitalize(strings.Join(parts, " "))
}

// Job builds e.g. "Acme is hiring for Backend Engineer in Berlin with remote options using go, and more".
func Job(j *record.Job) string {
	if j == nil {
		return ""
	}

	parts := []string{j.Company.Or("Company") + " is hiring"}

	if pos, ok := j.Position.Get(); ok {
		parts = append(parts, "for "+pos)
	}

	if loc, ok := j.Location.Get(); ok {
		parts = append(parts, "in "+loc)
	}
	if j.Remote.IsSet() && !j.Remote.Declines() {
		parts = append(parts, "with remote options")
	}

	if len(j.Technologies) > 0 {
		parts = append(parts, "using "+technologyList(j.Technologies))
	}

	if salary, ok := j.Salary.Get(); ok {
		parts = append(parts, "with compensation "+salary)
	}

	return capitalize(strings.Join(parts, " "))
}

func technologyList(techs []string) string {
	if len(techs) > maxListedTechnologies {
		return strings.Join(techs[:maxListedTechnologies], ", ") + ", and more"
	}
	return strings.Join(techs, ", ")
}

// capitalize upper-cases the first rune only, proper nouns further in stay intact.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
