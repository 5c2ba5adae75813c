package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/hn-matcher/internal/record"
)

const (
	roleNouns   = `engineer|developer|manager|designer|architect|scientist|lead|director|vp|cto|devops`
	techHints   = `javascript|python|react|angular|vue|node|django|flask|ruby|rails|php|laravel|aws|gcp|azure|sql|nosql|mongodb|mysql|postgresql|docker|kubernetes|ci/cd|git`
	companyName = `[A-Za-z0-9 \t.\-&]`
	emailShape  = `[\w.+\-]+@[\w.\-]+`
	urlShape    = `https?://\S+`
)

// label builds a case-insensitive "Label: value" rule bounded by the end of the line.
func label(name, labels string) Rule {
	return RegexRule(name, `(?i)(?:^|\s)(?:`+labels+`):[ \t]*([^\n]+)`)
}

// JobRules holds the per-field chains for Job records.
type JobRules struct {
	Company      Chain
	Position     Chain
	Location     Chain
	Remote       Chain
	Salary       Chain
	Technologies Chain
	Apply        Chain
}

// CandidateRules holds the per-field chains for Candidate records.
type CandidateRules struct {
	Email        Chain
	Resume       Chain
	Location     Chain
	Remote       Chain
	Relocate     Chain
	Technologies Chain
	Experience   Chain
	Seniority    []Seniority
}

// Seniority maps a keyword pattern to an experience band.
type Seniority struct {
	Band    string
	Pattern *regexp.Regexp
}

const (
	BandSenior = "Senior (5+ years)"
	BandMid    = "Mid-level (3-5 years)"
	BandJunior = "Junior (0-2 years)"
)

func baseLocation() Chain {
	return Chain{label("location_label", "Location")}
}

func baseRemote() Chain {
	return Chain{label("remote_label", "Remote")}
}

func baseTechnologies() Chain {
	return Chain{label("technologies_label", "Technologies|Tech stack|Tech|Stack")}
}

// DefaultJobRules returns the built-in chains for Job records.
func DefaultJobRules() JobRules {
	return JobRules{
		Company: Chain{
			RegexRule("company_pipe", `^(`+companyName+`+?)\s*\|\s`),
			RegexRule("company_link", `^(`+companyName+`+?)\s*\(\s*http`),
			RegexRule("company_verb", `^(`+companyName+`{2,30}?)(?:\s+is\b|\s+hiring\b|\s*\|)`),
		},
		Position: Chain{
			RegexRule("position_intro", `(?i)\b(?:hiring for|hiring|seeking|looking for|for)[:\s]+([^|.\n]*?\b(?:`+roleNouns+`)[^|.\n]*?)\s*(?:\||\.|\n|$)`),
			RegexRule("position_pipe", `(?i)\|\s*([^|.\n]*?\b(?:`+roleNouns+`)[^|.\n]*?)\s*(?:\||\.|\n|$)`),
		},
		Location: baseLocation(),
		Remote: append(baseRemote(),
			RegexRule("remote_word", `(?i)\b(remote(?:\s+(?:friendly|ok|possible|only))?)\b`),
		),
		Salary: Chain{
			label("salary_label", "Salary|Compensation"),
			RegexRule("salary_keyword", `(?i)\b(?:pay|salary|compensation|package)[:\s]+([^.\n]+)`),
		},
		Technologies: append(baseTechnologies(),
			RegexRule("technologies_clause", `(?i)\b(?:tech stack|using|experience with|skills|looking for)[:\s]+([^.]*?\b(?:`+techHints+`)\b[^.]*)`),
		),
		Apply: Chain{label("apply_label", "Apply|Application|Contact")},
	}
}

// DefaultCandidateRules returns the built-in chains for Candidate records.
// The bare email and bare URL rules are last resorts and may pick up unrelated
// addresses or links, for example from a signature.
func DefaultCandidateRules() CandidateRules {
	return CandidateRules{
		Email: Chain{
			Trimmed(RegexRule("email_label", `(?i)(?:^|\s)Email:\s*(`+emailShape+`)`), ".-"),
			Trimmed(RegexRule("email_contact", `(?i)(?:contact|e-mail):\s*(`+emailShape+`)`), ".-"),
			Trimmed(RegexRule("email_bare", `(`+emailShape+`)`), ".-"),
		},
		Resume: Chain{
			Trimmed(RegexRule("resume_label", `(?i)(?:^|\s)(?:résumé|resume|cv)(?:/cv)?:\s*(`+urlShape+`)`), ".,;)"),
			Trimmed(RegexRule("resume_loose", `(?i)(?:résumé|resume|cv)(?:/cv)?:?\s*(`+urlShape+`)`), ".,;)"),
			Trimmed(RegexRule("resume_url", `(?i)\b(https?://\S*(?:resume|cv)\S*)`), ".,;)"),
		},
		Location: baseLocation(),
		Remote:   baseRemote(),
		Relocate: Chain{label("relocate_label", "Willing to relocate")},
		Technologies: append(baseTechnologies(),
			RegexRule("technologies_skills", `(?i)\bskills?[:\s]([^.]+)`),
			RegexRule("technologies_stack", `(?i)\btech stack[:\s]([^.]+)`),
			RegexRule("technologies_proficient", `(?i)\bproficient in[:\s]([^.]+)`),
		),
		Experience: Chain{
			yearsRule("experience_years", `(?i)\b(\d+)\+?\s*(?:years?|yrs?)(?:\s*of)?(?:\s*experience)?`),
			yearsRule("experience_of", `(?i)\b(?:experience|exp)(?:\s*of)?\s*(\d+)\+?\s*(?:years?|yrs?)`),
			yearsRule("experience_with", `(?i)(?:with)?\s*(\d+)\+?\s*(?:years?|yrs?)`),
		},
		Seniority: []Seniority{
			{Band: BandSenior, Pattern: regexp.MustCompile(`(?i)\b(?:senior|sr\.?|lead|principal|staff)\b`)},
			{Band: BandMid, Pattern: regexp.MustCompile(`(?i)\b(?:mid[\-\s]level|intermediate|mid[\-\s]career)\b`)},
			{Band: BandJunior, Pattern: regexp.MustCompile(`(?i)\b(?:junior|jr\.?|entry[\-\s]level|beginner|graduate|fresh)\b`)},
		},
	}
}

// experience resolves explicit years first and seniority keywords second.
func (r CandidateRules) experience(text string) record.Experience {
	if v, ok := r.Experience.First(text).Get(); ok {
		if years, ok := parseYears(v); ok {
			return record.Experience{Years: years, Explicit: true}
		}
	}

	for _, s := range r.Seniority {
		if s.Pattern.MatchString(text) {
			return record.Experience{Band: s.Band}
		}
	}

	return record.Experience{Band: record.ExperienceNotSpecified}
}

// yearsRule captures the first number of years in range. Numbers outside it,
// like "100 years old", are skipped so later matches and rules still apply.
func yearsRule(name, pattern string) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		Name: name,
		Match: func(text string) (string, bool) {
			for _, groups := range re.FindAllStringSubmatch(text, -1) {
				if years, ok := parseYears(groups[1]); ok {
					return strconv.Itoa(years), true
				}
			}
			return "", false
		},
	}
}

func parseYears(s string) (int, bool) {
	years, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || years < 0 || years > 60 {
		return 0, false
	}
	return years, true
}
