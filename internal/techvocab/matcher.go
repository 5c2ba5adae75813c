package techvocab

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var numericOnly = regexp.MustCompile(`^\d+(\.\d+)*\+?$`)

// Matcher finds vocabulary terms in text. It is safe for concurrent use.
type Matcher struct {
	vocab   Vocabulary
	needles []needle
}

type needle struct {
	text      string
	canonical string
}

func New(v Vocabulary) *Matcher {
	m := &Matcher{vocab: v}

	for _, term := range v.terms {
		m.needles = append(m.needles, needle{text: term, canonical: v.Canonical(term)})
	}
	for from := range v.aliases {
		m.needles = append(m.needles, needle{text: from, canonical: v.Canonical(from)})
	}

	// Longest first, so that a term nested in a longer one is not reported on its own.
	sort.Slice(m.needles, func(i, j int) bool {
		a, b := m.needles[i].text, m.needles[j].text
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	return m
}

// Vocabulary returns the vocabulary the matcher was built with.
func (m *Matcher) Vocabulary() Vocabulary {
	return m.vocab
}

// Extract returns the sorted, de-duplicated canonical tokens found in text.
// Matching is case-insensitive and bounded by non-alphanumeric runes on both sides.
// Where matches overlap only the longest one counts.
func (m *Matcher) Extract(text string) []string {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	taken := make([]bool, len(text))
	found := make(map[string]struct{})
	for _, n := range m.needles {
		if numericOnly.MatchString(n.canonical) {
			continue
		}
		if markWord(text, n.text, taken) {
			found[n.canonical] = struct{}{}
		}
	}

	return sortedKeys(found)
}

// Canonical re-reads already extracted tokens through the vocabulary so that
// two sets produced by different runs compare on the same terms.
func (m *Matcher) Canonical(tokens []string) []string {
	return m.Extract(strings.Join(tokens, "\n"))
}

// Overlap returns the sorted intersection of two token sets.
func Overlap(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, t := range b {
		set[t] = struct{}{}
	}

	shared := make(map[string]struct{})
	for _, t := range a {
		if _, ok := set[t]; ok {
			shared[t] = struct{}{}
		}
	}

	return sortedKeys(shared)
}

// markWord marks every free whole-word occurrence of word in taken and
// reports whether there was one. Occurrences touching a taken byte are skipped.
func markWord(text, word string, taken []bool) bool {
	if word == "" {
		return false
	}

	matched := false
	for start := 0; start+len(word) <= len(text); {
		i := strings.Index(text[start:], word)
		if i < 0 {
			break
		}
		i += start
		end := i + len(word)

		if boundaryBefore(text, i) && boundaryAfter(text, end) && free(taken[i:end]) {
			for k := i; k < end; k++ {
				taken[k] = true
			}
			matched = true
			start = end
			continue
		}
		start = i + 1
	}

	return matched
}

func free(span []bool) bool {
	for _, t := range span {
		if t {
			return false
		}
	}
	return true
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
