// Package extract recovers structured Job and Candidate records from normalized post text.
package extract

import (
	"regexp"
	"strings"

	"github.com/spigell/hn-matcher/internal/record"
)

// Rule tries to capture a field value from text.
type Rule struct {
	Name  string
	Match func(text string) (string, bool)
}

// Chain is an ordered list of rules. The first rule producing a non-empty capture wins.
type Chain []Rule

// First evaluates the rules in order and returns the first non-empty capture,
// or an absent field when nothing matched.
func (c Chain) First(text string) record.Field {
	for _, rule := range c {
		v, ok := rule.Match(text)
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return record.Some(v)
		}
	}
	return record.None()
}

// Winner returns the name of the rule that would produce the field value.
func (c Chain) Winner(text string) string {
	for _, rule := range c {
		if v, ok := rule.Match(text); ok && strings.TrimSpace(v) != "" {
			return rule.Name
		}
	}
	return ""
}

// Names lists rule names in evaluation order.
func (c Chain) Names() []string {
	names := make([]string, 0, len(c))
	for _, rule := range c {
		names = append(names, rule.Name)
	}
	return names
}

// RegexRule returns a rule capturing the first non-empty group of pattern.
// It panics when pattern does not compile, rules are built at init time.
func RegexRule(name, pattern string) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		Name: name,
		Match: func(text string) (string, bool) {
			groups := re.FindStringSubmatch(text)
			if groups == nil {
				return "", false
			}
			for _, g := range groups[1:] {
				if strings.TrimSpace(g) != "" {
					return g, true
				}
			}
			return "", false
		},
	}
}

// Trimmed wraps a rule and strips the given trailing characters from its capture.
func Trimmed(rule Rule, cutset string) Rule {
	match := rule.Match
	rule.Match = func(text string) (string, bool) {
		v, ok := match(text)
		if !ok {
			return "", false
		}
		v = strings.TrimRight(strings.TrimSpace(v), cutset)
		return v, v != ""
	}
	return rule
}
