package record

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	affirmativeMarker = regexp.MustCompile(`(?i)\b(?:yes|y|ok|okay|sure|open|willing|prefer|preferred|definitely|absolutely)\b`)
	negativeLead      = regexp.MustCompile(`(?i)^\W*(?:no|not|none|n/a)\b`)
	noWord            = regexp.MustCompile(`(?i)\bno\b`)
)

// Field is an extracted string value that may be absent.
// An absent field is different from a field explicitly set to an empty string.
type Field struct {
	value string
	set   bool
}

// None returns an absent field.
func None() Field {
	return Field{}
}

// Some returns a present field holding v.
func Some(v string) Field {
	return Field{value: v, set: true}
}

// IsSet reports whether the field is present.
func (f Field) IsSet() bool {
	return f.set
}

// Get returns the value and whether it is present.
func (f Field) Get() (string, bool) {
	return f.value, f.set
}

// Value returns the value or an empty string when absent.
func (f Field) Value() string {
	return f.value
}

// Or returns the value or fallback when absent.
func (f Field) Or(fallback string) string {
	if !f.set {
		return fallback
	}
	return f.value
}

// Contains reports whether the present value contains sub, ignoring case.
func (f Field) Contains(sub string) bool {
	if !f.set {
		return false
	}
	return strings.Contains(strings.ToLower(f.value), strings.ToLower(sub))
}

// Affirmative reports whether a free-text preference such as "Yes, open to it" reads as a yes.
// Values starting with a negation never count.
func (f Field) Affirmative() bool {
	if !f.set || f.Negative() {
		return false
	}
	return affirmativeMarker.MatchString(f.value)
}

// Negative reports whether a present value starts with a negation, e.g. "No" or "not possible".
func (f Field) Negative() bool {
	return f.set && negativeLead.MatchString(f.value)
}

// Declines reports whether a present value says no anywhere, e.g. "Onsite only, no remote".
func (f Field) Declines() bool {
	return f.Negative() || (f.set && noWord.MatchString(f.value))
}

func (f Field) String() string {
	if !f.set {
		return "<absent>"
	}
	return f.value
}

func (f Field) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

func (f *Field) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = None()
		return nil
	}

	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Some(v)
	return nil
}
