package taglist

import (
	"fmt"
	"slices"
	"strings"
)

// Policy decides when two tags are considered the same tag.
// A Policy is fixed when a list is created and never changes afterwards.
type Policy int

const (
	// Exact compares trimmed values byte for byte.
	Exact Policy = iota
	// CaseInsensitive compares trimmed values under Unicode simple case folding.
	CaseInsensitive
)

// Policy names as they appear in configuration.
const (
	PolicyNameExact           = "exact"
	PolicyNameCaseInsensitive = "case_insensitive"
)

// ParsePolicy converts a configuration value to a Policy.
// PRE: none
// POST: returns the matching Policy, or an error for unknown names
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyNameExact:
		return Exact, nil
	case PolicyNameCaseInsensitive, "":
		return CaseInsensitive, nil
	}
	return Exact, fmt.Errorf("unknown tag comparison policy %q", name)
}

// String returns the configuration name of the policy.
func (p Policy) String() string {
	if p == CaseInsensitive {
		return PolicyNameCaseInsensitive
	}
	return PolicyNameExact
}

// Equal reports whether a and b name the same tag under p.
// Both values are normalised before comparison.
func (p Policy) Equal(a, b string) bool {
	a, b = Normalize(a), Normalize(b)
	if p == CaseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// Normalize returns the stored form of a raw tag value.
func Normalize(raw string) string {
	return strings.TrimSpace(raw)
}

// Dedupe normalises values and drops blanks and duplicates under p.
// The first occurrence of each tag wins and order is preserved.
// PRE: none
// POST: result satisfies the list invariants for p; never nil
func Dedupe(values []string, p Policy) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = Normalize(v)
		if v == "" || indexOf(out, v, p, -1) >= 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

// indexOf returns the position of v in tags under p, ignoring position skip.
func indexOf(tags []string, v string, p Policy, skip int) int {
	for i, t := range tags {
		if i == skip {
			continue
		}
		if p.Equal(t, v) {
			return i
		}
	}
	return -1
}

// Valid reports whether values already satisfy the list invariants for p:
// every value trimmed and non-blank, no two equal under p.
func Valid(values []string, p Policy) bool {
	return slices.Equal(Dedupe(values, p), values)
}
