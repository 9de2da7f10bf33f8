package topic

import (
	"fmt"
	"strings"
)

const (
	separator   = "/"
	singleLevel = "+"
	multiLevel  = "#"
)

// Pattern is a parsed subscription filter. The zero value never matches.
type Pattern struct {
	raw      string
	segments []string
	valid    bool
}

// ParsePattern splits a filter into segments and validates wildcard placement.
//
// The returned Pattern is usable even when err is non-nil: it simply never
// matches anything.
func ParsePattern(raw string) (Pattern, error) {
	p := Pattern{raw: raw}
	if err := ValidatePattern(raw); err != nil {
		return p, err
	}
	p.segments = strings.Split(raw, separator)
	p.valid = true
	return p, nil
}

// ValidatePattern checks a filter against the wildcard placement rules.
func ValidatePattern(raw string) error {
	if raw == "" {
		return ErrEmptyPattern
	}

	segments := strings.Split(raw, separator)
	for i, seg := range segments {
		switch {
		case seg == multiLevel:
			if i != len(segments)-1 {
				return fmt.Errorf("%w: %q", ErrMisplacedMultiLevel, raw)
			}
		case seg == singleLevel:
		case strings.ContainsAny(seg, singleLevel+multiLevel):
			return fmt.Errorf("%w: %q", ErrMixedWildcard, raw)
		}
	}
	return nil
}

// String returns the pattern as it was configured.
func (p Pattern) String() string {
	return p.raw
}

// Valid reports whether the pattern parsed cleanly.
func (p Pattern) Valid() bool {
	return p.valid
}

// Matches reports whether the concrete topic name matches this pattern.
func (p Pattern) Matches(topic string) bool {
	if !p.valid || topic == "" {
		return false
	}

	levels := strings.Split(topic, separator)

	// Wildcards in the first segment never match system topics like $SYS/...
	if strings.HasPrefix(topic, "$") {
		if first := p.segments[0]; first == singleLevel || first == multiLevel {
			return false
		}
	}

	for i, seg := range p.segments {
		if seg == multiLevel {
			return true
		}
		if i >= len(levels) {
			return false
		}
		if seg != singleLevel && seg != levels[i] {
			return false
		}
	}

	return len(p.segments) == len(levels)
}

// Set is an immutable collection of patterns. A topic matches the set if it
// matches any member.
type Set struct {
	patterns []Pattern
}

// NewSet parses every filter. Malformed filters are kept but never match.
func NewSet(filters []string) Set {
	patterns := make([]Pattern, 0, len(filters))
	for _, f := range filters {
		p, _ := ParsePattern(f) //nolint:errcheck // invalid patterns stay inert
		patterns = append(patterns, p)
	}
	return Set{patterns: patterns}
}

// Matches reports whether topic matches at least one pattern in the set.
func (s Set) Matches(topic string) bool {
	for _, p := range s.patterns {
		if p.Matches(topic) {
			return true
		}
	}
	return false
}

// Filters returns the configured filter strings in their original order.
func (s Set) Filters() []string {
	out := make([]string, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, p.raw)
	}
	return out
}

// Invalid returns the filters that failed validation.
func (s Set) Invalid() []string {
	var out []string
	for _, p := range s.patterns {
		if !p.valid {
			out = append(out, p.raw)
		}
	}
	return out
}

// Len returns the number of patterns in the set.
func (s Set) Len() int {
	return len(s.patterns)
}
