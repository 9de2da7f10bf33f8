package topic

import (
	"errors"
	"testing"
)

func TestPatternMatches(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"a/b/c", "a/b/c", true},
		{"a/b/c", "a/b/C", false},
		{"a/b", "a/b/c", false},
		{"a/b/c", "a/b", false},
		{"a/+/c", "a/b/c", true},
		{"a/+/c", "a/b/d/c", false},
		{"a/+/c", "a/c", false},
		{"a/+", "a/", true},
		{"+/+", "foo/bar", true},
		{"+/+", "foo/bar/baz", false},
		{"a/#", "a", true},
		{"a/#", "a/b", true},
		{"a/#", "a/b/c", true},
		{"a/#", "b/a", false},
		{"#", "anything/at/all", true},
		{"+/b/#", "x/b", true},
		{"+/b/#", "x/c/d", false},
		{"$SYS/#", "$SYS/broker/uptime", true},
		{"#", "$SYS/broker/uptime", false},
		{"+/broker/uptime", "$SYS/broker/uptime", false},
		{"a/b", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"~"+tt.topic, func(t *testing.T) {
			p, err := ParsePattern(tt.pattern)
			if err != nil {
				t.Fatalf("ParsePattern(%q) error = %v", tt.pattern, err)
			}
			if got := p.Matches(tt.topic); got != tt.want {
				t.Errorf("Pattern(%q).Matches(%q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
			}
		})
	}
}

func TestValidatePattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr error
	}{
		{"literal", "home/cellar/water", nil},
		{"single level", "home/+/water", nil},
		{"multi level last", "home/#", nil},
		{"only multi level", "#", nil},
		{"empty", "", ErrEmptyPattern},
		{"multi level first", "#/water", ErrMisplacedMultiLevel},
		{"multi level middle", "home/#/water", ErrMisplacedMultiLevel},
		{"mixed plus", "home/cel+lar", ErrMixedWildcard},
		{"mixed hash", "home/water#", ErrMixedWildcard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePattern(tt.pattern)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePattern(%q) error = %v, want nil", tt.pattern, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePattern(%q) error = %v, want %v", tt.pattern, err, tt.wantErr)
			}
		})
	}
}

func TestMalformedPatternNeverMatches(t *testing.T) {
	p, err := ParsePattern("a/#/c")
	if err == nil {
		t.Fatal("ParsePattern() expected error")
	}
	if p.Valid() {
		t.Error("Valid() = true, want false")
	}
	if p.Matches("a/b/c") {
		t.Error("malformed pattern matched")
	}

	var zero Pattern
	if zero.Matches("a") {
		t.Error("zero Pattern matched")
	}
}

func TestSetMatchesAny(t *testing.T) {
	set := NewSet([]string{"a/#/broken", "home/+/water", "garden/pond"})

	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}

	tests := []struct {
		topic string
		want  bool
	}{
		{"home/cellar/water", true},
		{"garden/pond", true},
		{"a/x/broken", false},
		{"garden/pond/deep", false},
	}
	for _, tt := range tests {
		if got := set.Matches(tt.topic); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.topic, got, tt.want)
		}
	}

	invalid := set.Invalid()
	if len(invalid) != 1 || invalid[0] != "a/#/broken" {
		t.Errorf("Invalid() = %v, want [a/#/broken]", invalid)
	}
}

func TestSetFiltersPreservesOrder(t *testing.T) {
	filters := []string{"b/#", "a/+", "c"}
	got := NewSet(filters).Filters()
	for i := range filters {
		if got[i] != filters[i] {
			t.Fatalf("Filters() = %v, want %v", got, filters)
		}
	}
}

func TestEmptySet(t *testing.T) {
	var set Set
	if set.Matches("a") {
		t.Error("empty Set matched")
	}
}
