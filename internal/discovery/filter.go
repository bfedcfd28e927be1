package discovery

import (
	"path/filepath"
	"strings"

	"jet/internal/domain"
)

// Filter narrows discovered units and test cases by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters unit paths by their file name.
// Supports patterns like "test_array*" or "*verbose*"; a pattern without wildcards
// matches as a substring.
func (f *Filter) FilterByName(units []string, pattern string) []string {
	if pattern == "" {
		return units
	}

	var filtered []string
	for _, unit := range units {
		if match(pattern, filepath.Base(unit)) {
			filtered = append(filtered, unit)
		}
	}
	return filtered
}

// FilterTests keeps the test cases whose function or display name matches pattern
func (f *Filter) FilterTests(cases []domain.TestCase, pattern string) []domain.TestCase {
	if pattern == "" {
		return cases
	}

	var filtered []domain.TestCase
	for _, tc := range cases {
		if match(pattern, tc.FuncName) || match(pattern, tc.Name) {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}

func match(pattern, name string) bool {
	// Try to match using filepath.Match (supports * and ? wildcards)
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	// Fall back to requiring every literal part in order, "*Payment*" style
	rest := name
	found := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		if strings.Contains(part, "?") {
			return false
		}
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
		found = true
	}
	return found
}
