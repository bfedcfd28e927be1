package discovery

import (
	"testing"

	"jet/internal/domain"
)

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()

	tests := []struct {
		name     string
		units    []string
		pattern  string
		expected int // Expected number of matches
	}{
		{
			name:     "empty pattern returns all",
			units:    []string{"test_arrays.go", "test_strings.go", "test_maps.go"},
			pattern:  "",
			expected: 3,
		},
		{
			name:     "wildcard pattern matches suffix",
			units:    []string{"test_arrays.go", "test_strings.go", "test_maps.go"},
			pattern:  "*arrays.go",
			expected: 1,
		},
		{
			name:     "wildcard pattern matches substring",
			units:    []string{"test_arrays.go", "test_array_ops.go", "test_maps.go", "test_strings.go"},
			pattern:  "*array*",
			expected: 2,
		},
		{
			name:     "simple contains match",
			units:    []string{"test_arrays.go", "test_strings.go", "test_maps.go"},
			pattern:  "strings",
			expected: 1,
		},
		{
			name:     "no matches",
			units:    []string{"test_arrays.go", "test_strings.go"},
			pattern:  "*nonexistent*",
			expected: 0,
		},
		{
			name:     "full path with wildcard",
			units:    []string{"/path/to/test_arrays.go", "/path/to/test_strings.go"},
			pattern:  "*arrays.go",
			expected: 1,
		},
		{
			name:     "parts must appear in order",
			units:    []string{"test_verbose_levels.go", "test_levels_verbose.go"},
			pattern:  "*verbose*levels*",
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterByName(tt.units, tt.pattern)
			if len(result) != tt.expected {
				t.Errorf("expected %d matches, got %d", tt.expected, len(result))
			}
		})
	}
}

func TestFilter_FilterByName_EdgeCases(t *testing.T) {
	filter := NewFilter()

	t.Run("empty unit list", func(t *testing.T) {
		result := filter.FilterByName([]string{}, "test_*.go")
		if len(result) != 0 {
			t.Errorf("expected empty result, got %d items", len(result))
		}
	})

	t.Run("pattern with multiple wildcards", func(t *testing.T) {
		units := []string{"test_user_service.go", "test_user_controller.go", "test_payment.go"}
		result := filter.FilterByName(units, "*user*.go")
		if len(result) != 2 {
			t.Errorf("expected 2 matches, got %d", len(result))
		}
	})
}

func TestFilter_FilterTests(t *testing.T) {
	filter := NewFilter()
	cases := []domain.TestCase{
		{Name: "Linear sum", FuncName: "TestLinearSum"},
		{Name: "Empty input", FuncName: "TestEmptyInput"},
		{Name: "Linear product", FuncName: "TestLinearProduct"},
	}

	tests := []struct {
		pattern string
		want    []string
	}{
		{"", []string{"TestLinearSum", "TestEmptyInput", "TestLinearProduct"}},
		{"TestLinear*", []string{"TestLinearSum", "TestLinearProduct"}},
		{"Empty", []string{"TestEmptyInput"}},
		{"Linear sum", []string{"TestLinearSum"}},
		{"*Missing*", nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			result := filter.FilterTests(cases, tt.pattern)
			var got []string
			for _, tc := range result {
				got = append(got, tc.FuncName)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}
