// Package naming derives display names from file and function names.
package naming

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// TestPrefix marks a function as a test routine
	TestPrefix = "Test"
	// UnitPrefix marks a file as a test unit
	UnitPrefix = "test_"
	// UnitSuffix is the extension of test units
	UnitSuffix = ".go"
)

// SplitCamel separates camel-case humps with spaces. An uppercase run followed by
// a capitalized word is split before the word: "HTTPError" -> "HTTP Error".
func SplitCamel(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && boundary(runes, i) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func boundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	if unicode.IsLower(prev) && unicode.IsUpper(cur) {
		return true
	}
	return unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

// Humanize turns underscores into spaces, collapses repeated spaces and
// capitalizes the first letter while lower-casing the rest.
func Humanize(s string) string {
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " ")
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

// UnitName returns the display name of a unit file: "test_array_ops.go" -> "Array ops"
func UnitName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, UnitSuffix)
	base = strings.TrimPrefix(base, UnitPrefix)
	return Humanize(base)
}

// TestName returns the display name of a test function: "TestLinearSum" -> "Linear sum"
func TestName(funcName string) string {
	return Humanize(SplitCamel(strings.TrimPrefix(funcName, TestPrefix)))
}

// IsTest reports whether a function name follows the test naming convention.
// Like go test, the character after the prefix must not be a lowercase letter.
func IsTest(funcName string) bool {
	if !strings.HasPrefix(funcName, TestPrefix) {
		return false
	}
	if len(funcName) == len(TestPrefix) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(funcName[len(TestPrefix):])
	return !unicode.IsLower(r)
}

// IsUnitFile reports whether a file name follows the unit naming convention
func IsUnitFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, UnitPrefix) && strings.HasSuffix(base, UnitSuffix) && !strings.HasSuffix(base, "_test.go")
}

// Headline returns the upper-cased, space separated form of an alias: "PreconditionError" -> "PRECONDITION ERROR"
func Headline(alias string) string {
	return strings.ToUpper(SplitCamel(alias))
}
