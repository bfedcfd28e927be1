// Package probe is the API test files use to state expectations.
//
// A test is a function named TestXxx that takes no arguments. It fails by calling
// one of the assertion helpers below, which panic with an *AssertionError. Any other
// panic is reported as an error. Warn raises an advisory *Warning; Raise lets a test
// report its own failure kind under a custom alias.
//
//	package arrays
//
//	import "jet/probe"
//
//	// Addition of two slices keeps the length.
//	func TestAddition() {
//		sum := add([]int{1, 2}, []int{3, 4})
//		probe.Equal(2, len(sum), "length changed")
//	}
package probe

import (
	"fmt"
	"reflect"
)

// AssertionError is raised when an explicit expectation does not hold
type AssertionError struct {
	Message  string
	Observed []Observation
}

func (e *AssertionError) Error() string {
	return e.Message
}

// Warning is an advisory signal raised from test code
type Warning struct {
	Message string
}

func (w *Warning) Error() string {
	return w.Message
}

// Signal is a failure raised under a caller-chosen alias
type Signal struct {
	Alias   string
	Message string
}

func (s *Signal) Error() string {
	return s.Message
}

// Observation is a value a helper recorded for the failure report
type Observation struct {
	Name  string
	Value any
}

// Assert fails the test with msg when cond is false
func Assert(cond bool, msg string) {
	if !cond {
		panic(&AssertionError{Message: msg})
	}
}

// Equal fails the test when want and got are not deeply equal
func Equal(want, got any, msg string) {
	if reflect.DeepEqual(want, got) {
		return
	}
	panic(&AssertionError{
		Message:  describe(msg, "values differ"),
		Observed: []Observation{{Name: "want", Value: want}, {Name: "got", Value: got}},
	})
}

// NotEqual fails the test when a and b are deeply equal
func NotEqual(a, b any, msg string) {
	if !reflect.DeepEqual(a, b) {
		return
	}
	panic(&AssertionError{
		Message:  describe(msg, "values are equal"),
		Observed: []Observation{{Name: "value", Value: a}},
	})
}

// Fail fails the test unconditionally
func Fail(format string, args ...any) {
	panic(&AssertionError{Message: fmt.Sprintf(format, args...)})
}

// Raise reports a failure classified under alias
func Raise(alias, msg string) {
	panic(&Signal{Alias: alias, Message: msg})
}

// Warn raises an advisory warning. When the harness runs leniently the
// warning is logged and the test continues.
func Warn(msg string) {
	panic(&Warning{Message: msg})
}

// Observe records a value for the failure report. It is a no-op outside the harness.
func Observe(name string, value any) {}

func describe(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
