package domain

import (
	"io"
	"reflect"
)

// Unit is one loaded test file treated as a namespace of candidate test routines
type Unit struct {
	Name    string   // Humanized file name ("test_array_ops.go" -> "Array ops")
	Doc     string   // Package doc comment, empty if absent
	Path    string   // Path to the source file
	Package string   // Declared package name
	Members []Member // Exported top-level functions in declaration order
	Host    Host     // Runtime the members execute in
}

// Ref returns the serializable identity of the unit
func (u *Unit) Ref() UnitRef {
	return UnitRef{Name: u.Name, Doc: u.Doc, Path: u.Path}
}

// UnitRef identifies a unit without holding its runtime
type UnitRef struct {
	Name string `json:"name"`
	Doc  string `json:"doc"`
	Path string `json:"path"`
}

// Member is a function defined directly in a unit
type Member struct {
	Name   string
	Doc    string
	Line   int
	Handle reflect.Value
}

// TestCase is one discovered test routine plus its resolved display metadata
type TestCase struct {
	Name     string  // Display name
	FuncName string  // Declared function name
	Doc      string  // Function doc comment, falls back to Name
	Line     int     // Declaration line
	Unit     UnitRef // Owning unit

	handle reflect.Value
	host   Host
}

// NewTestCase binds a test case to the routine it invokes and the host it runs in
func NewTestCase(name, funcName, doc string, line int, unit UnitRef, handle reflect.Value, host Host) TestCase {
	return TestCase{
		Name:     name,
		FuncName: funcName,
		Doc:      doc,
		Line:     line,
		Unit:     unit,
		handle:   handle,
		host:     host,
	}
}

// Handle returns the invocation handle of the routine
func (tc TestCase) Handle() reflect.Value {
	return tc.handle
}

// Host returns the runtime the routine executes in
func (tc TestCase) Host() Host {
	return tc.host
}

// Mode holds per-call execution switches
type Mode struct {
	// WarningsAsFailures makes advisory warnings raise instead of being logged
	WarningsAsFailures bool
}

// Binding is one observed variable
type Binding struct {
	Name  string
	Value any
}

// Trace is the deepest location reached by a call and the variables bound there
type Trace struct {
	File   string
	Line   int
	Locals []Binding
}

// Host is the execution context a unit's routines run in.
type Host interface {
	// Enter routes the unit's standard output into out and applies mode for a single
	// call. The returned function restores the idle state and must always be called.
	Enter(out io.Writer, mode Mode) (leave func())
	// Trace reports where the last call stopped.
	Trace() Trace
}
