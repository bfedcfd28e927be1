package execution

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"jet/internal/domain"
	"jet/probe"
)

var strict = domain.Mode{WarningsAsFailures: true}

func TestSandbox_Pass(t *testing.T) {
	host := newFakeHost()
	sandbox := NewSandbox(nil, zaptest.NewLogger(t))

	tc := newCase("TestPrints", func() { host.Printf("hello %d\n", 1) }, host)
	outcome, err := sandbox.Run(tc, strict)

	require.NoError(t, err)
	assert.Equal(t, domain.KindPass, outcome.Kind)
	assert.Equal(t, "Prints works.", outcome.Doc)
	assert.Equal(t, "hello 1\n", outcome.Output)
	assert.Nil(t, outcome.Diagnostic)
	assert.Equal(t, 1, host.entered)
	assert.Equal(t, 1, host.left)
}

func TestSandbox_Classification(t *testing.T) {
	tests := []struct {
		name  string
		fn    func()
		kind  domain.Kind
		alias string
		desc  string
	}{
		{"assertion", func() { probe.Assert(false, "expected true") }, domain.KindFailed, "AssertionError", "expected true"},
		{"warning", func() { probe.Warn("deprecated call") }, domain.KindWarning, "Warning", "deprecated call"},
		{"runtime error", func() {
			var m map[string]int
			m["x"] = 1
		}, domain.KindError, "RuntimeError", "assignment to entry in nil map"},
		{"plain panic", func() { panic("boom") }, domain.KindError, "Panic", "boom"},
		{"error value", func() { panic(errors.New("bad state")) }, domain.KindError, "Error", "bad state"},
		{"custom alias", func() { probe.Raise("PatienceError", "too slow") }, domain.KindError, "PatienceError", "too slow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost()
			outcome, err := NewSandbox(nil, zaptest.NewLogger(t)).Run(newCase("TestCase", tt.fn, host), strict)

			require.NoError(t, err)
			assert.Equal(t, tt.kind, outcome.Kind)
			require.NotNil(t, outcome.Diagnostic)
			assert.Equal(t, tt.kind, outcome.Diagnostic.Kind)
			assert.Equal(t, tt.alias, outcome.Diagnostic.AliasName)
			assert.Contains(t, outcome.Diagnostic.Description, tt.desc)
			assert.Equal(t, 1, host.left, "capture must be closed after a panic")
		})
	}
}

func TestSandbox_ClassifierOverride(t *testing.T) {
	host := newFakeHost()
	classifier := NewClassifier(map[string]domain.Kind{"PatienceError": domain.KindFailed})

	outcome, err := NewSandbox(classifier, zaptest.NewLogger(t)).
		Run(newCase("TestSlow", func() { probe.Raise("PatienceError", "too slow") }, host), strict)

	require.NoError(t, err)
	assert.Equal(t, domain.KindFailed, outcome.Kind)
}

func TestSandbox_Diagnostic(t *testing.T) {
	host := newFakeHost()
	host.trace = domain.Trace{
		File:   "tests/test_sample.go",
		Line:   14,
		Locals: []domain.Binding{{Name: "total", Value: 5}, {Name: "name", Value: "x"}},
	}
	tc := newCase("TestSum", func() {
		host.Printf("computing\n")
		probe.Equal(6, 5, "sum differs")
	}, host)

	outcome, err := NewSandbox(nil, zaptest.NewLogger(t)).Run(tc, strict)
	require.NoError(t, err)

	assert.Equal(t, &domain.Diagnostic{
		Kind:        domain.KindFailed,
		AliasName:   "AssertionError",
		Description: "sum differs",
		SourceFile:  "tests/test_sample.go",
		SourceLine:  14,
		LocalVariables: domain.Variables{
			{Name: "total", Value: json.RawMessage(`5`)},
			{Name: "name", Value: json.RawMessage(`"x"`)},
			{Name: "want", Value: json.RawMessage(`6`)},
			{Name: "got", Value: json.RawMessage(`5`)},
		},
		CapturedOutput: "computing\n",
		TestName:       "Sum",
		TestDoc:        "Sum works.",
		UnitName:       testUnit.Name,
		UnitDoc:        testUnit.Doc,
		UnitPath:       testUnit.Path,
	}, outcome.Diagnostic)
}

func TestSandbox_FallsBackToDeclaration(t *testing.T) {
	host := newFakeHost()

	outcome, err := NewSandbox(nil, zaptest.NewLogger(t)).Run(newCase("TestBoom", func() { panic("boom") }, host), strict)
	require.NoError(t, err)

	assert.Equal(t, testUnit.Path, outcome.Diagnostic.SourceFile)
	assert.Equal(t, 10, outcome.Diagnostic.SourceLine)
	assert.Nil(t, outcome.Diagnostic.LocalVariables)
}

func TestSandbox_Precondition(t *testing.T) {
	host := newFakeHost()
	called := false

	outcome, err := NewSandbox(nil, zaptest.NewLogger(t)).
		Run(newCase("TestArgs", func(n int) { called = true }, host), strict)

	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, 0, host.entered, "no capture is opened for unrunnable routines")
	assert.Equal(t, domain.KindError, outcome.Kind)
	assert.Equal(t, "PreconditionError", outcome.Diagnostic.AliasName)
}

func TestSandbox_NotInvocable(t *testing.T) {
	_, err := NewSandbox(nil, zaptest.NewLogger(t)).Run(newCase("TestValue", "nope", newFakeHost()), strict)
	assert.ErrorIs(t, err, ErrNotInvocable)
}

func TestSandbox_ModeIsScopedToTheCall(t *testing.T) {
	host := newFakeHost()
	var seen domain.Mode

	_, err := NewSandbox(nil, zaptest.NewLogger(t)).Run(newCase("TestMode", func() { seen = host.Mode() }, host), strict)
	require.NoError(t, err)

	assert.True(t, seen.WarningsAsFailures)
	assert.False(t, host.Mode().WarningsAsFailures)
}
