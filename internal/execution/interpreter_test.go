package execution

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"jet/internal/discovery"
	"jet/internal/domain"
)

const interpretedUnit = `// Checks run inside the interpreter.
package sample

import (
	"fmt"

	"jet/probe"
)

// Prints a greeting.
func TestGreeting() {
	fmt.Println("hello")
}

func TestSum() {
	values := []int{1, 2, 3}
	total := 0
	for _, v := range values {
		total += v
	}
	probe.Equal(7, total, "sum of values")
}

func TestDeprecated() {
	probe.Warn("old api")
	fmt.Println("still running")
}

func TestIndex() {
	values := []int{1}
	idx := 4
	fmt.Println(values[idx])
}

func TestNeedsInput(n int) {}
`

const helperUnit = `package sample

import (
	"fmt"
	"os"

	"jet/probe"
)

func pick(values []int, idx int) int {
	return values[idx]
}

func TestPick() {
	data := []int{1, 2}
	probe.Equal(2, pick(data, 5), "second value")
}

func TestStdout() {
	fmt.Fprintln(os.Stdout, "via os.Stdout")
	os.Stdout.WriteString("raw write\n")
	probe.Fail("stop")
}
`

func loadCases(t *testing.T, src string) []domain.TestCase {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_sample.go")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	d := discovery.NewLoader(zaptest.NewLogger(t)).LoadAll([]string{path})
	require.Empty(t, d.Errors)
	t.Cleanup(d.Close)
	return discovery.Extract(d.Units)
}

func TestSandbox_InterpretedUnit(t *testing.T) {
	cases := loadCases(t, interpretedUnit)
	require.Len(t, cases, 5)
	sandbox := NewSandbox(nil, zaptest.NewLogger(t))

	t.Run("pass with output", func(t *testing.T) {
		outcome, err := sandbox.Run(cases[0], strict)
		require.NoError(t, err)
		assert.Equal(t, domain.KindPass, outcome.Kind)
		assert.Equal(t, "Prints a greeting.", outcome.Doc)
		assert.Equal(t, "hello\n", outcome.Output)
	})

	t.Run("failed assertion with locals", func(t *testing.T) {
		outcome, err := sandbox.Run(cases[1], strict)
		require.NoError(t, err)
		require.Equal(t, domain.KindFailed, outcome.Kind)

		diag := outcome.Diagnostic
		assert.Equal(t, "AssertionError", diag.AliasName)
		assert.Equal(t, "sum of values", diag.Description)
		assert.Equal(t, 21, diag.SourceLine)

		locals := map[string]string{}
		for _, v := range diag.LocalVariables {
			locals[v.Name] = string(v.Value)
		}
		assert.Equal(t, "[1,2,3]", locals["values"])
		assert.Equal(t, "6", locals["total"])
		assert.Equal(t, "7", locals["want"])
		assert.Equal(t, "6", locals["got"])
	})

	t.Run("warning raised in strict mode", func(t *testing.T) {
		outcome, err := sandbox.Run(cases[2], strict)
		require.NoError(t, err)
		assert.Equal(t, domain.KindWarning, outcome.Kind)
		assert.Equal(t, "old api", outcome.Diagnostic.Description)
		assert.Equal(t, 25, outcome.Diagnostic.SourceLine)
	})

	t.Run("warning logged in lenient mode", func(t *testing.T) {
		outcome, err := sandbox.Run(cases[2], domain.Mode{})
		require.NoError(t, err)
		assert.Equal(t, domain.KindPass, outcome.Kind)
		assert.Equal(t, "still running\n", outcome.Output)
	})

	t.Run("runtime error", func(t *testing.T) {
		outcome, err := sandbox.Run(cases[3], strict)
		require.NoError(t, err)
		assert.Equal(t, domain.KindError, outcome.Kind)
		assert.Equal(t, "RuntimeError", outcome.Diagnostic.AliasName)
		assert.Equal(t, 32, outcome.Diagnostic.SourceLine)
		assert.Equal(t, json.RawMessage(`4`), outcome.Diagnostic.LocalVariables[1].Value)
	})

	t.Run("precondition", func(t *testing.T) {
		outcome, err := sandbox.Run(cases[4], strict)
		require.NoError(t, err)
		assert.Equal(t, "PreconditionError", outcome.Diagnostic.AliasName)
		assert.Equal(t, 35, outcome.Diagnostic.SourceLine)
	})
}

func TestRunner_InterpretedUnitIsRepeatable(t *testing.T) {
	cases := loadCases(t, interpretedUnit)
	runner := NewRunner(NewSandbox(nil, zaptest.NewLogger(t)), strict)

	first, _, err := runner.Execute(context.Background(), cases)
	require.NoError(t, err)
	second, _, err := runner.Execute(context.Background(), cases)
	require.NoError(t, err)

	assert.Equal(t, domain.RunSummary{NTests: 5, Pass: 1, Failed: 1, Warning: 1, Error: 2}, first.Summary())
	assert.Equal(t, first.Summary(), second.Summary())
	assert.Equal(t, first.Diagnostics(), second.Diagnostics())
}

func TestSandbox_HelperAndStdout(t *testing.T) {
	cases := loadCases(t, helperUnit)
	require.Len(t, cases, 2)
	sandbox := NewSandbox(nil, zaptest.NewLogger(t))

	t.Run("panic in a helper's return expression", func(t *testing.T) {
		outcome, err := sandbox.Run(cases[0], strict)
		require.NoError(t, err)
		assert.Equal(t, domain.KindError, outcome.Kind)

		diag := outcome.Diagnostic
		assert.Equal(t, "RuntimeError", diag.AliasName)
		assert.Equal(t, 11, diag.SourceLine)

		locals := map[string]string{}
		for _, v := range diag.LocalVariables {
			locals[v.Name] = string(v.Value)
		}
		assert.Equal(t, map[string]string{"values": "[1,2]", "idx": "5"}, locals)
	})

	t.Run("writes through os.Stdout are captured", func(t *testing.T) {
		outcome, err := sandbox.Run(cases[1], strict)
		require.NoError(t, err)
		require.Equal(t, domain.KindFailed, outcome.Kind)

		assert.Equal(t, "via os.Stdout\nraw write\n", outcome.Output)
		assert.Equal(t, "via os.Stdout\nraw write\n", outcome.Diagnostic.CapturedOutput)
	})
}
