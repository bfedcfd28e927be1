package discovery

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"jet/internal/domain"
)

const loadableUnit = `// Sums and products of slices.
package arrays

import (
	"fmt"

	"jet/probe"
)

// TestSum checks the sum of two slices.
func TestSum() {
	total := 0
	for _, v := range []int{1, 2, 3} {
		total += v
	}
	fmt.Println("total", total)
	probe.Equal(6, total, "sum")
}

func TestBroken() {
	values := []int{1, 2}
	probe.Assert(len(values) == 3, "expected three values")
}

func Helper() int { return 1 }
`

func writeUnit(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestLoader_Load(t *testing.T) {
	path := writeUnit(t, t.TempDir(), "test_array_sums.go", loadableUnit)
	loader := NewLoader(zaptest.NewLogger(t))

	unit, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Array sums", unit.Name)
	assert.Equal(t, "Sums and products of slices.", unit.Doc)
	assert.Equal(t, "arrays", unit.Package)
	assert.Equal(t, path, unit.Path)

	var names []string
	for _, m := range unit.Members {
		names = append(names, m.Name)
		assert.True(t, m.Handle.IsValid(), m.Name)
	}
	assert.Equal(t, []string{"TestSum", "TestBroken", "Helper"}, names)
	assert.Equal(t, 11, unit.Members[0].Line)
}

func TestLoader_CapturesOutputThroughHost(t *testing.T) {
	path := writeUnit(t, t.TempDir(), "test_array_sums.go", loadableUnit)
	unit, err := NewLoader(zaptest.NewLogger(t)).Load(path)
	require.NoError(t, err)

	var out bytes.Buffer
	leave := unit.Host.Enter(&out, domain.Mode{WarningsAsFailures: true})
	unit.Members[0].Handle.Call(nil)
	leave()

	assert.Equal(t, "total 6\n", out.String())

	// Output after leaving is discarded
	unit.Members[0].Handle.Call(nil)
	assert.Equal(t, "total 6\n", out.String())
}

func TestLoader_TracesFailingLine(t *testing.T) {
	path := writeUnit(t, t.TempDir(), "test_array_sums.go", loadableUnit)
	unit, err := NewLoader(zaptest.NewLogger(t)).Load(path)
	require.NoError(t, err)

	leave := unit.Host.Enter(&bytes.Buffer{}, domain.Mode{WarningsAsFailures: true})
	assert.Panics(t, func() { unit.Members[1].Handle.Call(nil) })
	leave()

	trace := unit.Host.Trace()
	assert.Equal(t, path, trace.File)
	assert.Equal(t, 22, trace.Line)
	require.Len(t, trace.Locals, 1)
	assert.Equal(t, "values", trace.Locals[0].Name)
}

func TestLoader_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(zaptest.NewLogger(t))

	t.Run("syntax error", func(t *testing.T) {
		path := writeUnit(t, dir, "test_syntax.go", "package broken\nfunc TestX( {\n")
		_, err := loader.Load(path)

		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, path, loadErr.Path)
	})

	t.Run("undefined identifier", func(t *testing.T) {
		path := writeUnit(t, dir, "test_undefined.go", "package broken\n\nfunc TestX() {\n\tmissing()\n}\n")
		_, err := loader.Load(path)
		assert.Error(t, err)
	})

	t.Run("panic during initialization", func(t *testing.T) {
		path := writeUnit(t, dir, "test_init.go", "package broken\n\nvar x = boom()\n\nfunc boom() int { panic(\"init\") }\n\nfunc TestX() {}\n")
		_, err := loader.Load(path)
		assert.Error(t, err)
	})
}

func TestLoader_LoadAllSkipsBadUnits(t *testing.T) {
	dir := t.TempDir()
	good := writeUnit(t, dir, "test_good.go", loadableUnit)
	bad := writeUnit(t, dir, "test_bad.go", "package bad\nfunc (\n")
	other := writeUnit(t, dir, "test_other.go", "package other\n\nfunc TestOther() {}\n")

	d := NewLoader(zaptest.NewLogger(t)).LoadAll([]string{good, bad, other})

	require.Len(t, d.Units, 2)
	assert.Equal(t, good, d.Units[0].Path)
	assert.Equal(t, other, d.Units[1].Path)
	require.Len(t, d.Errors, 1)
	assert.Equal(t, bad, d.Errors[0].Path)
}

const stdoutUnit = `package output

import (
	"fmt"
	"os"
)

func init() {
	fmt.Println("loading")
}

func TestWrites() {
	fmt.Fprintln(os.Stdout, "via os.Stdout")
	os.Stdout.WriteString("raw write\n")
	fmt.Println("via fmt")
}
`

func TestLoader_CapturesProcessStdout(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := writeUnit(t, t.TempDir(), "test_output.go", stdoutUnit)
	d := NewLoader(zaptest.NewLogger(t)).LoadAll([]string{path})
	require.Empty(t, d.Errors)
	defer d.Close()

	host := d.Units[0].Host
	for range 2 {
		var out bytes.Buffer
		leave := host.Enter(&out, domain.Mode{})
		d.Units[0].Members[0].Handle.Call(nil)
		leave()

		assert.Equal(t, "via os.Stdout\nraw write\nvia fmt\n", out.String())
	}
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(zaptest.NewLogger(t))
	d := loader.LoadAll([]string{
		writeUnit(t, dir, "test_array_sums.go", loadableUnit),
		writeUnit(t, dir, "test_other.go", "package other\n\nfunc TestLinearSum() {}\n\nfunc Testify() {}\n"),
	})
	require.Empty(t, d.Errors)

	cases := Extract(d.Units)

	require.Len(t, cases, 3)
	assert.Equal(t, "TestSum", cases[0].FuncName)
	assert.Equal(t, "Sum", cases[0].Name)
	assert.Equal(t, "TestSum checks the sum of two slices.", cases[0].Doc)
	assert.Equal(t, "Array sums", cases[0].Unit.Name)
	assert.Equal(t, "Broken", cases[1].Doc)
	assert.Equal(t, "Linear sum", cases[2].Name)
	assert.Equal(t, "Linear sum", cases[2].Doc)
	assert.Equal(t, 3, cases[2].Line)
	assert.True(t, cases[2].Handle().IsValid())
	assert.NotNil(t, cases[2].Host())
}
