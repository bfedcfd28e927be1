package instrument

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jet/internal/domain"
)

// call mimics an instrumented function body: it enters, runs body and leaves,
// failing the frame when body panics.
func call(tr *Tracer, body func()) {
	f := tr.Enter()
	defer func() {
		if r := recover(); r != nil {
			tr.Fail(f)
			panic(r)
		}
		tr.Leave(f)
	}()
	body()
}

func TestTracer_DeepestFrameWins(t *testing.T) {
	tr := NewTracer("test_sample.go")

	assert.Panics(t, func() {
		call(tr, func() {
			tr.Mark(10)
			tr.Bind("outer", 1)
			call(tr, func() {
				tr.Mark(20)
				tr.Bind("inner", "x")
				panic("boom")
			})
		})
	})

	trace, ok := tr.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "test_sample.go", trace.File)
	assert.Equal(t, 20, trace.Line)
	assert.Equal(t, []domain.Binding{{Name: "inner", Value: "x"}}, trace.Locals)
}

func TestTracer_RecoveredPanicIsForgotten(t *testing.T) {
	tr := NewTracer("test_sample.go")

	assert.Panics(t, func() {
		call(tr, func() {
			tr.Mark(3)
			func() {
				defer func() { recover() }()
				call(tr, func() {
					tr.Mark(7)
					panic("recovered")
				})
			}()
			tr.Mark(4)
			tr.Bind("after", true)
			panic("real")
		})
	})

	trace, ok := tr.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 4, trace.Line)
	assert.Equal(t, []domain.Binding{{Name: "after", Value: true}}, trace.Locals)
}

func TestTracer_BindReplacesInPlace(t *testing.T) {
	tr := NewTracer("f.go")

	assert.Panics(t, func() {
		call(tr, func() {
			tr.Mark(1)
			tr.Bind("i", 0)
			tr.Bind("total", 0)
			tr.Bind("i", 1)
			panic("stop")
		})
	})

	trace, _ := tr.Snapshot()
	assert.Equal(t, []domain.Binding{{Name: "i", Value: 1}, {Name: "total", Value: 0}}, trace.Locals)
}

func TestTracer_FallsBackToLastMark(t *testing.T) {
	tr := NewTracer("f.go")

	call(tr, func() {
		tr.Mark(5)
		tr.Bind("v", 2)
	})

	trace, ok := tr.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 5, trace.Line)
	assert.Equal(t, []domain.Binding{{Name: "v", Value: 2}}, trace.Locals)
}

func TestTracer_Reset(t *testing.T) {
	tr := NewTracer("f.go")

	assert.Panics(t, func() {
		call(tr, func() {
			tr.Mark(9)
			panic("x")
		})
	})
	tr.Reset()

	trace, ok := tr.Snapshot()
	assert.False(t, ok)
	assert.Equal(t, domain.Trace{File: "f.go"}, trace)

	// Marks outside any frame are ignored
	tr.Mark(3)
	tr.Bind("x", 1)
	_, ok = tr.Snapshot()
	assert.False(t, ok)
}

func TestTracer_SnapshotIsACopy(t *testing.T) {
	tr := NewTracer("f.go")

	assert.Panics(t, func() {
		call(tr, func() {
			tr.Mark(1)
			tr.Bind("a", 1)
			panic("x")
		})
	})

	first, _ := tr.Snapshot()
	first.Locals[0].Value = 99

	second, _ := tr.Snapshot()
	assert.Equal(t, 1, second.Locals[0].Value)
}

func TestSymbols(t *testing.T) {
	tr := NewTracer("f.go")
	exports := Symbols(tr)

	pkg, ok := exports["jet/trace/trace"]
	require.True(t, ok)
	for _, name := range []string{"Enter", "Leave", "Fail", "Mark", "Bind", "Frame"} {
		assert.Contains(t, pkg, name)
	}
}

func TestTracer_FailureInResultExpression(t *testing.T) {
	tr := NewTracer("test_sample.go")

	// The inner call panics while computing its result, after its last Mark
	assert.Panics(t, func() {
		call(tr, func() {
			tr.Mark(4)
			tr.Bind("values", []int{1})
			call(tr, func() {
				tr.Bind("idx", 3)
				tr.Mark(11)
				panic("index out of range")
			})
		})
	})

	trace, ok := tr.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 11, trace.Line)
	assert.Equal(t, []domain.Binding{{Name: "idx", Value: 3}}, trace.Locals)
}

func TestTracer_LeaveAfterRecoveryKeepsStack(t *testing.T) {
	tr := NewTracer("f.go")

	call(tr, func() {
		tr.Mark(2)
		func() {
			defer func() { recover() }()
			call(tr, func() {
				tr.Mark(8)
				panic("inner")
			})
		}()
		// The failed inner frame is gone, marks land in the outer frame again
		tr.Mark(3)
		tr.Bind("ok", true)
	})

	trace, ok := tr.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 3, trace.Line)
	assert.Equal(t, []domain.Binding{{Name: "ok", Value: true}}, trace.Locals)
}
