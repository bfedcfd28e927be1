package execution

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"jet/internal/domain"
)

// fakeHost stands in for a unit interpreter: routines print through Printf
type fakeHost struct {
	mu      sync.Mutex
	out     io.Writer
	mode    domain.Mode
	trace   domain.Trace
	entered int
	left    int
}

func newFakeHost() *fakeHost {
	return &fakeHost{out: io.Discard}
}

func (h *fakeHost) Enter(out io.Writer, mode domain.Mode) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.out = out
	h.mode = mode
	h.entered++
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.out = io.Discard
		h.mode = domain.Mode{}
		h.left++
	}
}

func (h *fakeHost) Trace() domain.Trace {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.trace
}

func (h *fakeHost) Printf(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.out, format, args...)
}

func (h *fakeHost) Mode() domain.Mode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mode
}

var testUnit = domain.UnitRef{Name: "Sample", Doc: "Sample unit.", Path: "tests/test_sample.go"}

func newCase(funcName string, fn any, host domain.Host) domain.TestCase {
	return newCaseIn(testUnit, funcName, fn, host)
}

func newCaseIn(unit domain.UnitRef, funcName string, fn any, host domain.Host) domain.TestCase {
	name := funcName[len("Test"):]
	return domain.NewTestCase(name, funcName, name+" works.", 10, unit, reflect.ValueOf(fn), host)
}
