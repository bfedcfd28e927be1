package instrument

import (
	"reflect"
	"sync"

	"jet/internal/domain"
)

// Frame is the tracer's record of one active function call
type Frame struct {
	seq    int
	line   int
	locals []domain.Binding
}

func (f *Frame) bind(name string, value any) {
	for i := range f.locals {
		if f.locals[i].Name == name {
			f.locals[i].Value = value
			return
		}
	}
	f.locals = append(f.locals, domain.Binding{Name: name, Value: value})
}

func (f *Frame) trace(file string) domain.Trace {
	locals := make([]domain.Binding, len(f.locals))
	copy(locals, f.locals)
	return domain.Trace{File: file, Line: f.line, Locals: locals}
}

// Tracer follows the calls of one instrumented file.
//
// A frame that fails while unwinding from a panic becomes the failure candidate.
// Unwinding fails the deepest frame first, so the first candidate wins until a
// shallower frame runs again, which can only happen after the panic was recovered.
type Tracer struct {
	file string

	mu      sync.Mutex
	seq     int
	stack   []*Frame
	failure *domain.Trace
	failSeq int
	last    *Frame
}

// NewTracer creates a tracer reporting locations in file
func NewTracer(file string) *Tracer {
	return &Tracer{file: file}
}

// Enter opens a frame for a function call
func (t *Tracer) Enter() *Frame {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	f := &Frame{seq: t.seq}
	t.stack = append(t.stack, f)
	return f
}

// Leave closes f and any frame above it
func (t *Tracer) Leave(f *Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pop(f)
}

// Fail closes f while a panic passes through it
func (t *Tracer) Fail(f *Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.failure == nil {
		tr := f.trace(t.file)
		t.failure = &tr
		t.failSeq = f.seq
	}
	t.pop(f)
}

// Mark records the line the innermost frame is about to execute
func (t *Tracer) Mark(line int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f := t.top()
	if f == nil {
		return
	}
	f.line = line
	t.last = f
	t.resumed(f)
}

// Bind records the current value of a variable in the innermost frame
func (t *Tracer) Bind(name string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if f := t.top(); f != nil {
		f.bind(name, value)
	}
}

// Reset forgets everything recorded so far
func (t *Tracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stack = nil
	t.failure = nil
	t.failSeq = 0
	t.last = nil
}

// Snapshot returns the location a failing call stopped at. Without a failure
// candidate it falls back to the most recently executed line.
func (t *Tracer) Snapshot() (domain.Trace, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.failure != nil {
		tr := *t.failure
		tr.Locals = append([]domain.Binding(nil), t.failure.Locals...)
		return tr, true
	}
	if t.last != nil {
		return t.last.trace(t.file), true
	}
	return domain.Trace{File: t.file}, false
}

func (t *Tracer) pop(f *Frame) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i] == f {
			t.stack = t.stack[:i]
			return
		}
	}
}

func (t *Tracer) top() *Frame {
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

// resumed drops a failure candidate once a shallower frame carries on
func (t *Tracer) resumed(f *Frame) {
	if t.failure != nil && f.seq < t.failSeq {
		t.failure = nil
		t.failSeq = 0
	}
}

// Symbols exposes the tracer under ImportPath to an interpreter
func Symbols(t *Tracer) map[string]map[string]reflect.Value {
	return map[string]map[string]reflect.Value{
		ImportPath + "/" + PackageName: {
			"Enter": reflect.ValueOf(t.Enter),
			"Leave": reflect.ValueOf(t.Leave),
			"Fail":  reflect.ValueOf(t.Fail),
			"Mark":  reflect.ValueOf(t.Mark),
			"Bind":  reflect.ValueOf(t.Bind),
			"Frame": reflect.ValueOf((*Frame)(nil)),
		},
	}
}
