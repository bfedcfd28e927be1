package discovery

import (
	"bytes"
	"io"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"jet/internal/domain"
	"jet/internal/instrument"
	"jet/internal/parser"
	"jet/probe"
)

// unitHost is the runtime state shared by every routine of one unit: the
// interpreter's output streams, the tracer and the warning mode of the current call.
type unitHost struct {
	path   string
	tracer *instrument.Tracer
	traces parser.Parser
	logger *zap.Logger

	pipe   *outputPipe
	mu     sync.Mutex
	stdout io.Writer
	stderr bytes.Buffer
	mode   domain.Mode
}

func newUnitHost(path string, logger *zap.Logger) (*unitHost, error) {
	h := &unitHost{
		path:   path,
		tracer: instrument.NewTracer(path),
		traces: parser.NewTraceParser(),
		logger: logger,
		stdout: io.Discard,
	}

	pipe, err := newOutputPipe(stream{host: h})
	if err != nil {
		return nil, err
	}
	h.pipe = pipe
	return h, nil
}

// Enter implements domain.Host
func (h *unitHost) Enter(out io.Writer, mode domain.Mode) func() {
	h.mu.Lock()
	h.stdout = out
	h.mode = mode
	h.stderr.Reset()
	h.mu.Unlock()

	h.tracer.Reset()

	return func() {
		h.pipe.Sync()

		h.mu.Lock()
		defer h.mu.Unlock()
		h.stdout = io.Discard
		h.mode = domain.Mode{}
	}
}

// Close releases the unit's output pipe
func (h *unitHost) Close() error {
	return h.pipe.Close()
}

// Trace implements domain.Host
func (h *unitHost) Trace() domain.Trace {
	if trace, ok := h.tracer.Snapshot(); ok {
		return trace
	}

	h.mu.Lock()
	stderr := h.stderr.String()
	h.mu.Unlock()

	if loc, ok := h.traces.ParseLocation(stderr); ok {
		h.logger.Debug("location taken from interpreter trace",
			zap.String("unit", h.path),
			zap.Int("line", loc.Line))
		return domain.Trace{File: h.path, Line: loc.Line}
	}
	return domain.Trace{File: h.path}
}

func (h *unitHost) warn(msg string) {
	h.mu.Lock()
	strict := h.mode.WarningsAsFailures
	h.mu.Unlock()

	if strict {
		panic(&probe.Warning{Message: msg})
	}
	h.logger.Warn("test warning", zap.String("unit", h.path), zap.String("message", msg))
}

// symbols exports jet/probe into the unit's interpreter with Warn and Observe bound
// to this host.
func (h *unitHost) symbols() map[string]map[string]reflect.Value {
	return map[string]map[string]reflect.Value{
		"jet/probe/probe": {
			"Assert":   reflect.ValueOf(probe.Assert),
			"Equal":    reflect.ValueOf(probe.Equal),
			"NotEqual": reflect.ValueOf(probe.NotEqual),
			"Fail":     reflect.ValueOf(probe.Fail),
			"Raise":    reflect.ValueOf(probe.Raise),
			"Warn":     reflect.ValueOf(h.warn),
			"Observe":  reflect.ValueOf(h.tracer.Bind),

			"AssertionError": reflect.ValueOf((*probe.AssertionError)(nil)),
			"Warning":        reflect.ValueOf((*probe.Warning)(nil)),
			"Signal":         reflect.ValueOf((*probe.Signal)(nil)),
			"Observation":    reflect.ValueOf((*probe.Observation)(nil)),
		},
	}
}

// stream forwards interpreter output to the host's current target
type stream struct {
	host   *unitHost
	stderr bool
}

func (s stream) Write(p []byte) (int, error) {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()

	if s.stderr {
		return s.host.stderr.Write(p)
	}
	return s.host.stdout.Write(p)
}
