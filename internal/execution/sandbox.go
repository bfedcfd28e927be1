package execution

import (
	"reflect"

	"go.uber.org/zap"

	"jet/internal/domain"
)

// Sandbox runs single test routines, intercepting their output and panics
type Sandbox struct {
	classifier *Classifier
	logger     *zap.Logger
}

// NewSandbox creates a new Sandbox
func NewSandbox(classifier *Classifier, logger *zap.Logger) *Sandbox {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	return &Sandbox{classifier: classifier, logger: logger}
}

// Run executes tc and classifies its outcome. Failures raised by the routine are
// part of the outcome; the only error returned is ErrNotInvocable.
func (s *Sandbox) Run(tc domain.TestCase, mode domain.Mode) (domain.Outcome, error) {
	diag, err := CheckPreconditions(tc)
	if err != nil {
		return domain.Outcome{}, err
	}
	if diag != nil {
		return domain.Outcome{Kind: diag.Kind, Doc: tc.Doc, Diagnostic: diag}, nil
	}

	host := tc.Host()
	c := openCapture(host, mode)
	defer c.Close()
	recovered, panicked := invoke(tc.Handle())
	output := c.Close()

	if !panicked {
		return domain.Outcome{Kind: domain.KindPass, Doc: tc.Doc, Output: output}, nil
	}

	value := unwrap(recovered)
	alias := AliasOf(value)
	kind := s.classifier.Classify(alias)

	trace := host.Trace()
	diag = newDiagnostic(tc, kind, alias, Describe(value))
	diag.SourceFile = trace.File
	if diag.SourceFile == "" {
		diag.SourceFile = tc.Unit.Path
	}
	diag.SourceLine = trace.Line
	if diag.SourceLine == 0 {
		diag.SourceLine = tc.Line
	}
	diag.LocalVariables = withObservations(coerceLocals(trace.Locals), value)
	diag.CapturedOutput = output

	s.logger.Debug("test did not pass",
		zap.String("test", tc.FuncName),
		zap.String("unit", tc.Unit.Path),
		zap.String("kind", string(kind)),
		zap.String("alias", alias),
		zap.Int("line", diag.SourceLine))

	return domain.Outcome{Kind: kind, Doc: tc.Doc, Output: output, Diagnostic: diag}, nil
}

func invoke(handle reflect.Value) (recovered any, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			recovered = r
			panicked = true
		}
	}()
	handle.Call(nil)
	return nil, false
}
