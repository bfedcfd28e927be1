package execution

import (
	"errors"
	"fmt"
	"reflect"

	"jet/internal/domain"
)

const (
	// PreconditionAlias classifies routines that cannot be called without arguments
	PreconditionAlias = "PreconditionError"

	preconditionDescription = "supply all arguments as default arguments or none at all"
)

// ErrNotInvocable is returned when a test case has no callable routine. It aborts the run.
var ErrNotInvocable = errors.New("routine cannot be invoked")

// CheckPreconditions verifies that the routine of tc can be called with no arguments:
// it takes none, or only a variadic parameter. A routine that needs arguments yields
// a diagnostic located at its declaration.
func CheckPreconditions(tc domain.TestCase) (*domain.Diagnostic, error) {
	handle := tc.Handle()
	if !handle.IsValid() || handle.Kind() != reflect.Func || handle.IsNil() {
		return nil, fmt.Errorf("%s in %s: %w", tc.FuncName, tc.Unit.Path, ErrNotInvocable)
	}

	typ := handle.Type()
	if typ.NumIn() == 0 || (typ.NumIn() == 1 && typ.IsVariadic()) {
		return nil, nil
	}

	diag := newDiagnostic(tc, domain.KindError, PreconditionAlias, preconditionDescription)
	diag.SourceFile = tc.Unit.Path
	diag.SourceLine = tc.Line
	return diag, nil
}

func newDiagnostic(tc domain.TestCase, kind domain.Kind, alias, description string) *domain.Diagnostic {
	return &domain.Diagnostic{
		Kind:        kind,
		AliasName:   alias,
		Description: description,
		TestName:    tc.Name,
		TestDoc:     tc.Doc,
		UnitName:    tc.Unit.Name,
		UnitDoc:     tc.Unit.Doc,
		UnitPath:    tc.Unit.Path,
	}
}
