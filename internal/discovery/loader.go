package discovery

import (
	"errors"
	"fmt"
	"io"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"

	"jet/internal/domain"
	"jet/internal/instrument"
	"jet/internal/naming"
)

// LoadError reports a unit that could not be loaded
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Discovery is the result of loading a set of units
type Discovery struct {
	Units  []*domain.Unit
	Errors []*LoadError
}

// Close releases the runtime resources of every loaded unit
func (d Discovery) Close() {
	for _, unit := range d.Units {
		if c, ok := unit.Host.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

// Loader loads unit files into interpreters
type Loader struct {
	parser *Parser
	logger *zap.Logger
}

// NewLoader creates a new Loader
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{parser: NewParser(), logger: logger}
}

// LoadAll loads every path in order. A unit that fails to load is reported in
// Errors and skipped, the others are still loaded.
func (l *Loader) LoadAll(paths []string) Discovery {
	var d Discovery
	for _, path := range paths {
		unit, err := l.Load(path)
		if err != nil {
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				loadErr = &LoadError{Path: path, Err: err}
			}
			l.logger.Warn("skipping unit", zap.String("path", path), zap.Error(loadErr.Err))
			d.Errors = append(d.Errors, loadErr)
			continue
		}
		l.logger.Debug("loaded unit",
			zap.String("path", path),
			zap.Int("members", len(unit.Members)))
		d.Units = append(d.Units, unit)
	}
	return d
}

// Load parses, instruments and evaluates one unit in a fresh interpreter.
// Evaluating a package main that declares main runs it.
func (l *Loader) Load(path string) (unit *domain.Unit, err error) {
	source, err := l.parser.Parse(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	instrumented, err := instrument.Rewrite(source.fset, source.file, source.src)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	host, err := newUnitHost(path, l.logger)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			_ = host.Close()
		}
	}()

	i := interp.New(interp.Options{
		Stdout: host.pipe.File(),
		Stderr: stream{host: host, stderr: true},
	})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("failed to load stdlib: %w", err)}
	}
	if err := i.Use(host.symbols()); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("failed to load probe: %w", err)}
	}
	if err := i.Use(instrument.Symbols(host.tracer)); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("failed to load tracer: %w", err)}
	}

	// Package initialization runs user code
	defer func() {
		if r := recover(); r != nil {
			unit = nil
			err = &LoadError{Path: path, Err: fmt.Errorf("panic during initialization: %v", r)}
		}
	}()

	if _, err := i.Eval(string(instrumented)); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	// Output of initialization goes nowhere, not into the first test
	host.pipe.Sync()

	members := make([]domain.Member, 0, len(source.Declarations))
	for _, d := range source.Declarations {
		handle, err := i.Eval(source.Package + "." + d.Name)
		if err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("resolving %s: %w", d.Name, err)}
		}
		members = append(members, domain.Member{
			Name:   d.Name,
			Doc:    d.Doc,
			Line:   d.Line,
			Handle: handle,
		})
	}

	return &domain.Unit{
		Name:    naming.UnitName(path),
		Doc:     source.Doc,
		Path:    path,
		Package: source.Package,
		Members: members,
		Host:    host,
	}, nil
}
