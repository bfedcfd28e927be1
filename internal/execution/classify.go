package execution

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"
	"unsafe"

	"jet/internal/domain"
	"jet/probe"
)

// Aliases given to panic values that carry no usable type name
const (
	AliasRuntimeError = "RuntimeError"
	AliasError        = "Error"
	AliasPanic        = "Panic"
)

// DefaultTable maps the aliases raised by jet/probe to their outcome kind
func DefaultTable() map[string]domain.Kind {
	return map[string]domain.Kind{
		"AssertionError": domain.KindFailed,
		"Warning":        domain.KindWarning,
	}
}

// Classifier maps the alias of a caught panic to an outcome kind. Aliases missing
// from the table are errors.
type Classifier struct {
	table map[string]domain.Kind
}

// NewClassifier creates a Classifier from the default table with overrides applied
func NewClassifier(overrides map[string]domain.Kind) *Classifier {
	table := DefaultTable()
	for alias, kind := range overrides {
		table[alias] = kind
	}
	return &Classifier{table: table}
}

// Classify returns the kind of alias
func (c *Classifier) Classify(alias string) domain.Kind {
	if kind, ok := c.table[alias]; ok {
		return kind
	}
	return domain.KindError
}

// AliasOf names the failure carried by a recovered panic value
func AliasOf(v any) string {
	switch x := v.(type) {
	case *probe.AssertionError:
		return "AssertionError"
	case *probe.Warning:
		return "Warning"
	case *probe.Signal:
		if x.Alias == "" {
			return AliasError
		}
		return x.Alias
	case runtime.Error, *reflect.ValueError:
		return AliasRuntimeError
	case string:
		if isRuntimeMessage(x) {
			return AliasRuntimeError
		}
		return AliasPanic
	case error:
		if name := exportedName(x); name != "" {
			return name
		}
		return AliasError
	}
	if name := exportedName(v); name != "" {
		return name
	}
	return AliasPanic
}

// isRuntimeMessage reports a string panic raised by the runtime or by reflect on
// behalf of interpreted code, like an index out of range.
func isRuntimeMessage(s string) bool {
	return strings.HasPrefix(s, "reflect: ") || strings.HasPrefix(s, "reflect.") ||
		strings.HasPrefix(s, "runtime error: ")
}

// Describe returns the message carried by a recovered panic value
func Describe(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func exportedName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	name := t.Name()
	r, _ := utf8.DecodeRuneInString(name)
	if name == "" || !unicode.IsUpper(r) {
		return ""
	}
	return name
}

var reflectValueType = reflect.TypeOf(reflect.Value{})

// unwrap returns the Go value behind what the interpreter hands out. Interpreted code
// may surface values as a reflect.Value or boxed in the interpreter's own interface
// representation, a struct holding the reflect.Value in a field named value.
func unwrap(v any) any {
	for range 8 {
		switch x := v.(type) {
		case reflect.Value:
			if !x.IsValid() {
				return nil
			}
			if !x.CanInterface() {
				return x.String()
			}
			v = x.Interface()
			continue
		}

		inner, ok := boxed(v)
		if !ok {
			return v
		}
		v = inner
	}
	return v
}

func boxed(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Struct || rv.Type().PkgPath() != "github.com/traefik/yaegi/interp" {
		return reflect.Value{}, false
	}
	field, ok := rv.Type().FieldByName("value")
	if !ok || field.Type != reflectValueType {
		return reflect.Value{}, false
	}

	// Unexported fields are only readable through an addressable copy
	cp := reflect.New(rv.Type()).Elem()
	cp.Set(rv)
	f := cp.FieldByIndex(field.Index)
	inner := reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem().Interface().(reflect.Value)
	return inner, true
}
