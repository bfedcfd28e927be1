package execution

import (
	"encoding/json"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"jet/internal/domain"
	"jet/probe"
)

var reflectTypeType = reflect.TypeOf((*reflect.Type)(nil)).Elem()

// coerceLocals converts traced bindings to JSON values, keeping their order
func coerceLocals(bindings []domain.Binding) domain.Variables {
	if len(bindings) == 0 {
		return nil
	}
	vars := make(domain.Variables, 0, len(bindings))
	for _, b := range bindings {
		vars = setVariable(vars, b.Name, b.Value)
	}
	return vars
}

// withObservations adds the values an assertion helper recorded
func withObservations(vars domain.Variables, v any) domain.Variables {
	failure, ok := v.(*probe.AssertionError)
	if !ok {
		return vars
	}
	for _, o := range failure.Observed {
		vars = setVariable(vars, o.Name, o.Value)
	}
	return vars
}

func setVariable(vars domain.Variables, name string, value any) domain.Variables {
	encoded := coerce(value)
	for i := range vars {
		if vars[i].Name == name {
			vars[i].Value = encoded
			return vars
		}
	}
	return append(vars, domain.Variable{Name: name, Value: encoded})
}

// coerce returns a JSON form of v. Values that encode without loss are kept as is,
// functions and types are replaced by their name, anything else by its printed form.
func coerce(v any) json.RawMessage {
	v = unwrap(v)
	if v == nil {
		return json.RawMessage("null")
	}

	rv := reflect.ValueOf(v)
	if rv.Type().Implements(reflectTypeType) {
		return quote(v.(reflect.Type).String())
	}
	if rv.Kind() == reflect.Func {
		return quote(funcName(rv))
	}

	if !lossy(rv) {
		if data, err := json.Marshal(v); err == nil {
			return data
		}
	}
	return quote(fmt.Sprintf("%v", v))
}

func funcName(rv reflect.Value) string {
	if rv.IsNil() {
		return rv.Type().String()
	}
	if fn := runtime.FuncForPC(rv.Pointer()); fn != nil && !strings.HasPrefix(fn.Name(), "reflect.") {
		return fn.Name()
	}
	return rv.Type().String()
}

// lossy reports whether encoding rv drops state: structs whose fields are all unexported
// encode as an empty object.
func lossy(rv reflect.Value) bool {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || rv.NumField() == 0 {
		return false
	}
	for i := 0; i < rv.NumField(); i++ {
		if rv.Type().Field(i).IsExported() {
			return false
		}
	}
	return true
}

func quote(s string) json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}
