// Package environment carries the per-session state shared between the
// parser and the engine: global variables declared with SET.
package environment

import (
	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/value"
)

// Environment is the session state threaded through parsing and
// evaluation of a multi-statement script. It is not safe for concurrent
// use; independent sessions use independent environments.
type Environment struct {
	globalTypes  map[string]types.DataType
	globalValues map[string]value.Value
}

// New creates an empty environment.
func New() *Environment {
	return &Environment{
		globalTypes:  map[string]types.DataType{},
		globalValues: map[string]value.Value{},
	}
}

// DefineGlobalType records a global variable's static type during
// parsing, before any value is assigned at runtime.
func (e *Environment) DefineGlobalType(name string, t types.DataType) {
	e.globalTypes[name] = t
}

// DefineGlobal stores a global variable value under its @name.
func (e *Environment) DefineGlobal(name string, v value.Value) {
	e.globalTypes[name] = v.Type
	e.globalValues[name] = v
}

// GlobalType returns the declared type of a global variable.
func (e *Environment) GlobalType(name string) (types.DataType, bool) {
	t, ok := e.globalTypes[name]
	return t, ok
}

// GlobalValue returns the current value of a global variable.
func (e *Environment) GlobalValue(name string) (value.Value, bool) {
	v, ok := e.globalValues[name]
	return v, ok
}
