// Package function provides the scalar function and aggregation
// registries: name to signature tables for the parser and name to
// implementation tables for the engine.
package function

import (
	"sync"

	"github.com/gitql-go/gitql/diagnostic"
	"github.com/gitql-go/gitql/token"
	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/value"
)

// Function is a scalar function implementation.
type Function func(args []value.Value) value.Value

// Signature declares a scalar function's parameter and return types.
// Parameters may use Optional, Varargs, Any and Variant for polymorphism;
// a Dynamic return type resolves to the type of its designated argument.
type Signature struct {
	Parameters []types.DataType
	ReturnType types.DataType
}

// Aggregation computes one value from a column of group values.
type Aggregation func(values []value.Value) value.Value

// AggregationPrototype declares an aggregation's input and result types.
type AggregationPrototype struct {
	Parameter types.DataType
	Result    types.DataType
}

// Registry is an immutable snapshot of function and aggregation tables.
// Queries read the snapshot; registration happens only through a Builder
// before query execution begins.
type Registry struct {
	functions         map[string]Function
	signatures        map[string]Signature
	aggregations      map[string]Aggregation
	aggregationProtos map[string]AggregationPrototype
}

// Builder accumulates registrations and produces an immutable Registry.
type Builder struct {
	registry Registry
}

// NewBuilder creates an empty registry builder.
func NewBuilder() *Builder {
	return &Builder{registry: Registry{
		functions:         map[string]Function{},
		signatures:        map[string]Signature{},
		aggregations:      map[string]Aggregation{},
		aggregationProtos: map[string]AggregationPrototype{},
	}}
}

// RegisterFunction adds a scalar function.
func (b *Builder) RegisterFunction(name string, sig Signature, fn Function) *Builder {
	b.registry.signatures[name] = sig
	b.registry.functions[name] = fn
	return b
}

// RegisterAggregation adds an aggregate function.
func (b *Builder) RegisterAggregation(name string, proto AggregationPrototype, agg Aggregation) *Builder {
	b.registry.aggregationProtos[name] = proto
	b.registry.aggregations[name] = agg
	return b
}

// Build returns the immutable snapshot.
func (b *Builder) Build() *Registry {
	r := b.registry
	return &r
}

var (
	standardOnce sync.Once
	standard     *Registry
)

// Standard returns the process-wide registry with the standard scalar and
// aggregate functions, initialized once.
func Standard() *Registry {
	standardOnce.Do(func() {
		b := NewBuilder()
		registerStdFunctions(b)
		registerStdAggregations(b)
		standard = b.Build()
	})
	return standard
}

// Function returns a scalar function implementation.
func (r *Registry) Function(name string) (Function, bool) {
	fn, ok := r.functions[name]
	return fn, ok
}

// Signature returns a scalar function signature.
func (r *Registry) Signature(name string) (Signature, bool) {
	sig, ok := r.signatures[name]
	return sig, ok
}

// Aggregation returns an aggregate implementation.
func (r *Registry) Aggregation(name string) (Aggregation, bool) {
	agg, ok := r.aggregations[name]
	return agg, ok
}

// AggregationPrototype returns an aggregate prototype.
func (r *Registry) AggregationPrototype(name string) (AggregationPrototype, bool) {
	proto, ok := r.aggregationProtos[name]
	return proto, ok
}

// IsAggregation reports whether name is a registered aggregate.
func (r *Registry) IsAggregation(name string) bool {
	_, ok := r.aggregations[name]
	return ok
}

// CheckCall validates argument types against a function signature and
// returns the resolved return type. Matching is positional: Varargs
// absorbs the tail, trailing Optional parameters may be omitted, Any
// matches anything.
func (r *Registry) CheckCall(name string, argTypes []types.DataType, loc token.Location) (types.DataType, *diagnostic.Diagnostic) {
	sig, ok := r.Signature(name)
	if !ok {
		return types.DataType{}, diagnostic.Errorf("Unknown function name `%s`", name).
			AddHelp("Check the function name in the standard library").
			WithLocation(loc)
	}

	argIndex := 0
	for paramIndex, param := range sig.Parameters {
		if param.Kind == types.KindVarargs {
			for ; argIndex < len(argTypes); argIndex++ {
				if !types.AssignableTo(argTypes[argIndex], param) {
					return types.DataType{}, diagnostic.Errorf(
						"Function `%s` argument %d expects type %s but got %s",
						name, argIndex+1, param.Inner.String(), argTypes[argIndex].String()).
						WithLocation(loc)
				}
			}
			continue
		}
		if argIndex >= len(argTypes) {
			if param.Kind == types.KindOptional {
				continue
			}
			return types.DataType{}, diagnostic.Errorf(
				"Function `%s` expects at least %d arguments but got %d",
				name, requiredArity(sig), len(argTypes)).
				WithLocation(loc)
		}
		if !types.AssignableTo(argTypes[argIndex], param) {
			return types.DataType{}, diagnostic.Errorf(
				"Function `%s` argument %d expects type %s but got %s",
				name, paramIndex+1, param.String(), argTypes[argIndex].String()).
				WithLocation(loc)
		}
		argIndex++
	}

	if argIndex < len(argTypes) {
		return types.DataType{}, diagnostic.Errorf(
			"Function `%s` expects %d arguments but got %d",
			name, len(sig.Parameters), len(argTypes)).
			WithLocation(loc)
	}

	return resolveReturnType(sig, argTypes), nil
}

func requiredArity(sig Signature) int {
	n := 0
	for _, param := range sig.Parameters {
		if param.Kind != types.KindOptional && param.Kind != types.KindVarargs {
			n++
		}
	}
	return n
}

func resolveReturnType(sig Signature, argTypes []types.DataType) types.DataType {
	if sig.ReturnType.Kind != types.KindDynamic {
		return sig.ReturnType
	}
	if sig.ReturnType.ArgIndex < len(argTypes) {
		return argTypes[sig.ReturnType.ArgIndex]
	}
	return types.Any
}
